// Package canonical reduces statement text to a literal-free form so that
// statements differing only in their values share one key.
package canonical

import (
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/maxpert/querygate/grammar"
)

// PreparedSuffix is appended to the canonical form of prepared statements.
const PreparedSuffix = ":P"

// Placeholder replaces every string and numeric literal.
const Placeholder = '?'

// Canonicalize strips literals, comments and redundant whitespace from sql
// and lower-cases keywords. Identifiers keep their case. The result is a
// pure function of the input.
func Canonicalize(sql string) string {
	c := canonicalizer{sql: sql}
	c.out.Grow(len(sql))
	c.run()
	return strings.TrimRight(c.out.String(), " ")
}

// CanonicalizePrepared is Canonicalize for a statement received through
// COM_STMT_PREPARE.
func CanonicalizePrepared(sql string) string {
	return Canonicalize(sql) + PreparedSuffix
}

// Fingerprint hashes a canonical form.
func Fingerprint(canonical string) uint64 {
	return xxhash.Sum64String(canonical)
}

type canonicalizer struct {
	sql string
	out strings.Builder
	// space is a pending separator, emitted before the next token.
	space bool
	// replaced is set when the last emitted token was a literal placeholder.
	replaced bool
	// last is the last byte written, 0 at the start.
	last byte
}

func (c *canonicalizer) emit(s string) {
	if s == "" {
		return
	}
	if c.space && c.out.Len() > 0 {
		c.out.WriteByte(' ')
	}
	c.space = false
	c.out.WriteString(s)
	c.last = s[len(s)-1]
}

func (c *canonicalizer) placeholder() {
	c.emit(string(Placeholder))
	c.replaced = true
}

func (c *canonicalizer) run() {
	sql := c.sql
	i := 0
	for i < len(sql) {
		ch := sql[i]
		switch {
		case isSpace(ch):
			c.space = true
			i++

		case ch == '#' || (ch == '-' && strings.HasPrefix(sql[i:], "-- ")):
			i = skipLine(sql, i)
			c.space = true

		case ch == '/' && strings.HasPrefix(sql[i:], "/*"):
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				return
			}
			if strings.HasPrefix(sql[i:], "/*!") || strings.HasPrefix(sql[i:], "/*M!") {
				// executable comments are statement text
				c.emit(sql[i : i+end+4])
				c.replaced = false
			}
			i += end + 4
			c.space = true

		case ch == '\'' || ch == '"':
			end, ok := closeQuote(sql, i, ch)
			if !ok {
				c.emit(sql[i:])
				return
			}
			c.placeholder()
			i = end

		case ch == '`':
			end, ok := closeQuote(sql, i, ch)
			if !ok {
				c.emit(sql[i:])
				return
			}
			c.emit(sql[i:end])
			c.replaced = false
			i = end

		case isDigit(ch) && !isIdentChar(c.prev(i)):
			end, ok := scanNumber(sql, i)
			if !ok {
				// 1abc and the like are identifiers
				end = scanWord(sql, i)
				c.emit(sql[i:end])
				c.replaced = false
				i = end
				continue
			}
			if c.last == '-' && !c.replaced && !c.space {
				c.dropMinus()
			}
			c.placeholder()
			i = end

		case isIdentStart(ch):
			end := scanWord(sql, i)
			word := sql[i:end]
			if lower := strings.ToLower(word); grammar.IsKeyword(lower) {
				word = lower
			}
			c.emit(word)
			c.replaced = false
			i = end

		default:
			c.emit(sql[i : i+1])
			if ch != '-' {
				c.replaced = false
			}
			i++
		}
	}
}

// prev returns the source byte before i, or 0.
func (c *canonicalizer) prev(i int) byte {
	if i == 0 {
		return 0
	}
	return c.sql[i-1]
}

// dropMinus removes a sign that belongs to the number that follows it.
func (c *canonicalizer) dropMinus() {
	s := c.out.String()
	s = s[:len(s)-1]
	c.out.Reset()
	c.out.WriteString(s)
	if s == "" {
		c.last = 0
		return
	}
	c.last = s[len(s)-1]
	if c.last == ' ' {
		// "x = -1" becomes "x = ?", keep the single separator.
		c.out.Reset()
		c.out.WriteString(s[:len(s)-1])
		c.space = true
		c.last = s[len(s)-2]
	}
}

func skipLine(sql string, i int) int {
	for i < len(sql) && sql[i] != '\n' {
		i++
	}
	return i
}

// closeQuote returns the offset just past the quote closing the one at i.
// Backslash escapes and doubled quotes stay inside the literal.
func closeQuote(sql string, i int, q byte) (int, bool) {
	for j := i + 1; j < len(sql); j++ {
		switch sql[j] {
		case '\\':
			if q != '`' {
				j++
			}
		case q:
			if j+1 < len(sql) && sql[j+1] == q {
				j++
				continue
			}
			return j + 1, true
		}
	}
	return 0, false
}

// scanNumber returns the end of the number starting at i. It reports false
// when the digits run straight into letters, which makes them part of an
// identifier.
func scanNumber(sql string, i int) (int, bool) {
	j := i
	if sql[j] == '0' && j+1 < len(sql) && (sql[j+1] == 'x' || sql[j+1] == 'X') {
		j += 2
		for j < len(sql) && isHex(sql[j]) {
			j++
		}
		return j, j == len(sql) || !isIdentChar(sql[j])
	}
	for j < len(sql) && isDigit(sql[j]) {
		j++
	}
	if j < len(sql) && sql[j] == '.' {
		j++
		for j < len(sql) && isDigit(sql[j]) {
			j++
		}
	}
	if j < len(sql) && (sql[j] == 'e' || sql[j] == 'E') {
		k := j + 1
		if k < len(sql) && (sql[k] == '-' || sql[k] == '+') {
			k++
		}
		if k < len(sql) && isDigit(sql[k]) {
			j = k
			for j < len(sql) && isDigit(sql[j]) {
				j++
			}
		}
	}
	return j, j == len(sql) || !isIdentChar(sql[j])
}

func scanWord(sql string, i int) int {
	for i < len(sql) && isIdentChar(sql[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
