package grammar

import (
	"strings"
)

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokenWord TokenKind = iota
	TokenQuotedIdent
	TokenString
	TokenNumber
	TokenVariable
	TokenSysVariable
	TokenPlaceholder
	TokenPunct
)

// Token is one lexical unit of a statement. Value holds the dequoted text;
// for words it is lower-cased.
type Token struct {
	Kind  TokenKind
	Text  string
	Value string
	Pos   int
	End   int
}

// Is reports whether the token is the unquoted word w (lower-case).
func (t Token) Is(w string) bool {
	return t.Kind == TokenWord && t.Value == w
}

// IsPunct reports whether the token is the punctuation p.
func (t Token) IsPunct(p string) bool {
	return t.Kind == TokenPunct && t.Text == p
}

// IsName reports whether the token can name an object.
func (t Token) IsName() bool {
	return t.Kind == TokenWord || t.Kind == TokenQuotedIdent
}

// Name returns the object name the token denotes, keeping the source case.
func (t Token) Name() string {
	if t.Kind == TokenQuotedIdent {
		return t.Value
	}
	return t.Text
}

var multiCharPuncts = []string{"<=>", "->>", ":=", "<=", ">=", "<>", "!=", "||", "&&", "<<", ">>", "->"}

// Lex splits sql into tokens. Comments are dropped; the contents of
// executable comments (/*! ... */ and /*M! ... */) are lexed as SQL. Lex
// never fails: unterminated quotes and comments extend to the end of input.
func Lex(sql string) []Token {
	var toks []Token
	execDepth := 0
	n := len(sql)
	i := 0

	for i < n {
		c := sql[i]
		switch {
		case isSpace(c):
			i++

		case c == '#':
			i = skipLine(sql, i+1)

		case c == '-' && i+1 < n && sql[i+1] == '-' && (i+2 == n || isSpace(sql[i+2]) || sql[i+2] < ' '):
			i = skipLine(sql, i+2)

		case c == '/' && i+1 < n && sql[i+1] == '*':
			if j, ok := execCommentBody(sql, i); ok {
				execDepth++
				i = j
				continue
			}
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				i = n
			} else {
				i += end + 4
			}

		case c == '*' && execDepth > 0 && i+1 < n && sql[i+1] == '/':
			execDepth--
			i += 2

		case c == '\'' || c == '"':
			end, value := scanQuoted(sql, i, c)
			toks = append(toks, Token{Kind: TokenString, Text: sql[i:end], Value: value, Pos: i, End: end})
			i = end

		case c == '`':
			end, value := scanQuoted(sql, i, '`')
			toks = append(toks, Token{Kind: TokenQuotedIdent, Text: sql[i:end], Value: value, Pos: i, End: end})
			i = end

		case isDigit(c) || (c == '.' && i+1 < n && isDigit(sql[i+1]) && !prevIsName(toks, i)):
			end, isNumber := scanNumber(sql, i)
			if isNumber {
				toks = append(toks, Token{Kind: TokenNumber, Text: sql[i:end], Value: sql[i:end], Pos: i, End: end})
			} else {
				toks = append(toks, Token{Kind: TokenWord, Text: sql[i:end], Value: strings.ToLower(sql[i:end]), Pos: i, End: end})
			}
			i = end

		case isIdentStart(c):
			end := scanIdent(sql, i)
			toks = append(toks, Token{Kind: TokenWord, Text: sql[i:end], Value: strings.ToLower(sql[i:end]), Pos: i, End: end})
			i = end

		case c == '@':
			end, kind, value := scanVariable(sql, i)
			toks = append(toks, Token{Kind: kind, Text: sql[i:end], Value: value, Pos: i, End: end})
			i = end

		case c == '?':
			toks = append(toks, Token{Kind: TokenPlaceholder, Text: "?", Value: "?", Pos: i, End: i + 1})
			i++

		case c == ':' && i+1 < n && (isDigit(sql[i+1]) || isIdentStart(sql[i+1])):
			end := scanIdent(sql, i+1)
			toks = append(toks, Token{Kind: TokenPlaceholder, Text: sql[i:end], Value: sql[i:end], Pos: i, End: end})
			i = end

		default:
			p := string(c)
			for _, m := range multiCharPuncts {
				if strings.HasPrefix(sql[i:], m) {
					p = m
					break
				}
			}
			toks = append(toks, Token{Kind: TokenPunct, Text: p, Value: p, Pos: i, End: i + len(p)})
			i += len(p)
		}
	}

	return toks
}

// execCommentBody returns the offset just past the marker of an executable
// comment starting at i, including an optional version number.
func execCommentBody(sql string, i int) (int, bool) {
	j := i + 2
	if j < len(sql) && (sql[j] == 'M' || sql[j] == 'm') && j+1 < len(sql) && sql[j+1] == '!' {
		j += 2
	} else if j < len(sql) && sql[j] == '!' {
		j++
	} else {
		return i, false
	}
	for j < len(sql) && isDigit(sql[j]) {
		j++
	}
	return j, true
}

func skipLine(sql string, i int) int {
	for i < len(sql) && sql[i] != '\n' {
		i++
	}
	return i
}

// scanQuoted returns the end offset (exclusive) and the unescaped content of
// a quoted run starting at i.
func scanQuoted(sql string, i int, q byte) (int, string) {
	var b strings.Builder
	j := i + 1
	for j < len(sql) {
		c := sql[j]
		if c == '\\' && q != '`' && j+1 < len(sql) {
			b.WriteByte(sql[j+1])
			j += 2
			continue
		}
		if c == q {
			if j+1 < len(sql) && sql[j+1] == q {
				b.WriteByte(q)
				j += 2
				continue
			}
			return j + 1, b.String()
		}
		b.WriteByte(c)
		j++
	}
	return len(sql), b.String()
}

// scanNumber scans a numeric literal. A digit run directly followed by an
// identifier character is an identifier (MySQL allows names like 1abc).
func scanNumber(sql string, i int) (int, bool) {
	n := len(sql)
	j := i
	if sql[j] == '0' && j+1 < n && (sql[j+1] == 'x' || sql[j+1] == 'X') && j+2 < n && isHex(sql[j+2]) {
		j += 2
		for j < n && isHex(sql[j]) {
			j++
		}
		if j < n && isIdentChar(sql[j]) {
			return scanIdent(sql, i), false
		}
		return j, true
	}
	for j < n && isDigit(sql[j]) {
		j++
	}
	if j < n && sql[j] == '.' {
		j++
		for j < n && isDigit(sql[j]) {
			j++
		}
	}
	if j < n && (sql[j] == 'e' || sql[j] == 'E') {
		k := j + 1
		if k < n && (sql[k] == '-' || sql[k] == '+') {
			k++
		}
		if k < n && isDigit(sql[k]) {
			j = k
			for j < n && isDigit(sql[j]) {
				j++
			}
		}
	}
	if j < n && isIdentChar(sql[j]) && sql[j-1] != '.' {
		return scanIdent(sql, i), false
	}
	return j, true
}

func scanIdent(sql string, i int) int {
	j := i
	for j < len(sql) && isIdentChar(sql[j]) {
		j++
	}
	return j
}

func scanVariable(sql string, i int) (int, TokenKind, string) {
	n := len(sql)
	if i+1 < n && sql[i+1] == '@' {
		j := i + 2
		if j < n && sql[j] == '`' {
			end, value := scanQuoted(sql, j, '`')
			return end, TokenSysVariable, value
		}
		end := scanIdent(sql, j)
		if end < n && sql[end] == '.' {
			end = scanIdent(sql, end+1)
		}
		return end, TokenSysVariable, strings.ToLower(sql[j:end])
	}
	j := i + 1
	if j < n && (sql[j] == '\'' || sql[j] == '"' || sql[j] == '`') {
		end, value := scanQuoted(sql, j, sql[j])
		return end, TokenVariable, value
	}
	end := j
	for end < n && (isIdentChar(sql[end]) || sql[end] == '.') {
		end++
	}
	return end, TokenVariable, sql[j:end]
}

func prevIsName(toks []Token, pos int) bool {
	if len(toks) == 0 {
		return false
	}
	last := toks[len(toks)-1]
	return last.End == pos && last.IsName()
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
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '$' || c >= 0x80
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

// SplitFirst returns the tokens of the first statement and whether any
// non-empty statement follows it. Semicolons inside BEGIN ... END bodies
// do not split.
func SplitFirst(toks []Token) ([]Token, bool) {
	start := 0
	for start < len(toks) && toks[start].IsPunct(";") {
		start++
	}
	depth := 0
	for i := start; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.Is("begin") && i > start:
			depth++
		case t.Is("end") && depth > 0:
			depth--
		case t.IsPunct(";") && depth == 0:
			for j := i + 1; j < len(toks); j++ {
				if !toks[j].IsPunct(";") {
					return toks[start:i], true
				}
			}
			return toks[start:i], false
		}
	}
	return toks[start:], false
}

// Text returns the source text spanned by toks.
func Text(sql string, toks []Token) string {
	if len(toks) == 0 {
		return ""
	}
	return sql[toks[0].Pos:toks[len(toks)-1].End]
}

// Keywords returns the first two keywords of a statement, lower-cased.
// In Oracle mode charset, do and handler only count as the first keyword.
func Keywords(toks []Token, mode Mode) []string {
	var out []string
	for _, t := range toks {
		if t.Kind != TokenWord || !IsKeyword(t.Value) {
			continue
		}
		if len(out) > 0 && mode == ModeOracle && oracleFirstOnly[t.Value] {
			continue
		}
		out = append(out, t.Value)
		if len(out) == 2 {
			break
		}
	}
	return out
}

var oracleFirstOnly = map[string]bool{"charset": true, "do": true, "handler": true}
