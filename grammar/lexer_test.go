package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []Token) []TokenKind {
	out := make([]TokenKind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func values(toks []Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Value
	}
	return out
}

func TestLex(t *testing.T) {
	tests := []struct {
		name   string
		sql    string
		values []string
		kinds  []TokenKind
	}{
		{
			name:   "words are lower-cased",
			sql:    "SELECT Name FROM t",
			values: []string{"select", "name", "from", "t"},
			kinds:  []TokenKind{TokenWord, TokenWord, TokenWord, TokenWord},
		},
		{
			name:   "strings and escapes",
			sql:    `'it''s' "a\"b"`,
			values: []string{"it's", `a"b`},
			kinds:  []TokenKind{TokenString, TokenString},
		},
		{
			name:   "quoted identifier",
			sql:    "`my table`.col",
			values: []string{"my table", ".", "col"},
			kinds:  []TokenKind{TokenQuotedIdent, TokenPunct, TokenWord},
		},
		{
			name:   "numbers",
			sql:    "1 2.5 0x1F 1e-3 .5",
			values: []string{"1", "2.5", "0x1F", "1e-3", ".5"},
			kinds:  []TokenKind{TokenNumber, TokenNumber, TokenNumber, TokenNumber, TokenNumber},
		},
		{
			name:   "digit prefixed identifier",
			sql:    "1abc",
			values: []string{"1abc"},
			kinds:  []TokenKind{TokenWord},
		},
		{
			name:   "variables",
			sql:    "@x @@global.max_connections @@autocommit",
			values: []string{"x", "global.max_connections", "autocommit"},
			kinds:  []TokenKind{TokenVariable, TokenSysVariable, TokenSysVariable},
		},
		{
			name:   "placeholders",
			sql:    "? :1",
			values: []string{"?", ":1"},
			kinds:  []TokenKind{TokenPlaceholder, TokenPlaceholder},
		},
		{
			name:   "comments are dropped",
			sql:    "SELECT /* c */ 1 # tail\n-- line\n, 2",
			values: []string{"select", "1", ",", "2"},
			kinds:  []TokenKind{TokenWord, TokenNumber, TokenPunct, TokenNumber},
		},
		{
			name:   "executable comment content is lexed",
			sql:    "SELECT /*!40001 SQL_NO_CACHE */ 1",
			values: []string{"select", "sql_no_cache", "1"},
			kinds:  []TokenKind{TokenWord, TokenWord, TokenNumber},
		},
		{
			name:   "multi character operators",
			sql:    "a := 1 <=> b",
			values: []string{"a", ":=", "1", "<=>", "b"},
			kinds:  []TokenKind{TokenWord, TokenPunct, TokenNumber, TokenPunct, TokenWord},
		},
		{
			name:   "unterminated string runs to end",
			sql:    "SELECT 'abc",
			values: []string{"select", "abc"},
			kinds:  []TokenKind{TokenWord, TokenString},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := Lex(tt.sql)
			assert.Equal(t, tt.values, values(toks))
			assert.Equal(t, tt.kinds, kinds(toks))
		})
	}
}

func TestLexCommentOnly(t *testing.T) {
	assert.Empty(t, Lex("/* nothing */ -- here\n# at all"))
	assert.Empty(t, Lex("   "))
}

func TestSplitFirst(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		first    string
		trailing bool
	}{
		{"single", "SELECT 1", "SELECT 1", false},
		{"trailing separator", "SELECT 1;;", "SELECT 1", false},
		{"two statements", "SELECT 1; SELECT 2", "SELECT 1", true},
		{"leading separators", ";; SELECT 1", "SELECT 1", false},
		{"semicolon in string", "SELECT ';'", "SELECT ';'", false},
		{
			"compound body",
			"CREATE PROCEDURE p() BEGIN SELECT 1; SELECT 2; END",
			"CREATE PROCEDURE p() BEGIN SELECT 1; SELECT 2; END",
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, trailing := SplitFirst(Lex(tt.sql))
			require.NotEmpty(t, toks)
			assert.Equal(t, tt.first, Text(tt.sql, toks))
			assert.Equal(t, tt.trailing, trailing)
		})
	}
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		mode Mode
		want []string
	}{
		{"alter table", "ALTER TABLE t ADD c int", ModeDefault, []string{"alter", "table"}},
		{"identifiers skipped", "SELECT a, b FROM t", ModeDefault, []string{"select", "from"}},
		{"leading paren", "(SELECT 1)", ModeDefault, []string{"select"}},
		{"oracle first only", "SELECT charset(a) FROM t", ModeOracle, []string{"select", "from"}},
		{"default charset counts", "SELECT charset(a) FROM t", ModeDefault, []string{"select", "charset"}},
		{"no keywords", "foo bar", ModeDefault, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Keywords(Lex(tt.sql), tt.mode))
		})
	}
}
