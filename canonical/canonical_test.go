package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{"number", "SELECT 1", "select ?"},
		{"whitespace", "  SELECT \t 1\n", "select ?"},
		{"string literals", `SELECT * FROM t WHERE a = 'x' AND b = "y"`, "select * from t where a = ? and b = ?"},
		{"escaped quote", `SELECT 'it\'s', 'a''b'`, "select ?, ?"},
		{"backticks kept", "SELECT `Col 1` FROM `T`", "select `Col 1` from `T`"},
		{"identifier case kept", "select Name from Users", "select Name from Users"},
		{"digits inside identifier", "SELECT c1 FROM t2", "select c1 from t2"},
		{"digits then letters", "SELECT 1abc FROM t", "select 1abc from t"},
		{"hex", "SELECT 0xFF", "select ?"},
		{"decimal and exponent", "SELECT 1.5, 2e-3, .5", "select ?, ?, .?"},
		{"negative number", "SELECT * FROM t WHERE a = -1", "select * from t where a = ?"},
		{"subtraction", "SELECT 1-2", "select ?-?"},
		{"hash comment", "SELECT 1 # trailing\nFROM t", "select ? from t"},
		{"dash comment", "SELECT 1 -- note\n", "select ?"},
		{"block comment", "SELECT /* hint */ 1", "select ?"},
		{"executable comment", "SELECT /*!40001 SQL_NO_CACHE */ a FROM t", "select /*!40001 SQL_NO_CACHE */ a from t"},
		{"unterminated quote", "SELECT 'abc", "select 'abc"},
		{"placeholder", "SELECT * FROM t WHERE a = ?", "select * from t where a = ?"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonicalize(tt.sql))
		})
	}
}

func TestCanonicalizeLiteralInsensitive(t *testing.T) {
	assert.Equal(t, Canonicalize("SELECT 1"), Canonicalize("SELECT 2"))
	assert.Equal(t, Canonicalize("SELECT 1"), Canonicalize("SELECT  1"))
	assert.Equal(t,
		Canonicalize("UPDATE t SET a = 'x' WHERE id = 10"),
		Canonicalize("update t set a = 'yy' where id = 7"))
}

func TestCanonicalizePrepared(t *testing.T) {
	bare := Canonicalize("SELECT 1")
	prepared := CanonicalizePrepared("SELECT 1")
	assert.NotEqual(t, bare, prepared)
	assert.Equal(t, bare+PreparedSuffix, prepared)
	assert.Equal(t, prepared, CanonicalizePrepared("SELECT 1"))
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint(Canonicalize("SELECT 1")), Fingerprint(Canonicalize("SELECT 42")))
	assert.NotEqual(t, Fingerprint("select ?"), Fingerprint("select ?"+PreparedSuffix))
}
