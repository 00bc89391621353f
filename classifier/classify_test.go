package classifier_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpert/querygate/canonical"
	"github.com/maxpert/querygate/classifier"
	"github.com/maxpert/querygate/grammar/vitess"
)

func newSession(t *testing.T) *classifier.Session {
	t.Helper()
	d, err := vitess.New()
	require.NoError(t, err)
	s, err := classifier.NewSession(classifier.SessionConfig{Driver: d, CacheSize: 64, Stats: classifier.NewStats()})
	require.NoError(t, err)
	require.NoError(t, s.Init())
	t.Cleanup(s.Close)
	return s
}

func field(infos []classifier.FieldInfo, column string) (classifier.FieldInfo, bool) {
	for _, f := range infos {
		if f.Column == column {
			return f, true
		}
	}
	return classifier.FieldInfo{}, false
}

func TestClassifyTypeMasks(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		mask classifier.TypeMask
		op   classifier.Operation
	}{
		{name: "select", sql: "SELECT a FROM t WHERE b = 1", mask: classifier.TypeRead, op: classifier.OpSelect},
		{name: "insert", sql: "INSERT INTO t (a) VALUES (1)", mask: classifier.TypeWrite, op: classifier.OpInsert},
		{name: "update", sql: "UPDATE t SET a = 1 WHERE id = 2", mask: classifier.TypeWrite, op: classifier.OpUpdate},
		{name: "delete", sql: "DELETE FROM t WHERE id = 1", mask: classifier.TypeWrite, op: classifier.OpDelete},
		{name: "drop temporary", sql: "DROP TEMPORARY TABLE tmp", mask: classifier.TypeWrite, op: classifier.OpDropTable},
		{name: "drop", sql: "DROP TABLE t", mask: classifier.TypeWrite | classifier.TypeCommit, op: classifier.OpDropTable},
		{name: "create temporary", sql: "CREATE TEMPORARY TABLE tmp (a int)", mask: classifier.TypeWrite | classifier.TypeCreateTmpTable, op: classifier.OpCreateTable},
		{name: "show databases", sql: "SHOW DATABASES", mask: classifier.TypeShowDatabases, op: classifier.OpShowDatabases},
		{name: "last insert id", sql: "SELECT LAST_INSERT_ID()", mask: classifier.TypeRead | classifier.TypeMasterRead, op: classifier.OpSelect},
		{name: "global variable", sql: "SELECT @@global.max_connections", mask: classifier.TypeRead | classifier.TypeGsysvarRead, op: classifier.OpSelect},
		{name: "user variable", sql: "SELECT @x", mask: classifier.TypeRead | classifier.TypeUservarRead, op: classifier.OpSelect},
		{name: "outfile", sql: "SELECT a FROM t INTO OUTFILE '/tmp/a'", mask: classifier.TypeWrite, op: classifier.OpSelect},
	}

	s := newSession(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := classifier.NewStatement(tt.sql)
			st, err := s.Classify(stmt, classifier.CollectAll)
			require.NoError(t, err)
			assert.Equal(t, classifier.StatusParsed, st)
			assert.Equal(t, tt.mask, s.TypeMask(stmt), "got %s", s.TypeMask(stmt))
			assert.Equal(t, tt.op, s.Operation(stmt))
		})
	}
}

func TestClassifyCollections(t *testing.T) {
	s := newSession(t)
	stmt := classifier.NewStatement("SELECT a FROM db1.t1 WHERE b = 1")

	assert.Equal(t, []classifier.TableName{{DB: "db1", Table: "t1"}}, s.TableNames(stmt, classifier.CollectAll))
	assert.Equal(t, []string{"db1"}, s.DatabaseNames(stmt, classifier.CollectAll))

	fields := s.FieldInfos(stmt, classifier.CollectAll)
	a, ok := field(fields, "a")
	require.True(t, ok)
	assert.Equal(t, classifier.FieldSelect, a.Context)
	b, ok := field(fields, "b")
	require.True(t, ok)
	assert.Equal(t, classifier.FieldWhere, b.Context)

	fns, r := s.FunctionInfos(stmt, classifier.CollectAll)
	require.Len(t, fns, 1)
	assert.Equal(t, "=", fns[0].Name)
	used := r.Fields(fns[0])
	require.Len(t, used, 1)
	assert.Equal(t, "b", used[0].Column)
}

func TestClassifyCreatedTable(t *testing.T) {
	s := newSession(t)
	stmt := classifier.NewStatement("CREATE TABLE shop.orders (id int)")
	assert.Equal(t, "shop.orders", s.CreatedTableName(stmt))
}

func TestClassifyUnionContext(t *testing.T) {
	s := newSession(t)
	stmt := classifier.NewStatement("SELECT a FROM t1 UNION SELECT b FROM t2")

	fields := s.FieldInfos(stmt, classifier.CollectAll)
	a, ok := field(fields, "a")
	require.True(t, ok)
	assert.Equal(t, classifier.FieldSelect, a.Context)
	b, ok := field(fields, "b")
	require.True(t, ok)
	assert.Equal(t, classifier.FieldSelect|classifier.FieldUnion, b.Context)

	assert.ElementsMatch(t, []classifier.TableName{{Table: "t1"}, {Table: "t2"}}, s.TableNames(stmt, classifier.CollectAll))
}

func TestClassifyOracleNames(t *testing.T) {
	s := newSession(t)
	s.SetSQLMode(classifier.ModeOracle)

	stmt := classifier.NewStatement("SELECT nvl(a, b) FROM t")
	fns, _ := s.FunctionInfos(stmt, classifier.CollectAll)
	require.Len(t, fns, 1)
	assert.Equal(t, "ifnull", fns[0].Name)
	assert.Equal(t, classifier.TypeRead, s.TypeMask(stmt))
}

func TestClassifyFoundRows(t *testing.T) {
	s := newSession(t)
	stmt := classifier.NewStatement("SELECT FOUND_ROWS()")
	assert.True(t, s.RelatesToPrevious(stmt))
}

func TestClassifyDeepNesting(t *testing.T) {
	s := newSession(t)
	const depth = 300
	sql := "SELECT " + strings.Repeat("(SELECT ", depth) + "1" + strings.Repeat(")", depth)

	stmt := classifier.NewStatement(sql)
	st, err := s.Classify(stmt, classifier.CollectAll)
	if err != nil {
		assert.ErrorIs(t, err, classifier.ErrRecursionLimit)
		assert.Equal(t, classifier.StatusInvalid, st)
	}
	require.NotNil(t, stmt.Result())
	assert.NotEqual(t, classifier.StatusParsed, st)
}

func TestClassifySessionStatements(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		bits classifier.TypeMask
	}{
		{name: "disable autocommit", sql: "SET autocommit=0", bits: classifier.TypeBeginTrx | classifier.TypeDisableAutocommit},
		{name: "global write", sql: "SET @@global.max_connections=100", bits: classifier.TypeGsysvarWrite},
		{name: "commit", sql: "COMMIT", bits: classifier.TypeCommit},
	}

	s := newSession(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := classifier.NewStatement(tt.sql)
			mask := s.TypeMask(stmt)
			assert.True(t, mask.Has(tt.bits), "got %s", mask)
		})
	}

	assert.False(t, s.TypeMask(classifier.NewStatement("COMMIT")).Has(classifier.TypeWrite))
}

func TestClassifyAliasResolution(t *testing.T) {
	s := newSession(t)
	stmt := classifier.NewStatement("SELECT a.x FROM tbl AS a WHERE a.x = 1")

	fields := s.FieldInfos(stmt, classifier.CollectFields)
	require.Len(t, fields, 1)
	assert.Equal(t, "tbl", fields[0].Table)
	assert.Equal(t, "x", fields[0].Column)
	assert.Equal(t, classifier.FieldSelect|classifier.FieldWhere, fields[0].Context)
}

func TestClassifySelectAliasIsNotAField(t *testing.T) {
	s := newSession(t)
	stmt := classifier.NewStatement("SELECT a AS d FROM x WHERE d = 2")

	fields := s.FieldInfos(stmt, classifier.CollectFields)
	require.Len(t, fields, 1)
	assert.Equal(t, "a", fields[0].Column)
}

func TestClassifyGarbage(t *testing.T) {
	s := newSession(t)
	stmt := classifier.NewStatement("!!! not sql")

	st, err := s.Classify(stmt, classifier.CollectAll)
	require.NoError(t, err)
	assert.Equal(t, classifier.StatusInvalid, st)
	assert.Empty(t, s.TableNames(stmt, classifier.CollectAll))
	assert.Empty(t, s.FieldInfos(stmt, classifier.CollectAll))
}

func TestClassifyMonotonicCollection(t *testing.T) {
	s := newSession(t)
	stmt := classifier.NewStatement("SELECT a FROM t WHERE b = 1")

	_, err := s.Classify(stmt, classifier.CollectEssentials)
	require.NoError(t, err)
	first := *stmt.Result()

	fields := s.FieldInfos(stmt, classifier.CollectFields)
	assert.Len(t, fields, 2)
	assert.Equal(t, first.TypeMask, s.TypeMask(stmt))
	assert.Equal(t, first.Canonical, s.Canonical(stmt))
	assert.Equal(t, []classifier.TableName{{Table: "t"}}, s.TableNames(stmt, classifier.CollectTables))
}

func TestClassifyCanonicalDeterminism(t *testing.T) {
	s := newSession(t)
	one := classifier.NewStatement("SELECT 1")
	two := classifier.NewStatement("SELECT  2")
	prepared := classifier.NewPreparedStatement("SELECT 1")

	assert.Equal(t, s.Canonical(one), s.Canonical(two))
	assert.NotEqual(t, s.Canonical(one), s.Canonical(prepared))
	assert.Equal(t, canonical.CanonicalizePrepared(prepared.SQL()), s.Canonical(prepared))
	assert.True(t, strings.HasSuffix(s.Canonical(prepared), canonical.PreparedSuffix))

	require.NotNil(t, one.Result())
	require.NotNil(t, prepared.Result())
	assert.Equal(t, canonical.Fingerprint(s.Canonical(prepared)), prepared.Result().Fingerprint)
	assert.NotEqual(t, one.Result().Fingerprint, prepared.Result().Fingerprint)
}

func TestClassifyExpressionArguments(t *testing.T) {
	s := newSession(t)

	t.Run("sequence in set value", func(t *testing.T) {
		stmt := classifier.NewStatement("SET @x = nextval(s)")
		st, err := s.Classify(stmt, classifier.CollectAll)
		require.NoError(t, err)
		assert.Equal(t, classifier.StatusParsed, st)
		mask := s.TypeMask(stmt)
		assert.True(t, mask.Has(classifier.TypeWrite|classifier.TypeUservarWrite), "got %s", mask)
	})

	t.Run("subquery in set value", func(t *testing.T) {
		stmt := classifier.NewStatement("SET @x = (SELECT a FROM t)")
		st, err := s.Classify(stmt, classifier.CollectAll)
		require.NoError(t, err)
		assert.Equal(t, classifier.StatusParsed, st)
		assert.Equal(t, []classifier.TableName{{Table: "t"}}, s.TableNames(stmt, classifier.CollectAll))
		_, ok := field(s.FieldInfos(stmt, classifier.CollectAll), "a")
		assert.True(t, ok)
	})

	t.Run("call arguments", func(t *testing.T) {
		stmt := classifier.NewStatement("CALL p(a + 1)")
		st, err := s.Classify(stmt, classifier.CollectAll)
		require.NoError(t, err)
		assert.Equal(t, classifier.StatusParsed, st)
		fns, _ := s.FunctionInfos(stmt, classifier.CollectAll)
		require.Len(t, fns, 1)
		assert.Equal(t, "+", fns[0].Name)
	})

	t.Run("do", func(t *testing.T) {
		stmt := classifier.NewStatement("DO sleep(1)")
		st, err := s.Classify(stmt, classifier.CollectAll)
		require.NoError(t, err)
		assert.Equal(t, classifier.StatusParsed, st)
		assert.True(t, s.TypeMask(stmt).Has(classifier.TypeRead))
	})
}

func TestClassifyExecuteImmediateReads(t *testing.T) {
	s := newSession(t)
	s.SetSQLMode(classifier.ModeOracle)

	stmt := classifier.NewStatement("EXECUTE IMMEDIATE 'SELECT ' || @x")
	st, err := s.Classify(stmt, classifier.CollectAll)
	require.NoError(t, err)
	assert.Equal(t, classifier.StatusParsed, st)
	mask := s.TypeMask(stmt)
	assert.True(t, mask.Has(classifier.TypeWrite|classifier.TypeUservarRead), "got %s", mask)
}

func TestClassifyAliasIgnoresCase(t *testing.T) {
	s := newSession(t)

	stmt := classifier.NewStatement("SELECT A.x FROM tbl AS a")
	fields := s.FieldInfos(stmt, classifier.CollectFields)
	require.Len(t, fields, 1)
	assert.Equal(t, "tbl", fields[0].Table)
	assert.Equal(t, "x", fields[0].Column)
}
