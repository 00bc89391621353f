package vitess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpert/querygate/classifier"
	"github.com/maxpert/querygate/grammar"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser()
	require.NoError(t, err)
	return p
}

func TestParseSelect(t *testing.T) {
	p := newTestParser(t)

	stmt, partial, err := p.ParseStatement("SELECT a, t.b FROM db1.t WHERE c = 1", grammar.ModeDefault)
	require.NoError(t, err)
	assert.False(t, partial)

	sel, ok := stmt.(*grammar.Select)
	require.True(t, ok, "got %T", stmt)
	require.Len(t, sel.Exprs, 2)
	assert.Equal(t, &grammar.Column{Name: "a"}, sel.Exprs[0].Expr)
	assert.Equal(t, &grammar.Column{Table: "t", Name: "b"}, sel.Exprs[1].Expr)

	require.Len(t, sel.From, 1)
	assert.Equal(t, &grammar.AliasedTable{Table: grammar.TableName{DB: "db1", Name: "t"}}, sel.From[0])

	where, ok := sel.Where.(*grammar.BinaryExpr)
	require.True(t, ok, "got %T", sel.Where)
	assert.Equal(t, "=", where.Op)
	assert.Equal(t, &grammar.Column{Name: "c"}, where.Left)
}

func TestParseUnionFlattens(t *testing.T) {
	p := newTestParser(t)

	stmt, _, err := p.ParseStatement("SELECT a FROM t1 UNION SELECT b FROM t2 UNION ALL SELECT c FROM t3", grammar.ModeDefault)
	require.NoError(t, err)

	u, ok := stmt.(*grammar.Union)
	require.True(t, ok, "got %T", stmt)
	require.Len(t, u.Selects, 3)
	assert.Equal(t, &grammar.Column{Name: "a"}, u.Selects[0].Exprs[0].Expr)
	assert.Equal(t, &grammar.Column{Name: "c"}, u.Selects[2].Exprs[0].Expr)
}

func TestParseDML(t *testing.T) {
	p := newTestParser(t)

	stmt, _, err := p.ParseStatement("INSERT INTO t (a, b) VALUES (1, 'x'), (2, 'y')", grammar.ModeDefault)
	require.NoError(t, err)
	ins, ok := stmt.(*grammar.Insert)
	require.True(t, ok, "got %T", stmt)
	assert.False(t, ins.Replace)
	assert.Equal(t, grammar.TableName{Name: "t"}, ins.Table)
	assert.Equal(t, []string{"a", "b"}, ins.Columns)
	require.Len(t, ins.Rows, 2)
	assert.Equal(t, &grammar.StringLit{Value: "y"}, ins.Rows[1][1])

	stmt, _, err = p.ParseStatement("REPLACE INTO t VALUES (1)", grammar.ModeDefault)
	require.NoError(t, err)
	assert.True(t, stmt.(*grammar.Insert).Replace)

	stmt, _, err = p.ParseStatement("UPDATE t SET a = a + 1 WHERE b IN (1, 2)", grammar.ModeDefault)
	require.NoError(t, err)
	upd, ok := stmt.(*grammar.Update)
	require.True(t, ok, "got %T", stmt)
	require.Len(t, upd.Set, 1)
	assert.Equal(t, &grammar.Column{Name: "a"}, upd.Set[0].Column)
	in, ok := upd.Where.(*grammar.InExpr)
	require.True(t, ok, "got %T", upd.Where)
	assert.Len(t, in.List, 2)

	stmt, _, err = p.ParseStatement("DELETE FROM t WHERE a IS NULL", grammar.ModeDefault)
	require.NoError(t, err)
	del, ok := stmt.(*grammar.Delete)
	require.True(t, ok, "got %T", stmt)
	assert.Equal(t, &grammar.IsNullExpr{X: &grammar.Column{Name: "a"}}, del.Where)
}

func TestParseDDL(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name   string
		sql    string
		action grammar.DDLAction
		object grammar.ObjectKind
		tables []grammar.TableName
		temp   bool
	}{
		{
			name:   "create table",
			sql:    "CREATE TABLE t (a int)",
			action: grammar.DDLCreate,
			object: grammar.ObjectTable,
			tables: []grammar.TableName{{Name: "t"}},
		},
		{
			name:   "drop temporary table",
			sql:    "DROP TEMPORARY TABLE db.t1, t2",
			action: grammar.DDLDrop,
			object: grammar.ObjectTable,
			tables: []grammar.TableName{{DB: "db", Name: "t1"}, {Name: "t2"}},
			temp:   true,
		},
		{
			name:   "alter table",
			sql:    "ALTER TABLE t ADD COLUMN b int",
			action: grammar.DDLAlter,
			object: grammar.ObjectTable,
			tables: []grammar.TableName{{Name: "t"}},
		},
		{
			name:   "truncate",
			sql:    "TRUNCATE TABLE t",
			action: grammar.DDLTruncate,
			object: grammar.ObjectTable,
			tables: []grammar.TableName{{Name: "t"}},
		},
		{
			name:   "rename",
			sql:    "RENAME TABLE a TO b",
			action: grammar.DDLRename,
			object: grammar.ObjectTable,
			tables: []grammar.TableName{{Name: "a"}, {Name: "b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, _, err := p.ParseStatement(tt.sql, grammar.ModeDefault)
			require.NoError(t, err)
			ddl, ok := stmt.(*grammar.DDL)
			require.True(t, ok, "got %T", stmt)
			assert.Equal(t, tt.action, ddl.Action)
			assert.Equal(t, tt.object, ddl.Object)
			assert.Equal(t, tt.tables, ddl.Tables)
			assert.Equal(t, tt.temp, ddl.Temporary)
		})
	}
}

func TestParseCreateDatabase(t *testing.T) {
	p := newTestParser(t)

	stmt, _, err := p.ParseStatement("CREATE DATABASE shop", grammar.ModeDefault)
	require.NoError(t, err)
	ddl := stmt.(*grammar.DDL)
	assert.Equal(t, grammar.ObjectDatabase, ddl.Object)
	assert.Equal(t, "shop", ddl.Database)
}

func TestParseSyntaxError(t *testing.T) {
	p := newTestParser(t)

	_, _, err := p.ParseStatement("SELEKT nothing useful", grammar.ModeDefault)
	assert.ErrorIs(t, err, grammar.ErrSyntax)

	_, err = p.ParseExpr("1 +", grammar.ModeDefault)
	assert.ErrorIs(t, err, grammar.ErrSyntax)
}

func TestParseExprFunctions(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name string
		expr string
		fn   string
	}{
		{name: "generic", expr: "nvl(a, b)", fn: "nvl"},
		{name: "aggregate", expr: "count(*)", fn: "count"},
		{name: "sum", expr: "sum(a)", fn: "sum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := p.ParseExpr(tt.expr, grammar.ModeDefault)
			require.NoError(t, err)
			call, ok := e.(*grammar.FuncCall)
			require.True(t, ok, "got %T", e)
			assert.Equal(t, tt.fn, call.Name)
		})
	}
}

func TestBackendRegistered(t *testing.T) {
	assert.Contains(t, classifier.Backends(), Name)

	d, err := classifier.NewBackend(Name)
	require.NoError(t, err)
	assert.Equal(t, Name, d.Name())
}

func TestParseExprCompound(t *testing.T) {
	p := newTestParser(t)

	e, err := p.ParseExpr("a + 1", grammar.ModeDefault)
	require.NoError(t, err)
	bin, ok := e.(*grammar.BinaryExpr)
	require.True(t, ok, "got %T", e)
	assert.Equal(t, "+", bin.Op)

	e, err = p.ParseExpr("(SELECT a FROM t)", grammar.ModeDefault)
	require.NoError(t, err)
	sub, ok := e.(*grammar.Subquery)
	require.True(t, ok, "got %T", e)
	sel, ok := sub.Select.(*grammar.Select)
	require.True(t, ok, "got %T", sub.Select)
	require.Len(t, sel.From, 1)

	_, err = p.ParseExpr("a FROM t", grammar.ModeDefault)
	assert.ErrorIs(t, err, grammar.ErrSyntax)
}
