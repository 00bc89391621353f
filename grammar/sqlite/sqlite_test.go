package sqlite

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpert/querygate/classifier"
	"github.com/maxpert/querygate/grammar"
)

func TestParseInsert(t *testing.T) {
	p := NewParser(nil)

	stmt, partial, err := p.ParseStatement("INSERT INTO t (a, b) VALUES (1, 'x')", grammar.ModeDefault)
	require.NoError(t, err)
	assert.False(t, partial)

	ins, ok := stmt.(*grammar.Insert)
	require.True(t, ok, "got %T", stmt)
	assert.False(t, ins.Replace)
	assert.Equal(t, grammar.TableName{Name: "t"}, ins.Table)
	assert.Equal(t, []string{"a", "b"}, ins.Columns)
	require.Len(t, ins.Rows, 1)
	assert.Equal(t, &grammar.NumberLit{Text: "1"}, ins.Rows[0][0])
	assert.Equal(t, &grammar.StringLit{Value: "x"}, ins.Rows[0][1])

	stmt, _, err = p.ParseStatement("REPLACE INTO t (a) VALUES (1)", grammar.ModeDefault)
	require.NoError(t, err)
	assert.True(t, stmt.(*grammar.Insert).Replace)
}

func TestParseUpdateDelete(t *testing.T) {
	p := NewParser(nil)

	stmt, _, err := p.ParseStatement("UPDATE t SET a = 1 WHERE id = 2", grammar.ModeDefault)
	require.NoError(t, err)
	upd, ok := stmt.(*grammar.Update)
	require.True(t, ok, "got %T", stmt)
	require.Len(t, upd.Tables, 1)
	assert.Equal(t, grammar.TableName{Name: "t"}, upd.Tables[0].(*grammar.AliasedTable).Table)
	require.Len(t, upd.Set, 1)
	assert.Equal(t, "a", upd.Set[0].Column.Name)
	where, ok := upd.Where.(*grammar.BinaryExpr)
	require.True(t, ok, "got %T", upd.Where)
	assert.Equal(t, "=", where.Op)

	stmt, _, err = p.ParseStatement("DELETE FROM t WHERE id = 1", grammar.ModeDefault)
	require.NoError(t, err)
	del, ok := stmt.(*grammar.Delete)
	require.True(t, ok, "got %T", stmt)
	require.Len(t, del.Tables, 1)
	assert.NotNil(t, del.Where)
}

func TestParseSelect(t *testing.T) {
	p := NewParser(nil)

	stmt, _, err := p.ParseStatement("SELECT a FROM t", grammar.ModeDefault)
	require.NoError(t, err)
	sel, ok := stmt.(*grammar.Select)
	require.True(t, ok, "got %T", stmt)
	require.Len(t, sel.Exprs, 1)
	assert.Equal(t, &grammar.Column{Name: "a"}, sel.Exprs[0].Expr)
	require.Len(t, sel.From, 1)
	assert.Equal(t, grammar.TableName{Name: "t"}, sel.From[0].(*grammar.AliasedTable).Table)
}

func TestParseCreateTable(t *testing.T) {
	p := NewParser(nil)

	stmt, _, err := p.ParseStatement("CREATE TABLE t (a INTEGER)", grammar.ModeDefault)
	require.NoError(t, err)
	ddl, ok := stmt.(*grammar.DDL)
	require.True(t, ok, "got %T", stmt)
	assert.Equal(t, grammar.DDLCreate, ddl.Action)
	assert.Equal(t, []grammar.TableName{{Name: "t"}}, ddl.Tables)
}

func TestParseExpr(t *testing.T) {
	p := NewParser(nil)

	e, err := p.ParseExpr("lower(a)", grammar.ModeDefault)
	require.NoError(t, err)
	call, ok := e.(*grammar.FuncCall)
	require.True(t, ok, "got %T", e)
	assert.Equal(t, "lower", call.Name)
	assert.Equal(t, []grammar.Expr{&grammar.Column{Name: "a"}}, call.Args)
}

func TestParseSyntaxError(t *testing.T) {
	p := NewParser(nil)

	_, _, err := p.ParseStatement("SELECT FROM WHERE", grammar.ModeDefault)
	assert.ErrorIs(t, err, grammar.ErrSyntax)
}

func TestChecker(t *testing.T) {
	c, err := NewChecker(2)
	require.NoError(t, err)
	defer c.Close()

	tests := []struct {
		name    string
		sql     string
		wantErr bool
	}{
		{name: "valid", sql: "SELECT 1", wantErr: false},
		{name: "missing table", sql: "SELECT a FROM missing_table", wantErr: false},
		{name: "ddl", sql: "CREATE TABLE t (a INTEGER)", wantErr: false},
		{name: "garbage", sql: "SELECT FROM WHERE", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Check(tt.sql)
			if tt.wantErr {
				assert.ErrorIs(t, err, grammar.ErrSyntax)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBackendRegistered(t *testing.T) {
	assert.Contains(t, classifier.Backends(), Name)

	d, err := classifier.NewBackend(Name)
	require.NoError(t, err)
	assert.Equal(t, Name, d.Name())
}

// nestedQueries returns the subquery and EXISTS nodes found under e.
func nestedQueries(e grammar.Expr) []grammar.Expr {
	var out []grammar.Expr
	switch x := e.(type) {
	case *grammar.Subquery, *grammar.ExistsExpr:
		out = append(out, x)
	case *grammar.BinaryExpr:
		out = append(out, nestedQueries(x.Left)...)
		out = append(out, nestedQueries(x.Right)...)
	case *grammar.UnaryExpr:
		out = append(out, nestedQueries(x.X)...)
	case *grammar.TupleExpr:
		for _, c := range x.Exprs {
			out = append(out, nestedQueries(c)...)
		}
	case *grammar.OtherExpr:
		for _, c := range x.Children {
			out = append(out, nestedQueries(c)...)
		}
	}
	return out
}

func TestParseNestedQueries(t *testing.T) {
	p := NewParser(nil)

	tests := []struct {
		name string
		sql  string
		want string
	}{
		{name: "exists", sql: "SELECT a FROM t WHERE EXISTS (SELECT b FROM u)", want: "*grammar.ExistsExpr"},
		{name: "in select", sql: "SELECT a FROM t WHERE a IN (SELECT b FROM u)", want: "*grammar.Subquery"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, _, err := p.ParseStatement(tt.sql, grammar.ModeDefault)
			require.NoError(t, err)
			sel, ok := stmt.(*grammar.Select)
			require.True(t, ok, "got %T", stmt)

			found := nestedQueries(sel.Where)
			require.Len(t, found, 1)
			assert.Equal(t, tt.want, fmt.Sprintf("%T", found[0]))

			var inner grammar.SelectStmt
			switch q := found[0].(type) {
			case *grammar.Subquery:
				inner = q.Select
			case *grammar.ExistsExpr:
				inner = q.Select
			}
			innerSel, ok := inner.(*grammar.Select)
			require.True(t, ok, "got %T", inner)
			require.Len(t, innerSel.From, 1)
			assert.Equal(t, grammar.TableName{Name: "u"}, innerSel.From[0].(*grammar.AliasedTable).Table)
		})
	}
}
