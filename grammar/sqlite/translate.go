package sqlite

import (
	"strings"

	rqlitesql "github.com/rqlite/sql"

	"github.com/maxpert/querygate/grammar"
)

// translator converts one rqlite tree. SELECT clauses are not told apart:
// the select list is kept, every table reference becomes a FROM item and
// the remaining expressions are gathered under WHERE.
type translator struct {
	depth int
	err   error
}

func (t *translator) enter() bool {
	t.depth++
	if t.depth > grammar.MaxDepth {
		t.err = grammar.ErrTooDeep
	}
	return t.err == nil
}

func (t *translator) leave() {
	t.depth--
}

func (t *translator) statement(stmt rqlitesql.Statement) grammar.Statement {
	switch s := stmt.(type) {
	case *rqlitesql.SelectStatement:
		return t.selectStmt(s)
	case *rqlitesql.InsertStatement:
		return t.insert(s)
	case *rqlitesql.UpdateStatement:
		out := &grammar.Update{Where: t.expr(s.WhereExpr)}
		if s.Table != nil {
			out.Tables = []grammar.TableExpr{qualified(s.Table)}
		}
		for _, a := range s.Assignments {
			value := t.expr(a.Expr)
			for _, col := range a.Columns {
				out.Set = append(out.Set, grammar.Assignment{
					Column: &grammar.Column{Name: rqlitesql.IdentName(col)},
					Value:  value,
				})
			}
		}
		return out
	case *rqlitesql.DeleteStatement:
		out := &grammar.Delete{Where: t.expr(s.WhereExpr)}
		if s.Table != nil {
			out.Tables = []grammar.TableExpr{qualified(s.Table)}
		}
		return out
	case *rqlitesql.CreateTableStatement:
		return &grammar.DDL{
			Action: grammar.DDLCreate,
			Object: grammar.ObjectTable,
			Tables: []grammar.TableName{{Name: rqlitesql.IdentName(s.Name)}},
			Select: t.nestedSelect(s),
		}
	case *rqlitesql.AlterTableStatement:
		return t.namedDDL(s, grammar.DDLAlter, grammar.ObjectTable)
	case *rqlitesql.DropTableStatement:
		return t.namedDDL(s, grammar.DDLDrop, grammar.ObjectTable)
	case *rqlitesql.CreateViewStatement:
		d := t.namedDDL(s, grammar.DDLCreate, grammar.ObjectView)
		d.Select = t.nestedSelect(s)
		return d
	case *rqlitesql.DropViewStatement:
		return t.namedDDL(s, grammar.DDLDrop, grammar.ObjectView)
	}
	return nil
}

func qualified(q *rqlitesql.QualifiedTableName) *grammar.AliasedTable {
	return &grammar.AliasedTable{
		Table: grammar.TableName{Name: q.TableName()},
		Alias: rqlitesql.IdentName(q.Alias),
	}
}

// namedDDL names the object after the first identifier of the statement.
func (t *translator) namedDDL(n rqlitesql.Node, action grammar.DDLAction, object grammar.ObjectKind) *grammar.DDL {
	d := &grammar.DDL{Action: action, Object: object}
	var name string
	walk(n, func(node rqlitesql.Node) bool {
		if name != "" {
			return false
		}
		if id, ok := node.(*rqlitesql.Ident); ok {
			name = id.Name
			return false
		}
		return true
	})
	if name != "" {
		d.Tables = []grammar.TableName{{Name: name}}
	}
	return d
}

func (t *translator) nestedSelect(n rqlitesql.Node) grammar.SelectStmt {
	var found *rqlitesql.SelectStatement
	walk(n, func(node rqlitesql.Node) bool {
		if found != nil {
			return false
		}
		if s, ok := node.(*rqlitesql.SelectStatement); ok {
			found = s
			return false
		}
		return true
	})
	if found == nil {
		return nil
	}
	return t.selectStmt(found)
}

func (t *translator) insert(s *rqlitesql.InsertStatement) *grammar.Insert {
	out := &grammar.Insert{
		Replace: s.InsertOrReplace.IsValid() || s.Replace.IsValid(),
		Table:   grammar.TableName{Name: rqlitesql.IdentName(s.Table)},
	}
	for _, col := range s.Columns {
		out.Columns = append(out.Columns, rqlitesql.IdentName(col))
	}
	for _, list := range s.ValueLists {
		out.Rows = append(out.Rows, t.exprs(list.Exprs))
	}
	if s.Select != nil {
		out.Select = t.selectStmt(s.Select)
	}
	return out
}

func (t *translator) selectStmt(s *rqlitesql.SelectStatement) *grammar.Select {
	out := &grammar.Select{}
	if !t.enter() {
		return out
	}
	defer t.leave()

	for _, rc := range s.Columns {
		if rc.Expr == nil {
			out.Exprs = append(out.Exprs, grammar.SelectExpr{Expr: &grammar.Column{Name: "*"}})
			continue
		}
		out.Exprs = append(out.Exprs, grammar.SelectExpr{Expr: t.expr(rc.Expr), Alias: rqlitesql.IdentName(rc.Alias)})
	}

	var rest []grammar.Expr
	walk(s, func(node rqlitesql.Node) bool {
		switch n := node.(type) {
		case *rqlitesql.ResultColumn:
			return false
		case *rqlitesql.QualifiedTableName:
			out.From = append(out.From, qualified(n))
			return false
		case *rqlitesql.SelectStatement:
			rest = append(rest, &grammar.Subquery{Select: t.selectStmt(n)})
			return false
		case rqlitesql.Expr:
			rest = append(rest, t.expr(n))
			return false
		}
		return true
	})
	if len(rest) > 0 {
		out.Where = &grammar.OtherExpr{Children: rest}
	}
	return out
}

func (t *translator) exprs(list []rqlitesql.Expr) []grammar.Expr {
	out := make([]grammar.Expr, 0, len(list))
	for _, e := range list {
		out = append(out, t.expr(e))
	}
	return out
}

func (t *translator) expr(e rqlitesql.Expr) grammar.Expr {
	if e == nil {
		return nil
	}
	if !t.enter() {
		return &grammar.OtherExpr{}
	}
	defer t.leave()

	switch x := e.(type) {
	case *rqlitesql.Ident:
		return &grammar.Column{Name: x.Name}
	case *rqlitesql.QualifiedRef:
		c := &grammar.Column{Table: rqlitesql.IdentName(x.Table), Name: "*"}
		if x.Column != nil {
			c.Name = x.Column.Name
		}
		return c
	case *rqlitesql.StringLit:
		return &grammar.StringLit{Value: x.Value}
	case *rqlitesql.NumberLit:
		return &grammar.NumberLit{Text: x.Value}
	case *rqlitesql.BlobLit:
		return &grammar.StringLit{Value: x.Value}
	case *rqlitesql.BoolLit:
		return &grammar.BoolLit{Value: x.Value}
	case *rqlitesql.NullLit:
		return &grammar.NullLit{}
	case *rqlitesql.BindExpr:
		return &grammar.Placeholder{Text: x.Name}
	case *rqlitesql.ParenExpr:
		return t.expr(x.X)
	case *rqlitesql.ExprList:
		return &grammar.TupleExpr{Exprs: t.exprs(x.Exprs)}
	case *rqlitesql.BinaryExpr:
		return &grammar.BinaryExpr{Op: strings.ToLower(x.Op.String()), Left: t.expr(x.X), Right: t.expr(x.Y)}
	case *rqlitesql.Call:
		return &grammar.FuncCall{Name: strings.ToLower(rqlitesql.IdentName(x.Name)), Args: t.exprs(x.Args)}
	case *rqlitesql.Exists:
		if sel := firstSelect(x); sel != nil {
			return &grammar.ExistsExpr{Select: t.selectStmt(sel)}
		}
	}
	return &grammar.OtherExpr{Children: t.children(e)}
}

// children translates the nearest expressions below n. A query nested
// there, such as the right side of IN (SELECT ...), becomes a subquery.
func (t *translator) children(n rqlitesql.Node) []grammar.Expr {
	var out []grammar.Expr
	walk(n, func(node rqlitesql.Node) bool {
		switch c := node.(type) {
		case *rqlitesql.SelectStatement:
			out = append(out, &grammar.Subquery{Select: t.selectStmt(c)})
			return false
		case rqlitesql.Expr:
			out = append(out, t.expr(c))
			return false
		}
		return true
	})
	return out
}

func firstSelect(n rqlitesql.Node) *rqlitesql.SelectStatement {
	var found *rqlitesql.SelectStatement
	walk(n, func(node rqlitesql.Node) bool {
		if found != nil {
			return false
		}
		if sel, ok := node.(*rqlitesql.SelectStatement); ok {
			found = sel
			return false
		}
		return true
	})
	return found
}

// walk calls fn for every node below root, descending while fn returns true.
func walk(root rqlitesql.Node, fn func(rqlitesql.Node) bool) {
	rqlitesql.Walk(&visitor{fn: fn}, root)
}

type visitor struct {
	started bool
	fn      func(rqlitesql.Node) bool
}

func (v *visitor) Visit(node rqlitesql.Node) (rqlitesql.Visitor, rqlitesql.Node, error) {
	if !v.started {
		v.started = true
		return v, node, nil
	}
	if !v.fn(node) {
		return nil, node, nil
	}
	return v, node, nil
}

func (v *visitor) VisitEnd(node rqlitesql.Node) (rqlitesql.Node, error) {
	return node, nil
}
