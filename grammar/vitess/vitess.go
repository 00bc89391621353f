// Package vitess is the production grammar driver. Statements the shared
// utility parser leaves alone are parsed with the vitess MySQL grammar and
// translated into neutral trees.
package vitess

import (
	"fmt"
	"strings"
	"sync"

	"vitess.io/vitess/go/vt/sqlparser"

	"github.com/maxpert/querygate/classifier"
	"github.com/maxpert/querygate/grammar"
)

const Name = "vitess"

func init() {
	classifier.RegisterBackend(Name, func() (grammar.Driver, error) {
		return New()
	})
}

var (
	parserOnce sync.Once
	parser     *sqlparser.Parser
	parserErr  error
)

// sharedParser returns the process-wide vitess parser. It only holds
// configuration, so one instance serves every driver.
func sharedParser() (*sqlparser.Parser, error) {
	parserOnce.Do(func() {
		parser, parserErr = sqlparser.New(sqlparser.Options{})
	})
	return parser, parserErr
}

// Parser translates vitess ASTs into neutral trees.
type Parser struct {
	p *sqlparser.Parser
}

// New returns a driver backed by the vitess grammar.
func New() (*grammar.Engine, error) {
	p, err := NewParser()
	if err != nil {
		return nil, err
	}
	return grammar.NewEngine(Name, p), nil
}

func NewParser() (*Parser, error) {
	p, err := sharedParser()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vitess parser: %w", err)
	}
	return &Parser{p: p}, nil
}

func (p *Parser) ParseStatement(sql string, mode grammar.Mode) (grammar.Statement, bool, error) {
	stmt, err := p.p.Parse(sql)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", grammar.ErrSyntax, err)
	}
	t := &translator{}
	out := t.statement(stmt)
	if t.err != nil {
		return nil, false, t.err
	}
	if out == nil {
		return nil, false, fmt.Errorf("%w: unsupported statement %T", grammar.ErrSyntax, stmt)
	}
	return out, false, nil
}

// ParseExpr parses a lone expression by wrapping it in a SELECT. The
// grammar fills in dual for a missing FROM, so that is the only table
// the wrapper may carry.
func (p *Parser) ParseExpr(sql string, mode grammar.Mode) (grammar.Expr, error) {
	stmt, err := p.p.Parse("SELECT " + sql)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", grammar.ErrSyntax, err)
	}
	sel, ok := stmt.(*sqlparser.Select)
	if !ok || sel.SelectExprs == nil || len(sel.SelectExprs.Exprs) != 1 || !fromDual(sel.From) {
		return nil, grammar.ErrSyntax
	}
	ae, ok := sel.SelectExprs.Exprs[0].(*sqlparser.AliasedExpr)
	if !ok {
		return nil, grammar.ErrSyntax
	}
	t := &translator{}
	e := t.expr(ae.Expr)
	if t.err != nil {
		return nil, t.err
	}
	return e, nil
}

func fromDual(from sqlparser.TableExprs) bool {
	switch len(from) {
	case 0:
		return true
	case 1:
		return strings.EqualFold(sqlparser.String(from[0]), "dual")
	}
	return false
}

// translator converts one vitess tree. It stops descending once the tree
// nests deeper than grammar.MaxDepth.
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

func (t *translator) statement(stmt sqlparser.Statement) grammar.Statement {
	switch s := stmt.(type) {
	case *sqlparser.Select, *sqlparser.Union:
		return t.selectStmt(s)
	case *sqlparser.Insert:
		return t.insert(s)
	case *sqlparser.Update:
		return t.update(s)
	case *sqlparser.Delete:
		return t.delete(s)
	case *sqlparser.CreateTable:
		d := &grammar.DDL{
			Action:    grammar.DDLCreate,
			Object:    grammar.ObjectTable,
			Tables:    []grammar.TableName{tableName(s.Table)},
			Temporary: s.Temp,
			Select:    t.nestedSelect(s),
		}
		if s.OptLike != nil {
			like := tableName(s.OptLike.LikeTable)
			d.Like = &like
		}
		return d
	case *sqlparser.AlterTable:
		return &grammar.DDL{Action: grammar.DDLAlter, Object: grammar.ObjectTable, Tables: []grammar.TableName{tableName(s.Table)}}
	case *sqlparser.DropTable:
		return &grammar.DDL{Action: grammar.DDLDrop, Object: grammar.ObjectTable, Tables: tableNames(s.FromTables), Temporary: s.Temp}
	case *sqlparser.RenameTable:
		d := &grammar.DDL{Action: grammar.DDLRename, Object: grammar.ObjectTable}
		for _, pair := range s.TablePairs {
			d.Tables = append(d.Tables, tableName(pair.FromTable), tableName(pair.ToTable))
		}
		return d
	case *sqlparser.TruncateTable:
		return &grammar.DDL{Action: grammar.DDLTruncate, Object: grammar.ObjectTable, Tables: []grammar.TableName{tableName(s.Table)}}
	case *sqlparser.CreateView:
		return &grammar.DDL{Action: grammar.DDLCreate, Object: grammar.ObjectView, Tables: []grammar.TableName{tableName(s.ViewName)}, Select: t.nestedSelect(s)}
	case *sqlparser.AlterView:
		return &grammar.DDL{Action: grammar.DDLAlter, Object: grammar.ObjectView, Tables: []grammar.TableName{tableName(s.ViewName)}, Select: t.nestedSelect(s)}
	case *sqlparser.DropView:
		return &grammar.DDL{Action: grammar.DDLDrop, Object: grammar.ObjectView, Tables: tableNames(s.FromTables)}
	case *sqlparser.CreateDatabase:
		return &grammar.DDL{Action: grammar.DDLCreate, Object: grammar.ObjectDatabase, Database: s.DBName.String()}
	case *sqlparser.AlterDatabase:
		return &grammar.DDL{Action: grammar.DDLAlter, Object: grammar.ObjectDatabase, Database: s.DBName.String()}
	case *sqlparser.DropDatabase:
		return &grammar.DDL{Action: grammar.DDLDrop, Object: grammar.ObjectDatabase, Database: s.DBName.String()}
	}
	return nil
}

func tableName(tn sqlparser.TableName) grammar.TableName {
	return grammar.TableName{DB: tn.Qualifier.String(), Name: tn.Name.String()}
}

func tableNames(list sqlparser.TableNames) []grammar.TableName {
	out := make([]grammar.TableName, 0, len(list))
	for _, tn := range list {
		out = append(out, tableName(tn))
	}
	return out
}

// nestedSelect finds the query a CREATE TABLE ... SELECT or a view
// definition carries, if any.
func (t *translator) nestedSelect(n sqlparser.SQLNode) grammar.SelectStmt {
	var found sqlparser.SQLNode
	root := true
	_ = sqlparser.Walk(func(node sqlparser.SQLNode) (bool, error) {
		if root {
			root = false
			return true, nil
		}
		if found != nil {
			return false, nil
		}
		switch node.(type) {
		case *sqlparser.Select, *sqlparser.Union:
			found = node
			return false, nil
		}
		return true, nil
	}, n)
	if found == nil {
		return nil
	}
	return t.selectStmt(found)
}

// selectStmt translates a SELECT or a set operation. Set operations are
// flattened into their branches in source order.
func (t *translator) selectStmt(n sqlparser.SQLNode) grammar.SelectStmt {
	if !t.enter() {
		return &grammar.Select{}
	}
	defer t.leave()

	switch s := n.(type) {
	case *sqlparser.Select:
		return t.plainSelect(s)
	case *sqlparser.Union:
		u := &grammar.Union{With: t.with(s.With), OrderBy: t.orderBy(s.OrderBy), Into: into(s.Into)}
		t.flatten(s.Left, u)
		t.flatten(s.Right, u)
		return u
	}
	return &grammar.Select{}
}

func (t *translator) flatten(n sqlparser.SQLNode, u *grammar.Union) {
	switch s := n.(type) {
	case *sqlparser.Select:
		u.Selects = append(u.Selects, t.plainSelect(s))
	case *sqlparser.Union:
		if !t.enter() {
			return
		}
		t.flatten(s.Left, u)
		t.flatten(s.Right, u)
		t.leave()
	}
}

func (t *translator) plainSelect(s *sqlparser.Select) *grammar.Select {
	out := &grammar.Select{
		With:    t.with(s.With),
		From:    t.tableExprs(s.From),
		OrderBy: t.orderBy(s.OrderBy),
		Into:    into(s.Into),
	}
	if s.SelectExprs != nil {
		for _, se := range s.SelectExprs.Exprs {
			out.Exprs = append(out.Exprs, t.selectExpr(se))
		}
	}
	if s.Where != nil {
		out.Where = t.expr(s.Where.Expr)
	}
	if s.GroupBy != nil {
		for _, e := range s.GroupBy.Exprs {
			out.GroupBy = append(out.GroupBy, t.expr(e))
		}
	}
	if s.Having != nil {
		out.Having = t.expr(s.Having.Expr)
	}
	return out
}

func into(n *sqlparser.SelectInto) grammar.IntoKind {
	if n == nil {
		return grammar.IntoNone
	}
	text := strings.ToLower(sqlparser.String(n))
	switch {
	case strings.Contains(text, "dumpfile"):
		return grammar.IntoDumpfile
	case strings.Contains(text, "outfile"):
		return grammar.IntoOutfile
	}
	return grammar.IntoVariables
}

func (t *translator) with(w *sqlparser.With) []grammar.CTE {
	if w == nil {
		return nil
	}
	out := make([]grammar.CTE, 0, len(w.CTEs))
	for _, cte := range w.CTEs {
		out = append(out, grammar.CTE{Name: cte.ID.String(), Select: t.selectStmt(cte.Subquery)})
	}
	return out
}

func (t *translator) orderBy(ob sqlparser.OrderBy) []grammar.Expr {
	var out []grammar.Expr
	for _, o := range ob {
		out = append(out, t.expr(o.Expr))
	}
	return out
}

func (t *translator) selectExpr(se sqlparser.SelectExpr) grammar.SelectExpr {
	switch e := se.(type) {
	case *sqlparser.AliasedExpr:
		return grammar.SelectExpr{Expr: t.expr(e.Expr), Alias: e.As.String()}
	case *sqlparser.StarExpr:
		return grammar.SelectExpr{Expr: &grammar.Column{
			DB:    e.TableName.Qualifier.String(),
			Table: e.TableName.Name.String(),
			Name:  "*",
		}}
	case *sqlparser.Nextval:
		return grammar.SelectExpr{Expr: &grammar.FuncCall{Name: "nextval", Args: []grammar.Expr{t.expr(e.Expr)}}}
	}
	return grammar.SelectExpr{Expr: &grammar.OtherExpr{}}
}

func (t *translator) tableExprs(list sqlparser.TableExprs) []grammar.TableExpr {
	var out []grammar.TableExpr
	for _, te := range list {
		out = append(out, t.tableExpr(te)...)
	}
	return out
}

func (t *translator) tableExpr(te sqlparser.TableExpr) []grammar.TableExpr {
	if !t.enter() {
		return nil
	}
	defer t.leave()

	switch e := te.(type) {
	case *sqlparser.AliasedTableExpr:
		switch x := e.Expr.(type) {
		case sqlparser.TableName:
			return []grammar.TableExpr{&grammar.AliasedTable{Table: tableName(x), Alias: e.As.String()}}
		case *sqlparser.DerivedTable:
			return []grammar.TableExpr{&grammar.DerivedTable{Select: t.selectStmt(x.Select), Alias: e.As.String()}}
		}
	case *sqlparser.JoinTableExpr:
		j := &grammar.JoinExpr{}
		if left := t.tableExpr(e.LeftExpr); len(left) == 1 {
			j.Left = left[0]
		}
		if right := t.tableExpr(e.RightExpr); len(right) == 1 {
			j.Right = right[0]
		}
		if e.Condition != nil {
			if e.Condition.On != nil {
				j.On = t.expr(e.Condition.On)
			}
			for _, c := range e.Condition.Using {
				j.Using = append(j.Using, c.String())
			}
		}
		if j.Left == nil || j.Right == nil {
			return nonNil(j.Left, j.Right)
		}
		return []grammar.TableExpr{j}
	}

	// Parenthesized and JSON_TABLE forms: keep whatever plain tables they hold.
	var out []grammar.TableExpr
	root := true
	_ = sqlparser.Walk(func(node sqlparser.SQLNode) (bool, error) {
		if root {
			root = false
			return true, nil
		}
		if inner, ok := node.(sqlparser.TableExpr); ok {
			out = append(out, t.tableExpr(inner)...)
			return false, nil
		}
		return true, nil
	}, te)
	return out
}

func nonNil(list ...grammar.TableExpr) []grammar.TableExpr {
	var out []grammar.TableExpr
	for _, te := range list {
		if te != nil {
			out = append(out, te)
		}
	}
	return out
}

func (t *translator) insert(s *sqlparser.Insert) *grammar.Insert {
	out := &grammar.Insert{Replace: s.Action == sqlparser.ReplaceAct}
	if s.Table != nil {
		if tn, ok := s.Table.Expr.(sqlparser.TableName); ok {
			out.Table = tableName(tn)
		}
	}
	for _, c := range s.Columns {
		out.Columns = append(out.Columns, c.String())
	}
	switch rows := s.Rows.(type) {
	case sqlparser.Values:
		for _, tuple := range rows {
			row := make([]grammar.Expr, 0, len(tuple))
			for _, e := range tuple {
				row = append(row, t.expr(e))
			}
			out.Rows = append(out.Rows, row)
		}
	case *sqlparser.Select, *sqlparser.Union:
		out.Select = t.selectStmt(rows)
	}
	out.OnDup = t.assignments(sqlparser.UpdateExprs(s.OnDup))
	return out
}

func (t *translator) assignments(list sqlparser.UpdateExprs) []grammar.Assignment {
	var out []grammar.Assignment
	for _, ue := range list {
		a := grammar.Assignment{Value: t.expr(ue.Expr)}
		if ue.Name != nil {
			a.Column = column(ue.Name)
		}
		out = append(out, a)
	}
	return out
}

func (t *translator) update(s *sqlparser.Update) *grammar.Update {
	out := &grammar.Update{
		Tables:  t.tableExprs(s.TableExprs),
		Set:     t.assignments(s.Exprs),
		OrderBy: t.orderBy(s.OrderBy),
	}
	if s.Where != nil {
		out.Where = t.expr(s.Where.Expr)
	}
	return out
}

func (t *translator) delete(s *sqlparser.Delete) *grammar.Delete {
	out := &grammar.Delete{
		Targets: tableNames(s.Targets),
		Tables:  t.tableExprs(s.TableExprs),
	}
	if s.Where != nil {
		out.Where = t.expr(s.Where.Expr)
	}
	return out
}

func column(c *sqlparser.ColName) *grammar.Column {
	return &grammar.Column{
		DB:    c.Qualifier.Qualifier.String(),
		Table: c.Qualifier.Name.String(),
		Name:  c.Name.String(),
	}
}

func (t *translator) exprs(list []sqlparser.Expr) []grammar.Expr {
	out := make([]grammar.Expr, 0, len(list))
	for _, e := range list {
		out = append(out, t.expr(e))
	}
	return out
}

func (t *translator) expr(e sqlparser.Expr) grammar.Expr {
	if e == nil {
		return nil
	}
	if !t.enter() {
		return &grammar.OtherExpr{}
	}
	defer t.leave()

	switch x := e.(type) {
	case *sqlparser.ColName:
		return column(x)
	case *sqlparser.Literal:
		if x.Type == sqlparser.StrVal {
			return &grammar.StringLit{Value: x.Val}
		}
		return &grammar.NumberLit{Text: x.Val}
	case *sqlparser.NullVal:
		return &grammar.NullLit{}
	case sqlparser.BoolVal:
		return &grammar.BoolLit{Value: bool(x)}
	case *sqlparser.Argument:
		return &grammar.Placeholder{Text: "?"}
	case *sqlparser.Variable:
		return variable(x)
	case *sqlparser.AndExpr:
		return &grammar.BinaryExpr{Op: "and", Left: t.expr(x.Left), Right: t.expr(x.Right)}
	case *sqlparser.OrExpr:
		return &grammar.BinaryExpr{Op: "or", Left: t.expr(x.Left), Right: t.expr(x.Right)}
	case *sqlparser.XorExpr:
		return &grammar.BinaryExpr{Op: "xor", Left: t.expr(x.Left), Right: t.expr(x.Right)}
	case *sqlparser.NotExpr:
		return &grammar.UnaryExpr{Op: "not", X: t.expr(x.Expr)}
	case *sqlparser.ComparisonExpr:
		return t.comparison(x)
	case *sqlparser.BetweenExpr:
		return &grammar.BetweenExpr{X: t.expr(x.Left), From: t.expr(x.From), To: t.expr(x.To), Not: !x.IsBetween}
	case *sqlparser.IsExpr:
		switch x.Right {
		case sqlparser.IsNullOp:
			return &grammar.IsNullExpr{X: t.expr(x.Left)}
		case sqlparser.IsNotNullOp:
			return &grammar.IsNullExpr{X: t.expr(x.Left), Not: true}
		}
		return &grammar.OtherExpr{Children: []grammar.Expr{t.expr(x.Left)}}
	case *sqlparser.BinaryExpr:
		return &grammar.BinaryExpr{Op: x.Operator.ToString(), Left: t.expr(x.Left), Right: t.expr(x.Right)}
	case *sqlparser.UnaryExpr:
		return &grammar.UnaryExpr{Op: x.Operator.ToString(), X: t.expr(x.Expr)}
	case *sqlparser.CaseExpr:
		c := &grammar.CaseExpr{Operand: t.expr(x.Expr), Else: t.expr(x.Else)}
		for _, w := range x.Whens {
			c.Whens = append(c.Whens, grammar.When{Cond: t.expr(w.Cond), Result: t.expr(w.Val)})
		}
		return c
	case *sqlparser.CastExpr:
		return &grammar.CastExpr{X: t.expr(x.Expr)}
	case *sqlparser.ConvertExpr:
		return &grammar.CastExpr{X: t.expr(x.Expr)}
	case *sqlparser.FuncExpr:
		name := x.Name.String()
		if !x.Qualifier.IsEmpty() {
			name = x.Qualifier.String() + "." + name
		}
		return &grammar.FuncCall{Name: name, Args: t.exprs(children(x))}
	case *sqlparser.Subquery:
		return &grammar.Subquery{Select: t.selectStmt(x.Select)}
	case *sqlparser.ExistsExpr:
		return &grammar.ExistsExpr{Select: t.selectStmt(x.Subquery.Select)}
	case sqlparser.ValTuple:
		return &grammar.TupleExpr{Exprs: t.exprs(x)}
	}

	// Aggregates and the many dedicated builtin nodes render as name(...).
	if name, ok := callName(e); ok {
		return &grammar.FuncCall{Name: name, Args: t.exprs(children(e))}
	}
	return &grammar.OtherExpr{Children: t.exprs(children(e))}
}

func (t *translator) comparison(x *sqlparser.ComparisonExpr) grammar.Expr {
	switch x.Operator {
	case sqlparser.InOp, sqlparser.NotInOp:
		in := &grammar.InExpr{X: t.expr(x.Left), Not: x.Operator == sqlparser.NotInOp}
		switch r := x.Right.(type) {
		case sqlparser.ValTuple:
			in.List = t.exprs(r)
		case *sqlparser.Subquery:
			in.Select = t.selectStmt(r.Select)
		default:
			in.List = []grammar.Expr{t.expr(r)}
		}
		return in
	}
	return &grammar.BinaryExpr{Op: x.Operator.ToString(), Left: t.expr(x.Left), Right: t.expr(x.Right)}
}

func variable(v *sqlparser.Variable) *grammar.Variable {
	out := &grammar.Variable{Name: v.Name.String()}
	switch v.Scope {
	case sqlparser.VariableScope:
	case sqlparser.GlobalScope:
		out.System, out.Scope = true, grammar.ScopeGlobal
	case sqlparser.SessionScope:
		out.System, out.Scope = true, grammar.ScopeSession
	default:
		out.System = true
	}
	return out
}

// children returns the nearest expressions below n.
func children(n sqlparser.SQLNode) []sqlparser.Expr {
	var out []sqlparser.Expr
	root := true
	_ = sqlparser.Walk(func(node sqlparser.SQLNode) (bool, error) {
		if root {
			root = false
			return true, nil
		}
		if e, ok := node.(sqlparser.Expr); ok {
			out = append(out, e)
			return false, nil
		}
		return true, nil
	}, n)
	return out
}

// callName extracts the function name of a node that renders as
// name(...).
func callName(n sqlparser.SQLNode) (string, bool) {
	text := sqlparser.String(n)
	i := strings.IndexByte(text, '(')
	if i <= 0 {
		return "", false
	}
	name := strings.Trim(text[:i], "`")
	for _, c := range name {
		if !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return "", false
		}
	}
	return strings.ToLower(name), true
}
