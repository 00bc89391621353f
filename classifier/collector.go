package classifier

import (
	"strings"

	"github.com/maxpert/querygate/grammar"
)

// operatorNames are the operators recorded as functions, keyed by the
// grammar's spelling. Operators not listed are walked but not recorded.
var operatorNames = map[string]string{
	"=":          "=",
	"<":          "<",
	"<=":         "<=",
	">":          ">",
	">=":         ">=",
	"<>":         "<>",
	"!=":         "<>",
	"&":          "&",
	"|":          "|",
	"/":          "/",
	"div":        "div",
	"-":          "-",
	"%":          "%",
	"mod":        "%",
	"+":          "+",
	"*":          "*",
	"like":       "like",
	"not like":   "like",
	"regexp":     "regexp",
	"not regexp": "regexp",
	"rlike":      "regexp",
	"not rlike":  "regexp",
}

var masterVariables = map[string]bool{
	"identity":       true,
	"last_gtid":      true,
	"last_insert_id": true,
}

func (p *pass) isSequenceName(name string) bool {
	switch strings.ToLower(name) {
	case "nextval", "lastval":
		return true
	case "currval":
		return p.mode == ModeOracle
	}
	return false
}

// selectStmt walks a SELECT or a UNION. Branches after the first are in a
// union; the first branch names the result columns and is walked last.
func (p *pass) selectStmt(stmt grammar.SelectStmt, ctx FieldContext, sc aliasScope) {
	p.enter()
	defer p.leave()

	switch s := stmt.(type) {
	case *grammar.Select:
		p.plainSelect(s, ctx, sc.clone())
	case *grammar.Union:
		if len(s.Selects) == 0 {
			return
		}
		restore := p.withCTEs(s.With)
		defer restore()
		for _, branch := range s.Selects[1:] {
			p.plainSelect(branch, ctx|FieldUnion, sc.clone())
		}
		first := s.Selects[0]
		inner := sc.clone()
		p.plainSelect(first, ctx&^FieldUnion, inner)
		p.exprs(s.OrderBy, ctx&^FieldUnion, inner, first.Exprs)
		p.walkCTEs(s.With, ctx, sc)
	}
}

// withCTEs puts CTE names in scope so references to them are not taken
// for tables. The returned func restores the previous scope.
func (p *pass) withCTEs(with []grammar.CTE) func() {
	if len(with) == 0 {
		return func() {}
	}
	prev := p.ctes
	next := make(map[string]bool, len(prev)+len(with))
	for k := range prev {
		next[k] = true
	}
	for _, c := range with {
		next[strings.ToLower(c.Name)] = true
	}
	p.ctes = next
	return func() { p.ctes = prev }
}

func (p *pass) walkCTEs(with []grammar.CTE, ctx FieldContext, sc aliasScope) {
	for _, c := range with {
		if c.Select != nil {
			p.selectStmt(c.Select, ctx|FieldSubquery, sc)
		}
	}
}

func (p *pass) plainSelect(s *grammar.Select, ctx FieldContext, sc aliasScope) {
	restore := p.withCTEs(s.With)
	defer restore()

	p.from(s.From, ctx, sc)
	for _, se := range s.Exprs {
		p.expr(se.Expr, ctx|FieldSelect, sc, nil)
	}
	if s.Where != nil {
		p.expr(s.Where, ctx|FieldWhere, sc, s.Exprs)
	}
	p.exprs(s.GroupBy, ctx|FieldGroupBy, sc, s.Exprs)
	if s.Having != nil {
		// HAVING only names fields already seen; walk it for the type mask
		saved := p.collect
		p.collect &^= CollectFields | CollectFunctions
		p.expr(s.Having, ctx, sc, s.Exprs)
		p.collect = saved
	}
	p.exprs(s.OrderBy, ctx, sc, s.Exprs)
	p.walkCTEs(s.With, ctx, sc)
}

// from records the tables of a FROM clause and binds their aliases.
func (p *pass) from(tables []grammar.TableExpr, ctx FieldContext, sc aliasScope) {
	for _, te := range tables {
		p.tableExpr(te, ctx, sc)
	}
}

func (p *pass) tableExpr(te grammar.TableExpr, ctx FieldContext, sc aliasScope) {
	p.enter()
	defer p.leave()

	switch t := te.(type) {
	case *grammar.AliasedTable:
		p.table(t.Table)
		if t.Alias != "" && p.collecting(CollectFields) {
			sc.bind(t.Alias, t.Table.DB, t.Table.Name)
		}
	case *grammar.DerivedTable:
		p.selectStmt(t.Select, ctx|FieldSubquery, sc)
	case *grammar.JoinExpr:
		p.tableExpr(t.Left, ctx, sc)
		p.tableExpr(t.Right, ctx, sc)
		if t.On != nil {
			p.expr(t.On, ctx|FieldWhere, sc, nil)
		}
	}
}

func (p *pass) exprs(list []grammar.Expr, ctx FieldContext, sc aliasScope, exclude []grammar.SelectExpr) {
	for _, e := range list {
		p.expr(e, ctx, sc, exclude)
	}
}

// expr collects the fields, functions and type bits of an expression.
// exclude is the select list of the enclosing SELECT: a bare name that is
// one of its aliases is not a new field.
func (p *pass) expr(e grammar.Expr, ctx FieldContext, sc aliasScope, exclude []grammar.SelectExpr) {
	if e == nil {
		return
	}
	p.enter()
	defer p.leave()

	switch x := e.(type) {
	case *grammar.Column:
		p.field(ctx, x.DB, x.Table, x.Name, sc, exclude)

	case *grammar.StringLit:
		if p.options&OptionStringAsField != 0 {
			p.field(ctx, "", "", x.Value, sc, exclude)
		}

	case *grammar.Variable:
		p.variable(x)

	case *grammar.BinaryExpr:
		if p.mode == ModeOracle && x.Op == "%" && isName(x.Left, "sql") && isName(x.Right, "rowcount") {
			p.function("sql%rowcount", sc, exclude)
			return
		}
		if name, ok := operatorNames[x.Op]; ok {
			p.function(name, sc, exclude, x.Left, x.Right)
		}
		p.expr(x.Left, ctx, sc, exclude)
		p.expr(x.Right, ctx, sc, exclude)

	case *grammar.UnaryExpr:
		p.expr(x.X, ctx, sc, exclude)

	case *grammar.BetweenExpr:
		p.function("between", sc, exclude, x.X, x.From, x.To)
		p.expr(x.X, ctx, sc, exclude)
		p.expr(x.From, ctx, sc, exclude)
		p.expr(x.To, ctx, sc, exclude)

	case *grammar.InExpr:
		args := append([]grammar.Expr{x.X}, x.List...)
		if x.Select != nil {
			args = append(args, selectList(x.Select)...)
		}
		p.function("in", sc, exclude, args...)
		p.expr(x.X, ctx, sc, exclude)
		p.exprs(x.List, ctx, sc, exclude)
		if x.Select != nil {
			p.selectStmt(x.Select, ctx|FieldSubquery, sc)
		}

	case *grammar.IsNullExpr:
		if x.Not {
			p.function("isnotnull", sc, exclude, x.X)
		} else {
			p.function("isnull", sc, exclude, x.X)
		}
		p.expr(x.X, ctx, sc, exclude)

	case *grammar.CaseExpr:
		args := []grammar.Expr{x.Operand}
		for _, w := range x.Whens {
			args = append(args, w.Cond, w.Result)
		}
		args = append(args, x.Else)
		p.function("case", sc, exclude, args...)
		p.exprs(args, ctx, sc, exclude)

	case *grammar.CastExpr:
		p.function("cast", sc, exclude, x.X)
		p.expr(x.X, ctx, sc, exclude)

	case *grammar.FuncCall:
		p.call(x, ctx, sc, exclude)

	case *grammar.Subquery:
		p.selectStmt(x.Select, ctx|FieldSubquery, sc)

	case *grammar.ExistsExpr:
		p.selectStmt(x.Select, ctx|FieldSubquery, sc)

	case *grammar.TupleExpr:
		p.exprs(x.Exprs, ctx, sc, exclude)

	case *grammar.OtherExpr:
		p.exprs(x.Children, ctx, sc, exclude)
	}
}

func (p *pass) call(f *grammar.FuncCall, ctx FieldContext, sc aliasScope, exclude []grammar.SelectExpr) {
	name := f.Name
	switch {
	case strings.EqualFold(name, "last_insert_id"):
		p.mark(TypeMasterRead)
	case p.isSequenceName(name):
		// sequence access writes and its arguments name the sequence
		p.mark(TypeWrite)
		return
	case !IsBuiltinReadonlyFunction(p.mapper.Map(name), p.version, p.mode == ModeOracle) &&
		!IsBuiltinReadonlyFunction(name, p.version, p.mode == ModeOracle):
		p.mark(TypeWrite)
	}
	if strings.EqualFold(name, "found_rows") {
		p.r.RelatesToPrevious = true
	}
	if !strings.EqualFold(name, "row") {
		p.function(name, sc, exclude, f.Args...)
	}
	p.exprs(f.Args, ctx, sc, exclude)
}

func (p *pass) variable(v *grammar.Variable) {
	switch {
	case !v.System:
		p.mark(TypeUservarRead)
	case masterVariables[strings.ToLower(v.Name)]:
		p.mark(TypeMasterRead)
	case v.Scope == grammar.ScopeGlobal:
		p.mark(TypeGsysvarRead)
	default:
		p.mark(TypeSysvarRead)
	}
}

// field records a column reference.
func (p *pass) field(ctx FieldContext, db, table, column string, sc aliasScope, exclude []grammar.SelectExpr) {
	if p.isSequenceName(column) {
		p.mark(TypeWrite)
		return
	}
	if !p.collecting(CollectFields) || column == "" {
		return
	}
	db, table = sc.resolve(db, table)
	if !p.r.hasField(db, table, column) && db == "" && table == "" && excluded(column, exclude) {
		return
	}
	p.r.addField(db, table, column, ctx)
}

func excluded(column string, exclude []grammar.SelectExpr) bool {
	for _, se := range exclude {
		if se.Alias != "" && strings.EqualFold(se.Alias, column) {
			return true
		}
	}
	return false
}

// function records a function or operator and the columns among its
// direct arguments.
func (p *pass) function(name string, sc aliasScope, exclude []grammar.SelectExpr, args ...grammar.Expr) {
	if !p.collecting(CollectFunctions) {
		return
	}
	i := p.r.addFunction(p.mapper.Map(name))
	for _, a := range args {
		db, table, column, ok := p.argField(a, exclude)
		if !ok {
			continue
		}
		db, table = sc.resolve(db, table)
		p.r.addFunctionField(i, db, table, column)
	}
}

// argField names the column an argument refers to. A bare select-list
// alias stands for the column it aliases.
func (p *pass) argField(e grammar.Expr, exclude []grammar.SelectExpr) (db, table, column string, ok bool) {
	switch x := e.(type) {
	case *grammar.Column:
		if x.DB == "" && x.Table == "" {
			for _, se := range exclude {
				if se.Alias != "" && strings.EqualFold(se.Alias, x.Name) {
					c, isCol := se.Expr.(*grammar.Column)
					if !isCol {
						return "", "", "", false
					}
					return c.DB, c.Table, c.Name, true
				}
			}
		}
		return x.DB, x.Table, x.Name, true
	case *grammar.StringLit:
		if p.options&OptionStringArgAsField != 0 {
			return "", "", x.Value, true
		}
	}
	return "", "", "", false
}

func isName(e grammar.Expr, name string) bool {
	c, ok := e.(*grammar.Column)
	return ok && c.DB == "" && c.Table == "" && strings.EqualFold(c.Name, name)
}

func selectList(s grammar.SelectStmt) []grammar.Expr {
	var sel *grammar.Select
	switch x := s.(type) {
	case *grammar.Select:
		sel = x
	case *grammar.Union:
		if len(x.Selects) > 0 {
			sel = x.Selects[0]
		}
	}
	if sel == nil {
		return nil
	}
	out := make([]grammar.Expr, 0, len(sel.Exprs))
	for _, se := range sel.Exprs {
		out = append(out, se.Expr)
	}
	return out
}
