package classifier

import (
	"strconv"
	"strings"

	"github.com/maxpert/querygate/grammar"
)

// pass holds the state of one grammar pass over one statement. It is the
// grammar.Visitor the driver calls back into.
type pass struct {
	r       *Result
	collect Collect
	mode    SQLMode
	mapper  nameMapper
	version uint32
	options Options

	keywords int
	first    string

	parsed  bool
	partial bool
	invalid bool
	explain bool

	// dual is collected as a table only inside CREATE TABLE.
	keepDual bool
	// ctes names the common table expressions in scope.
	ctes map[string]bool

	depth    int
	maxDepth int
}

// depthExceeded aborts a pass that nests deeper than maxDepth.
type depthExceeded struct{}

func (p *pass) enter() {
	p.depth++
	if p.depth > p.maxDepth {
		panic(depthExceeded{})
	}
}

func (p *pass) leave() {
	p.depth--
}

func (p *pass) collecting(c Collect) bool {
	return p.collect&c != 0
}

// statement starts the parsed tier: the grammar recognized a statement, so
// the keyword guess is replaced.
func (p *pass) statement(op Operation) {
	p.parsed = true
	p.r.TypeMask = TypeUnknown
	p.r.Operation = op
}

func (p *pass) mark(t TypeMask) {
	p.r.TypeMask |= t
}

func (p *pass) table(t grammar.TableName) {
	if t.Name == "" {
		return
	}
	if t.DB == "" && !p.keepDual && strings.EqualFold(t.Name, "dual") {
		return
	}
	if t.DB == "" && p.ctes[strings.ToLower(t.Name)] {
		return
	}
	if p.collecting(CollectTables) {
		p.r.addTable(TableName{DB: t.DB, Table: t.Name})
	}
	if t.DB != "" && p.collecting(CollectDatabases) {
		p.r.addDatabase(t.DB)
	}
}

func (p *pass) database(db string) {
	if db != "" && p.collecting(CollectDatabases) {
		p.r.addDatabase(db)
	}
}

func (p *pass) OnSelect(stmt grammar.SelectStmt) {
	if !p.explain {
		p.statement(OpSelect)
	}
	p.mark(TypeRead)
	switch into(stmt) {
	case grammar.IntoOutfile, grammar.IntoDumpfile:
		p.r.TypeMask = p.r.TypeMask&^TypeRead | TypeWrite
	case grammar.IntoVariables:
		p.r.TypeMask = p.r.TypeMask&^TypeRead | TypeGsysvarWrite
	}
	p.selectStmt(stmt, 0, newAliasScope())
}

func into(stmt grammar.SelectStmt) grammar.IntoKind {
	switch s := stmt.(type) {
	case *grammar.Select:
		return s.Into
	case *grammar.Union:
		return s.Into
	}
	return grammar.IntoNone
}

func (p *pass) OnInsert(stmt *grammar.Insert) {
	p.statement(OpInsert)
	p.mark(TypeWrite)
	p.table(stmt.Table)

	sc := newAliasScope()
	for _, c := range stmt.Columns {
		p.field(0, "", "", c, sc, nil)
	}
	for _, row := range stmt.Rows {
		for _, e := range row {
			p.expr(e, 0, sc, nil)
		}
	}
	if stmt.Select != nil {
		p.selectStmt(stmt.Select, 0, sc)
	}
	p.assignments(stmt.Set, 0, sc)
	p.assignments(stmt.OnDup, 0, sc)
}

func (p *pass) assignments(list []grammar.Assignment, ctx FieldContext, sc aliasScope) {
	for _, a := range list {
		if a.Column != nil {
			p.expr(a.Column, ctx, sc, nil)
		}
		if a.Value != nil {
			p.expr(a.Value, ctx, sc, nil)
		}
	}
}

func (p *pass) OnUpdate(stmt *grammar.Update) {
	p.statement(OpUpdate)
	p.mark(TypeWrite)

	sc := newAliasScope()
	p.from(stmt.Tables, 0, sc)
	p.assignments(stmt.Set, FieldSet, sc)
	if stmt.Where != nil {
		p.expr(stmt.Where, FieldWhere, sc, nil)
	}
	p.exprs(stmt.OrderBy, 0, sc, nil)
}

func (p *pass) OnDelete(stmt *grammar.Delete) {
	p.statement(OpDelete)
	p.mark(TypeWrite)

	sc := newAliasScope()
	p.from(stmt.Tables, 0, sc)
	for _, t := range stmt.Targets {
		if t.DB == "" && (sc.isAlias(t.Name) || p.bound(stmt.Tables, t.Name)) {
			continue
		}
		p.table(t)
	}
	if stmt.Where != nil {
		p.expr(stmt.Where, FieldWhere, sc, nil)
	}
}

// bound reports whether name is an alias of one of tables. Aliases are only
// kept in scope while fields are collected.
func (p *pass) bound(tables []grammar.TableExpr, name string) bool {
	for _, te := range tables {
		switch t := te.(type) {
		case *grammar.AliasedTable:
			if strings.EqualFold(t.Alias, name) {
				return true
			}
		case *grammar.DerivedTable:
			if strings.EqualFold(t.Alias, name) {
				return true
			}
		case *grammar.JoinExpr:
			if p.bound([]grammar.TableExpr{t.Left, t.Right}, name) {
				return true
			}
		}
	}
	return false
}

func (p *pass) OnDDL(stmt *grammar.DDL) {
	switch stmt.Action {
	case grammar.DDLCreate:
		p.create(stmt)
	case grammar.DDLAlter:
		op := OpAlter
		if stmt.Object == grammar.ObjectTable {
			op = OpAlterTable
		}
		p.statement(op)
		p.mark(TypeWrite | TypeCommit)
		p.tables(stmt.Tables)
	case grammar.DDLDrop:
		if stmt.Object == grammar.ObjectTable {
			p.statement(OpDropTable)
			p.mark(TypeWrite)
			if !stmt.Temporary {
				p.mark(TypeCommit)
			}
		} else {
			p.statement(OpDrop)
			p.mark(TypeWrite | TypeCommit)
		}
		if stmt.Object != grammar.ObjectDatabase {
			p.tables(stmt.Tables)
		}
	case grammar.DDLRename:
		p.statement(OpAlter)
		p.mark(TypeWrite | TypeCommit)
		p.tables(stmt.Tables)
	case grammar.DDLTruncate:
		p.statement(OpTruncate)
		p.mark(TypeWrite | TypeCommit)
		p.tables(stmt.Tables)
	default:
		// ANALYZE, CHECK, OPTIMIZE, REPAIR and FLUSH
		p.statement(OpUndefined)
		p.mark(TypeWrite | TypeCommit)
		p.tables(stmt.Tables)
	}
}

func (p *pass) tables(list []grammar.TableName) {
	for _, t := range list {
		p.table(t)
	}
}

func (p *pass) create(stmt *grammar.DDL) {
	if stmt.Object != grammar.ObjectTable {
		p.statement(OpCreate)
		p.mark(TypeWrite | TypeCommit)
		if stmt.Object != grammar.ObjectDatabase {
			p.tables(stmt.Tables)
		}
		if stmt.Select != nil {
			p.selectStmt(stmt.Select, 0, newAliasScope())
		}
		return
	}

	p.statement(OpCreateTable)
	p.mark(TypeWrite)
	if stmt.Temporary {
		p.mark(TypeCreateTmpTable)
	} else {
		p.mark(TypeCommit)
	}

	if len(stmt.Tables) > 0 {
		t := stmt.Tables[0]
		p.r.CreatedTableName = TableName{DB: t.DB, Table: t.Name}.String()
		p.keepDual = true
		p.table(t)
		p.keepDual = false
	}
	if stmt.Like != nil {
		p.table(*stmt.Like)
	}
	if stmt.Select != nil {
		p.selectStmt(stmt.Select, 0, newAliasScope())
	}
}

func (p *pass) OnSet(stmt *grammar.Set) {
	p.statement(OpSet)
	switch stmt.Kind {
	case grammar.SetNames, grammar.SetRole:
		p.mark(TypeSessionWrite)
		return
	case grammar.SetPassword, grammar.SetDefaultRole:
		p.mark(TypeWrite)
		return
	}

	if stmt.Oracle {
		p.mark(TypeSessionWrite | TypeGsysvarWrite)
	} else {
		p.mark(TypeSessionWrite)
	}

	sc := newAliasScope()
	for _, a := range stmt.Assignments {
		p.setAssignment(a)
		if a.Value == nil {
			continue
		}
		if c, ok := a.Value.(*grammar.Column); ok && c.Table == "" {
			// SET x = ON and friends name a value, not a column
			continue
		}
		p.expr(a.Value, 0, sc, nil)
	}
}

func (p *pass) setAssignment(a grammar.SetAssignment) {
	v := a.Var
	switch {
	case !v.System:
		p.mark(TypeUservarWrite)
	case strings.EqualFold(v.Name, "autocommit"):
		if v.Scope == grammar.ScopeGlobal {
			p.mark(TypeGsysvarWrite)
			return
		}
		switch truth(a.Value) {
		case 0:
			p.mark(TypeGsysvarWrite | TypeBeginTrx | TypeDisableAutocommit)
		case 1:
			p.mark(TypeGsysvarWrite | TypeEnableAutocommit | TypeCommit)
		default:
			p.mark(TypeGsysvarWrite)
		}
	case v.Scope == grammar.ScopeSession:
	default:
		p.mark(TypeGsysvarWrite)
	}
}

// truth interprets an autocommit value: 1 for on, 0 for off, -1 when it
// cannot be told without evaluating it.
func truth(e grammar.Expr) int {
	var word string
	switch v := e.(type) {
	case *grammar.BoolLit:
		if v.Value {
			return 1
		}
		return 0
	case *grammar.NumberLit:
		n, err := strconv.ParseFloat(v.Text, 64)
		if err != nil {
			return -1
		}
		if n == 0 {
			return 0
		}
		return 1
	case *grammar.Column:
		word = v.Name
	case *grammar.StringLit:
		word = v.Value
	default:
		return -1
	}
	switch strings.ToLower(word) {
	case "on", "true":
		return 1
	case "off", "false":
		return 0
	}
	return -1
}

func (p *pass) OnSetTransaction(stmt *grammar.SetTransaction) {
	p.statement(OpSetTransaction)
	switch stmt.Scope {
	case grammar.ScopeGlobal:
		p.mark(TypeGsysvarWrite)
		return
	case grammar.ScopeSession:
		p.mark(TypeSessionWrite)
	default:
		p.mark(TypeNextTrx)
	}
	p.access(stmt.Access)
}

func (p *pass) access(a grammar.TxAccess) {
	switch a {
	case grammar.AccessReadOnly:
		p.mark(TypeReadOnly)
	case grammar.AccessReadWrite:
		p.mark(TypeReadWrite)
	}
}

func (p *pass) OnBegin(stmt *grammar.Begin) {
	p.statement(OpUndefined)
	if stmt.NotAtomic {
		p.mark(TypeWrite)
		return
	}
	p.mark(TypeBeginTrx)
	p.access(stmt.Access)
}

func (p *pass) OnCommit(*grammar.Commit) {
	p.statement(OpUndefined)
	p.mark(TypeCommit)
}

func (p *pass) OnRollback(stmt *grammar.Rollback) {
	p.statement(OpUndefined)
	if stmt.Savepoint != "" {
		p.mark(TypeWrite)
		return
	}
	p.mark(TypeRollback)
}

func (p *pass) OnSavepoint(*grammar.Savepoint) {
	p.statement(OpUndefined)
	p.mark(TypeWrite)
}

func (p *pass) OnPrepare(stmt *grammar.Prepare) {
	p.statement(OpUndefined)
	p.mark(TypePrepareNamedStmt)
	p.r.PrepareName = stmt.Name
	switch b := stmt.Body.(type) {
	case *grammar.StringLit:
		p.r.PreparableStmt = NewStatement(b.Value)
	case *grammar.Variable:
	default:
		p.partial = true
	}
}

func (p *pass) OnExecute(stmt *grammar.Execute) {
	if stmt.Immediate {
		if p.mode != ModeOracle {
			p.invalid = true
			return
		}
		p.statement(OpExecute)
		p.mark(TypeWrite | dynamicReads(stmt.Dynamic))
		p.exprs(stmt.Using, 0, newAliasScope(), nil)
		return
	}
	p.statement(OpExecute)
	p.mark(TypeWrite | TypePrepareStmt)
	p.r.PrepareName = stmt.Name
	p.exprs(stmt.Using, 0, newAliasScope(), nil)
}

// dynamicReads returns the variable reads of an EXECUTE IMMEDIATE string
// built from variables and concatenation.
func dynamicReads(e grammar.Expr) TypeMask {
	switch v := e.(type) {
	case *grammar.Variable:
		if v.System {
			return TypeSysvarRead
		}
		return TypeUservarRead
	case *grammar.BinaryExpr:
		// a grammar without PIPES_AS_CONCAT hands || back as or
		if v.Op == "||" || v.Op == "or" {
			return dynamicReads(v.Left) | dynamicReads(v.Right)
		}
	case *grammar.FuncCall:
		if strings.EqualFold(v.Name, "concat") {
			var m TypeMask
			for _, a := range v.Args {
				m |= dynamicReads(a)
			}
			return m
		}
	}
	return TypeUnknown
}

func (p *pass) OnDeallocate(stmt *grammar.Deallocate) {
	p.statement(OpUndefined)
	p.mark(TypeDeallocPrepare)
	p.r.PrepareName = stmt.Name
}

func (p *pass) OnShow(stmt *grammar.Show) {
	p.statement(OpShow)
	switch stmt.Kind {
	case grammar.ShowColumns:
		p.mark(TypeRead)
		p.table(stmt.Table)
		p.database(stmt.Table.DB)
	case grammar.ShowCreateTable, grammar.ShowCreateView, grammar.ShowCreateSequence:
		p.mark(TypeRead)
	case grammar.ShowDatabases:
		p.r.Operation = OpShowDatabases
		p.mark(TypeShowDatabases)
	case grammar.ShowIndex, grammar.ShowTableStatus, grammar.ShowWarnings, grammar.ShowMasterStatus:
		p.mark(TypeWrite)
	case grammar.ShowStatus:
		if stmt.Global {
			p.mark(TypeGsysvarRead)
		} else {
			p.mark(TypeRead)
		}
	case grammar.ShowTables:
		p.mark(TypeShowTables)
		p.database(stmt.DB)
	case grammar.ShowVariables:
		if stmt.Global {
			p.mark(TypeGsysvarRead)
		} else {
			p.mark(TypeSysvarRead)
		}
	default:
		p.mark(TypeRead)
	}
}

func (p *pass) OnUse(stmt *grammar.Use) {
	p.statement(OpChangeDB)
	p.mark(TypeSessionWrite)
	p.database(stmt.DB)
}

func (p *pass) OnKill(stmt *grammar.Kill) {
	p.statement(OpKill)
	p.mark(TypeWrite)
	k := &KillInfo{Target: stmt.Target, User: stmt.User, Soft: stmt.Soft}
	switch stmt.Type {
	case grammar.KillQuery:
		k.Type = KillQuery
	case grammar.KillQueryID:
		k.Type = KillQueryID
	default:
		k.Type = KillConnection
	}
	p.r.KillInfo = k
}

func (p *pass) OnLoadData(stmt *grammar.LoadData) {
	if stmt.Local {
		p.statement(OpLoadLocal)
	} else {
		p.statement(OpLoad)
	}
	p.mark(TypeWrite)
	p.table(stmt.Table)
}

func (p *pass) OnCall(stmt *grammar.Call) {
	p.statement(OpCall)
	p.mark(TypeWrite)
	p.exprs(stmt.Args, 0, newAliasScope(), nil)
}

func (p *pass) OnExplain(stmt *grammar.Explain) {
	p.statement(OpExplain)
	p.mark(TypeRead)
	if stmt.Table != nil {
		p.r.Operation = OpShow
		p.table(*stmt.Table)
		return
	}
	if sel, ok := stmt.Stmt.(grammar.SelectStmt); ok {
		p.explain = true
		sel.Accept(p)
		p.explain = false
	}
}

func (p *pass) OnGrant(stmt *grammar.Grant) {
	if stmt.Revoke {
		p.statement(OpRevoke)
	} else {
		p.statement(OpGrant)
	}
	p.mark(TypeWrite | TypeCommit)
}

func (p *pass) OnLock(stmt *grammar.Lock) {
	p.statement(OpUndefined)
	p.mark(TypeWrite)
	p.tables(stmt.Tables)
}

func (p *pass) OnDo(stmt *grammar.Do) {
	p.statement(OpUndefined)
	p.mark(TypeRead | TypeWrite)
	p.exprs(stmt.Exprs, 0, newAliasScope(), nil)
}

func (p *pass) OnHandler(stmt *grammar.Handler) {
	p.statement(OpUndefined)
	p.mark(TypeWrite)
	p.table(stmt.Table)
}

func (p *pass) OnReset(stmt *grammar.Reset) {
	p.statement(OpUndefined)
	if stmt.QueryCache {
		p.mark(TypeSessionWrite)
		return
	}
	p.mark(TypeWrite)
}

func (p *pass) OnXA(stmt *grammar.XA) {
	p.statement(OpUndefined)
	switch strings.ToLower(stmt.Verb) {
	case "start", "begin":
		p.mark(TypeBeginTrx)
	case "end":
		p.mark(TypeCommit)
	default:
		p.mark(TypeWrite)
	}
}

func (p *pass) OnOther(stmt *grammar.Other) {
	switch stmt.Keyword {
	case "declare":
		if p.mode != ModeOracle {
			p.invalid = true
			return
		}
		p.statement(OpUndefined)
		p.mark(TypeWrite)
	case "explain":
		p.statement(OpExplain)
		p.mark(TypeRead)
	default:
		// START, LOCK, UNLOCK and LOAD forms the tree does not model
		p.statement(OpUndefined)
		p.mark(TypeWrite)
	}
}
