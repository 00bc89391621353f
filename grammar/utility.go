package grammar

import (
	"errors"
	"strings"
)

// utilityParser recognizes session, transaction and administrative
// statements directly from tokens. These carry little structure and the
// backend grammars disagree about most of them, so they are handled once
// here. Anything it does not claim falls through to the backend Parser.
type utilityParser struct {
	sql     string
	mode    Mode
	parser  Parser
	engine  *Engine
	depth   int
	toks    []Token
	pos     int
	partial bool
}

// parse returns handled=false when the statement belongs to the backend.
func (u *utilityParser) parse(toks []Token) (stmt Statement, partial bool, handled bool, err error) {
	if u.depth > MaxDepth {
		return nil, false, true, ErrTooDeep
	}
	u.toks, u.pos, u.partial = toks, 0, false

	first := u.peek()
	if u.mode == ModeOracle && len(toks) > 1 && first.IsName() && toks[1].IsPunct(":=") {
		stmt, err = u.setAssignments(true)
		return u.finish(stmt, err)
	}
	if first.Kind != TokenWord {
		return nil, false, false, nil
	}

	switch first.Value {
	case "begin":
		if u.mode == ModeOracle {
			return nil, false, false, nil
		}
		stmt = u.begin()
	case "start":
		stmt = u.start()
	case "commit":
		stmt = u.commit()
	case "rollback":
		stmt = u.rollback()
	case "savepoint":
		u.next()
		if name, ok := u.name(); ok {
			stmt = &Savepoint{Name: name}
		}
	case "release":
		u.next()
		if u.accept("savepoint") {
			if name, ok := u.name(); ok {
				stmt = &Savepoint{Name: name, Release: true}
			}
		}
	case "set":
		stmt, err = u.set()
	case "prepare":
		stmt, err = u.prepare()
	case "execute":
		stmt, err = u.execute()
	case "deallocate":
		u.next()
		if u.accept("prepare") {
			if name, ok := u.name(); ok {
				stmt = &Deallocate{Name: name}
			}
		}
	case "show":
		stmt = u.show()
	case "use":
		u.next()
		if db, ok := u.name(); ok {
			stmt = &Use{DB: db}
		}
	case "kill":
		stmt = u.kill()
	case "load":
		stmt = u.load()
	case "lock":
		stmt = u.lock()
	case "unlock":
		u.next()
		if u.acceptAny("tables", "table") != "" {
			stmt = &Lock{Unlock: true}
		} else {
			u.rest()
			stmt = &Other{Keyword: "unlock"}
		}
	case "handler":
		u.next()
		if t, ok := u.tableName(); ok {
			u.rest()
			stmt = &Handler{Table: t}
		}
	case "reset":
		u.next()
		if u.accept("query", "cache") {
			stmt = &Reset{QueryCache: true}
		} else {
			u.rest()
			stmt = &Reset{}
		}
	case "flush":
		u.next()
		u.rest()
		stmt = &DDL{Action: DDLFlush}
	case "xa":
		u.next()
		verb := u.next().Value
		u.rest()
		stmt = &XA{Verb: verb}
	case "grant", "revoke":
		u.rest()
		stmt = &Grant{Revoke: first.Value == "revoke"}
	case "rename":
		stmt = u.rename()
	case "truncate":
		u.next()
		u.accept("table")
		if t, ok := u.tableName(); ok {
			stmt = &DDL{Action: DDLTruncate, Object: ObjectTable, Tables: []TableName{t}}
		}
	case "analyze":
		stmt, err = u.analyze()
	case "optimize":
		stmt = u.tableMaintenance(DDLOptimize)
	case "check":
		stmt = u.tableMaintenance(DDLCheck)
	case "repair":
		stmt = u.tableMaintenance(DDLRepair)
	case "describe", "desc", "explain":
		stmt, err = u.explain()
	case "do":
		stmt, err = u.do()
	case "call":
		stmt, err = u.call()
	case "declare":
		u.rest()
		stmt = &Other{Keyword: "declare"}
	case "create":
		stmt = u.objectDDL(DDLCreate)
	case "alter":
		stmt = u.objectDDL(DDLAlter)
	case "drop":
		if len(toks) > 1 && toks[1].Is("prepare") {
			u.pos = 2
			if name, ok := u.name(); ok {
				stmt = &Deallocate{Name: name}
			}
		} else {
			stmt = u.objectDDL(DDLDrop)
		}
	default:
		return nil, false, false, nil
	}

	if stmt == nil && err == nil {
		if first.Value == "create" || first.Value == "alter" || first.Value == "drop" {
			return nil, false, false, nil
		}
		err = ErrSyntax
	}
	return u.finish(stmt, err)
}

func (u *utilityParser) finish(stmt Statement, err error) (Statement, bool, bool, error) {
	if err != nil {
		return nil, false, true, err
	}
	return stmt, u.partial || !u.done(), true, nil
}

func (u *utilityParser) peek() Token {
	if u.pos < len(u.toks) {
		return u.toks[u.pos]
	}
	return Token{Kind: TokenPunct}
}

func (u *utilityParser) done() bool {
	return u.pos >= len(u.toks)
}

func (u *utilityParser) next() Token {
	t := u.peek()
	if !u.done() {
		u.pos++
	}
	return t
}

// accept consumes the word sequence if it comes next.
func (u *utilityParser) accept(words ...string) bool {
	if u.pos+len(words) > len(u.toks) {
		return false
	}
	for i, w := range words {
		if !u.toks[u.pos+i].Is(w) {
			return false
		}
	}
	u.pos += len(words)
	return true
}

// acceptAny consumes one of the words and returns it, or returns "".
func (u *utilityParser) acceptAny(words ...string) string {
	t := u.peek()
	for _, w := range words {
		if t.Is(w) {
			u.pos++
			return w
		}
	}
	return ""
}

func (u *utilityParser) acceptPunct(p string) bool {
	if u.peek().IsPunct(p) {
		u.pos++
		return true
	}
	return false
}

func (u *utilityParser) name() (string, bool) {
	t := u.peek()
	if !t.IsName() {
		return "", false
	}
	u.pos++
	return t.Name(), true
}

func (u *utilityParser) tableName() (TableName, bool) {
	first, ok := u.name()
	if !ok {
		return TableName{}, false
	}
	if u.peek().IsPunct(".") {
		u.pos++
		if second, ok := u.name(); ok {
			return TableName{DB: first, Name: second}, true
		}
		u.partial = true
	}
	return TableName{Name: first}, true
}

// rest consumes and returns the remaining tokens.
func (u *utilityParser) rest() []Token {
	r := u.toks[u.pos:]
	u.pos = len(u.toks)
	return r
}

// splitTop splits toks at top-level commas.
func splitTop(toks []Token) [][]Token {
	var parts [][]Token
	depth, start := 0, 0
	for i, t := range toks {
		switch {
		case t.IsPunct("("):
			depth++
		case t.IsPunct(")"):
			depth--
		case t.IsPunct(",") && depth == 0:
			parts = append(parts, toks[start:i])
			start = i + 1
		}
	}
	if start < len(toks) {
		parts = append(parts, toks[start:])
	}
	return parts
}

func isStatementHead(t Token) bool {
	if t.IsPunct("(") {
		return true
	}
	switch t.Value {
	case "select", "insert", "update", "delete", "replace", "with", "values":
		return t.Kind == TokenWord
	}
	return false
}

func (u *utilityParser) inner(toks []Token) (Statement, error) {
	if len(toks) == 0 {
		return nil, ErrSyntax
	}
	stmt, partial, err := u.engine.parse(u.sql, toks, u.mode, u.depth+1)
	if err != nil {
		return nil, err
	}
	u.partial = u.partial || partial
	return stmt, nil
}

// value turns an assignment right-hand side or argument into an expression.
// Single tokens are translated directly; anything else goes to the backend.
func (u *utilityParser) value(toks []Token) (Expr, error) {
	if len(toks) == 0 {
		return nil, ErrSyntax
	}
	if len(toks) == 1 {
		t := toks[0]
		switch t.Kind {
		case TokenString:
			return &StringLit{Value: t.Value}, nil
		case TokenNumber:
			return &NumberLit{Text: t.Text}, nil
		case TokenVariable:
			return &Variable{Name: t.Value}, nil
		case TokenSysVariable:
			v := sysVariable(t.Value)
			return &v, nil
		case TokenPlaceholder:
			return &Placeholder{Text: t.Text}, nil
		case TokenQuotedIdent:
			return &Column{Name: t.Value}, nil
		case TokenWord:
			switch t.Value {
			case "true", "false":
				return &BoolLit{Value: t.Value == "true"}, nil
			case "null":
				return &NullLit{}, nil
			}
			return &Column{Name: t.Text}, nil
		}
	}
	return u.parser.ParseExpr(Text(u.sql, toks), u.mode)
}

// values translates each expression, marking the statement partial when
// one of them cannot be recognized.
func (u *utilityParser) values(parts [][]Token) ([]Expr, error) {
	var out []Expr
	for _, p := range parts {
		e, err := u.value(p)
		if err != nil {
			if errors.Is(err, ErrSyntax) {
				u.partial = true
				continue
			}
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func scopeOf(word string) Scope {
	switch word {
	case "global":
		return ScopeGlobal
	case "session", "local":
		return ScopeSession
	}
	return ScopeNone
}

// sysVariable splits an @@[scope.]name token value.
func sysVariable(value string) Variable {
	if i := strings.IndexByte(value, '.'); i > 0 {
		if scope := scopeOf(value[:i]); scope != ScopeNone {
			return Variable{Name: value[i+1:], System: true, Scope: scope}
		}
	}
	return Variable{Name: value, System: true}
}

func (u *utilityParser) begin() Statement {
	u.next()
	if u.accept("not", "atomic") {
		u.rest()
		return &Begin{NotAtomic: true}
	}
	u.accept("work")
	return &Begin{}
}

func (u *utilityParser) start() Statement {
	u.next()
	if !u.accept("transaction") {
		u.rest()
		return &Other{Keyword: "start"}
	}
	b := &Begin{Start: true}
	for !u.done() {
		switch {
		case u.accept("read", "only"):
			b.Access = AccessReadOnly
		case u.accept("read", "write"):
			b.Access = AccessReadWrite
		case u.accept("with", "consistent", "snapshot"), u.acceptPunct(","):
		default:
			return b
		}
	}
	return b
}

func (u *utilityParser) chainRelease() {
	if !u.accept("and", "no", "chain") {
		u.accept("and", "chain")
	}
	if !u.accept("no", "release") {
		u.accept("release")
	}
}

func (u *utilityParser) commit() Statement {
	u.next()
	u.accept("work")
	u.chainRelease()
	return &Commit{}
}

func (u *utilityParser) rollback() Statement {
	u.next()
	u.accept("work")
	if u.accept("to") {
		u.accept("savepoint")
		name, ok := u.name()
		if !ok {
			return nil
		}
		return &Rollback{Savepoint: name}
	}
	u.chainRelease()
	return &Rollback{}
}

func (u *utilityParser) set() (Statement, error) {
	u.next()
	save := u.pos
	scope := ScopeNone
	if t := u.peek(); t.Kind == TokenWord {
		scope = scopeOf(t.Value)
		if scope != ScopeNone {
			u.pos++
		}
	}
	if u.accept("transaction") {
		return u.setTransaction(scope), nil
	}
	u.pos = save

	switch {
	case u.accept("names"), u.accept("charset"), u.accept("character", "set"):
		u.rest()
		return &Set{Kind: SetNames}, nil
	case u.accept("password"):
		u.rest()
		return &Set{Kind: SetPassword}, nil
	case u.accept("default", "role"):
		u.rest()
		return &Set{Kind: SetDefaultRole}, nil
	case u.accept("role"):
		u.rest()
		return &Set{Kind: SetRole}, nil
	case u.accept("statement"):
		return u.setStatement()
	}
	return u.setAssignments(false)
}

func (u *utilityParser) setTransaction(scope Scope) Statement {
	st := &SetTransaction{Scope: scope}
	toks := u.rest()
	for i := 0; i+1 < len(toks); i++ {
		if !toks[i].Is("read") {
			continue
		}
		switch {
		case toks[i+1].Is("only"):
			st.Access = AccessReadOnly
		case toks[i+1].Is("write"):
			st.Access = AccessReadWrite
		}
	}
	return st
}

// setStatement handles SET STATEMENT var=value [, ...] FOR stmt, which
// classifies as the statement it wraps.
func (u *utilityParser) setStatement() (Statement, error) {
	depth := 0
	for i := u.pos; i < len(u.toks); i++ {
		t := u.toks[i]
		switch {
		case t.IsPunct("("):
			depth++
		case t.IsPunct(")"):
			depth--
		case t.Is("for") && depth == 0:
			inner := u.toks[i+1:]
			u.pos = len(u.toks)
			return u.inner(inner)
		}
	}
	return nil, ErrSyntax
}

func (u *utilityParser) setAssignments(oracle bool) (Statement, error) {
	set := &Set{Kind: SetVariables, Oracle: oracle}
	for _, part := range splitTop(u.rest()) {
		a, ok, err := u.assignment(part)
		if err != nil {
			return nil, err
		}
		if !ok {
			u.partial = true
			continue
		}
		set.Assignments = append(set.Assignments, a)
	}
	if len(set.Assignments) == 0 {
		return nil, ErrSyntax
	}
	return set, nil
}

func (u *utilityParser) assignment(part []Token) (SetAssignment, bool, error) {
	if len(part) < 3 {
		return SetAssignment{}, false, nil
	}
	var v Variable
	i := 1
	t := part[0]
	switch t.Kind {
	case TokenVariable:
		v = Variable{Name: t.Value}
	case TokenSysVariable:
		v = sysVariable(t.Value)
	case TokenWord, TokenQuotedIdent:
		scope := ScopeNone
		if t.Kind == TokenWord {
			scope = scopeOf(t.Value)
		}
		if scope != ScopeNone && part[1].IsName() {
			v = Variable{Name: strings.ToLower(part[1].Name()), System: true, Scope: scope}
			i = 2
		} else {
			v = Variable{Name: strings.ToLower(t.Name()), System: true}
		}
	default:
		return SetAssignment{}, false, nil
	}
	if i >= len(part) || !(part[i].IsPunct("=") || part[i].IsPunct(":=")) {
		return SetAssignment{}, false, nil
	}

	value, err := u.value(part[i+1:])
	if errors.Is(err, ErrSyntax) {
		u.partial = true
		return SetAssignment{Var: v}, true, nil
	}
	if err != nil {
		return SetAssignment{}, false, err
	}
	return SetAssignment{Var: v, Value: value}, true, nil
}

func (u *utilityParser) prepare() (Statement, error) {
	u.next()
	name, ok := u.name()
	if !ok || !u.accept("from") {
		return nil, ErrSyntax
	}
	p := &Prepare{Name: name}
	body := u.rest()
	if len(body) == 1 {
		switch body[0].Kind {
		case TokenString:
			p.Body = &StringLit{Value: body[0].Value}
		case TokenVariable:
			p.Body = &Variable{Name: body[0].Value}
		}
	}
	if p.Body == nil {
		u.partial = true
	}
	return p, nil
}

func (u *utilityParser) execute() (Statement, error) {
	u.next()
	if u.accept("immediate") {
		var dyn []Token
		for !u.done() && !u.peek().Is("using") {
			dyn = append(dyn, u.next())
		}
		e := &Execute{Immediate: true}
		var err error
		if e.Dynamic, err = u.value(dyn); err != nil {
			if !errors.Is(err, ErrSyntax) {
				return nil, err
			}
			u.partial = true
		}
		if u.accept("using") {
			if e.Using, err = u.values(splitTop(u.rest())); err != nil {
				return nil, err
			}
		}
		return e, nil
	}

	name, ok := u.name()
	if !ok {
		return nil, ErrSyntax
	}
	e := &Execute{Name: name}
	if u.accept("using") {
		var err error
		if e.Using, err = u.values(splitTop(u.rest())); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (u *utilityParser) show() Statement {
	u.next()
	s := &Show{}
	switch {
	case u.accept("global"):
		s.Global = true
	case u.accept("session"), u.accept("local"):
	}
	if u.accept("extended") {
		s.Full = u.accept("full")
	} else {
		s.Full = u.accept("full")
	}

	switch {
	case u.accept("variables"):
		s.Kind = ShowVariables
	case u.accept("status"):
		s.Kind = ShowStatus
	case u.acceptAny("columns", "fields") != "":
		s.Kind = ShowColumns
		u.showFrom(s)
	case u.accept("create"):
		switch {
		case u.accept("table"):
			s.Kind = ShowCreateTable
		case u.accept("view"):
			s.Kind = ShowCreateView
		case u.accept("sequence"):
			s.Kind = ShowCreateSequence
		default:
			u.next()
			s.Kind = ShowCreateOther
		}
		if t, ok := u.tableName(); ok {
			s.Table = t
		}
	case u.acceptAny("databases", "schemas") != "":
		s.Kind = ShowDatabases
	case u.acceptAny("index", "indexes", "keys") != "":
		s.Kind = ShowIndex
		u.showFrom(s)
	case u.accept("table", "status"):
		s.Kind = ShowTableStatus
		u.showDB(s)
	case u.accept("master", "status"), u.accept("slave", "status"),
		u.accept("binary", "status"), u.accept("replica", "status"),
		u.accept("all", "slaves", "status"):
		s.Kind = ShowMasterStatus
	case u.accept("tables"):
		s.Kind = ShowTables
		u.showDB(s)
	case u.acceptAny("warnings", "errors") != "":
		s.Kind = ShowWarnings
	default:
		s.Kind = ShowOther
	}
	u.rest()
	return s
}

func (u *utilityParser) showFrom(s *Show) {
	if u.acceptAny("from", "in") == "" {
		return
	}
	if t, ok := u.tableName(); ok {
		s.Table = t
	}
	if u.acceptAny("from", "in") != "" {
		if db, ok := u.name(); ok {
			s.Table.DB = db
		}
	}
	s.DB = s.Table.DB
}

func (u *utilityParser) showDB(s *Show) {
	if u.acceptAny("from", "in") == "" {
		return
	}
	if db, ok := u.name(); ok {
		s.DB = db
	}
}

func (u *utilityParser) kill() Statement {
	u.next()
	k := &Kill{}
	switch u.acceptAny("hard", "soft") {
	case "soft":
		k.Soft = true
	}
	switch {
	case u.accept("connection"):
		k.Type = KillConnection
	case u.accept("query", "id"):
		k.Type = KillQueryID
	case u.accept("query"):
		k.Type = KillQuery
	}
	k.User = u.accept("user")
	target := u.rest()
	if len(target) == 0 {
		return nil
	}
	k.Target = Text(u.sql, target)
	if len(target) == 1 && target[0].Kind == TokenString {
		k.Target = target[0].Value
	}
	return k
}

func (u *utilityParser) load() Statement {
	u.next()
	if u.acceptAny("data", "xml") == "" {
		u.rest()
		return &Other{Keyword: "load"}
	}
	l := &LoadData{}
	u.acceptAny("low_priority", "concurrent")
	l.Local = u.accept("local")
	if !u.accept("infile") {
		return nil
	}
	if u.peek().Kind == TokenString {
		u.next()
	}
	u.acceptAny("replace", "ignore")
	if !u.accept("into") {
		return nil
	}
	u.accept("table")
	t, ok := u.tableName()
	if !ok {
		return nil
	}
	l.Table = t
	u.rest()
	return l
}

func (u *utilityParser) lock() Statement {
	u.next()
	if u.acceptAny("tables", "table") == "" {
		u.rest()
		return &Other{Keyword: "lock"}
	}
	l := &Lock{}
	for _, part := range splitTop(u.rest()) {
		if t, ok := tableNameOf(part); ok {
			l.Tables = append(l.Tables, t)
		}
	}
	return l
}

// tableNameOf reads a [db.]table prefix from toks.
func tableNameOf(toks []Token) (TableName, bool) {
	if len(toks) == 0 || !toks[0].IsName() {
		return TableName{}, false
	}
	if len(toks) >= 3 && toks[1].IsPunct(".") && toks[2].IsName() {
		return TableName{DB: toks[0].Name(), Name: toks[2].Name()}, true
	}
	return TableName{Name: toks[0].Name()}, true
}

func (u *utilityParser) rename() Statement {
	u.next()
	if u.accept("user") {
		u.rest()
		return &DDL{Action: DDLRename, Object: ObjectUser}
	}
	if u.acceptAny("table", "tables") == "" {
		return nil
	}
	d := &DDL{Action: DDLRename, Object: ObjectTable}
	for _, part := range splitTop(u.rest()) {
		for i := 0; i < len(part); i++ {
			if i == 0 || part[i-1].Is("to") {
				if t, ok := tableNameOf(part[i:]); ok {
					d.Tables = append(d.Tables, t)
				}
			}
		}
	}
	return d
}

func (u *utilityParser) tableList() []TableName {
	var out []TableName
	for {
		t, ok := u.tableName()
		if !ok {
			return out
		}
		out = append(out, t)
		if !u.acceptPunct(",") {
			return out
		}
	}
}

func (u *utilityParser) tableMaintenance(action DDLAction) Statement {
	u.next()
	u.acceptAny("no_write_to_binlog", "local")
	if u.acceptAny("table", "tables") == "" {
		return nil
	}
	d := &DDL{Action: action, Object: ObjectTable, Tables: u.tableList()}
	u.rest()
	return d
}

func (u *utilityParser) analyze() (Statement, error) {
	u.next()
	if u.accept("format") {
		u.acceptPunct("=")
		u.next()
	}
	if isStatementHead(u.peek()) {
		stmt, err := u.inner(u.rest())
		if err != nil {
			return nil, err
		}
		return &Explain{Stmt: stmt}, nil
	}
	u.pos = 0
	return u.tableMaintenance(DDLAnalyze), nil
}

func (u *utilityParser) explain() (Statement, error) {
	u.next()
	for u.explainOption() {
	}
	if u.accept("for", "connection") {
		u.rest()
		return &Other{Keyword: "explain"}, nil
	}
	if isStatementHead(u.peek()) {
		stmt, err := u.inner(u.rest())
		if err != nil {
			return nil, err
		}
		return &Explain{Stmt: stmt}, nil
	}
	t, ok := u.tableName()
	if !ok {
		return nil, ErrSyntax
	}
	u.rest()
	return &Explain{Table: &t}, nil
}

func (u *utilityParser) explainOption() bool {
	if u.acceptAny("extended", "partitions", "analyze") != "" {
		return true
	}
	if u.accept("format") {
		u.acceptPunct("=")
		u.next()
		return true
	}
	return false
}

func (u *utilityParser) do() (Statement, error) {
	u.next()
	exprs, err := u.values(splitTop(u.rest()))
	if err != nil {
		return nil, err
	}
	if len(exprs) == 0 {
		return nil, ErrSyntax
	}
	return &Do{Exprs: exprs}, nil
}

func (u *utilityParser) call() (Statement, error) {
	u.next()
	proc, ok := u.tableName()
	if !ok {
		return nil, ErrSyntax
	}
	c := &Call{Proc: proc}
	if !u.acceptPunct("(") {
		return c, nil
	}
	var args []Token
	depth := 0
	for !u.done() {
		t := u.next()
		if t.IsPunct("(") {
			depth++
		} else if t.IsPunct(")") {
			if depth == 0 {
				var err error
				c.Args, err = u.values(splitTop(args))
				return c, err
			}
			depth--
		}
		args = append(args, t)
	}
	u.partial = true
	return c, nil
}

var ddlObjects = map[string]ObjectKind{
	"index":     ObjectIndex,
	"sequence":  ObjectSequence,
	"trigger":   ObjectTrigger,
	"procedure": ObjectRoutine,
	"function":  ObjectRoutine,
	"package":   ObjectRoutine,
	"event":     ObjectOther,
	"server":    ObjectOther,
	"synonym":   ObjectOther,
	"user":      ObjectUser,
	"role":      ObjectUser,
}

// objectDDL handles CREATE/ALTER/DROP of objects other than tables, views
// and databases, which are left to the backend. It returns nil for those.
func (u *utilityParser) objectDDL(action DDLAction) Statement {
	kind, at := ObjectOther, -1
	for i := 1; i < len(u.toks) && i < 10; i++ {
		t := u.toks[i]
		if t.Kind != TokenWord {
			continue
		}
		if t.Value == "table" || t.Value == "tables" || t.Value == "view" ||
			t.Value == "database" || t.Value == "schema" {
			return nil
		}
		if k, ok := ddlObjects[t.Value]; ok {
			kind, at = k, i
			break
		}
	}
	if at < 0 {
		return nil
	}
	u.pos = at + 1
	d := &DDL{Action: action, Object: kind, Temporary: hasWord(u.toks[:at], "temporary")}
	if !u.accept("if", "not", "exists") {
		u.accept("if", "exists")
	}

	name, ok := u.tableName()
	if !ok {
		u.rest()
		return d
	}
	switch kind {
	case ObjectSequence:
		d.Tables = append(d.Tables, name)
	case ObjectIndex:
		if u.accept("on") {
			if t, ok := u.tableName(); ok {
				d.Tables = append(d.Tables, t)
			}
		}
	}
	u.rest()
	return d
}

func hasWord(toks []Token, w string) bool {
	for _, t := range toks {
		if t.Is(w) {
			return true
		}
	}
	return false
}
