// Package grammar defines the neutral parse tree that SQL grammar drivers
// produce and the callback contract they use to hand it to a classifier.
package grammar

// Mode selects dialect-specific productions.
type Mode int

const (
	ModeDefault Mode = iota
	ModeOracle
)

func (m Mode) String() string {
	if m == ModeOracle {
		return "oracle"
	}
	return "default"
}

// Scope of a system variable reference or assignment.
type Scope int

const (
	ScopeNone Scope = iota
	ScopeSession
	ScopeGlobal
)

// Node is any element of a neutral parse tree.
type Node interface {
	node()
}

// Expr is an expression node.
type Expr interface {
	Node
	expr()
}

// Statement is a complete statement production.
type Statement interface {
	Node
	Accept(v Visitor)
}

// Column is a column reference. Name is "*" for star expansions.
type Column struct {
	DB    string
	Table string
	Name  string
}

// StringLit is a quoted string literal.
type StringLit struct {
	Value string
}

// NumberLit is a numeric literal, kept in source form.
type NumberLit struct {
	Text string
}

type NullLit struct{}

// BoolLit is an unquoted TRUE or FALSE.
type BoolLit struct {
	Value bool
}

// Variable is @name (user) or @@[scope.]name / a bare name in SET (system).
type Variable struct {
	Name   string
	System bool
	Scope  Scope
}

// Placeholder is ? or an Oracle style :N parameter.
type Placeholder struct {
	Text string
}

// BinaryExpr covers comparison, arithmetic, bitwise and logical operators.
// Op is the lower-case operator spelling ("=", "<>", "and", "like", ...).
type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
}

type UnaryExpr struct {
	Op string
	X  Expr
}

type BetweenExpr struct {
	X    Expr
	From Expr
	To   Expr
	Not  bool
}

// InExpr is X [NOT] IN (list) or X [NOT] IN (subquery).
type InExpr struct {
	X      Expr
	List   []Expr
	Select SelectStmt
	Not    bool
}

// IsNullExpr is X IS [NOT] NULL.
type IsNullExpr struct {
	X   Expr
	Not bool
}

type When struct {
	Cond   Expr
	Result Expr
}

type CaseExpr struct {
	Operand Expr
	Whens   []When
	Else    Expr
}

// FuncCall is a function or aggregate invocation.
type FuncCall struct {
	Name string
	Args []Expr
}

type CastExpr struct {
	X    Expr
	Type string
}

// Subquery is a scalar or row subquery used as an expression.
type Subquery struct {
	Select SelectStmt
}

type ExistsExpr struct {
	Select SelectStmt
}

type TupleExpr struct {
	Exprs []Expr
}

// OtherExpr stands for any construct a driver does not model. Its children
// are still walked.
type OtherExpr struct {
	Children []Expr
}

func (*Column) node()      {}
func (*StringLit) node()   {}
func (*NumberLit) node()   {}
func (*NullLit) node()     {}
func (*BoolLit) node()     {}
func (*Variable) node()    {}
func (*Placeholder) node() {}
func (*BinaryExpr) node()  {}
func (*UnaryExpr) node()   {}
func (*BetweenExpr) node() {}
func (*InExpr) node()      {}
func (*IsNullExpr) node()  {}
func (*CaseExpr) node()    {}
func (*FuncCall) node()    {}
func (*CastExpr) node()    {}
func (*Subquery) node()    {}
func (*ExistsExpr) node()  {}
func (*TupleExpr) node()   {}
func (*OtherExpr) node()   {}

func (*Column) expr()      {}
func (*StringLit) expr()   {}
func (*NumberLit) expr()   {}
func (*NullLit) expr()     {}
func (*BoolLit) expr()     {}
func (*Variable) expr()    {}
func (*Placeholder) expr() {}
func (*BinaryExpr) expr()  {}
func (*UnaryExpr) expr()   {}
func (*BetweenExpr) expr() {}
func (*InExpr) expr()      {}
func (*IsNullExpr) expr()  {}
func (*CaseExpr) expr()    {}
func (*FuncCall) expr()    {}
func (*CastExpr) expr()    {}
func (*Subquery) expr()    {}
func (*ExistsExpr) expr()  {}
func (*TupleExpr) expr()   {}
func (*OtherExpr) expr()   {}

// TableName is a possibly database-qualified table reference.
type TableName struct {
	DB   string
	Name string
}

// TableExpr is an item of a FROM clause.
type TableExpr interface {
	Node
	tableExpr()
}

type AliasedTable struct {
	Table TableName
	Alias string
}

type DerivedTable struct {
	Select SelectStmt
	Alias  string
}

type JoinExpr struct {
	Left  TableExpr
	Right TableExpr
	On    Expr
	Using []string
}

func (*AliasedTable) node() {}
func (*DerivedTable) node() {}
func (*JoinExpr) node()     {}

func (*AliasedTable) tableExpr() {}
func (*DerivedTable) tableExpr() {}
func (*JoinExpr) tableExpr()     {}

// SelectStmt is a plain SELECT or a set operation over SELECTs.
type SelectStmt interface {
	Statement
	selectStmt()
}

// IntoKind describes a SELECT ... INTO target.
type IntoKind int

const (
	IntoNone IntoKind = iota
	IntoOutfile
	IntoDumpfile
	IntoVariables
)

type CTE struct {
	Name   string
	Select SelectStmt
}

type SelectExpr struct {
	Expr  Expr
	Alias string
}

type Select struct {
	With    []CTE
	Exprs   []SelectExpr
	From    []TableExpr
	Where   Expr
	GroupBy []Expr
	Having  Expr
	OrderBy []Expr
	Into    IntoKind
}

// Union is a UNION / UNION ALL / INTERSECT / EXCEPT chain, flattened in
// source order.
type Union struct {
	With    []CTE
	Selects []*Select
	OrderBy []Expr
	Into    IntoKind
}

func (*Select) node()       {}
func (*Union) node()        {}
func (*Select) selectStmt() {}
func (*Union) selectStmt()  {}

type Assignment struct {
	Column *Column
	Value  Expr
}

type Insert struct {
	Replace bool
	Table   TableName
	Columns []string
	Rows    [][]Expr
	Select  SelectStmt
	Set     []Assignment
	OnDup   []Assignment
}

type Update struct {
	Tables  []TableExpr
	Set     []Assignment
	Where   Expr
	OrderBy []Expr
}

// Delete covers single and multi-table forms. Targets holds the names
// listed before FROM (or after FROM in the USING form); Tables holds the
// table references rows are read from.
type Delete struct {
	Targets []TableName
	Tables  []TableExpr
	Where   Expr
	Using   bool
}

type DDLAction int

const (
	DDLCreate DDLAction = iota
	DDLAlter
	DDLDrop
	DDLRename
	DDLTruncate
	DDLAnalyze
	DDLOptimize
	DDLCheck
	DDLRepair
	DDLFlush
)

type ObjectKind int

const (
	ObjectOther ObjectKind = iota
	ObjectTable
	ObjectView
	ObjectIndex
	ObjectDatabase
	ObjectTrigger
	ObjectSequence
	ObjectRoutine
	ObjectUser
)

type DDL struct {
	Action    DDLAction
	Object    ObjectKind
	Tables    []TableName
	Temporary bool
	Select    SelectStmt
	Like      *TableName
	Database  string
}

type SetKind int

const (
	SetVariables SetKind = iota
	SetNames
	SetPassword
	SetDefaultRole
	SetRole
)

type SetAssignment struct {
	Var   Variable
	Value Expr
}

// Set is SET with assignments. Oracle marks the var := expr form.
type Set struct {
	Kind        SetKind
	Assignments []SetAssignment
	Oracle      bool
}

type TxAccess int

const (
	AccessNone TxAccess = iota
	AccessReadOnly
	AccessReadWrite
)

type SetTransaction struct {
	Scope  Scope
	Access TxAccess
}

type Begin struct {
	Access    TxAccess
	NotAtomic bool
	Start     bool
}

type Commit struct{}

type Rollback struct {
	Savepoint string
}

type Savepoint struct {
	Name    string
	Release bool
}

// Prepare is PREPARE name FROM body. Body is a *StringLit, a *Variable or
// nil when the body is something else.
type Prepare struct {
	Name string
	Body Expr
}

type Execute struct {
	Name      string
	Immediate bool
	Dynamic   Expr
	Using     []Expr
}

type Deallocate struct {
	Name string
}

type ShowKind int

const (
	ShowOther ShowKind = iota
	ShowColumns
	ShowCreateTable
	ShowCreateView
	ShowCreateSequence
	ShowCreateOther
	ShowDatabases
	ShowIndex
	ShowTableStatus
	ShowStatus
	ShowMasterStatus
	ShowTables
	ShowVariables
	ShowWarnings
)

type Show struct {
	Kind   ShowKind
	Global bool
	Full   bool
	Table  TableName
	DB     string
}

type Use struct {
	DB string
}

type KillType int

const (
	KillConnection KillType = iota
	KillQuery
	KillQueryID
)

type Kill struct {
	Target string
	Type   KillType
	User   bool
	Soft   bool
}

type LoadData struct {
	Local bool
	Table TableName
}

type Call struct {
	Proc TableName
	Args []Expr
}

// Explain is EXPLAIN stmt or DESCRIBE table. At most one of Stmt and
// Table is set.
type Explain struct {
	Stmt  Statement
	Table *TableName
}

type Grant struct {
	Revoke bool
}

type Lock struct {
	Unlock bool
	Tables []TableName
}

type Do struct {
	Exprs []Expr
}

type Handler struct {
	Table TableName
}

type Reset struct {
	QueryCache bool
}

type XA struct {
	Verb string
}

// Other is a recognized statement the neutral tree does not model further.
type Other struct {
	Keyword string
}

func (*Insert) node()         {}
func (*Update) node()         {}
func (*Delete) node()         {}
func (*DDL) node()            {}
func (*Set) node()            {}
func (*SetTransaction) node() {}
func (*Begin) node()          {}
func (*Commit) node()         {}
func (*Rollback) node()       {}
func (*Savepoint) node()      {}
func (*Prepare) node()        {}
func (*Execute) node()        {}
func (*Deallocate) node()     {}
func (*Show) node()           {}
func (*Use) node()            {}
func (*Kill) node()           {}
func (*LoadData) node()       {}
func (*Call) node()           {}
func (*Explain) node()        {}
func (*Grant) node()          {}
func (*Lock) node()           {}
func (*Do) node()             {}
func (*Handler) node()        {}
func (*Reset) node()          {}
func (*XA) node()             {}
func (*Other) node()          {}
