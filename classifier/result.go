package classifier

import "strings"

// TableName is a table reference with an optional database qualifier.
type TableName struct {
	DB    string
	Table string
}

func (t TableName) String() string {
	if t.DB == "" {
		return t.Table
	}
	return t.DB + "." + t.Table
}

// FieldInfo is a referenced column and the contexts it was seen in.
type FieldInfo struct {
	DB      string
	Table   string
	Column  string
	Context FieldContext
}

func (f FieldInfo) String() string {
	switch {
	case f.DB != "":
		return f.DB + "." + f.Table + "." + f.Column
	case f.Table != "":
		return f.Table + "." + f.Column
	}
	return f.Column
}

func (f FieldInfo) matches(db, table, column string) bool {
	return strings.EqualFold(f.Column, column) &&
		strings.EqualFold(f.Table, table) &&
		strings.EqualFold(f.DB, db)
}

// FunctionInfo is a called function or operator. Fields index into the
// owning Result's FunctionFields.
type FunctionInfo struct {
	Name   string
	Fields []int
}

type KillInfo struct {
	Target string
	User   bool
	Soft   bool
	Type   KillType
}

// Result is what classification learned about one statement. Collections
// are deduplicated and keep insertion order.
type Result struct {
	Status    Status
	Collected Collect
	Requested Collect

	TypeMask  TypeMask
	Operation Operation

	Canonical   string
	Fingerprint uint64

	DatabaseNames  []string
	TableNames     []TableName
	FieldInfos     []FieldInfo
	FunctionInfos  []FunctionInfo
	FunctionFields []FieldInfo

	CreatedTableName  string
	PrepareName       string
	PreparableStmt    *Statement
	KillInfo          *KillInfo
	RelatesToPrevious bool

	Mode    SQLMode
	Options Options
}

// Fields returns the fields consumed by fn.
func (r *Result) Fields(fn FunctionInfo) []FieldInfo {
	out := make([]FieldInfo, 0, len(fn.Fields))
	for _, i := range fn.Fields {
		out = append(out, r.FunctionFields[i])
	}
	return out
}

// Clone returns a deep copy. A preparable statement is copied without its
// result.
func (r *Result) Clone() *Result {
	c := *r
	c.DatabaseNames = append([]string(nil), r.DatabaseNames...)
	c.TableNames = append([]TableName(nil), r.TableNames...)
	c.FieldInfos = append([]FieldInfo(nil), r.FieldInfos...)
	c.FunctionFields = append([]FieldInfo(nil), r.FunctionFields...)
	if r.FunctionInfos != nil {
		c.FunctionInfos = make([]FunctionInfo, len(r.FunctionInfos))
		for i, fn := range r.FunctionInfos {
			c.FunctionInfos[i] = FunctionInfo{Name: fn.Name, Fields: append([]int(nil), fn.Fields...)}
		}
	}
	if r.KillInfo != nil {
		k := *r.KillInfo
		c.KillInfo = &k
	}
	if r.PreparableStmt != nil {
		c.PreparableStmt = &Statement{sql: r.PreparableStmt.sql, prepared: r.PreparableStmt.prepared}
	}
	return &c
}

// invalidate resets the result to INVALID, keeping only the canonical form
// and what was collected.
func (r *Result) invalidate() {
	*r = Result{
		Status:      StatusInvalid,
		Collected:   r.Collected,
		Requested:   r.Requested,
		Canonical:   r.Canonical,
		Fingerprint: r.Fingerprint,
		Mode:        r.Mode,
		Options:     r.Options,
	}
}

func (r *Result) addDatabase(db string) {
	for _, d := range r.DatabaseNames {
		if d == db {
			return
		}
	}
	r.DatabaseNames = append(r.DatabaseNames, db)
}

func (r *Result) addTable(t TableName) {
	for _, e := range r.TableNames {
		if e == t {
			return
		}
	}
	r.TableNames = append(r.TableNames, t)
}

// addField records a field or widens the context of an existing one.
func (r *Result) addField(db, table, column string, ctx FieldContext) {
	for i := range r.FieldInfos {
		if r.FieldInfos[i].matches(db, table, column) {
			r.FieldInfos[i].Context |= ctx
			return
		}
	}
	r.FieldInfos = append(r.FieldInfos, FieldInfo{DB: db, Table: table, Column: column, Context: ctx})
}

func (r *Result) hasField(db, table, column string) bool {
	for _, f := range r.FieldInfos {
		if f.matches(db, table, column) {
			return true
		}
	}
	return false
}

// addFunction returns the index of name, adding it first if needed.
func (r *Result) addFunction(name string) int {
	for i, fn := range r.FunctionInfos {
		if strings.EqualFold(fn.Name, name) {
			return i
		}
	}
	r.FunctionInfos = append(r.FunctionInfos, FunctionInfo{Name: name})
	return len(r.FunctionInfos) - 1
}

func (r *Result) addFunctionField(fn int, db, table, column string) {
	for _, i := range r.FunctionInfos[fn].Fields {
		if r.FunctionFields[i].matches(db, table, column) {
			return
		}
	}
	r.FunctionFields = append(r.FunctionFields, FieldInfo{DB: db, Table: table, Column: column})
	r.FunctionInfos[fn].Fields = append(r.FunctionInfos[fn].Fields, len(r.FunctionFields)-1)
}
