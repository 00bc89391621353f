// Package classifier decides, without executing it, what a SQL statement
// reads and writes, which operation it performs, which objects it touches
// and what session or transaction state it changes.
package classifier

import (
	"strings"

	"github.com/maxpert/querygate/grammar"
)

// Status is how well a statement was understood. Values are ordered.
type Status int

const (
	StatusInvalid Status = iota
	StatusTokenized
	StatusPartiallyParsed
	StatusParsed
)

var statusNames = [...]string{"INVALID", "TOKENIZED", "PARTIALLY_PARSED", "PARSED"}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "UNKNOWN"
}

// Collect selects the categories a caller needs. Essentials (type mask,
// operation, canonical form) are always collected.
type Collect uint32

const (
	CollectEssentials Collect = 0
	CollectTables     Collect = 1 << 0
	CollectDatabases  Collect = 1 << 1
	CollectFields     Collect = 1 << 2
	CollectFunctions  Collect = 1 << 3
	CollectAll        Collect = CollectTables | CollectDatabases | CollectFields | CollectFunctions
)

// ParseCollect parses "all", "essentials" or a comma separated list of
// tables, databases, fields and functions.
func ParseCollect(s string) Collect {
	var c Collect
	for _, part := range strings.Split(strings.ToLower(s), ",") {
		switch strings.TrimSpace(part) {
		case "all":
			c |= CollectAll
		case "tables":
			c |= CollectTables
		case "databases":
			c |= CollectDatabases
		case "fields":
			c |= CollectFields
		case "functions":
			c |= CollectFunctions
		}
	}
	return c
}

// TypeMask describes the read/write, transaction and session semantics of
// a statement.
type TypeMask uint32

const TypeUnknown TypeMask = 0

const (
	TypeLocalRead TypeMask = 1 << iota
	TypeRead
	TypeWrite
	TypeMasterRead
	TypeSessionWrite
	TypeUservarWrite
	TypeUservarRead
	TypeSysvarRead
	TypeGsysvarRead
	TypeGsysvarWrite
	TypeBeginTrx
	TypeEnableAutocommit
	TypeDisableAutocommit
	TypeRollback
	TypeCommit
	TypePrepareNamedStmt
	TypePrepareStmt
	TypeExecStmt
	TypeCreateTmpTable
	TypeReadTmpTable
	TypeShowDatabases
	TypeShowTables
	TypeDeallocPrepare
	TypeReadOnly
	TypeReadWrite
	TypeNextTrx
)

var typeNames = []string{
	"LOCAL_READ", "READ", "WRITE", "MASTER_READ", "SESSION_WRITE", "USERVAR_WRITE",
	"USERVAR_READ", "SYSVAR_READ", "GSYSVAR_READ", "GSYSVAR_WRITE", "BEGIN_TRX",
	"ENABLE_AUTOCOMMIT", "DISABLE_AUTOCOMMIT", "ROLLBACK", "COMMIT", "PREPARE_NAMED_STMT",
	"PREPARE_STMT", "EXEC_STMT", "CREATE_TMP_TABLE", "READ_TMP_TABLE", "SHOW_DATABASES",
	"SHOW_TABLES", "DEALLOC_PREPARE", "READONLY", "READWRITE", "NEXT_TRX",
}

// Has reports whether every bit of t is set in m.
func (m TypeMask) Has(t TypeMask) bool {
	return m&t == t
}

// Names returns the names of the set bits, lowest first.
func (m TypeMask) Names() []string {
	var out []string
	for i, name := range typeNames {
		if m&(1<<i) != 0 {
			out = append(out, name)
		}
	}
	return out
}

// String renders the mask as READ|WRITE|...
func (m TypeMask) String() string {
	if m == TypeUnknown {
		return "UNKNOWN"
	}
	return strings.Join(m.Names(), "|")
}

// Operation is the high-level verb of a statement.
type Operation int

const (
	OpUndefined Operation = iota
	OpAlter
	OpAlterTable
	OpCall
	OpChangeDB
	OpCreate
	OpCreateTable
	OpDelete
	OpDrop
	OpDropTable
	OpExecute
	OpExplain
	OpGrant
	OpInsert
	OpKill
	OpLoad
	OpLoadLocal
	OpRevoke
	OpSelect
	OpSet
	OpSetTransaction
	OpShow
	OpShowDatabases
	OpTruncate
	OpUpdate
)

var operationNames = [...]string{
	"UNDEFINED", "ALTER", "ALTER_TABLE", "CALL", "CHANGE_DB", "CREATE", "CREATE_TABLE",
	"DELETE", "DROP", "DROP_TABLE", "EXECUTE", "EXPLAIN", "GRANT", "INSERT", "KILL", "LOAD",
	"LOAD_LOCAL", "REVOKE", "SELECT", "SET", "SET_TRANSACTION", "SHOW", "SHOW_DATABASES",
	"TRUNCATE", "UPDATE",
}

func (o Operation) String() string {
	if o >= 0 && int(o) < len(operationNames) {
		return operationNames[o]
	}
	return "UNDEFINED"
}

// FieldContext tags where a column was referenced.
type FieldContext uint32

const (
	FieldSelect FieldContext = 1 << iota
	FieldWhere
	FieldGroupBy
	FieldSet
	FieldSubquery
	FieldUnion
)

var contextNames = []string{"SELECT", "WHERE", "GROUP_BY", "SET", "SUBQUERY", "UNION"}

func (c FieldContext) String() string {
	var out []string
	for i, name := range contextNames {
		if c&(1<<i) != 0 {
			out = append(out, name)
		}
	}
	return strings.Join(out, "|")
}

// SQLMode selects dialect productions and the name mapping table.
type SQLMode int

const (
	ModeDefault SQLMode = iota
	ModeOracle
)

func (m SQLMode) String() string {
	return m.grammar().String()
}

func (m SQLMode) grammar() grammar.Mode {
	if m == ModeOracle {
		return grammar.ModeOracle
	}
	return grammar.ModeDefault
}

// ParseSQLMode accepts "default" and "oracle", case-insensitively.
func ParseSQLMode(s string) (SQLMode, bool) {
	switch strings.ToLower(s) {
	case "default", "":
		return ModeDefault, true
	case "oracle":
		return ModeOracle, true
	}
	return ModeDefault, false
}

// Options tweak what the collector treats as a field.
type Options uint32

const (
	// OptionStringArgAsField records quoted string function arguments as fields.
	OptionStringArgAsField Options = 1 << iota
	// OptionStringAsField records every quoted string as a field.
	OptionStringAsField
)

// ParseOptions maps configuration names to option bits, ignoring unknown ones.
func ParseOptions(names []string) Options {
	var o Options
	for _, n := range names {
		switch n {
		case "string_arg_as_field":
			o |= OptionStringArgAsField
		case "string_as_field":
			o |= OptionStringAsField
		}
	}
	return o
}

type KillType int

const (
	KillConnection KillType = iota
	KillQuery
	KillQueryID
)

func (k KillType) String() string {
	switch k {
	case KillQuery:
		return "QUERY"
	case KillQueryID:
		return "QUERY_ID"
	default:
		return "CONNECTION"
	}
}
