package grammar

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeParser recognizes "SELECT <column>" and bare column expressions.
type fakeParser struct {
	calls int
}

func (p *fakeParser) ParseStatement(sql string, mode Mode) (Statement, bool, error) {
	p.calls++
	f := strings.Fields(sql)
	if len(f) != 2 || !strings.EqualFold(f[0], "select") {
		return nil, false, fmt.Errorf("fake: %w", ErrSyntax)
	}
	return &Select{Exprs: []SelectExpr{{Expr: &Column{Name: f[1]}}}}, false, nil
}

func (p *fakeParser) ParseExpr(sql string, mode Mode) (Expr, error) {
	if strings.ContainsAny(sql, "!") {
		return nil, fmt.Errorf("fake: %w", ErrSyntax)
	}
	if strings.Contains(sql, "deep") {
		return nil, ErrTooDeep
	}
	return &Column{Name: sql}, nil
}

// recorder captures every callback in order.
type recorder struct {
	keywords []string
	stmts    []Statement
	stopOn   string
}

func (r *recorder) OnKeyword(kw string) bool {
	r.keywords = append(r.keywords, kw)
	return kw == r.stopOn
}

func (r *recorder) add(s Statement)                      { r.stmts = append(r.stmts, s) }
func (r *recorder) OnSelect(s SelectStmt)                { r.add(s) }
func (r *recorder) OnInsert(s *Insert)                   { r.add(s) }
func (r *recorder) OnUpdate(s *Update)                   { r.add(s) }
func (r *recorder) OnDelete(s *Delete)                   { r.add(s) }
func (r *recorder) OnDDL(s *DDL)                         { r.add(s) }
func (r *recorder) OnSet(s *Set)                         { r.add(s) }
func (r *recorder) OnSetTransaction(s *SetTransaction)   { r.add(s) }
func (r *recorder) OnBegin(s *Begin)                     { r.add(s) }
func (r *recorder) OnCommit(s *Commit)                   { r.add(s) }
func (r *recorder) OnRollback(s *Rollback)               { r.add(s) }
func (r *recorder) OnSavepoint(s *Savepoint)             { r.add(s) }
func (r *recorder) OnPrepare(s *Prepare)                 { r.add(s) }
func (r *recorder) OnExecute(s *Execute)                 { r.add(s) }
func (r *recorder) OnDeallocate(s *Deallocate)           { r.add(s) }
func (r *recorder) OnShow(s *Show)                       { r.add(s) }
func (r *recorder) OnUse(s *Use)                         { r.add(s) }
func (r *recorder) OnKill(s *Kill)                       { r.add(s) }
func (r *recorder) OnLoadData(s *LoadData)               { r.add(s) }
func (r *recorder) OnCall(s *Call)                       { r.add(s) }
func (r *recorder) OnExplain(s *Explain)                 { r.add(s) }
func (r *recorder) OnGrant(s *Grant)                     { r.add(s) }
func (r *recorder) OnLock(s *Lock)                       { r.add(s) }
func (r *recorder) OnDo(s *Do)                           { r.add(s) }
func (r *recorder) OnHandler(s *Handler)                 { r.add(s) }
func (r *recorder) OnReset(s *Reset)                     { r.add(s) }
func (r *recorder) OnXA(s *XA)                           { r.add(s) }
func (r *recorder) OnOther(s *Other)                     { r.add(s) }

func drive(t *testing.T, sql string, mode Mode) (Outcome, *recorder) {
	t.Helper()
	r := &recorder{}
	out, err := NewEngine("fake", &fakeParser{}).Drive(sql, mode, r)
	require.NoError(t, err)
	return out, r
}

func TestDriveBackendStatement(t *testing.T) {
	out, r := drive(t, "SELECT a", ModeDefault)
	assert.Equal(t, Complete, out)
	assert.Equal(t, []string{"select"}, r.keywords)
	require.Len(t, r.stmts, 1)
	assert.Equal(t, &Select{Exprs: []SelectExpr{{Expr: &Column{Name: "a"}}}}, r.stmts[0])
}

func TestDriveOutcomes(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want Outcome
	}{
		{"comment only", "/* hi */", Empty},
		{"separators only", ";;", Empty},
		{"rejected", "!!! not sql", Rejected},
		{"trailing statement", "SELECT a; SELECT b", Partial},
		{"utility complete", "COMMIT", Complete},
		{"utility trailing tokens", "COMMIT foo", Partial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := drive(t, tt.sql, ModeDefault)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestDriveKeywordStop(t *testing.T) {
	p := &fakeParser{}
	r := &recorder{stopOn: "begin"}
	out, err := NewEngine("fake", p).Drive("BEGIN x := 1; END", ModeOracle, r)
	require.NoError(t, err)
	assert.Equal(t, Rejected, out)
	assert.Empty(t, r.stmts)
	assert.Zero(t, p.calls)
}

func TestDriveTooDeep(t *testing.T) {
	r := &recorder{}
	_, err := NewEngine("fake", &fakeParser{}).Drive("SET @a = deep + 1", ModeDefault, r)
	assert.ErrorIs(t, err, ErrTooDeep)
}

func TestUtilityStatements(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		mode Mode
		want Statement
	}{
		{"begin", "BEGIN WORK", ModeDefault, &Begin{}},
		{"begin not atomic", "BEGIN NOT ATOMIC SELECT 1; END", ModeDefault, &Begin{NotAtomic: true}},
		{"start read only", "START TRANSACTION READ ONLY", ModeDefault, &Begin{Start: true, Access: AccessReadOnly}},
		{"start snapshot", "START TRANSACTION WITH CONSISTENT SNAPSHOT, READ WRITE", ModeDefault, &Begin{Start: true, Access: AccessReadWrite}},
		{"commit", "COMMIT WORK AND NO CHAIN", ModeDefault, &Commit{}},
		{"rollback", "ROLLBACK", ModeDefault, &Rollback{}},
		{"rollback to", "ROLLBACK TO SAVEPOINT sp1", ModeDefault, &Rollback{Savepoint: "sp1"}},
		{"savepoint", "SAVEPOINT sp1", ModeDefault, &Savepoint{Name: "sp1"}},
		{"release", "RELEASE SAVEPOINT sp1", ModeDefault, &Savepoint{Name: "sp1", Release: true}},
		{
			"set autocommit",
			"SET autocommit=0",
			ModeDefault,
			&Set{Assignments: []SetAssignment{{Var: Variable{Name: "autocommit", System: true}, Value: &NumberLit{Text: "0"}}}},
		},
		{
			"set global",
			"SET @@global.max_connections = 100",
			ModeDefault,
			&Set{Assignments: []SetAssignment{{Var: Variable{Name: "max_connections", System: true, Scope: ScopeGlobal}, Value: &NumberLit{Text: "100"}}}},
		},
		{
			"set session word",
			"SET SESSION sql_mode = 'ANSI', @u := b",
			ModeDefault,
			&Set{Assignments: []SetAssignment{
				{Var: Variable{Name: "sql_mode", System: true, Scope: ScopeSession}, Value: &StringLit{Value: "ANSI"}},
				{Var: Variable{Name: "u"}, Value: &Column{Name: "b"}},
			}},
		},
		{
			"set expression",
			"SET @x = a + 1",
			ModeDefault,
			&Set{Assignments: []SetAssignment{{Var: Variable{Name: "x"}, Value: &Column{Name: "a + 1"}}}},
		},
		{"set names", "SET NAMES utf8mb4", ModeDefault, &Set{Kind: SetNames}},
		{"set character set", "SET CHARACTER SET utf8", ModeDefault, &Set{Kind: SetNames}},
		{"set password", "SET PASSWORD = 'x'", ModeDefault, &Set{Kind: SetPassword}},
		{"set transaction", "SET TRANSACTION READ ONLY", ModeDefault, &SetTransaction{Access: AccessReadOnly}},
		{"set global transaction", "SET GLOBAL TRANSACTION ISOLATION LEVEL READ COMMITTED", ModeDefault, &SetTransaction{Scope: ScopeGlobal}},
		{"set statement", "SET STATEMENT max_statement_time=1 FOR SELECT a", ModeDefault, &Select{Exprs: []SelectExpr{{Expr: &Column{Name: "a"}}}}},
		{
			"oracle assignment",
			"x := 5",
			ModeOracle,
			&Set{Oracle: true, Assignments: []SetAssignment{{Var: Variable{Name: "x", System: true}, Value: &NumberLit{Text: "5"}}}},
		},
		{"prepare string", "PREPARE s FROM 'SELECT 1'", ModeDefault, &Prepare{Name: "s", Body: &StringLit{Value: "SELECT 1"}}},
		{"prepare variable", "PREPARE s FROM @q", ModeDefault, &Prepare{Name: "s", Body: &Variable{Name: "q"}}},
		{"execute", "EXECUTE s USING @a, @b", ModeDefault, &Execute{Name: "s", Using: []Expr{&Variable{Name: "a"}, &Variable{Name: "b"}}}},
		{"execute immediate", "EXECUTE IMMEDIATE @q", ModeOracle, &Execute{Immediate: true, Dynamic: &Variable{Name: "q"}}},
		{"deallocate", "DEALLOCATE PREPARE s", ModeDefault, &Deallocate{Name: "s"}},
		{"drop prepare", "DROP PREPARE s", ModeDefault, &Deallocate{Name: "s"}},
		{"show databases", "SHOW DATABASES", ModeDefault, &Show{Kind: ShowDatabases}},
		{"show full tables", "SHOW FULL TABLES FROM db1 LIKE 'a%'", ModeDefault, &Show{Kind: ShowTables, Full: true, DB: "db1"}},
		{"show columns", "SHOW COLUMNS FROM t IN db1", ModeDefault, &Show{Kind: ShowColumns, Table: TableName{DB: "db1", Name: "t"}, DB: "db1"}},
		{"show create table", "SHOW CREATE TABLE db1.t", ModeDefault, &Show{Kind: ShowCreateTable, Table: TableName{DB: "db1", Name: "t"}}},
		{"show global status", "SHOW GLOBAL STATUS", ModeDefault, &Show{Kind: ShowStatus, Global: true}},
		{"show master status", "SHOW MASTER STATUS", ModeDefault, &Show{Kind: ShowMasterStatus}},
		{"show warnings", "SHOW WARNINGS", ModeDefault, &Show{Kind: ShowWarnings}},
		{"show other", "SHOW PROCESSLIST", ModeDefault, &Show{Kind: ShowOther}},
		{"use", "USE `my db`", ModeDefault, &Use{DB: "my db"}},
		{"kill query id", "KILL QUERY ID 12", ModeDefault, &Kill{Target: "12", Type: KillQueryID}},
		{"kill soft user", "KILL SOFT CONNECTION USER 'bob'", ModeDefault, &Kill{Target: "bob", User: true, Soft: true}},
		{"load data", "LOAD DATA LOCAL INFILE '/tmp/x' INTO TABLE db1.t FIELDS TERMINATED BY ','", ModeDefault, &LoadData{Local: true, Table: TableName{DB: "db1", Name: "t"}}},
		{"lock tables", "LOCK TABLES t1 READ, db.t2 AS x WRITE", ModeDefault, &Lock{Tables: []TableName{{Name: "t1"}, {DB: "db", Name: "t2"}}}},
		{"unlock tables", "UNLOCK TABLES", ModeDefault, &Lock{Unlock: true}},
		{"reset query cache", "RESET QUERY CACHE", ModeDefault, &Reset{QueryCache: true}},
		{"xa", "XA START 'x'", ModeDefault, &XA{Verb: "start"}},
		{"grant", "GRANT SELECT ON *.* TO u", ModeDefault, &Grant{}},
		{"rename", "RENAME TABLE a TO b, c TO d", ModeDefault, &DDL{Action: DDLRename, Object: ObjectTable, Tables: []TableName{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}}}},
		{"truncate", "TRUNCATE TABLE t", ModeDefault, &DDL{Action: DDLTruncate, Object: ObjectTable, Tables: []TableName{{Name: "t"}}}},
		{"analyze table", "ANALYZE TABLE t1, t2", ModeDefault, &DDL{Action: DDLAnalyze, Object: ObjectTable, Tables: []TableName{{Name: "t1"}, {Name: "t2"}}}},
		{"analyze statement", "ANALYZE SELECT a", ModeDefault, &Explain{Stmt: &Select{Exprs: []SelectExpr{{Expr: &Column{Name: "a"}}}}}},
		{"describe", "DESCRIBE t", ModeDefault, &Explain{Table: &TableName{Name: "t"}}},
		{"explain", "EXPLAIN EXTENDED SELECT a", ModeDefault, &Explain{Stmt: &Select{Exprs: []SelectExpr{{Expr: &Column{Name: "a"}}}}}},
		{"do", "DO a, b", ModeDefault, &Do{Exprs: []Expr{&Column{Name: "a"}, &Column{Name: "b"}}}},
		{"call", "CALL db.p(1, 'x')", ModeDefault, &Call{Proc: TableName{DB: "db", Name: "p"}, Args: []Expr{&NumberLit{Text: "1"}, &StringLit{Value: "x"}}}},
		{"create index", "CREATE UNIQUE INDEX i ON t (a)", ModeDefault, &DDL{Action: DDLCreate, Object: ObjectIndex, Tables: []TableName{{Name: "t"}}}},
		{"create sequence", "CREATE SEQUENCE IF NOT EXISTS s START WITH 1", ModeDefault, &DDL{Action: DDLCreate, Object: ObjectSequence, Tables: []TableName{{Name: "s"}}}},
		{"drop procedure", "DROP PROCEDURE IF EXISTS p", ModeDefault, &DDL{Action: DDLDrop, Object: ObjectRoutine}},
		{"declare", "DECLARE x INT", ModeDefault, &Other{Keyword: "declare"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, r := drive(t, tt.sql, tt.mode)
			require.Len(t, r.stmts, 1)
			assert.Equal(t, tt.want, r.stmts[0])
			assert.NotEqual(t, Rejected, out)
		})
	}
}

func TestUtilityPartial(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{"prepare from expression", "PREPARE s FROM CONCAT('a', 'b')"},
		{"set with bad value", "SET @a = !!, @b = 1"},
		{"call without closing paren", "CALL p(1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, r := drive(t, tt.sql, ModeDefault)
			assert.Equal(t, Partial, out)
			assert.Len(t, r.stmts, 1)
		})
	}
}

func TestOracleBeginGoesToBackend(t *testing.T) {
	out, r := drive(t, "BEGIN", ModeOracle)
	assert.Equal(t, Rejected, out)
	assert.Empty(t, r.stmts)
}

func TestTableDDLGoesToBackend(t *testing.T) {
	p := &fakeParser{}
	_, err := NewEngine("fake", p).Drive("CREATE TABLE t (a int, INDEX(a))", ModeDefault, &recorder{})
	require.NoError(t, err)
	assert.Equal(t, 1, p.calls)
}
