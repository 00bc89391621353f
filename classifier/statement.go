package classifier

// Statement is a statement buffer: the SQL text and the classification
// result it owns once it has been classified.
type Statement struct {
	sql      string
	prepared bool
	result   *Result
}

func NewStatement(sql string) *Statement {
	return &Statement{sql: sql}
}

// NewPreparedStatement returns a buffer for a statement received through
// COM_STMT_PREPARE. Its canonical form differs from the plain statement's.
func NewPreparedStatement(sql string) *Statement {
	return &Statement{sql: sql, prepared: true}
}

func (s *Statement) SQL() string {
	return s.sql
}

func (s *Statement) Prepared() bool {
	return s.prepared
}

// Result returns the attached result, or nil before the first
// classification. The result is owned by the statement.
func (s *Statement) Result() *Result {
	return s.result
}

// Reset drops the attached result so the next classification starts over.
func (s *Statement) Reset() {
	s.result = nil
}
