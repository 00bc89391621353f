package grammar

// Visitor receives the productions a driver recognizes. A classifier is
// one implementation; tests use recording fakes.
//
// OnKeyword is called for the first and second keyword of a statement,
// before any full parse is attempted. Returning true tells the driver to
// stop and treat the rest of the input as consumed.
type Visitor interface {
	OnKeyword(keyword string) (stop bool)

	OnSelect(stmt SelectStmt)
	OnInsert(stmt *Insert)
	OnUpdate(stmt *Update)
	OnDelete(stmt *Delete)
	OnDDL(stmt *DDL)

	OnSet(stmt *Set)
	OnSetTransaction(stmt *SetTransaction)
	OnBegin(stmt *Begin)
	OnCommit(stmt *Commit)
	OnRollback(stmt *Rollback)
	OnSavepoint(stmt *Savepoint)

	OnPrepare(stmt *Prepare)
	OnExecute(stmt *Execute)
	OnDeallocate(stmt *Deallocate)

	OnShow(stmt *Show)
	OnUse(stmt *Use)
	OnKill(stmt *Kill)
	OnLoadData(stmt *LoadData)
	OnCall(stmt *Call)
	OnExplain(stmt *Explain)
	OnGrant(stmt *Grant)
	OnLock(stmt *Lock)
	OnDo(stmt *Do)
	OnHandler(stmt *Handler)
	OnReset(stmt *Reset)
	OnXA(stmt *XA)
	OnOther(stmt *Other)
}

func (s *Select) Accept(v Visitor)         { v.OnSelect(s) }
func (s *Union) Accept(v Visitor)          { v.OnSelect(s) }
func (s *Insert) Accept(v Visitor)         { v.OnInsert(s) }
func (s *Update) Accept(v Visitor)         { v.OnUpdate(s) }
func (s *Delete) Accept(v Visitor)         { v.OnDelete(s) }
func (s *DDL) Accept(v Visitor)            { v.OnDDL(s) }
func (s *Set) Accept(v Visitor)            { v.OnSet(s) }
func (s *SetTransaction) Accept(v Visitor) { v.OnSetTransaction(s) }
func (s *Begin) Accept(v Visitor)          { v.OnBegin(s) }
func (s *Commit) Accept(v Visitor)         { v.OnCommit(s) }
func (s *Rollback) Accept(v Visitor)       { v.OnRollback(s) }
func (s *Savepoint) Accept(v Visitor)      { v.OnSavepoint(s) }
func (s *Prepare) Accept(v Visitor)        { v.OnPrepare(s) }
func (s *Execute) Accept(v Visitor)        { v.OnExecute(s) }
func (s *Deallocate) Accept(v Visitor)     { v.OnDeallocate(s) }
func (s *Show) Accept(v Visitor)           { v.OnShow(s) }
func (s *Use) Accept(v Visitor)            { v.OnUse(s) }
func (s *Kill) Accept(v Visitor)           { v.OnKill(s) }
func (s *LoadData) Accept(v Visitor)       { v.OnLoadData(s) }
func (s *Call) Accept(v Visitor)           { v.OnCall(s) }
func (s *Explain) Accept(v Visitor)        { v.OnExplain(s) }
func (s *Grant) Accept(v Visitor)          { v.OnGrant(s) }
func (s *Lock) Accept(v Visitor)           { v.OnLock(s) }
func (s *Do) Accept(v Visitor)             { v.OnDo(s) }
func (s *Handler) Accept(v Visitor)        { v.OnHandler(s) }
func (s *Reset) Accept(v Visitor)          { v.OnReset(s) }
func (s *XA) Accept(v Visitor)             { v.OnXA(s) }
func (s *Other) Accept(v Visitor)          { v.OnOther(s) }
