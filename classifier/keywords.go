package classifier

// keywordRule is what the first keywords alone say about a statement.
type keywordRule struct {
	mask     TypeMask
	keepMask bool
	op       Operation
	keepOp   bool
}

var firstKeywordRules = map[string]keywordRule{
	"alter":    {mask: TypeWrite | TypeCommit, op: OpAlter},
	"analyze":  {mask: TypeRead, op: OpExplain},
	"call":     {mask: TypeWrite, op: OpCall},
	"create":   {mask: TypeWrite | TypeCommit, op: OpCreate},
	"delete":   {mask: TypeWrite, op: OpDelete},
	"desc":     {mask: TypeRead, op: OpExplain},
	"describe": {mask: TypeRead, op: OpExplain},
	"explain":  {mask: TypeRead, op: OpExplain},
	"drop":     {mask: TypeWrite | TypeCommit, op: OpDrop},
	"execute":  {mask: TypeWrite, op: OpExecute},
	"grant":    {mask: TypeWrite | TypeCommit, op: OpGrant},
	"handler":  {mask: TypeWrite},
	"lock":     {mask: TypeWrite},
	"optimize": {mask: TypeWrite},
	"reset":    {mask: TypeWrite},
	"start":    {mask: TypeWrite},
	"unlock":   {mask: TypeWrite},
	"xa":       {mask: TypeWrite},
	"insert":   {mask: TypeWrite, op: OpInsert},
	"replace":  {mask: TypeWrite, op: OpInsert},
	"prepare":  {mask: TypePrepareNamedStmt},
	"revoke":   {mask: TypeWrite | TypeCommit, op: OpRevoke},
	"select":   {mask: TypeRead, op: OpSelect},
	"set":      {mask: TypeSessionWrite, op: OpSet},
	"show":     {mask: TypeRead, op: OpShow},
	"truncate": {mask: TypeWrite | TypeCommit, op: OpTruncate},
	"update":   {mask: TypeWrite, op: OpUpdate},
}

// oracleBlockKeywords open a PL/SQL block in Oracle mode. The block is
// not parsed; the rest of the input belongs to it.
var oracleBlockKeywords = map[string]bool{
	"begin":   true,
	"declare": true,
	"for":     true,
}

var secondKeywordRules = map[[2]string]keywordRule{
	{"alter", "table"}:        {keepMask: true, op: OpAlterTable},
	{"check", "table"}:        {mask: TypeWrite | TypeCommit, keepOp: true},
	{"create", "table"}:       {keepMask: true, op: OpCreateTable},
	{"deallocate", "prepare"}: {mask: TypeSessionWrite, keepOp: true},
	{"drop", "table"}:         {keepMask: true, op: OpDropTable},
	{"load", "data"}:          {mask: TypeWrite, op: OpLoad},
	{"rename", "table"}:       {mask: TypeWrite | TypeCommit, keepOp: true},
	{"set", "password"}:       {mask: TypeWrite, keepOp: true},
	{"set", "statement"}:      {mask: TypeUnknown, keepOp: true},
	{"set", "transaction"}:    {keepMask: true, op: OpSetTransaction},
	{"show", "databases"}:     {mask: TypeShowDatabases, op: OpShowDatabases},
	{"show", "tables"}:        {mask: TypeShowTables, keepOp: true},
	{"start", "transaction"}:  {mask: TypeBeginTrx, keepOp: true},
	{"xa", "begin"}:           {mask: TypeBeginTrx, keepOp: true},
	{"xa", "start"}:           {mask: TypeBeginTrx, keepOp: true},
	{"xa", "end"}:             {mask: TypeCommit, keepOp: true},
}

// OnKeyword classifies from the first two keywords. This is all a
// statement gets when no grammar production accepts it.
func (p *pass) OnKeyword(keyword string) bool {
	p.keywords++
	switch p.keywords {
	case 1:
		p.first = keyword
		if p.mode == ModeOracle && oracleBlockKeywords[keyword] {
			p.r.TypeMask = TypeWrite
			p.tokenized()
			return true
		}
		if rule, ok := firstKeywordRules[keyword]; ok {
			p.apply(rule)
		}
	case 2:
		if rule, ok := secondKeywordRules[[2]string{p.first, keyword}]; ok {
			p.apply(rule)
		}
	}
	return false
}

func (p *pass) apply(rule keywordRule) {
	if !rule.keepMask {
		p.r.TypeMask = rule.mask
	}
	if !rule.keepOp {
		p.r.Operation = rule.op
	}
	p.tokenized()
}

func (p *pass) tokenized() {
	if p.r.Status < StatusTokenized {
		p.r.Status = StatusTokenized
	}
}
