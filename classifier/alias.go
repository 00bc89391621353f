package classifier

import (
	"maps"
	"strings"
)

type aliasTarget struct {
	db    string
	table string
}

// aliasScope maps table aliases visible in one SELECT to the tables they
// stand for. A nested query works on a copy so its aliases do not leak out.
// Keys are lower case; alias lookup ignores case.
type aliasScope map[string]aliasTarget

func newAliasScope() aliasScope {
	return aliasScope{}
}

func (a aliasScope) clone() aliasScope {
	if a == nil {
		return aliasScope{}
	}
	return maps.Clone(a)
}

func (a aliasScope) bind(alias, db, table string) {
	if a != nil && alias != "" {
		a[strings.ToLower(alias)] = aliasTarget{db: db, table: table}
	}
}

// resolve replaces an unqualified alias with its table.
func (a aliasScope) resolve(db, table string) (string, string) {
	if db != "" || table == "" {
		return db, table
	}
	if t, ok := a[strings.ToLower(table)]; ok {
		return t.db, t.table
	}
	return db, table
}

func (a aliasScope) isAlias(name string) bool {
	_, ok := a[strings.ToLower(name)]
	return ok
}
