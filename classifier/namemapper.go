package classifier

import "strings"

type nameMapping struct {
	from string
	to   string
}

// nameMapper rewrites function names to their canonical spelling. The first
// case-insensitive match wins; other names pass through.
type nameMapper []nameMapping

var (
	defaultNames = nameMapper{
		{"now", "current_timestamp"},
	}
	oracleNames = nameMapper{
		{"now", "current_timestamp"},
		{"nvl", "ifnull"},
	}
)

func mapperFor(mode SQLMode) nameMapper {
	if mode == ModeOracle {
		return oracleNames
	}
	return defaultNames
}

func (m nameMapper) Map(name string) string {
	for _, e := range m {
		if strings.EqualFold(e.from, name) {
			return e.to
		}
	}
	return name
}
