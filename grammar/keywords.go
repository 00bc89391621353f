package grammar

// keywords is the set of words treated as SQL keywords by the keyword tier
// and the canonicalizer. It covers the MariaDB/MySQL reserved words plus the
// non-reserved words that head or shape statements.
var keywords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"accessible", "action", "add", "after", "against", "aggregate", "algorithm", "all", "alter",
		"analyze", "and", "any", "as", "asc", "asensitive", "at", "atomic", "auto_increment",
		"before", "begin", "between", "bigint", "binary", "binlog", "blob", "body", "both", "by",
		"cache", "call", "cascade", "case", "cast", "chain", "change", "char", "character",
		"charset", "check", "checksum", "close", "collate", "column", "columns", "comment",
		"commit", "committed", "concurrent", "condition", "connection", "consistent", "constraint",
		"continue", "convert", "create", "cross", "cube", "current", "current_date", "current_role",
		"current_time", "current_timestamp", "current_user", "cursor", "data", "database",
		"databases", "day_hour", "day_microsecond", "day_minute", "day_second", "deallocate",
		"dec", "decimal", "declare", "default", "definer", "delayed", "delete", "desc", "describe",
		"deterministic", "distinct", "distinctrow", "div", "do", "double", "drop", "dual",
		"dumpfile", "duplicate", "each", "else", "elseif", "enclosed", "end", "engine", "errors",
		"escape", "escaped", "event", "events", "except", "exchange", "execute", "exists", "exit",
		"explain", "extended", "false", "fetch", "fields", "first", "float", "flush", "for",
		"force", "foreign", "format", "from", "full", "fulltext", "function", "general", "global",
		"grant", "grants", "group", "handler", "hard", "having", "high_priority", "hour_microsecond",
		"hour_minute", "hour_second", "identified", "if", "ignore", "immediate", "in",
		"index", "indexes", "infile", "inner", "inout", "insensitive", "insert", "int", "integer",
		"intersect", "interval", "into", "invoker", "is", "isolation", "iterate", "join", "key",
		"keys", "kill", "language", "last", "leading", "leave", "left", "level", "like", "limit",
		"linear", "lines", "load", "local", "localtime", "localtimestamp", "lock", "logs", "long",
		"loop", "low_priority", "master", "match", "minute_microsecond", "minute_second", "mod",
		"modifies", "names", "natural", "next", "no", "no_write_to_binlog", "not", "nowait", "null",
		"numeric", "of", "offset", "on", "only", "open", "optimize", "option", "optionally", "or",
		"order", "out", "outer", "outfile", "over", "package", "partition", "partitions",
		"password", "plugins", "precision", "prepare", "primary", "privileges", "procedure",
		"processlist", "profile", "purge", "query", "quick", "range", "read", "read_write",
		"reads", "real", "recursive", "references", "regexp", "release", "rename", "repair",
		"repeat", "repeatable", "replace", "require", "reset", "restrict", "return", "returning",
		"revoke", "right", "rlike", "role", "rollback", "rollup", "row", "rows", "savepoint",
		"schema", "schemas", "second_microsecond", "security", "select", "sensitive", "separator",
		"sequence", "serializable", "session", "set", "share", "show", "signal", "slave",
		"smallint", "snapshot", "soft", "spatial", "specific", "sql", "sql_big_result",
		"sql_buffer_result", "sql_cache", "sql_calc_found_rows", "sql_no_cache",
		"sql_small_result", "sqlexception", "sqlstate", "sqlwarning", "ssl", "start", "starting",
		"statement", "status", "storage", "straight_join", "table", "tables", "temporary",
		"terminated", "then", "to", "trailing", "transaction", "trigger", "true", "truncate",
		"uncommitted", "undo", "union", "unique", "unlock", "unsigned", "update", "usage", "use",
		"user", "using", "utc_date", "utc_time", "utc_timestamp", "values", "varchar", "variables",
		"varying", "view", "warnings", "when", "where", "while", "window", "with", "work", "write",
		"xa", "xml", "xor", "year_month", "zerofill",
	} {
		keywords[w] = struct{}{}
	}
}

// IsKeyword reports whether the lower-case word w is a keyword.
func IsKeyword(w string) bool {
	_, ok := keywords[w]
	return ok
}
