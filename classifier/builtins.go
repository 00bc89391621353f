package classifier

import "strings"

// builtinReadonly maps builtin functions that never modify data to the
// server version that introduced them. 0 means any version.
var builtinReadonly = map[string]uint32{}

// oracleReadonly holds functions only available in Oracle mode.
var oracleReadonly = map[string]uint32{
	"add_months":    100600,
	"chr":           100300,
	"decode":        100300,
	"decode_oracle": 100300,
	"instrb":        0,
	"length":        0,
	"lengthb":       0,
	"lpad":          0,
	"ltrim":         0,
	"nvl":           0,
	"nvl2":          100300,
	"rpad":          0,
	"rtrim":         0,
	"substrb":       0,
	"sys_guid":      100600,
	"to_char":       100600,
	"trunc":         0,
}

func init() {
	always := []string{
		// aggregate
		"avg", "bit_and", "bit_or", "bit_xor", "count", "group_concat", "max", "min", "std",
		"stddev", "stddev_pop", "stddev_samp", "sum", "var_pop", "var_samp", "variance",
		// comparison and control flow
		"coalesce", "greatest", "if", "ifnull", "interval", "isnull", "least", "nullif",
		"strcmp",
		// string
		"ascii", "bin", "bit_length", "char", "char_length", "character_length", "concat",
		"concat_ws", "elt", "export_set", "field", "find_in_set", "format", "hex", "insert",
		"instr", "lcase", "left", "length", "like", "load_file", "locate", "lower", "lpad",
		"ltrim", "make_set", "match", "mid", "oct", "octet_length", "ord", "position", "quote",
		"regexp", "repeat", "replace", "reverse", "right", "rlike", "rpad", "rtrim", "soundex",
		"space", "substr", "substring", "substring_index", "trim", "ucase", "unhex", "upper",
		"weight_string", "collation", "charset", "coercibility", "convert",
		// numeric
		"abs", "acos", "asin", "atan", "atan2", "ceil", "ceiling", "conv", "cos", "cot",
		"crc32", "degrees", "div", "exp", "floor", "ln", "log", "log10", "log2", "mod", "pi",
		"pow", "power", "radians", "rand", "round", "sign", "sin", "sqrt", "tan", "truncate",
		// date and time
		"adddate", "addtime", "convert_tz", "curdate", "current_date", "current_time",
		"current_timestamp", "curtime", "date", "date_add", "date_format", "date_sub",
		"datediff", "day", "dayname", "dayofmonth", "dayofweek", "dayofyear", "extract",
		"from_days", "from_unixtime", "get_format", "hour", "last_day", "localtime",
		"localtimestamp", "makedate", "maketime", "microsecond", "minute", "month",
		"monthname", "now", "period_add", "period_diff", "quarter", "sec_to_time", "second",
		"str_to_date", "subdate", "subtime", "sysdate", "time", "time_format", "time_to_sec",
		"timediff", "timestamp", "timestampadd", "timestampdiff", "to_days", "unix_timestamp",
		"utc_date", "utc_time", "utc_timestamp", "week", "weekday", "weekofyear", "year",
		"yearweek",
		// information
		"benchmark", "binlog_gtid_pos", "connection_id", "current_role", "current_user",
		"database", "decode_histogram", "default", "found_rows", "row_count", "schema",
		"session_user", "system_user", "user", "version",
		// encryption and hashing
		"aes_decrypt", "aes_encrypt", "compress", "decode", "des_decrypt", "des_encrypt",
		"encode", "encrypt", "md5", "old_password", "password", "sha", "sha1", "sha2",
		"uncompress", "uncompressed_length",
		// miscellaneous
		"bit_count", "inet_aton", "inet_ntoa", "is_free_lock", "is_ipv4", "is_used_lock",
		"master_pos_wait", "name_const", "sleep", "uuid", "uuid_short", "values",
		"cast",
		// dynamic columns
		"column_add", "column_check", "column_create", "column_delete", "column_exists",
		"column_get", "column_json", "column_list",
		// geometry
		"area", "asbinary", "astext", "aswkb", "aswkt", "boundary", "buffer", "centroid",
		"contains", "convexhull", "crosses", "dimension", "disjoint", "endpoint", "envelope",
		"equals", "exteriorring", "geomcollfromtext", "geometryfromtext", "geometryn",
		"geometrytype", "geomfromtext", "geomfromwkb", "glength", "interiorringn",
		"intersects", "isclosed", "isempty", "isring", "issimple", "linefromtext",
		"linestring", "mbrcontains", "mbrdisjoint", "mbrequal", "mbrintersects",
		"mbroverlaps", "mbrtouches", "mbrwithin", "numgeometries", "numinteriorrings",
		"numpoints", "overlaps", "point", "pointfromtext", "pointn", "polygon",
		"polyfromtext", "srid", "startpoint", "touches", "within", "x", "y",
	}
	for _, name := range always {
		builtinReadonly[name] = 0
	}

	for _, fn := range []struct {
		name  string
		since uint32
	}{
		{"from_base64", 100000},
		{"inet6_aton", 100000},
		{"inet6_ntoa", 100000},
		{"is_ipv4_compat", 100000},
		{"is_ipv4_mapped", 100000},
		{"is_ipv6", 100000},
		{"regexp_instr", 100000},
		{"regexp_replace", 100000},
		{"regexp_substr", 100000},
		{"to_base64", 100000},
		{"to_seconds", 100000},
		{"st_area", 100000},
		{"st_astext", 100000},
		{"st_contains", 100000},
		{"st_distance", 100000},
		{"st_geomfromtext", 100000},
		{"st_intersects", 100000},
		{"st_x", 100000},
		{"st_y", 100000},
		{"cume_dist", 100200},
		{"dense_rank", 100200},
		{"first_value", 100200},
		{"lag", 100200},
		{"last_value", 100200},
		{"lead", 100200},
		{"median", 100300},
		{"nth_value", 100200},
		{"ntile", 100200},
		{"percent_rank", 100200},
		{"percentile_cont", 100300},
		{"percentile_disc", 100300},
		{"rank", 100200},
		{"row_number", 100200},
		{"json_array", 100203},
		{"json_array_append", 100203},
		{"json_array_insert", 100203},
		{"json_compact", 100204},
		{"json_contains", 100203},
		{"json_contains_path", 100203},
		{"json_depth", 100203},
		{"json_detailed", 100204},
		{"json_exists", 100203},
		{"json_extract", 100203},
		{"json_insert", 100203},
		{"json_keys", 100203},
		{"json_length", 100203},
		{"json_loose", 100204},
		{"json_merge", 100203},
		{"json_object", 100203},
		{"json_query", 100203},
		{"json_quote", 100203},
		{"json_remove", 100203},
		{"json_replace", 100203},
		{"json_search", 100203},
		{"json_set", 100203},
		{"json_type", 100203},
		{"json_unquote", 100203},
		{"json_valid", 100203},
		{"json_value", 100203},
		{"json_arrayagg", 100500},
		{"json_objectagg", 100500},
		{"json_merge_patch", 100300},
		{"json_merge_preserve", 100300},
		{"json_table", 100600},
		{"json_equals", 100700},
		{"json_normalize", 100700},
		{"json_overlaps", 100900},
		{"json_schema_valid", 110100},
		{"chr", 100300},
		{"lengthb", 100300},
		{"sformat", 100700},
		{"natural_sort_key", 100700},
		{"sys_guid", 100600},
		{"random_bytes", 101000},
		{"format_pico_time", 110000},
		{"kdf", 110300},
		{"uuid_v4", 110700},
		{"uuid_v7", 110700},
	} {
		builtinReadonly[fn.name] = fn.since
	}
}

// IsBuiltinReadonlyFunction reports whether name is a builtin function that
// cannot modify data on a server of the given version.
func IsBuiltinReadonlyFunction(name string, version uint32, oracle bool) bool {
	name = strings.ToLower(name)
	if oracle {
		if since, ok := oracleReadonly[name]; ok {
			return since <= version
		}
	}
	since, ok := builtinReadonly[name]
	return ok && since <= version
}
