package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/maxpert/querygate/grammar"
)

// generalLogCommands are the general_log command types carrying SQL text.
var generalLogCommands = []interface{}{"Query", "Prepare", "Execute"}

// loadCorpus reads statements from --file or --dsn.
func loadCorpus(cmd *cobra.Command) ([]string, error) {
	file, _ := cmd.Flags().GetString("file")
	dsn, _ := cmd.Flags().GetString("dsn")
	limit, _ := cmd.Flags().GetInt("limit")

	switch {
	case file != "" && dsn != "":
		return nil, fmt.Errorf("--file and --dsn are mutually exclusive")
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read corpus: %w", err)
		}
		stmts := splitStatements(string(data))
		log.Info().Str("file", file).Int("statements", len(stmts)).Msg("Loaded corpus")
		return stmts, nil
	case dsn != "":
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()
		return readGeneralLog(ctx, dsn, limit)
	}
	return nil, fmt.Errorf("one of --file or --dsn is required")
}

// splitStatements splits text on top-level semicolons. Comment-only
// fragments are dropped.
func splitStatements(text string) []string {
	var out []string
	toks := grammar.Lex(text)
	for len(toks) > 0 {
		stmt, more := grammar.SplitFirst(toks)
		if len(stmt) == 0 {
			break
		}
		out = append(out, grammar.Text(text, stmt))
		if !more {
			break
		}
		// Skip past the statement and its terminators.
		next := 0
		for next < len(toks) && toks[next].Pos < stmt[len(stmt)-1].End {
			next++
		}
		for next < len(toks) && toks[next].IsPunct(";") {
			next++
		}
		toks = toks[next:]
	}
	return out
}

// generalLogQuery selects the most recent statements of mysql.general_log.
func generalLogQuery(limit int) (string, []interface{}, error) {
	return goqu.Dialect("mysql").
		From(goqu.S("mysql").Table("general_log")).
		Select(goqu.C("argument")).
		Where(goqu.C("command_type").In(generalLogCommands...)).
		Order(goqu.C("event_time").Desc()).
		Limit(uint(limit)).
		Prepared(true).
		ToSQL()
}

func readGeneralLog(ctx context.Context, dsn string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}
	query, args, err := generalLogQuery(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build general log query: %w", err)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dsn, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read general log: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var argument []byte
		if err := rows.Scan(&argument); err != nil {
			return nil, err
		}
		out = append(out, string(argument))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.Info().Int("statements", len(out)).Msg("Loaded corpus from general log")
	return out, nil
}
