// Package sqlite is an alternate grammar driver built on the rqlite SQLite
// parser. Statements are also prepared against an in-memory SQLite database
// so that text the AST parser is lenient about is still rejected.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	rqlitesql "github.com/rqlite/sql"

	"github.com/maxpert/querygate/classifier"
	"github.com/maxpert/querygate/grammar"
)

const Name = "sqlite"

// DefaultPoolSize is the number of in-memory connections per checker.
const DefaultPoolSize = 4

func init() {
	classifier.RegisterBackend(Name, func() (grammar.Driver, error) {
		return New(DefaultPoolSize)
	})
}

// Parser translates rqlite ASTs into neutral trees.
type Parser struct {
	checker *Checker
}

// New returns a driver with its own syntax checker pool.
func New(poolSize int) (*grammar.Engine, error) {
	checker, err := NewChecker(poolSize)
	if err != nil {
		return nil, err
	}
	return grammar.NewEngine(Name, &Parser{checker: checker}), nil
}

// NewParser returns a Parser. A nil checker skips the SQLite prepare step.
func NewParser(checker *Checker) *Parser {
	return &Parser{checker: checker}
}

func (p *Parser) Close() error {
	if p.checker != nil {
		p.checker.Close()
	}
	return nil
}

func (p *Parser) ParseStatement(text string, mode grammar.Mode) (grammar.Statement, bool, error) {
	stmt, err := rqlitesql.NewParser(strings.NewReader(text)).ParseStatement()
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", grammar.ErrSyntax, err)
	}
	if p.checker != nil {
		if err := p.checker.Check(text); err != nil {
			return nil, false, err
		}
	}

	t := &translator{}
	out := t.statement(stmt)
	if t.err != nil {
		return nil, false, t.err
	}
	if out == nil {
		return nil, false, fmt.Errorf("%w: unsupported statement %T", grammar.ErrSyntax, stmt)
	}
	return out, false, nil
}

func (p *Parser) ParseExpr(text string, mode grammar.Mode) (grammar.Expr, error) {
	stmt, err := rqlitesql.NewParser(strings.NewReader("SELECT " + text)).ParseStatement()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", grammar.ErrSyntax, err)
	}
	sel, ok := stmt.(*rqlitesql.SelectStatement)
	if !ok || len(sel.Columns) != 1 || sel.Columns[0].Expr == nil {
		return nil, grammar.ErrSyntax
	}
	t := &translator{}
	e := t.expr(sel.Columns[0].Expr)
	if t.err != nil {
		return nil, t.err
	}
	return e, nil
}

// Checker prepares statements on a pool of in-memory SQLite connections.
// Errors about missing schema objects are accepted.
type Checker struct {
	pool chan *sql.DB
}

func NewChecker(poolSize int) (*Checker, error) {
	if poolSize <= 0 {
		poolSize = 1
	}
	pool := make(chan *sql.DB, poolSize)
	for i := 0; i < poolSize; i++ {
		db, err := sql.Open("sqlite3", ":memory:")
		if err != nil {
			close(pool)
			for opened := range pool {
				opened.Close()
			}
			return nil, fmt.Errorf("failed to open sqlite checker: %w", err)
		}
		db.SetMaxOpenConns(1)
		pool <- db
	}
	return &Checker{pool: pool}, nil
}

// Check returns grammar.ErrSyntax when SQLite cannot prepare text.
func (c *Checker) Check(text string) error {
	db := <-c.pool
	defer func() { c.pool <- db }()

	stmt, err := db.Prepare(text)
	if err != nil {
		if isSchemaError(err) {
			return nil
		}
		return fmt.Errorf("%w: %v", grammar.ErrSyntax, err)
	}
	stmt.Close()
	return nil
}

func (c *Checker) Close() {
	close(c.pool)
	for db := range c.pool {
		db.Close()
	}
}

func isSchemaError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "no such table") ||
		strings.Contains(msg, "no such column") ||
		strings.Contains(msg, "no such index") ||
		strings.Contains(msg, "no such view") ||
		strings.Contains(msg, "no such trigger") ||
		strings.Contains(msg, "no such function")
}
