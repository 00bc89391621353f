package grammar

import (
	"errors"
	"fmt"
	"io"
)

// Outcome is how far a driver got with a statement.
type Outcome int

const (
	// Rejected means no statement production was recognized.
	Rejected Outcome = iota
	// Partial means a production was recognized but input was left over.
	Partial
	// Complete means the whole input was recognized.
	Complete
	// Empty means the input held only comments, whitespace or separators.
	Empty
)

func (o Outcome) String() string {
	switch o {
	case Partial:
		return "partial"
	case Complete:
		return "complete"
	case Empty:
		return "empty"
	default:
		return "rejected"
	}
}

var (
	// ErrSyntax is returned by parsers for text they cannot recognize.
	ErrSyntax = errors.New("syntax error")
	// ErrTooDeep is returned when a tree nests deeper than MaxDepth.
	ErrTooDeep = errors.New("statement nesting too deep")
)

// MaxDepth bounds the nesting of translated trees.
const MaxDepth = 256

// Driver is the grammar capability a classifier drives. Drive reports the
// productions it recognizes in sql to v and returns how far it got. A
// non-nil error means an internal fault, never a plain syntax error.
type Driver interface {
	Name() string
	Drive(sql string, mode Mode, v Visitor) (Outcome, error)
}

// Parser turns statement text into neutral trees. ParseStatement reports
// partial when it recognized a statement but ignored part of the text.
type Parser interface {
	ParseStatement(sql string, mode Mode) (stmt Statement, partial bool, err error)
	ParseExpr(sql string, mode Mode) (Expr, error)
}

// Engine is the Driver shared by all backends: it lexes, reports keywords,
// handles utility statements itself and hands the rest to a Parser.
type Engine struct {
	name   string
	parser Parser
}

func NewEngine(name string, parser Parser) *Engine {
	return &Engine{name: name, parser: parser}
}

func (e *Engine) Name() string {
	return e.name
}

// Parser returns the backend parser the engine delegates to.
func (e *Engine) Parser() Parser {
	return e.parser
}

// Close releases the parser's resources when it holds any.
func (e *Engine) Close() error {
	if c, ok := e.parser.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (e *Engine) Drive(sql string, mode Mode, v Visitor) (Outcome, error) {
	toks := Lex(sql)
	stmtToks, trailing := SplitFirst(toks)
	if len(stmtToks) == 0 {
		return Empty, nil
	}

	for _, kw := range Keywords(stmtToks, mode) {
		if v.OnKeyword(kw) {
			return Rejected, nil
		}
	}

	stmt, partial, err := e.parse(sql, stmtToks, mode, 0)
	if err != nil {
		if errors.Is(err, ErrSyntax) {
			return Rejected, nil
		}
		return Rejected, fmt.Errorf("%s: %w", e.name, err)
	}

	stmt.Accept(v)
	if partial || trailing {
		return Partial, nil
	}
	return Complete, nil
}

// Parse recognizes a single statement without driving a visitor.
func (e *Engine) Parse(sql string, mode Mode) (Statement, bool, error) {
	stmtToks, trailing := SplitFirst(Lex(sql))
	if len(stmtToks) == 0 {
		return nil, false, ErrSyntax
	}
	stmt, partial, err := e.parse(sql, stmtToks, mode, 0)
	return stmt, partial || trailing, err
}

func (e *Engine) parse(sql string, toks []Token, mode Mode, depth int) (Statement, bool, error) {
	u := &utilityParser{sql: sql, mode: mode, parser: e.parser, engine: e, depth: depth}
	stmt, partial, handled, err := u.parse(toks)
	if err != nil || handled {
		return stmt, partial, err
	}
	return e.parser.ParseStatement(Text(sql, toks), mode)
}
