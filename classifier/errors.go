package classifier

import "errors"

var (
	// ErrInternalFault wraps a fault recovered during a grammar pass. The
	// statement is left INVALID.
	ErrInternalFault = errors.New("classifier internal fault")

	// ErrRecursionLimit is returned when a statement nests deeper than the
	// session's depth limit.
	ErrRecursionLimit = errors.New("statement exceeds recursion limit")

	ErrUnknownBackend = errors.New("unknown grammar backend")
	ErrNoDriver       = errors.New("session has no grammar driver")
)
