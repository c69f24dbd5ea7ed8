package level

import (
	"errors"
	"fmt"
)

// Parse failures. Every error returned by Parse wraps exactly one of these.
var (
	ErrMalformedHeader  = errors.New("malformed header line")
	ErrMalformedBoard   = errors.New("malformed board")
	ErrUnknownGlyph     = errors.New("unknown glyph")
	ErrTooManyItemTypes = errors.New("too many item types")
	ErrBoardTooLarge    = errors.New("board too large")
	ErrBoardTooWide     = errors.New("board too wide")
	ErrTooManyObjects   = errors.New("too many objects")
	ErrTruncatedInput   = errors.New("truncated input")
)

// ParseError locates a parse failure. Line and Column are 1-based; Column
// is zero when the failure concerns a whole line.
type ParseError struct {
	Line   int
	Column int
	Err    error
	Detail string
}

func (e *ParseError) Error() string {
	pos := fmt.Sprintf("line %d", e.Line)
	if e.Column > 0 {
		pos = fmt.Sprintf("line %d, column %d", e.Line, e.Column)
	}
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", pos, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", pos, e.Err, e.Detail)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseErr(line, col int, err error, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Column: col, Err: err, Detail: fmt.Sprintf(format, args...)}
}
