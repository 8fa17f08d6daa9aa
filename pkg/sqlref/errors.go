package sqlref

import "fmt"

// ParseError represents a parsing error with position information.
type ParseError struct {
	Pos     Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// ResolutionError represents a table/column resolution error, including
// unresolved ambiguity. Resolution never guesses.
type ResolutionError struct {
	Message string
}

func (e *ResolutionError) Error() string {
	return "resolution error: " + e.Message
}

// Common error messages
const (
	errUnexpectedToken = "unexpected token %s, expected %s"
	errUnknownTable    = "unknown table or alias %q"
	errUnknownColumn   = "unknown column %q"
	errAmbiguousColumn = "ambiguous column reference %q (candidates: %s)"
)
