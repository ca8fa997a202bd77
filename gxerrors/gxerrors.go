// Package gxerrors defines the error kinds produced across the grammar
// construction and parsing pipeline: grammar errors raised synchronously by
// the builder, table errors for exceeded or invalid resource limits,
// recoverable parse errors, and internal invariant violations that are
// never recoverable. Table conflicts are not errors; they are recorded as
// table.Conflict values on the compiled table.
package gxerrors

import "fmt"

// GrammarError is raised synchronously to the Grammar builder's caller: an
// unknown symbol was referenced, a rule constraint was violated, or a
// precedence declaration could not be resolved.
type GrammarError struct {
	msg string
}

func (e *GrammarError) Error() string {
	return e.msg
}

// Grammar returns a new GrammarError built from a format string.
func Grammar(format string, a ...interface{}) error {
	return &GrammarError{msg: fmt.Sprintf(format, a...)}
}

// TableError reports a resource-limit failure: an automaton with more states
// than table.CompileWithLimit allows, or a non-positive limit rejected by
// config.Limits.Validate. Shift/reduce and reduce/reduce conflicts are not
// reported this way; they are collected as table.Conflict values.
type TableError struct {
	msg string
}

func (e *TableError) Error() string {
	return e.msg
}

// Table returns a new TableError built from a format string.
func Table(format string, a ...interface{}) error {
	return &TableError{msg: fmt.Sprintf(format, a...)}
}

// ParseError is returned from Push/Finish when the driver lands on an Error
// cell. It is recoverable via the recovery package's Recover function.
type ParseError struct {
	// State is the state the parser was in when the error occurred.
	State int

	// Terminal is the ID of the look-ahead terminal that had no admissible
	// action.
	Terminal int

	// Expected is the set of terminal IDs that would have been admissible in
	// State.
	Expected []int

	// Wrapped is set when the error originates from a user reducer action
	// returning a non-nil error; the parse is aborted and this is preserved.
	Wrapped error
}

func (e *ParseError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("at state %d: reducer error: %v", e.State, e.Wrapped)
	}
	return fmt.Sprintf("at state %d: unexpected terminal %d", e.State, e.Terminal)
}

func (e *ParseError) Unwrap() error {
	return e.Wrapped
}

// InternalError signals a hard fault in the compiled table itself, such as a
// missing goto after a reduction. It indicates a bug in table construction,
// not a malformed input, and is never recoverable.
type InternalError struct {
	msg string
}

func (e *InternalError) Error() string {
	return "internal error: " + e.msg
}

// Internal returns a new InternalError built from a format string.
func Internal(format string, a ...interface{}) error {
	return &InternalError{msg: fmt.Sprintf(format, a...)}
}
