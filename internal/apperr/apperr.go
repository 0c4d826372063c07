// Package apperr classifies failures so callers can tell bad input from a
// missing session without inspecting messages.
package apperr

import "errors"

var (
	// ErrInput marks malformed user input: architecture strings, dataset lines,
	// missing files, weight artifacts that do not fit.
	ErrInput = errors.New("invalid input")
	// ErrState marks an operation that needs state which does not exist yet.
	ErrState = errors.New("invalid state")
)

// Kind returns "input", "state" or "engine" for err. Anything not marked as
// input or state is attributed to the math engine.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInput):
		return "input"
	case errors.Is(err, ErrState):
		return "state"
	default:
		return "engine"
	}
}
