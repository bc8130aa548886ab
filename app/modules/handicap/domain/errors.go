package handicapdomain

import "errors"

// Domain errors for the handicap engine.
// Callers should compare with errors.Is; the engine always wraps these with
// the offending value.
var (
	// ErrValidation indicates malformed round input (non-positive gross,
	// rating or slope, wrong hole count, conflicting adjustments).
	ErrValidation = errors.New("invalid round input")

	// ErrInsufficientHistory indicates fewer differentials than the tracker
	// needs to produce an index. The accompanying result carries the prior index.
	ErrInsufficientHistory = errors.New("insufficient differential history")

	// ErrInvalidCourseData indicates par / stroke index tables that cannot be used.
	ErrInvalidCourseData = errors.New("invalid course data")
)
