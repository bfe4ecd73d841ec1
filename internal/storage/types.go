package storage

import "errors"

var (
	// ErrNotFound indicates that the requested record was not found.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidInput indicates that the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// DefaultCandidateLimit bounds candidate-window queries when the caller
// passes a non-positive limit.
const DefaultCandidateLimit = 50

// MaxCandidateLimit caps candidate-window queries regardless of what the
// caller asks for; the engine never scans a user's entire history.
const MaxCandidateLimit = 100

// NormalizeLimit clamps a candidate-window limit into [1, MaxCandidateLimit].
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultCandidateLimit
	}
	if limit > MaxCandidateLimit {
		return MaxCandidateLimit
	}
	return limit
}
