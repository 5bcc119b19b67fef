package synthesis

import "errors"

// Precondition and authorization outcomes from Prepare. Each short-circuits
// the run before any event is emitted; the HTTP layer maps them to
// conventional status codes.
var (
	ErrUnauthenticated = errors.New("owner id is required")
	ErrSermonNotFound  = errors.New("sermon not found")
	ErrForbidden       = errors.New("sermon belongs to a different owner")

	// ErrPrecondition wraps the two caller-fixable cases: no saved chunks
	// at all, or no chunks for the requested section.
	ErrPrecondition = errors.New("precondition failed")
)
