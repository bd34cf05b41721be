package scheduler

import "errors"

var (
	// ErrAdaptiveDisabled signals that adaptive scheduling is switched off
	// and callers should fall back to a non-adaptive listing. Distinct from
	// an empty queue, which is a normal result.
	ErrAdaptiveDisabled = errors.New("adaptive scheduling is disabled")

	// ErrInvalidSubmission rejects malformed submissions before any state
	// is touched.
	ErrInvalidSubmission = errors.New("invalid submission")

	// ErrItemNotFound is returned for submissions against unknown items
	ErrItemNotFound = errors.New("item not found")

	// ErrConflict is returned by state stores when a versioned update lost
	// a race. The submission processor retries; it never overwrites with
	// stale data.
	ErrConflict = errors.New("concurrent update conflict")
)
