package waitlist

import "errors"

// Business outcomes callers are expected to branch on. These are returned as
// typed results, never logged as system errors.
var (
	// ErrMemberNotFound means the given id has no matching member
	ErrMemberNotFound = errors.New("member not found")

	// ErrInvalidTransition means the attempted status move would violate the
	// pending -> approved -> activated ordering
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Validation failure reasons surfaced to the downstream signup flow so it can
// render distinct messages.
const (
	ReasonNotYetApproved = "access code not yet approved"
	ReasonWrongState     = "access code not valid for activation"
)

// ValidationError carries the user-facing reason an activation attempt was
// rejected
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
