package domain

import "errors"

var (
	// ErrRateLimited is returned when a sender exceeded its per-window quota.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrDuplicateID is returned when a message id collides with an
	// already-persisted message.
	ErrDuplicateID = errors.New("message id already exists")
)

// ValidationError reports a rejected input field with a user-facing reason.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
