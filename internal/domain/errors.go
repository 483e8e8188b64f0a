package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no bookmark matches the requested id.
var ErrNotFound = errors.New("bookmark not found")

// ValidationError blocks a submission. It is shown inline to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
