package storage

import (
	"errors"
	"fmt"
)

// ErrEmptyUserID is returned when a turn is recorded without a user.
var ErrEmptyUserID = errors.New("user id must not be empty")

// UnavailableError wraps a failure of the underlying persistence layer.
// Callers must surface it rather than treat the history as empty.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("history store unavailable during %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err is, or wraps, an *UnavailableError.
func IsUnavailable(err error) bool {
	var u *UnavailableError
	return errors.As(err, &u)
}
