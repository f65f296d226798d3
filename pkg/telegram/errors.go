package telegram

import (
	"errors"
	"fmt"
)

// DeliveryError is a failed Bot API call.
type DeliveryError struct {
	Method      string
	StatusCode  int
	Description string
	Err         error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("telegram %s failed: %v", e.Method, e.Err)
	}
	return fmt.Sprintf("telegram %s failed with status %d: %s", e.Method, e.StatusCode, e.Description)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// IsDeliveryError reports whether err is, or wraps, a *DeliveryError.
func IsDeliveryError(err error) bool {
	var d *DeliveryError
	return errors.As(err, &d)
}
