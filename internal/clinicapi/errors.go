package clinicapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrPrecondition is returned when an action is invoked before its required predecessor,
// e.g. adding a medicine while no prescription exists.
var ErrPrecondition = errors.New("precondition failed")

// ErrEmptyResponse is returned when the backend answers 2xx without a usable payload.
var ErrEmptyResponse = errors.New("empty response from backend")

// NetworkError means the request never reached the backend or no response came back.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError means the payload was rejected, either by the backend (Status set)
// or before dispatch by a required-field check (Status 0).
type ValidationError struct {
	Status  int
	Message string
}

func (e *ValidationError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// Required builds the client-side validation error for a missing field.
func Required(field string) error {
	return &ValidationError{Message: field + " is required"}
}

// Message renders err the way it is shown to the user: the backend message for
// validation failures, a generic sentence for network failures.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		if verr.Message != "" {
			return verr.Message
		}
		return http.StatusText(verr.Status)
	}
	var nerr *NetworkError
	if errors.As(err, &nerr) {
		return "Network error: " + nerr.Err.Error()
	}
	return err.Error()
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var nerr *NetworkError
	return errors.As(err, &nerr)
}

// IsValidation reports whether err is a rejected payload.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
