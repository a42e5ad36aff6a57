package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is what crosses the HTTP boundary. Message is safe to show to end
// users; Err keeps the underlying cause for logs.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func WithMessage(status int, code, message string, err error) *Error {
	return &Error{Status: status, Code: code, Message: message, Err: err}
}

// From unwraps err into an *Error, falling back to a generic 500.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{
		Status:  http.StatusInternalServerError,
		Code:    "internal",
		Message: "Something went wrong. Please try again.",
		Err:     err,
	}
}
