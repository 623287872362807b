package service

import "errors"

type ErrorCode string

const (
	ErrorInvalid         ErrorCode = "invalid"
	ErrorUnauthorized    ErrorCode = "unauthorized"
	ErrorForbidden       ErrorCode = "forbidden"
	ErrorNotFound        ErrorCode = "not_found"
	ErrorTooManyRequests ErrorCode = "too_many_requests"
)

// Error is a failure the caller can act on. Anything else is internal.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string { return e.Message }

func NewInvalidError(msg string) error      { return &Error{Code: ErrorInvalid, Message: msg} }
func NewUnauthorizedError(msg string) error { return &Error{Code: ErrorUnauthorized, Message: msg} }
func NewForbiddenError(msg string) error    { return &Error{Code: ErrorForbidden, Message: msg} }
func NewNotFoundError(msg string) error     { return &Error{Code: ErrorNotFound, Message: msg} }

func NewTooManyRequestsError(msg string) error {
	return &Error{Code: ErrorTooManyRequests, Message: msg}
}

// AsError unwraps err into a *Error when it is one.
func AsError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
