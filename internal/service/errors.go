package service

import (
	"errors"
	"fmt"
)

// ErrorCode classifies backend failures independently of the transport.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeUnavailable  ErrorCode = "UNAVAILABLE"
	ErrCodeTimeout      ErrorCode = "TIMEOUT"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error is a classified backend error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a classified error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps err with a classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// IsCode reports whether err (or anything it wraps) is an *Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var sErr *Error
	if errors.As(err, &sErr) {
		return sErr.Code == code
	}
	return false
}

// IsAuth reports whether err is an authentication or authorization failure.
func IsAuth(err error) bool {
	return IsCode(err, ErrCodeUnauthorized) || IsCode(err, ErrCodeForbidden)
}
