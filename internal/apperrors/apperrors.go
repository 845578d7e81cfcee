// Package apperrors defines the coded errors the API surfaces to callers.
// Each error carries a machine-readable code exposed through GraphQL error
// extensions alongside the human-readable message.
package apperrors

import (
	"errors"
	"fmt"
)

// Code identifies an error category at the API boundary.
type Code string

const (
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeInvalidInput    Code = "BAD_USER_INPUT"
	CodeUpstreamFailure Code = "UPSTREAM_FAILURE"
)

// Error is a coded application error. It implements
// gqlerrors.ExtendedError so graphql-go includes the code in the
// response's error extensions.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

// Extensions exposes the error code to the GraphQL error formatter.
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": string(e.Code)}
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Unauthenticated reports that no verified identity is present.
func Unauthenticated(message string) *Error {
	return &Error{Code: CodeUnauthenticated, Message: message}
}

// Forbidden reports that the identity's role is insufficient.
func Forbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

// NotFound reports that the requested record is absent.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidInput reports malformed caller input.
func InvalidInput(format string, args ...interface{}) *Error {
	return &Error{Code: CodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// Upstream wraps a storage or batch-fetch failure. The underlying error is
// preserved for logs but not echoed to the caller.
func Upstream(message string, cause error) *Error {
	return &Error{Code: CodeUpstreamFailure, Message: message, cause: cause}
}

// CodeOf returns the code of err when it is (or wraps) an *Error, and
// CodeUpstreamFailure otherwise. Plain errors reaching the API boundary are
// treated as upstream failures.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUpstreamFailure
}
