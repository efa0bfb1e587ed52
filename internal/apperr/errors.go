// Package apperr defines the error taxonomy shared by services and handlers.
// Every error carries a machine-readable code and the HTTP status it maps to.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code
type Code string

const (
	CodeClientInput      Code = "CLIENT_INPUT"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeNotFound         Code = "NOT_FOUND"
	CodeRateLimited      Code = "RATE_LIMITED"
	CodeModelUnavailable Code = "MODEL_UNAVAILABLE"
	CodeMalformedOutput  Code = "MALFORMED_MODEL_OUTPUT"
	CodePersistence      Code = "PERSISTENCE_ERROR"
	CodeInternal         Code = "INTERNAL"
)

// Sentinels usable with errors.Is against any *Error carrying the same code.
var (
	ErrClientInput          = &Error{Code: CodeClientInput, HTTPStatus: http.StatusBadRequest}
	ErrUnauthorized         = &Error{Code: CodeUnauthorized, HTTPStatus: http.StatusUnauthorized}
	ErrNotFound             = &Error{Code: CodeNotFound, HTTPStatus: http.StatusNotFound}
	ErrRateLimited          = &Error{Code: CodeRateLimited, HTTPStatus: http.StatusTooManyRequests}
	ErrModelUnavailable     = &Error{Code: CodeModelUnavailable, HTTPStatus: http.StatusInternalServerError}
	ErrMalformedModelOutput = &Error{Code: CodeMalformedOutput, HTTPStatus: http.StatusInternalServerError}
	ErrPersistence          = &Error{Code: CodePersistence, HTTPStatus: http.StatusInternalServerError}
)

// Error is the unified application error.
type Error struct {
	Code Code `json:"code"`
	// Message is safe to show to API clients.
	Message string `json:"error"`
	// Detail carries operator-facing diagnostics such as parser errors.
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Cause      error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches on code so constructors compare equal to the sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetail sets operator-facing detail and returns the receiver.
func (e *Error) WithDetail(detail string) *Error {
	e.Detail = detail
	return e
}

// ClientInput reports a missing or invalid request field.
func ClientInput(message string) *Error {
	return &Error{Code: CodeClientInput, Message: message, HTTPStatus: http.StatusBadRequest}
}

// MissingField reports a required field that was not supplied.
func MissingField(field string) *Error {
	return ClientInput(fmt.Sprintf("missing required field: %s", field))
}

func Unauthorized(message string) *Error {
	if message == "" {
		message = "unauthorized"
	}
	return &Error{Code: CodeUnauthorized, Message: message, HTTPStatus: http.StatusUnauthorized}
}

func NotFound(resource, id string) *Error {
	return &Error{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s %s not found", resource, id),
		HTTPStatus: http.StatusNotFound,
	}
}

func RateLimited() *Error {
	return &Error{
		Code:       CodeRateLimited,
		Message:    "too many analysis requests, please wait a moment",
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// ModelUnavailable wraps a failed model call (network, auth, timeout).
func ModelUnavailable(cause error) *Error {
	e := &Error{
		Code:       CodeModelUnavailable,
		Message:    "the language model could not be reached",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
	if cause != nil {
		e.Detail = cause.Error()
	}
	return e
}

// MalformedOutput reports model text that could not be coerced into structure.
func MalformedOutput(cause error) *Error {
	e := &Error{
		Code:       CodeMalformedOutput,
		Message:    "the language model returned an unreadable response",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
	if cause != nil {
		e.Detail = cause.Error()
	}
	return e
}

// Persistence wraps a storage failure.
func Persistence(cause error) *Error {
	return &Error{
		Code:       CodePersistence,
		Message:    "the analysis could not be saved",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func Internal(cause error) *Error {
	return &Error{
		Code:       CodeInternal,
		Message:    "an unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// From converts any error into an *Error, defaulting to Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Message == "" {
			return &Error{Code: e.Code, Message: string(e.Code), HTTPStatus: e.HTTPStatus, Cause: err, Detail: err.Error()}
		}
		return e
	}
	return Internal(err)
}

// HTTPStatus returns the status code an error should be rendered with.
func HTTPStatus(err error) int {
	if e := From(err); e != nil && e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	return http.StatusInternalServerError
}
