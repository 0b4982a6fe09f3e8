// Package errors defines the gateway's wire error shape and the helper
// that writes it. Every JSON error the edge emits has the form
// {error, message, status}.
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// AppError is the standard application error. Reason is the stable,
// client-facing category; Message carries the human-readable detail.
type AppError struct {
	Reason  string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d %s] %s: %v", e.Status, e.Reason, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d %s] %s", e.Status, e.Reason, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithMessage returns a copy with a different message. The base errors
// below are shared; never mutate them in place.
func (e *AppError) WithMessage(msg string) *AppError {
	out := *e
	out.Message = msg
	return &out
}

// WithCause returns a copy carrying the original error for logs.
func (e *AppError) WithCause(err error) *AppError {
	out := *e
	out.Err = err
	return &out
}

var (
	ErrAuthFailed = &AppError{
		Reason:  "Authentication Failed",
		Message: "authentication required",
		Status:  http.StatusUnauthorized,
	}

	ErrBadRequest = &AppError{
		Reason:  "Bad Request",
		Message: "the request is malformed or missing parameters",
		Status:  http.StatusBadRequest,
	}

	ErrNotFound = &AppError{
		Reason:  "Not Found",
		Message: "the requested resource does not exist",
		Status:  http.StatusNotFound,
	}

	ErrRateLimited = &AppError{
		Reason:  "Too Many Requests",
		Message: "request limit exceeded, try again later",
		Status:  http.StatusTooManyRequests,
	}

	ErrInternal = &AppError{
		Reason:  "Internal Server Error",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
	}

	ErrServiceUnavailable = &AppError{
		Reason:  "Service Unavailable",
		Message: "the service is temporarily unavailable",
		Status:  http.StatusServiceUnavailable,
	}
)

// FromError coerces any error into an AppError, defaulting to a generic
// internal error that keeps the cause for logging.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternal.WithCause(err)
}

// WriteError serializes the error as the gateway's standard JSON body.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.Status)
	_ = json.NewEncoder(w).Encode(appErr)
}
