package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	// ErrBackend covers failures reported by the classification backend.
	ErrBackend = New("BACKEND_ERROR", http.StatusBadGateway, "backend request failed")
	// ErrBackendUnavailable covers transport-level failures reaching the backend.
	ErrBackendUnavailable = New("BACKEND_UNAVAILABLE", http.StatusServiceUnavailable, "backend unreachable")

	// ErrRecordingActive guards the single-recording invariant.
	ErrRecordingActive = New("RECORDING_ACTIVE", http.StatusConflict, "a recording session is already active")
	// ErrNoRecording is returned when stopping without an active session.
	ErrNoRecording = New("NO_RECORDING", http.StatusConflict, "no active recording session")
	// ErrMediaTooLarge rejects attachments over the configured size limit.
	ErrMediaTooLarge = New("MEDIA_TOO_LARGE", http.StatusRequestEntityTooLarge, "attachment exceeds size limit")
	// ErrMediaUnsupported rejects attachments with a disallowed MIME type.
	ErrMediaUnsupported = New("MEDIA_UNSUPPORTED", http.StatusUnsupportedMediaType, "attachment type not allowed")

	// ErrDraftNotFound is returned when no submission draft exists for the session.
	ErrDraftNotFound = New("DRAFT_NOT_FOUND", http.StatusNotFound, "no submission draft in progress")
	// ErrStepBlocked is returned when a wizard guard rejects a forward transition.
	ErrStepBlocked = New("STEP_BLOCKED", http.StatusUnprocessableEntity, "step requirements not met")

	// ErrCacheMiss signals a missing cache entry; callers fall through to the source.
	ErrCacheMiss = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
