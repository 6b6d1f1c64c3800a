package errors

import (
	"errors"
	"fmt"
)

// Domain errors - each one is surfaced to the user as a notification
var (
	// Session & navigation
	ErrNoSession        = errors.New("no active session")
	ErrForbidden        = errors.New("action forbidden")
	ErrConsoleNotFound  = errors.New("console not found")
	ErrCredentialsEmpty = errors.New("email and password are required")
	ErrSignupIncomplete = errors.New("all signup fields are required")

	// Ticket validation
	ErrTitleRequired       = errors.New("title is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrInvalidPriority     = errors.New("invalid ticket priority")
	ErrInvalidDepartment   = errors.New("invalid department")

	// Ticket API
	ErrTicketAPI = errors.New("ticket api request failed")

	// Recording
	ErrMicPermissionDenied = errors.New("microphone permission denied")
	ErrRecordingActive     = errors.New("a recording is already in progress")
	ErrNotRecording        = errors.New("no recording in progress")
	ErrNoRecording         = errors.New("no recording to upload")

	// Storage
	ErrStorageCredentials = errors.New("storage credentials unavailable")
	ErrUploadFailed       = errors.New("audio upload failed")
	ErrListFailed         = errors.New("audio listing failed")

	// Generic
	ErrBadRequest  = errors.New("bad request")
	ErrRateLimited = errors.New("rate limit exceeded")
)

// AppError wraps errors with additional context for HTTP responses
type AppError struct {
	Err        error  // The underlying error
	Message    string // User-friendly message
	Code       string // Machine-readable error code
	StatusCode int    // HTTP status code
	Details    map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewBadRequestError wraps a malformed request
func NewBadRequestError(err error, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       "BAD_REQUEST",
		StatusCode: 400,
	}
}

// ValidationErrors holds multiple field validation errors
type ValidationErrors struct {
	Errors map[string][]string `json:"errors"`
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make(map[string][]string),
	}
}

func (v *ValidationErrors) Add(field, message string) {
	v.Errors[field] = append(v.Errors[field], message)
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed: %d field(s) have errors", len(v.Errors))
}
