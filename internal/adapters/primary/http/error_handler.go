package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	mw "github.com/lorrc/voice2ticket/internal/adapters/primary/http/middleware"
	apperrors "github.com/lorrc/voice2ticket/internal/core/errors"
)

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	return mw.GetRequestID(ctx)
}

// ErrorResponse is the standard JSON error response format
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ValidationErrorResponse includes field-level validation errors
type ValidationErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// ErrorHandler provides centralized error handling with logging
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler with the given logger
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle processes an error and writes the appropriate HTTP response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	// Check for AppError first. Ones raised below the HTTP layer carry no
	// status and are mapped like any other domain error.
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.StatusCode != 0 {
		h.logError(r, appErr.StatusCode, appErr.Err)
		h.writeErrorResponse(w, appErr.StatusCode, ErrorResponse{
			Error:   appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		})
		return
	}

	// Check for ValidationErrors
	var validationErrs *apperrors.ValidationErrors
	if errors.As(err, &validationErrs) {
		h.logError(r, http.StatusUnprocessableEntity, err)
		h.writeValidationErrorResponse(w, validationErrs)
		return
	}

	// Map known domain errors to HTTP responses
	statusCode, response := h.mapDomainError(err)
	h.logError(r, statusCode, err)
	h.writeErrorResponse(w, statusCode, response)
}

// mapDomainError converts domain errors to HTTP status codes and responses
func (h *ErrorHandler) mapDomainError(err error) (int, ErrorResponse) {
	switch {
	// Console binding & session
	case errors.Is(err, apperrors.ErrNoSession):
		return http.StatusUnauthorized, ErrorResponse{
			Error: "Sign in first",
			Code:  "NO_SESSION",
		}
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{
			Error: "You do not have permission to perform this action",
			Code:  "FORBIDDEN",
		}
	case errors.Is(err, apperrors.ErrConsoleNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error: "Console not found",
			Code:  "CONSOLE_NOT_FOUND",
		}

	// Validation errors
	case errors.Is(err, apperrors.ErrCredentialsEmpty),
		errors.Is(err, apperrors.ErrSignupIncomplete),
		errors.Is(err, apperrors.ErrTitleRequired),
		errors.Is(err, apperrors.ErrDescriptionRequired),
		errors.Is(err, apperrors.ErrInvalidPriority),
		errors.Is(err, apperrors.ErrInvalidDepartment),
		errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		}

	// Recorder state
	case errors.Is(err, apperrors.ErrMicPermissionDenied):
		return http.StatusForbidden, ErrorResponse{
			Error: "Microphone permission denied",
			Code:  "MIC_PERMISSION_DENIED",
		}
	case errors.Is(err, apperrors.ErrRecordingActive):
		return http.StatusConflict, ErrorResponse{
			Error: "A recording is already in progress",
			Code:  "RECORDING_ACTIVE",
		}
	case errors.Is(err, apperrors.ErrNotRecording):
		return http.StatusConflict, ErrorResponse{
			Error: "No recording in progress",
			Code:  "NOT_RECORDING",
		}
	case errors.Is(err, apperrors.ErrNoRecording):
		return http.StatusConflict, ErrorResponse{
			Error: "No recording to upload",
			Code:  "NO_RECORDING",
		}

	// Upstream collaborators
	case errors.Is(err, apperrors.ErrUploadFailed):
		return http.StatusBadGateway, ErrorResponse{
			Error: err.Error(),
			Code:  "UPLOAD_FAILED",
		}
	case errors.Is(err, apperrors.ErrListFailed):
		return http.StatusBadGateway, ErrorResponse{
			Error: err.Error(),
			Code:  "LIST_FAILED",
		}
	case errors.Is(err, apperrors.ErrStorageCredentials):
		return http.StatusBadGateway, ErrorResponse{
			Error: "Storage credentials unavailable",
			Code:  "STORAGE_CREDENTIALS",
		}
	case errors.Is(err, apperrors.ErrTicketAPI):
		return http.StatusBadGateway, ErrorResponse{
			Error: "Ticket API unavailable",
			Code:  "TICKET_API",
		}

	// Rate limiting
	case errors.Is(err, apperrors.ErrRateLimited):
		return http.StatusTooManyRequests, ErrorResponse{
			Error: "Too many requests. Please try again later.",
			Code:  "RATE_LIMITED",
		}

	// Default to internal server error
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error: "An unexpected error occurred",
			Code:  "INTERNAL_ERROR",
		}
	}
}

// logError logs the error with appropriate context
func (h *ErrorHandler) logError(r *http.Request, statusCode int, err error) {
	logAttrs := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status_code", statusCode,
		"error", err.Error(),
	}

	// Log at different levels based on status code
	switch {
	case statusCode >= 500:
		h.logger.ErrorContext(r.Context(), "server error", logAttrs...)
	case statusCode >= 400:
		h.logger.WarnContext(r.Context(), "client error", logAttrs...)
	default:
		h.logger.InfoContext(r.Context(), "request error", logAttrs...)
	}
}

// writeErrorResponse writes a JSON error response
func (h *ErrorHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, response ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

// writeValidationErrorResponse writes a validation error response
func (h *ErrorHandler) writeValidationErrorResponse(w http.ResponseWriter, errs *apperrors.ValidationErrors) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	_ = json.NewEncoder(w).Encode(ValidationErrorResponse{
		Error:  "Validation failed",
		Code:   "VALIDATION_ERROR",
		Fields: errs.Errors,
	})
}
