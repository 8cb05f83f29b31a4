package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError. Clients branch on these, not on the
// human-readable message.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeStorage         = "STORAGE_ERROR"
	CodeExternalService = "EXTERNAL_SERVICE_ERROR"
	CodeInternal        = "INTERNAL_ERROR"
)

// statusByCode maps error codes to the HTTP status a handler answers with.
var statusByCode = map[string]int{
	CodeValidation:      fiber.StatusBadRequest,
	CodeNotFound:        fiber.StatusNotFound,
	CodeUnauthorized:    fiber.StatusForbidden,
	CodeStorage:         fiber.StatusServiceUnavailable,
	CodeExternalService: fiber.StatusServiceUnavailable,
}

// ErrorResponse is the JSON body every failed request answers with.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError is the error type the service layer speaks. The Message is safe
// to show to clients; Err holds the underlying cause.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s with ID %v not found", resource, id)}
}

func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message}
}

// NewStorageError wraps a failure from the underlying store. Callers surface
// it as a generic failure without leaking query details to clients.
func NewStorageError(err error) *AppError {
	return &AppError{Code: CodeStorage, Message: "Storage operation failed", Err: err}
}

// NewExternalServiceError wraps a failure from an external collaborator
// (image host, mail relay, assistant backend).
func NewExternalServiceError(service string, err error) *AppError {
	return &AppError{Code: CodeExternalService, Message: service + " request failed", Err: err}
}

func NewInternalError(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "Internal server error", Err: err}
}

// RespondWithError writes the standard error body with the given status.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	response := ErrorResponse{Error: err.Error()}

	var appErr *AppError
	if errors.As(err, &appErr) {
		response.Error = appErr.Message
		response.Code = appErr.Code
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	}

	return c.Status(status).JSON(response)
}

// StatusForError maps an error to its HTTP status. Anything that is not an
// AppError with a known code maps to 500.
func StatusForError(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	if status, ok := statusByCode[appErr.Code]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}
