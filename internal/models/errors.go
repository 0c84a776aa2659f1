package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the standardized API error body.
type ErrorResponse struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// FieldErrors maps field names to validation messages. Rendered as a bare
// JSON object, not wrapped in ErrorResponse.
type FieldErrors map[string]string

// AppError represents a custom application error with an HTTP status.
type AppError struct {
	Status  int
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

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Status:  fiber.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewBadRequestError(message string) *AppError {
	return &AppError{
		Status:  fiber.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Status:  fiber.StatusUnauthorized,
		Code:    "UNAUTHORIZED",
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Status:  fiber.StatusForbidden,
		Code:    "FORBIDDEN",
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Status:  fiber.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
		Err:     err,
	}
}

// RespondWithError writes the standardized error body. The HTTP status comes
// from the AppError when err is one, otherwise from the status argument.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	message := err.Error()

	var appErr *AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
		if appErr.Status != 0 {
			status = appErr.Status
		}
	}

	return c.Status(status).JSON(ErrorResponse{
		Status:    status,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// RespondWithFieldErrors writes field validation failures as a bare
// {field: message} object with a 400 status.
func RespondWithFieldErrors(c *fiber.Ctx, fields FieldErrors) error {
	return c.Status(fiber.StatusBadRequest).JSON(fields)
}
