package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"finderent-backend/internal/services"
)

// AppError carries an explicit HTTP status for the central error handler.
type AppError struct {
	Code    int
	Message string
}

func (e *AppError) Error() string { return e.Message }

func NewAppError(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// ErrorHandler is fiber's central error handler. Every error surfaces as
// the JSON envelope {status, message}: "fail" for client errors, "error"
// for server errors.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var appErr *AppError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
	case errors.Is(err, services.ErrNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, services.ErrInvalidCredentials):
		code = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrUserExists),
		errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrInvalidInput):
		code = fiber.StatusBadRequest
	}

	status := "error"
	if code < 500 {
		status = "fail"
	}
	return c.Status(code).JSON(fiber.Map{"status": status, "message": err.Error()})
}

// NotFoundHandler answers every unmatched route.
func NotFoundHandler(c *fiber.Ctx) error {
	return NewAppError(fiber.StatusNotFound,
		fmt.Sprintf("Can't find %s on this server", c.OriginalURL()))
}
