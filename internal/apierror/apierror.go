// Package apierror defines the sandbox's JSON error envelope. The code field
// is what clients branch on; the message is for display.
package apierror

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// APIError is rendered as {"status": false, "code": ..., "message": ...}.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// WithMessage returns a copy of the error with a custom message.
func (e *APIError) WithMessage(message string) *APIError {
	return &APIError{Code: e.Code, Message: message, StatusCode: e.StatusCode}
}

var (
	ErrNotRegistered = &APIError{
		Code:       "not_registered",
		Message:    "User not registered. Please register first.",
		StatusCode: http.StatusNotFound,
	}

	ErrInvalidOTP = &APIError{
		Code:       "invalid_otp",
		Message:    "Invalid OTP",
		StatusCode: http.StatusBadRequest,
	}

	ErrAlreadyRegistered = &APIError{
		Code:       "already_registered",
		Message:    "User already registered. Please login.",
		StatusCode: http.StatusConflict,
	}

	ErrValidation = &APIError{
		Code:       "validation",
		Message:    "Invalid request",
		StatusCode: http.StatusUnprocessableEntity,
	}

	ErrUnauthorized = &APIError{
		Code:       "unauthorized",
		Message:    "Authentication required",
		StatusCode: http.StatusUnauthorized,
	}

	ErrNotFound = &APIError{
		Code:       "not_found",
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrRateLimited = &APIError{
		Code:       "rate_limited",
		Message:    "Too many requests. Please try again later.",
		StatusCode: http.StatusTooManyRequests,
	}

	ErrInternal = &APIError{
		Code:       "internal_error",
		Message:    "An internal error occurred",
		StatusCode: http.StatusInternalServerError,
	}
)

type envelope struct {
	Status  bool   `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Handler is the fiber ErrorHandler rendering every failure in the envelope.
func Handler(c *fiber.Ctx, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return c.Status(apiErr.StatusCode).JSON(envelope{Code: apiErr.Code, Message: apiErr.Message})
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(envelope{Code: codeForStatus(fe.Code), Message: fe.Message})
	}
	return c.Status(http.StatusInternalServerError).JSON(envelope{Code: ErrInternal.Code, Message: ErrInternal.Message})
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return ErrUnauthorized.Code
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrValidation.Code
	case http.StatusNotFound:
		return ErrNotFound.Code
	case http.StatusTooManyRequests:
		return ErrRateLimited.Code
	default:
		return ""
	}
}
