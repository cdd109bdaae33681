package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed call so callers can branch without inspecting
// message text.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNetwork           Kind = "network"
	KindServer            Kind = "server"
	KindUnauthorized      Kind = "unauthorized"
	KindNotRegistered     Kind = "not_registered"
	KindAlreadyRegistered Kind = "already_registered"
	KindInvalidOTP        Kind = "invalid_otp"
)

// NetworkErrorMessage is surfaced for transport failures and timeouts.
const NetworkErrorMessage = "Network error – check your internet"

// Error is returned by every Client operation that fails.
type Error struct {
	Kind       Kind
	StatusCode int
	Code       string
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the transport error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// kindFromCode maps the structured code field of the backend contract.
func kindFromCode(code string) (Kind, bool) {
	switch Kind(code) {
	case KindNotRegistered, KindAlreadyRegistered, KindInvalidOTP, KindValidation, KindUnauthorized:
		return Kind(code), true
	}
	return "", false
}

type errorBody struct {
	Status  *bool  `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Detail  string `json:"detail"`
}

func (b errorBody) text() string {
	switch {
	case b.Message != "":
		return b.Message
	case b.Error != "":
		return b.Error
	default:
		return b.Detail
	}
}

// parseError builds an *Error from a non-2xx response.
func parseError(statusCode int, body []byte) *Error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	msg := eb.text()
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", statusCode)
	}

	kind, ok := kindFromCode(eb.Code)
	if !ok {
		switch statusCode {
		case http.StatusUnauthorized:
			kind = KindUnauthorized
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			kind = KindValidation
		default:
			kind = KindServer
		}
	}
	return &Error{Kind: kind, StatusCode: statusCode, Code: eb.Code, Message: msg}
}

// rejected builds an *Error from a 2xx response whose envelope says status:false.
func rejected(statusCode int, eb errorBody, fallback string) *Error {
	msg := eb.text()
	if msg == "" {
		msg = fallback
	}
	kind, ok := kindFromCode(eb.Code)
	if !ok {
		kind = KindServer
	}
	return &Error{Kind: kind, StatusCode: statusCode, Code: eb.Code, Message: msg}
}
