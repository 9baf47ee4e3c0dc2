// Package apperr defines the error taxonomy shared across the checkout
// service and its mapping to classification kinds and HTTP statuses.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrGatewayUnavailable is returned when the payment gateway cannot be
// reached or refuses to issue an access token.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// ValidationError reports malformed or missing caller input.
// It is never retried and maps to a client-side failure.
type ValidationError struct {
	msg string
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string { return e.msg }
func (e *ValidationError) Kind() string  { return "bad_request" }

// GatewayError reports a failed gateway operation after translation.
// Message is short and user-safe; StatusCode carries the upstream
// HTTP status when known, 0 otherwise.
type GatewayError struct {
	Message    string
	StatusCode int
}

// Gateway builds a GatewayError carrying an upstream status code.
func Gateway(message string, statusCode int) *GatewayError {
	return &GatewayError{Message: message, StatusCode: statusCode}
}

func (e *GatewayError) Error() string { return e.Message }
func (e *GatewayError) Kind() string  { return "gateway_error" }

// kinder is satisfied by domain errors
// that carry a classification kind.
type kinder interface {
	Kind() string
}

// Kind returns the classification kind of an error.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	var k kinder
	if errors.As(err, &k) {
		return k.Kind()
	}
	switch {
	case errors.Is(err, ErrGatewayUnavailable):
		return "gateway_unavailable"

	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"

	case errors.Is(err, context.Canceled):
		return "canceled"

	default:
		return "internal"
	}
}

// HTTPStatus maps an error to the HTTP status code written to the caller.
func HTTPStatus(err error) int {
	switch Kind(err) {
	case "":
		return http.StatusOK

	case "bad_request":
		return http.StatusBadRequest

	case "gateway_error", "gateway_unavailable":
		return http.StatusBadGateway

	case "timeout":
		return http.StatusGatewayTimeout

	case "canceled":
		return http.StatusRequestTimeout

	default:
		return http.StatusInternalServerError
	}
}
