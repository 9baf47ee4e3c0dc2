package httptransport

import (
	"errors"
	"net/http"

	"github.com/storefront/checkout/internal/apperr"
	"github.com/storefront/checkout/internal/model"
)

// safeMessage returns the user-facing message for an error. Validation
// and gateway errors carry short, already-translated messages; anything
// else is replaced by a generic one so internals never leak.
func safeMessage(err error) string {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var ge *apperr.GatewayError
	if errors.As(err, &ge) {
		return ge.Message
	}
	if errors.Is(err, apperr.ErrGatewayUnavailable) {
		return "payment gateway unavailable"
	}
	return "payment processing failed"
}

// writeError maps err to an HTTP status and writes the error payload.
func writeError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusOK {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, model.ErrorPayload{Message: safeMessage(err)})
}
