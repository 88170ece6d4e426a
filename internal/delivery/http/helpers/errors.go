package helpers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventhub/internal/domain"
)

// WriteServiceError maps a service error to its HTTP status and error code.
// Unknown errors are logged and answered with 500.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, &APIError{Code: ErrCodeBadRequest, Message: ve.Message, Field: ve.Field})
	case errors.Is(err, domain.ErrInvalidInput):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		WriteJSONError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
	case errors.Is(err, domain.ErrForbidden):
		WriteJSONError(w, http.StatusForbidden, ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrAlreadyRegistered):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, "already registered")
	case errors.Is(err, domain.ErrReferenced):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, "resource is still referenced")
	case errors.Is(err, domain.ErrPaymentUnavailable):
		WriteJSONError(w, http.StatusBadRequest, ErrCodePaymentNotConfigured, "payments are not configured")
	case errors.Is(err, domain.ErrPaymentGateway):
		logger.WarnContext(r.Context(), "payment gateway failure", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusBadGateway, ErrCodeBadGateway, "payment gateway unavailable, try again later")
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}
