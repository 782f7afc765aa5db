package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/invoicehub/invoicing-system/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors: a
// human-readable message plus a stable machine-readable kind.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>", "code": "<kind>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg, kind := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg, Code: kind})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message), httpErrorKind(he.Code)
	}

	// Known domain errors map to deterministic HTTP codes. Validation and
	// auth errors keep their own message; the rest use fixed phrasing.
	kind := domain.ErrorKind(err)
	switch {
	case errors.Is(err, domain.ErrMissingFields),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidMobileNumber),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrAttachmentNotFound):
		return http.StatusBadRequest, err.Error(), kind
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, "not authenticated", kind
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials", kind
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden", kind
	case errors.Is(err, domain.ErrInvoiceNotFound):
		return http.StatusNotFound, "invoice not found", kind
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found", kind
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists", kind
	case errors.Is(err, domain.ErrExportFailed):
		log.Error().Err(err).Str("path", c.Path()).Msg("export failed")
		return http.StatusInternalServerError, "invoice export failed", kind
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error", "backend"
}

// httpErrorKind maps transport-level statuses onto the same kind vocabulary
// the domain errors use.
func httpErrorKind(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "validation"
	case http.StatusUnauthorized:
		return "not_authenticated"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusServiceUnavailable:
		return "unavailable"
	default:
		return "backend"
	}
}
