package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userdeck/user-directory-api/internal/core/domain"
)

// errorResponse is the canonical error envelope. The discriminator field
// is stable so clients can branch on it deterministically.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// validationResponse carries one issue per violated field.
type validationResponse struct {
	Error  string         `json:"error"`
	Issues []domain.Issue `json:"issues"`
}

// conflictResponse is the 409 envelope; it keys on "conflict" rather than
// "error", mirroring what API clients already depend on.
type conflictResponse struct {
	Conflict string `json:"conflict"`
	Message  string `json:"message"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Renders field-level issues for validation failures.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			_ = c.JSON(http.StatusBadRequest, validationResponse{
				Error:  "ValidationError",
				Issues: ve.Issues,
			})
			return
		}

		if errors.Is(err, domain.ErrEmailTaken) {
			_ = c.JSON(http.StatusConflict, conflictResponse{
				Conflict: "Conflict",
				Message:  "email already in use",
			})
			return
		}

		code, resp := resolveError(err, log, c)
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: "NotFound", Message: "user not found"}
	case errors.Is(err, domain.ErrTokenMissing),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "Unauthorized", Message: err.Error()}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "Forbidden", Message: "you do not have permission to access this resource"}
	}

	// Echo's own errors (404 from the router, method not allowed, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{
			Error:   http.StatusText(he.Code),
			Message: fmt.Sprintf("%v", he.Message),
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{
		Error:   "InternalServerError",
		Message: "something unexpected happened",
	}
}
