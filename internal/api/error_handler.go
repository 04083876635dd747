package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/task-manager/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Message string             `json:"message"`
	Errors  *validationDetails `json:"errors,omitempty"`
}

type validationDetails struct {
	FormErrors  []string            `json:"formErrors"`
	FieldErrors map[string][]string `json:"fieldErrors"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain
// error kinds to status codes and renders {"message": ...}. Unexpected
// errors are logged with their stack and answered with a generic 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		details := &validationDetails{FormErrors: ve.Form, FieldErrors: ve.Fields}
		if details.FormErrors == nil {
			details.FormErrors = []string{}
		}
		if details.FieldErrors == nil {
			details.FieldErrors = map[string][]string{}
		}
		return http.StatusBadRequest, errorResponse{Message: "Validation error", Errors: details}
	}

	var de *domain.Error
	if errors.As(err, &de) {
		return statusForKind(de.Kind), errorResponse{Message: de.Message}
	}

	// Echo's own errors: unknown routes, body limit, rate limit.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			req := c.Request()
			return http.StatusNotFound, errorResponse{
				Message: fmt.Sprintf("Route not found: %s %s", req.Method, req.URL.RequestURI()),
			}
		}
		if he.Code >= http.StatusInternalServerError {
			logUnhandled(log, c, err)
		}
		return he.Code, errorResponse{Message: fmt.Sprintf("%v", he.Message)}
	}

	logUnhandled(log, c, err)
	return http.StatusInternalServerError, errorResponse{Message: "Internal Server Error"}
}

func statusForKind(kind error) int {
	switch {
	case errors.Is(kind, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(kind, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(kind, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(kind, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(kind, domain.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func logUnhandled(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Stack().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
}
