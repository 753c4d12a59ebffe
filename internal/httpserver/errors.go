package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tube_accounts/internal/logging"
	"github.com/Skotchmaster/tube_accounts/internal/service"
	"github.com/Skotchmaster/tube_accounts/internal/transport"
)

// toHTTPError maps a service error onto its status code and client message.
func toHTTPError(err error) *echo.HTTPError {
	msg := service.Message(err, "Internal server error")
	switch {
	case errors.Is(err, service.ErrBadRequest):
		return echo.NewHTTPError(http.StatusBadRequest, msg).SetInternal(err)
	case errors.Is(err, service.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, msg).SetInternal(err)
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, msg).SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, msg).SetInternal(err)
	}
}

// ErrorHandler renders every error as the JSON error envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	details := []string{}

	var he *echo.HTTPError
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		status = http.StatusBadRequest
		message = "Validation failed"
		details = ve.Messages()
	case errors.As(err, &he):
		status = he.Code
		message = fmt.Sprint(he.Message)
		if status >= http.StatusInternalServerError && he.Internal != nil {
			logging.FromContext(c.Request().Context()).Error("request_failed", "status", status, "error", he.Internal)
		}
	default:
		logging.FromContext(c.Request().Context()).Error("request_failed", "status", status, "error", err)
	}

	env := transport.NewErrorEnvelope(status, message, details...)
	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, env)
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("error_response_failed", "error", werr)
	}
}
