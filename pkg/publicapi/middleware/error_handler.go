package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/authorizedtester/testgate/pkg/models"
	"github.com/authorizedtester/testgate/pkg/publicapi/apimodels"
)

// CustomHTTPErrorHandler renders errors returned by handlers, such as proxy
// failures, as an APIError body. The gate itself never returns errors.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	var (
		code      int
		message   string
		errorCode string
		component string
		hint      string
	)

	var baseErr *models.BaseError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &baseErr):
		code = baseErr.HTTPStatusCode()
		if code == 0 {
			code = http.StatusInternalServerError
		}
		message = baseErr.Error()
		errorCode = string(baseErr.Code())
		component = baseErr.Component()
		hint = baseErr.Hint()

	case errors.As(err, &httpErr):
		// Errors raised by echo itself or by its middleware, e.g. the proxy
		// failing to reach the upstream.
		code = httpErr.Code
		message, _ = httpErr.Message.(string)
		if message == "" {
			message = http.StatusText(code)
		}
		errorCode = string(models.InternalError)
		if code == http.StatusBadGateway {
			errorCode = string(models.UpstreamUnavailable)
		}
		component = "APIServer"
		if c.Echo().Debug && httpErr.Internal != nil {
			message += ". " + httpErr.Internal.Error()
		}

	default:
		code = http.StatusInternalServerError
		message = "Internal server error"
		errorCode = string(models.InternalError)
		component = "Unknown"

		if c.Echo().Debug {
			message += ". " + err.Error()
		}
	}

	// Don't override the status code if it has already been set.
	if c.Response().Committed {
		return
	}

	apiError := apimodels.APIError{
		HTTPStatusCode: code,
		Message:        message,
		RequestID:      c.Response().Header().Get(echo.HeaderXRequestID),
		Code:           errorCode,
		Component:      component,
		Hint:           hint,
	}
	if apiError.RequestID == "" {
		apiError.RequestID = c.Request().Header.Get(echo.HeaderXRequestID)
	}

	var responseErr error
	if c.Request().Method == http.MethodHead {
		responseErr = c.NoContent(code)
	} else {
		responseErr = c.JSON(code, apiError)
	}
	if responseErr != nil {
		log.Ctx(c.Request().Context()).Error().Err(responseErr).
			Str("original_error", err.Error()).
			Msg("Failed to send error response")
	}
}
