package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddelware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/authorizedtester/testgate/pkg/gate"
)

// RequestLogger logs every request at logLevel. Client errors are raised to
// warn and server errors to error if logLevel is lower.
func RequestLogger(logger zerolog.Logger, logLevel zerolog.Level) echo.MiddlewareFunc {
	return echomiddelware.RequestLoggerWithConfig(echomiddelware.RequestLoggerConfig{
		LogMethod:       true,
		LogURI:          true,
		LogStatus:       true,
		LogResponseSize: true,
		LogLatency:      true,
		LogReferer:      true,
		LogUserAgent:    true,
		LogRequestID:    true,
		LogValuesFunc: func(c echo.Context, v echomiddelware.RequestLoggerValues) error {
			level := logLevel
			if v.Status >= http.StatusInternalServerError && level < zerolog.ErrorLevel {
				level = zerolog.ErrorLevel
			} else if v.Status >= http.StatusBadRequest && level < zerolog.WarnLevel {
				level = zerolog.WarnLevel
			}
			logger.WithLevel(level).
				Str("Method", v.Method).
				Str("URI", v.URI).
				Str("RemoteAddr", c.Request().RemoteAddr).
				Int("StatusCode", v.Status).
				Int64("Size", v.ResponseSize).
				Dur("Duration", v.Latency).
				Str("Referer", v.Referer).
				Str("UserAgent", v.UserAgent).
				Str("RequestID", v.RequestID).
				Str("TestUser", c.Response().Header().Get(gate.MarkerHeader)).
				Send()
			return nil
		},
	})
}
