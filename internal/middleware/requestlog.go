package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/vacation-rental/internal/applog"
)

// RequestLog writes one structured line per request through applog.
func RequestLog() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			kv := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"ip", v.RemoteIP,
				"request_id", v.RequestID,
			}
			if uid := UserID(c); uid != "" {
				kv = append(kv, "user", uid)
			}
			if v.Error != nil {
				applog.Error("request", v.Error, kv...)
				return nil
			}
			applog.Info("request", kv...)
			return nil
		},
	})
}
