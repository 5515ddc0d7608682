package middleware

import (
	"time"

	applogger "SmartTrade/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs every request with method, path, status, and
// latency. A nil logger disables logging without changing the chain.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if l == nil {
				return err
			}

			req := c.Request()
			fields := []applogger.Field{
				applogger.String("method", req.Method),
				applogger.String("path", req.RequestURI),
				applogger.String("remote", c.RealIP()),
				applogger.Int("status", c.Response().Status),
				applogger.Duration("latency", time.Since(start)),
			}

			if err != nil {
				l.Error("http request", append(fields, applogger.Error(err))...)
			} else {
				l.Info("http request", fields...)
			}

			return err
		}
	}
}
