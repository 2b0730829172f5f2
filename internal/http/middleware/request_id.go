package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestID tags every request with an X-Request-ID, honoring one
// supplied by the caller so report requests can be correlated across
// proxies and logs.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.New().String()
			}

			c.Response().Header().Set("X-Request-ID", id)
			c.Set("request_id", id)

			return next(c)
		}
	}
}
