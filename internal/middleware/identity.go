package middleware

import "github.com/labstack/echo/v4"

// UserID returns the authenticated user's id, or "" for anonymous requests.
func UserID(c echo.Context) string {
	s, _ := c.Get(ctxUserID).(string)
	return s
}

// Role returns the authenticated user's role, or "".
func Role(c echo.Context) string {
	s, _ := c.Get(ctxRole).(string)
	return s
}

// subject names the caller for rate-limit keys.
func subject(c echo.Context) string {
	if id := UserID(c); id != "" {
		return id
	}
	return "anon"
}
