// Package router registers the HTTP routes and their guards.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vacation-rental/internal/handler"
	"github.com/iliyamo/vacation-rental/internal/middleware"
	"github.com/iliyamo/vacation-rental/internal/model"
)

// Guards holds the middleware chains routes are registered with. Chains
// are attached per route rather than per group so an unknown path still
// gets a plain 404 instead of an auth error.
type Guards struct {
	secret string
	cache  echo.MiddlewareFunc
	limit  echo.MiddlewareFunc
}

// NewGuards builds the route guards. cache and limit may be nil.
func NewGuards(jwtSecret string, cache, limit echo.MiddlewareFunc) Guards {
	noop := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	if cache == nil {
		cache = noop
	}
	if limit == nil {
		limit = noop
	}
	return Guards{secret: jwtSecret, cache: cache, limit: limit}
}

// public reads go through the response cache.
func (g Guards) public() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{g.cache}
}

// open writes need no account but are rate limited.
func (g Guards) open() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{g.limit}
}

func (g Guards) user() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{middleware.JWTAuth(g.secret), g.limit}
}

func (g Guards) host() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.JWTAuth(g.secret),
		middleware.RequireRole(model.RoleHost, model.RoleAdmin),
		g.limit,
	}
}

func (g Guards) admin() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.JWTAuth(g.secret),
		middleware.RequireRole(model.RoleAdmin),
		g.limit,
	}
}

// RegisterRoutes registers the liveness and readiness probes.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterAuth registers account and token endpoints under /v1/auth.
// Logout accepts either a refresh token or a bearer token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, g Guards) {
	auth := e.Group("/v1/auth")
	auth.POST("/register", a.Register, g.open()...)
	auth.POST("/login", a.Login, g.open()...)
	auth.POST("/refresh", a.Refresh, g.open()...)
	auth.POST("/logout", a.Logout, middleware.OptionalJWT(g.secret))
	auth.GET("/me", a.Me, g.user()...)
}
