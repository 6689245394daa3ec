package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vacation-rental/internal/handler"
)

// RegisterReservations registers the /reservations routes. Creating a
// reservation is open to anonymous guests; reading one needs an account,
// managing them needs a host and the archive is admin only.
func RegisterReservations(e *echo.Echo, r *handler.ReservationHandler, g Guards) {
	res := e.Group("/reservations")

	res.POST("", r.Create, g.open()...)
	res.GET("", r.List, g.admin()...)
	res.GET("/:id", r.Get, g.user()...)
	res.PUT("/:id", r.Update, g.host()...)
	res.DELETE("/:id", r.Delete, g.host()...)

	res.GET("/user/:userId", r.ListByUser, g.user()...)
	res.DELETE("/user/:userId", r.DeleteByUser, g.admin()...)
	res.GET("/provider/:providerId", r.ListByProvider, g.host()...)
	res.GET("/name/:name", r.ListByName, g.host()...)
	res.PUT("/name/:name", r.UpdateByName, g.host()...)

	res.GET("/deleted", r.ListDeleted, g.admin()...)
	res.PUT("/restore/:id", r.Restore, g.admin()...)
	res.DELETE("/deleted/:id", r.Purge, g.admin()...)
}
