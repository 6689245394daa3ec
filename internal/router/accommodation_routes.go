package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vacation-rental/internal/handler"
	"github.com/iliyamo/vacation-rental/internal/model"
)

// RegisterAccommodations registers listing, calendar and ICS routes.
// Static segments (deleted, search, restore, user) take precedence over
// :id in echo's router, so the order below is not significant.
func RegisterAccommodations(e *echo.Echo, a *handler.AccommodationHandler, o *handler.OccupancyHandler, cal *handler.CalendarHandler, g Guards) {
	acc := e.Group("/accommodation")

	// ---- Listings ----
	acc.POST("", a.Create, g.host()...)
	acc.GET("", a.List, g.public()...)
	acc.GET("/search", a.Search, g.public()...)
	acc.GET("/user/:userId", a.ListByOwner, g.public()...)
	acc.GET("/:id", a.Get, g.public()...)
	acc.PUT("/:id", a.Update, g.host()...)
	acc.DELETE("/:id", a.Delete, g.host()...)
	acc.DELETE("/:id/images", a.DeleteImage, g.host()...)
	e.GET("/accommodations/searching", a.SimpleSearch, g.public()...)

	// ---- Archive ----
	acc.GET("/deleted", a.ListDeleted, g.admin()...)
	acc.PUT("/restore/:id", a.Restore, g.admin()...)
	acc.DELETE("/deleted/:id", a.Purge, g.admin()...)

	// ---- Counters ----
	acc.PUT("/:id/view", a.Counter(model.CounterViews), g.open()...)
	acc.PUT("/:id/click", a.Counter(model.CounterClicks), g.open()...)
	acc.PUT("/:id/interest", a.Counter(model.CounterCustomerInterest), g.open()...)

	// ---- Occupancy calendar ----
	// Calendar reads skip the cache; they must reflect the last booking.
	acc.GET("/:id/occupancyCalendar", o.Calendar)
	acc.PUT("/:id/occupancyCalendar", o.Book, g.open()...)
	acc.PUT("/updateOccupancyCalendar/:id", o.BulkPush, g.host()...)
	acc.DELETE("/:id/occupancy/:entryId", o.DeleteEntry, g.host()...)
	e.DELETE("/:accommodationId/occupancy/:entryId", o.DeleteEntry, g.host()...)

	// ---- ICS ----
	acc.GET("/:id/calendar.ics", cal.Export)
	acc.POST("/:id/calendar/sync", cal.Sync, g.host()...)
	e.GET("/calendar", cal.Preview, g.open()...)
	e.GET("/calendar/:calendarId/:secretToken", cal.PreviewAirbnb, g.open()...)
	e.POST("/calendar/sync", cal.SyncAll, g.admin()...)
}
