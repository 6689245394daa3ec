package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vacation-rental/internal/service"
)

// OccupancyHandler exposes the calendar of a listing. Every write goes
// through the conflict resolver in service.OccupancyService.
type OccupancyHandler struct {
	occ  *service.OccupancyService
	accs *service.AccommodationService
}

func NewOccupancyHandler(occ *service.OccupancyService, accs *service.AccommodationService) *OccupancyHandler {
	if occ == nil || accs == nil {
		panic("nil service passed to NewOccupancyHandler")
	}
	return &OccupancyHandler{occ: occ, accs: accs}
}

func (h *OccupancyHandler) Calendar(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	entries, err := h.occ.Calendar(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err, "load calendar")
	}
	return c.JSON(http.StatusOK, echo.Map{"occupancyCalendar": entries})
}

// Book adds {startDate, endDate, guestName, status} to the calendar.
// Days that are already taken are skipped and the accepted ranges are
// reported; a request with no free day is a 409.
func (h *OccupancyHandler) Book(c echo.Context) error {
	var req service.BookRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.occ.Book(ctx, c.Param("id"), req)
	if err != nil {
		return fail(c, err, "update occupancy calendar")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":           "occupancy calendar updated",
		"addedRanges":       res.Added,
		"addedCount":        res.Count,
		"occupancyCalendar": res.Entries,
	})
}

type bulkPushReq struct {
	OccupancyCalendar []service.BookRequest `json:"occupancyCalendar"`
}

// BulkPush books several entries in one call and reports each by index.
func (h *OccupancyHandler) BulkPush(c echo.Context) error {
	var req bulkPushReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if ok, err := authorizeOwner(c, h.accs, c.Param("id")); !ok {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	results, err := h.occ.BulkPush(ctx, c.Param("id"), req.OccupancyCalendar)
	if err != nil {
		return fail(c, err, "push occupancy calendar")
	}
	return c.JSON(http.StatusOK, echo.Map{"results": results})
}

// DeleteEntry is mounted under /accommodation/:id and at the root as
// /:accommodationId. An unknown entry id leaves the calendar as is.
func (h *OccupancyHandler) DeleteEntry(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		id = c.Param("accommodationId")
	}
	if ok, err := authorizeOwner(c, h.accs, id); !ok {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	entries, err := h.occ.DeleteEntry(ctx, id, c.Param("entryId"))
	if err != nil {
		return fail(c, err, "delete occupancy entry")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":           "occupancy entry deleted",
		"occupancyCalendar": entries,
	})
}
