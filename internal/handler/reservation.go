package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/service"
)

// ReservationHandler serves guest stay requests and their archive.
type ReservationHandler struct {
	svc *service.ReservationService
}

func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	if svc == nil {
		panic("nil ReservationService")
	}
	return &ReservationHandler{svc: svc}
}

func (h *ReservationHandler) Create(c echo.Context) error {
	var r model.Reservation
	if err := c.Bind(&r); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.svc.Create(ctx, &r); err != nil {
		return fail(c, err, "create reservation")
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *ReservationHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.svc.List(ctx)
	if err != nil {
		return fail(c, err, "list reservations")
	}
	return c.JSON(http.StatusOK, list)
}

// Get accepts ids wrapped in braces or quotes as some clients send them.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, err := service.SanitizeID(c.Param("id"))
	if err != nil {
		return fail(c, err, "get reservation")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	r, err := h.svc.Get(ctx, id)
	if err != nil {
		return fail(c, err, "get reservation")
	}
	return c.JSON(http.StatusOK, r)
}

func (h *ReservationHandler) Update(c echo.Context) error {
	id, err := service.SanitizeID(c.Param("id"))
	if err != nil {
		return fail(c, err, "update reservation")
	}
	patch, err := rawBody(c)
	if err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	r, err := h.svc.Update(ctx, id, patch)
	if err != nil {
		return fail(c, err, "update reservation")
	}
	return c.JSON(http.StatusOK, r)
}

func (h *ReservationHandler) Delete(c echo.Context) error {
	id, err := service.SanitizeID(c.Param("id"))
	if err != nil {
		return fail(c, err, "delete reservation")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.svc.Archive(ctx, id); err != nil {
		return fail(c, err, "delete reservation")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reservation moved to archive"})
}

func (h *ReservationHandler) ListDeleted(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.svc.ListArchived(ctx)
	if err != nil {
		return fail(c, err, "list deleted reservations")
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ReservationHandler) Restore(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	r, err := h.svc.Restore(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err, "restore reservation")
	}
	return c.JSON(http.StatusOK, r)
}

func (h *ReservationHandler) Purge(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.svc.Purge(ctx, c.Param("id")); err != nil {
		return fail(c, err, "purge reservation")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ReservationHandler) ListByUser(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.svc.ListByUser(ctx, c.Param("userId"))
	if err != nil {
		return fail(c, err, "list reservations")
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ReservationHandler) ListByProvider(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.svc.ListByProvider(ctx, c.Param("providerId"))
	if err != nil {
		return fail(c, err, "list reservations")
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ReservationHandler) ListByName(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.svc.ListByName(ctx, c.Param("name"))
	if err != nil {
		return fail(c, err, "list reservations")
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ReservationHandler) UpdateByName(c echo.Context) error {
	patch, err := rawBody(c)
	if err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	r, err := h.svc.UpdateByName(ctx, c.Param("name"), patch)
	if err != nil {
		return fail(c, err, "update reservation")
	}
	return c.JSON(http.StatusOK, r)
}

func (h *ReservationHandler) DeleteByUser(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	n, err := h.svc.DeleteByUser(ctx, c.Param("userId"))
	if err != nil {
		return fail(c, err, "delete reservations")
	}
	return c.JSON(http.StatusOK, echo.Map{"deletedCount": n})
}
