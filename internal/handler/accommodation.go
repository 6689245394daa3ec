package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vacation-rental/internal/middleware"
	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/service"
)

// AccommodationHandler serves listing CRUD, search and counters.
type AccommodationHandler struct {
	svc *service.AccommodationService
}

func NewAccommodationHandler(svc *service.AccommodationService) *AccommodationHandler {
	if svc == nil {
		panic("nil AccommodationService")
	}
	return &AccommodationHandler{svc: svc}
}

// Create stores a new listing. Hosts always own what they create; an admin
// may create on behalf of the userId in the body.
func (h *AccommodationHandler) Create(c echo.Context) error {
	var a model.Accommodation
	if err := c.Bind(&a); err != nil {
		return badRequest(c, "invalid body")
	}
	if middleware.Role(c) != model.RoleAdmin || strings.TrimSpace(a.UserID) == "" {
		a.UserID = middleware.UserID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.svc.Create(ctx, &a); err != nil {
		return fail(c, err, "create accommodation")
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *AccommodationHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.svc.List(ctx)
	if err != nil {
		return fail(c, err, "list accommodations")
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AccommodationHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	a, err := h.svc.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err, "get accommodation")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *AccommodationHandler) ListByOwner(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.svc.ListByOwner(ctx, c.Param("userId"))
	if err != nil {
		return fail(c, err, "list accommodations")
	}
	return c.JSON(http.StatusOK, list)
}

// Update overlays the JSON body onto the stored listing.
func (h *AccommodationHandler) Update(c echo.Context) error {
	patch, err := rawBody(c)
	if err != nil {
		return badRequest(c, "invalid body")
	}
	if ok, err := authorizeOwner(c, h.svc, c.Param("id")); !ok {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	a, err := h.svc.Update(ctx, c.Param("id"), patch)
	if err != nil {
		return fail(c, err, "update accommodation")
	}
	return c.JSON(http.StatusOK, a)
}

// Delete archives the listing; it can be restored until purged.
func (h *AccommodationHandler) Delete(c echo.Context) error {
	if ok, err := authorizeOwner(c, h.svc, c.Param("id")); !ok {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.svc.Archive(ctx, c.Param("id")); err != nil {
		return fail(c, err, "delete accommodation")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "accommodation moved to archive"})
}

func (h *AccommodationHandler) ListDeleted(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.svc.ListArchived(ctx)
	if err != nil {
		return fail(c, err, "list deleted accommodations")
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AccommodationHandler) Restore(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	a, err := h.svc.Restore(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err, "restore accommodation")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *AccommodationHandler) Purge(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.svc.Purge(ctx, c.Param("id")); err != nil {
		return fail(c, err, "purge accommodation")
	}
	return c.NoContent(http.StatusNoContent)
}

// Search applies the typed multi-filter query string.
func (h *AccommodationHandler) Search(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.svc.Search(ctx, c.QueryParams())
	if err != nil {
		return fail(c, err, "search accommodations")
	}
	return c.JSON(http.StatusOK, list)
}

// SimpleSearch matches any of category, city, country or location.
func (h *AccommodationHandler) SimpleSearch(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.svc.SimpleSearch(ctx, c.QueryParams())
	if err != nil {
		return fail(c, err, "search accommodations")
	}
	return c.JSON(http.StatusOK, list)
}

// Counter returns a handler bumping one of the listing counters.
func (h *AccommodationHandler) Counter(counter string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := reqCtx(c)
		defer cancel()
		a, err := h.svc.Increment(ctx, c.Param("id"), counter)
		if err != nil {
			return fail(c, err, "update counter")
		}
		return c.JSON(http.StatusOK, echo.Map{
			model.CounterViews:            a.Views,
			model.CounterClicks:           a.Clicks,
			model.CounterCustomerInterest: a.CustomerInterest,
		})
	}
}

type deleteImageReq struct {
	ImageURL string `json:"imageUrl"`
}

func (h *AccommodationHandler) DeleteImage(c echo.Context) error {
	var req deleteImageReq
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if ok, err := authorizeOwner(c, h.svc, c.Param("id")); !ok {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	images, err := h.svc.DeleteImage(ctx, c.Param("id"), req.ImageURL)
	if err != nil {
		return fail(c, err, "delete image")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "image deleted", "images": images})
}

// authorizeOwner lets admins through and hosts only onto their own
// listings. When it returns false the response has been written.
func authorizeOwner(c echo.Context, svc *service.AccommodationService, id string) (bool, error) {
	if middleware.Role(c) == model.RoleAdmin {
		return true, nil
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	a, err := svc.Get(ctx, id)
	if err != nil {
		return false, fail(c, err, "load accommodation")
	}
	if a.UserID != middleware.UserID(c) {
		return false, c.JSON(http.StatusForbidden, echo.Map{"error": "not your accommodation"})
	}
	return true, nil
}
