package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/service"
)

// ReviewHandler serves guest reviews. Creating or deleting one refreshes
// the listing's average rating.
type ReviewHandler struct {
	svc *service.ReviewService
}

func NewReviewHandler(svc *service.ReviewService) *ReviewHandler {
	if svc == nil {
		panic("nil ReviewService")
	}
	return &ReviewHandler{svc: svc}
}

func (h *ReviewHandler) Create(c echo.Context) error {
	var rv model.Review
	if err := c.Bind(&rv); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.svc.Create(ctx, &rv); err != nil {
		return fail(c, err, "create review")
	}
	return c.JSON(http.StatusCreated, rv)
}

// List returns every review, or those of ?accommodation= when given.
func (h *ReviewHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	var (
		list []model.Review
		err  error
	)
	if acc := c.QueryParam("accommodation"); acc != "" {
		list, err = h.svc.ListByAccommodation(ctx, acc)
	} else {
		list, err = h.svc.List(ctx)
	}
	if err != nil {
		return fail(c, err, "list reviews")
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ReviewHandler) ListByAccommodation(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.svc.ListByAccommodation(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err, "list reviews")
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ReviewHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.svc.Delete(ctx, c.Param("id")); err != nil {
		return fail(c, err, "delete review")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "review deleted"})
}
