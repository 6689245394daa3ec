package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vacation-rental/internal/middleware"
	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/service"
)

type LoginHistoryHandler struct {
	svc *service.LoginHistoryService
}

func NewLoginHistoryHandler(svc *service.LoginHistoryService) *LoginHistoryHandler {
	if svc == nil {
		panic("nil LoginHistoryService")
	}
	return &LoginHistoryHandler{svc: svc}
}

// ByHost lists the sign-ins of ?hostId=. Hosts only see their own.
func (h *LoginHistoryHandler) ByHost(c echo.Context) error {
	hostID := c.QueryParam("hostId")
	if middleware.Role(c) == model.RoleHost {
		hostID = middleware.UserID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.svc.ByHost(ctx, hostID)
	if err != nil {
		return fail(c, err, "list login history")
	}
	return c.JSON(http.StatusOK, list)
}

// Filter lists sign-ins between ?startDate and ?endDate, both YYYY-MM-DD
// and inclusive, optionally for one ?hostId.
func (h *LoginHistoryHandler) Filter(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.svc.Between(ctx, c.QueryParam("startDate"), c.QueryParam("endDate"), c.QueryParam("hostId"))
	if err != nil {
		return fail(c, err, "filter login history")
	}
	return c.JSON(http.StatusOK, list)
}
