package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vacation-rental/internal/applog"
	"github.com/iliyamo/vacation-rental/internal/daterange"
	"github.com/iliyamo/vacation-rental/internal/query"
	"github.com/iliyamo/vacation-rental/internal/service"
)

// requestTimeout bounds the database work of a single request.
const requestTimeout = 5 * time.Second

// maxBodyBytes caps JSON bodies read by hand for partial updates.
const maxBodyBytes = 2 << 20

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// statusOf maps service errors to HTTP statuses. Anything unknown is a 500.
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, daterange.ErrInvalidDate),
		errors.Is(err, query.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, service.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// fail writes err as {"error": ...}. Internal errors are logged and their
// text is not sent to the client.
func fail(c echo.Context, err error, op string) error {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		applog.Error(op+" failed", err, "path", c.Path())
		return c.JSON(status, echo.Map{"error": op + " failed"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// rawBody returns the request body for handlers that overlay a JSON patch.
func rawBody(c echo.Context) ([]byte, error) {
	return io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
}
