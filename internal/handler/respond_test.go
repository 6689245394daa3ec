package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/iliyamo/vacation-rental/internal/daterange"
	"github.com/iliyamo/vacation-rental/internal/query"
	"github.com/iliyamo/vacation-rental/internal/service"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("load: %w", service.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("book: %w", service.ErrConflict), http.StatusConflict},
		{service.ErrInvalidInput, http.StatusBadRequest},
		{daterange.ErrInvalidDate, http.StatusBadRequest},
		{query.ErrInvalidFilter, http.StatusBadRequest},
		{fmt.Errorf("feed: %w", service.ErrTimeout), http.StatusGatewayTimeout},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{service.ErrUpstreamUnavailable, http.StatusBadGateway},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusOf(tt.err); got != tt.want {
			t.Errorf("statusOf(%v) = %d; want %d", tt.err, got, tt.want)
		}
	}
}
