package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/vacation-rental/internal/daterange"
	"github.com/iliyamo/vacation-rental/internal/model"
)

type LoginHistoryService struct {
	store LoginHistoryStore
}

func NewLoginHistoryService(store LoginHistoryStore) *LoginHistoryService {
	return &LoginHistoryService{store: store}
}

// Record stores one host sign-in.
func (s *LoginHistoryService) Record(ctx context.Context, hostID, ip, userAgent string) error {
	return s.store.Create(ctx, &model.LoginHistory{
		HostID:    hostID,
		Timestamp: time.Now().UTC(),
		IP:        ip,
		UserAgent: userAgent,
	})
}

func (s *LoginHistoryService) ByHost(ctx context.Context, hostID string) ([]model.LoginHistory, error) {
	if strings.TrimSpace(hostID) == "" {
		return nil, fmt.Errorf("%w: hostId is required", ErrInvalidInput)
	}
	return s.store.ListByHost(ctx, hostID)
}

// Between lists sign-ins from the start of startDate through the last
// millisecond of endDate, optionally for one host.
func (s *LoginHistoryService) Between(ctx context.Context, startDate, endDate, hostID string) ([]model.LoginHistory, error) {
	if strings.TrimSpace(startDate) == "" || strings.TrimSpace(endDate) == "" {
		return nil, fmt.Errorf("%w: startDate and endDate are required", ErrInvalidInput)
	}
	from, err := daterange.Parse(startDate)
	if err != nil {
		return nil, err
	}
	to, err := daterange.Parse(endDate)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: endDate before startDate", ErrInvalidInput)
	}
	to = to.Add(24*time.Hour - time.Millisecond)
	return s.store.ListBetween(ctx, from, to, hostID)
}
