package repotest

import (
	"context"
	"sync"

	"github.com/iliyamo/vacation-rental/internal/model"
)

// Notifier records notifications instead of sending them. When Err is
// set every call fails with it.
type Notifier struct {
	mu       sync.Mutex
	Err      error
	archived []model.Reservation
	links    []string
}

func (n *Notifier) ReservationArchived(_ context.Context, r model.Reservation) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.archived = append(n.archived, r)
	return nil
}

func (n *Notifier) ReviewRequested(_ context.Context, _ model.Reservation, link string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.links = append(n.links, link)
	return nil
}

func (n *Notifier) Archived() []model.Reservation {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.Reservation(nil), n.archived...)
}

func (n *Notifier) Links() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.links...)
}
