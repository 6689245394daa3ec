package repotest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/repository"
)

type Reservations struct {
	mu   sync.Mutex
	rows map[string]model.Reservation
	seq  int
}

func NewReservations() *Reservations {
	return &Reservations{rows: map[string]model.Reservation{}}
}

func (s *Reservations) Create(_ context.Context, r *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if _, ok := s.rows[r.ID]; ok {
		return fmt.Errorf("%w: reservation %s already exists", repository.ErrConflict, r.ID)
	}
	s.seq++
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC().Add(time.Duration(s.seq) * time.Millisecond)
	}
	r.UpdatedAt = r.CreatedAt
	s.rows[r.ID] = *r
	return nil
}

func (s *Reservations) GetByID(_ context.Context, id string) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (s *Reservations) Update(_ context.Context, r *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[r.ID]; !ok {
		return repository.ErrNotFound
	}
	r.UpdatedAt = time.Now().UTC()
	s.rows[r.ID] = *r
	return nil
}

func (s *Reservations) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *Reservations) filter(keep func(model.Reservation) bool) []model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Reservation, 0)
	for _, r := range s.rows {
		if keep == nil || keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Reservations) List(_ context.Context) ([]model.Reservation, error) {
	return s.filter(nil), nil
}

func (s *Reservations) ListByUser(_ context.Context, userID string) ([]model.Reservation, error) {
	return s.filter(func(r model.Reservation) bool { return r.UserID == userID }), nil
}

func (s *Reservations) ListByProvider(_ context.Context, providerID string) ([]model.Reservation, error) {
	return s.filter(func(r model.Reservation) bool { return r.AccommodationProvider == providerID }), nil
}

func (s *Reservations) ListByName(_ context.Context, name string) ([]model.Reservation, error) {
	name = strings.ToLower(name)
	return s.filter(func(r model.Reservation) bool { return strings.Contains(strings.ToLower(r.Name), name) }), nil
}

func (s *Reservations) DeleteByUser(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, r := range s.rows {
		if r.UserID == userID {
			delete(s.rows, id)
			n++
		}
	}
	return n, nil
}

func (s *Reservations) ListDueForReview(_ context.Context, day time.Time) ([]model.Reservation, error) {
	want := day.UTC().Format("2006-01-02")
	return s.filter(func(r model.Reservation) bool {
		return r.IsApproved == model.ApprovalApproved && !r.ReviewEmailSent &&
			r.CheckOutDate.UTC().Format("2006-01-02") == want
	}), nil
}

func (s *Reservations) MarkReviewEmailSent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rows[id]; ok {
		r.ReviewEmailSent = true
		s.rows[id] = r
	}
	return nil
}

type ReservationArchive struct {
	mu   sync.Mutex
	rows map[string]model.ArchivedReservation
}

func NewReservationArchive() *ReservationArchive {
	return &ReservationArchive{rows: map[string]model.ArchivedReservation{}}
}

func (s *ReservationArchive) Upsert(_ context.Context, r *model.ArchivedReservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[r.ID] = *r
	return nil
}

func (s *ReservationArchive) Get(_ context.Context, id string) (*model.ArchivedReservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (s *ReservationArchive) List(_ context.Context) ([]model.ArchivedReservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ArchivedReservation, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *ReservationArchive) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}
