// Package repotest provides in-memory implementations of the repository
// contracts. They mirror the MySQL repositories' observable behavior
// (sentinel errors, version checks, upsert archives) and are used as
// stubs by service and handler tests.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/query"
	"github.com/iliyamo/vacation-rental/internal/repository"
)

// Accommodations is a versioned in-memory accommodation store.
type Accommodations struct {
	mu   sync.Mutex
	rows map[string]*model.Accommodation
	seq  int

	// BeforeSave, when set, runs inside SaveCalendar before the version
	// check. Tests use it to simulate a concurrent writer.
	BeforeSave func(id string)
	// Saves counts successful SaveCalendar calls.
	Saves int
}

func NewAccommodations() *Accommodations {
	return &Accommodations{rows: map[string]*model.Accommodation{}}
}

func cloneAcc(a *model.Accommodation) *model.Accommodation {
	c := *a
	c.OccupancyCalendar = append([]model.OccupancyEntry{}, a.OccupancyCalendar...)
	c.Images = append([]string{}, a.Images...)
	c.Tags = append([]string{}, a.Tags...)
	return &c
}

func (s *Accommodations) Create(_ context.Context, a *model.Accommodation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if _, ok := s.rows[a.ID]; ok {
		return fmt.Errorf("%w: accommodation %s already exists", repository.ErrConflict, a.ID)
	}
	s.seq++
	now := time.Now().UTC().Add(time.Duration(s.seq) * time.Millisecond)
	a.Version = 1
	a.CreatedAt, a.UpdatedAt = now, now
	if a.OccupancyCalendar == nil {
		a.OccupancyCalendar = []model.OccupancyEntry{}
	}
	s.rows[a.ID] = cloneAcc(a)
	return nil
}

func (s *Accommodations) GetByID(_ context.Context, id string) (*model.Accommodation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneAcc(a), nil
}

func (s *Accommodations) Update(_ context.Context, a *model.Accommodation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.rows[a.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if cur.Version != a.Version {
		return repository.ErrStaleVersion
	}
	a.Version++
	a.UpdatedAt = time.Now().UTC()
	c := cloneAcc(a)
	c.Views, c.Clicks, c.CustomerInterest, c.AverageRating = cur.Views, cur.Clicks, cur.CustomerInterest, cur.AverageRating
	c.CreatedAt = cur.CreatedAt
	s.rows[a.ID] = c
	return nil
}

func (s *Accommodations) SaveCalendar(_ context.Context, id string, version int64, entries []model.OccupancyEntry) (int64, error) {
	if s.BeforeSave != nil {
		s.BeforeSave(id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.rows[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if cur.Version != version {
		return 0, repository.ErrStaleVersion
	}
	cur.OccupancyCalendar = append([]model.OccupancyEntry{}, entries...)
	cur.Version++
	s.Saves++
	return cur.Version, nil
}

func (s *Accommodations) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *Accommodations) all(keep func(*model.Accommodation) bool) []model.Accommodation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Accommodation, 0, len(s.rows))
	for _, a := range s.rows {
		if keep == nil || keep(a) {
			out = append(out, *cloneAcc(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Accommodations) List(_ context.Context) ([]model.Accommodation, error) {
	return s.all(nil), nil
}

func (s *Accommodations) ListByOwner(_ context.Context, userID string) ([]model.Accommodation, error) {
	return s.all(func(a *model.Accommodation) bool { return a.UserID == userID }), nil
}

// Search evaluates the whole filter in process.
func (s *Accommodations) Search(_ context.Context, f query.Filter) ([]model.Accommodation, error) {
	return s.all(f.Match), nil
}

func (s *Accommodations) IncrementCounter(_ context.Context, id, counter string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	switch counter {
	case model.CounterViews:
		a.Views++
	case model.CounterClicks:
		a.Clicks++
	case model.CounterCustomerInterest:
		a.CustomerInterest++
	default:
		return fmt.Errorf("unknown counter %q", counter)
	}
	return nil
}

func (s *Accommodations) SetAverageRating(_ context.Context, id string, avg float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.rows[id]; ok {
		a.AverageRating = avg
	}
	return nil
}

func (s *Accommodations) ListOwnerRefs(_ context.Context) ([]model.OwnerRef, error) {
	var out []model.OwnerRef
	for _, a := range s.all(nil) {
		out = append(out, model.OwnerRef{ID: a.ID, UserID: a.UserID})
	}
	return out, nil
}

func (s *Accommodations) ListIDs(_ context.Context) ([]string, error) {
	var out []string
	for _, a := range s.all(nil) {
		out = append(out, a.ID)
	}
	return out, nil
}

func (s *Accommodations) ListFeeds(_ context.Context) ([]model.FeedRef, error) {
	var out []model.FeedRef
	for _, a := range s.all(func(a *model.Accommodation) bool { return a.ICalURL != "" }) {
		out = append(out, model.FeedRef{ID: a.ID, ICalURL: a.ICalURL})
	}
	return out, nil
}

// AccommodationArchive is an upserting in-memory archive.
type AccommodationArchive struct {
	mu   sync.Mutex
	rows map[string]model.ArchivedAccommodation
}

func NewAccommodationArchive() *AccommodationArchive {
	return &AccommodationArchive{rows: map[string]model.ArchivedAccommodation{}}
}

func (s *AccommodationArchive) Upsert(_ context.Context, a *model.ArchivedAccommodation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *a
	c.Accommodation = *cloneAcc(&a.Accommodation)
	s.rows[a.ID] = c
	return nil
}

func (s *AccommodationArchive) Get(_ context.Context, id string) (*model.ArchivedAccommodation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	a.Accommodation = *cloneAcc(&a.Accommodation)
	return &a, nil
}

func (s *AccommodationArchive) List(_ context.Context) ([]model.ArchivedAccommodation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ArchivedAccommodation, 0, len(s.rows))
	for _, a := range s.rows {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *AccommodationArchive) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}
