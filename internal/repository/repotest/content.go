package repotest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/repository"
)

type Reviews struct {
	mu   sync.Mutex
	rows map[string]model.Review
	seq  int
}

func NewReviews() *Reviews { return &Reviews{rows: map[string]model.Review{}} }

func (s *Reviews) Create(_ context.Context, rv *model.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	s.seq++
	rv.CreatedAt = time.Now().UTC().Add(time.Duration(s.seq) * time.Millisecond)
	rv.UpdatedAt = rv.CreatedAt
	s.rows[rv.ID] = *rv
	return nil
}

func (s *Reviews) GetByID(_ context.Context, id string) (*model.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rv, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rv, nil
}

func (s *Reviews) filter(keep func(model.Review) bool) []model.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Review, 0)
	for _, rv := range s.rows {
		if keep == nil || keep(rv) {
			out = append(out, rv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Reviews) List(_ context.Context) ([]model.Review, error) { return s.filter(nil), nil }

func (s *Reviews) ListByAccommodation(_ context.Context, accommodationID string) ([]model.Review, error) {
	return s.filter(func(rv model.Review) bool { return rv.AccommodationID == accommodationID }), nil
}

func (s *Reviews) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *Reviews) AverageFor(_ context.Context, accommodationID string) (float64, error) {
	var sum, n int
	for _, rv := range s.filter(func(rv model.Review) bool { return rv.AccommodationID == accommodationID }) {
		sum += rv.OverallRating
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}

type Blogs struct {
	mu   sync.Mutex
	rows map[string]model.Blog
	seq  int
}

func NewBlogs() *Blogs { return &Blogs{rows: map[string]model.Blog{}} }

func (s *Blogs) slugUsed(slug, exceptID string) bool {
	for id, b := range s.rows {
		if b.Slug == slug && id != exceptID {
			return true
		}
	}
	return false
}

func (s *Blogs) Create(_ context.Context, b *model.Blog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if s.slugUsed(b.Slug, b.ID) {
		return fmt.Errorf("%w: slug %q taken", repository.ErrConflict, b.Slug)
	}
	s.seq++
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC().Add(time.Duration(s.seq) * time.Millisecond)
	}
	s.rows[b.ID] = *b
	return nil
}

func (s *Blogs) GetByID(_ context.Context, id string) (*model.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (s *Blogs) GetBySlug(_ context.Context, slug string) (*model.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.rows {
		if b.Slug == slug {
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Blogs) List(_ context.Context, blogType string) ([]model.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Blog, 0)
	for _, b := range s.rows {
		if blogType == "" || b.BlogType == blogType {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Blogs) Update(_ context.Context, b *model.Blog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[b.ID]; !ok {
		return repository.ErrNotFound
	}
	if s.slugUsed(b.Slug, b.ID) {
		return fmt.Errorf("%w: slug %q taken", repository.ErrConflict, b.Slug)
	}
	s.rows[b.ID] = *b
	return nil
}

func (s *Blogs) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *Blogs) SlugTaken(_ context.Context, slug, exceptID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slugUsed(slug, exceptID), nil
}

type Comments struct {
	mu   sync.Mutex
	rows map[string]model.BlogComment
}

func NewComments() *Comments { return &Comments{rows: map[string]model.BlogComment{}} }

func (s *Comments) Create(_ context.Context, c *model.BlogComment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.rows[c.ID] = *c
	return nil
}

func (s *Comments) GetByID(_ context.Context, id string) (*model.BlogComment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (s *Comments) approved(blogID string) []model.BlogComment {
	out := make([]model.BlogComment, 0)
	for _, c := range s.rows {
		if c.BlogID == blogID && c.IsApproved {
			out = append(out, c)
		}
	}
	return out
}

func (s *Comments) ListApproved(_ context.Context, blogID, order string, offset, limit int) ([]model.BlogComment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.approved(blogID)
	sort.Slice(out, func(i, j int) bool {
		switch order {
		case "oldest":
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		case "rating":
			if out[i].Rating != out[j].Rating {
				return out[i].Rating > out[j].Rating
			}
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset >= len(out) {
		return []model.BlogComment{}, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *Comments) ApprovedRatings(_ context.Context, blogID string) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int
	for _, c := range s.approved(blogID) {
		out = append(out, c.Rating)
	}
	return out, nil
}

func (s *Comments) Update(_ context.Context, c *model.BlogComment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[c.ID]; !ok {
		return repository.ErrNotFound
	}
	s.rows[c.ID] = *c
	return nil
}

func (s *Comments) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

type LoginHistories struct {
	mu   sync.Mutex
	rows []model.LoginHistory
}

func (s *LoginHistories) Create(_ context.Context, h *model.LoginHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.Timestamp.IsZero() {
		h.Timestamp = time.Now().UTC()
	}
	s.rows = append(s.rows, *h)
	return nil
}

func (s *LoginHistories) filter(keep func(model.LoginHistory) bool) []model.LoginHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.LoginHistory, 0)
	for _, h := range s.rows {
		if keep(h) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

func (s *LoginHistories) ListByHost(_ context.Context, hostID string) ([]model.LoginHistory, error) {
	return s.filter(func(h model.LoginHistory) bool { return h.HostID == hostID }), nil
}

func (s *LoginHistories) ListBetween(_ context.Context, from, to time.Time, hostID string) ([]model.LoginHistory, error) {
	return s.filter(func(h model.LoginHistory) bool {
		return !h.Timestamp.Before(from) && !h.Timestamp.After(to) && (hostID == "" || h.HostID == hostID)
	}), nil
}

// Hosts maps user ids to roles.
type Hosts map[string]string

func (h Hosts) ListIDsByRole(_ context.Context, role string) ([]string, error) {
	var out []string
	for id, r := range h {
		if r == role {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}
