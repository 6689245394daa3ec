package service

import (
	"context"
	"time"

	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/query"
)

// AccommodationStore is the persistence contract for accommodations.
// Update and SaveCalendar are version-checked and report
// repository.ErrStaleVersion when the row changed since it was read.
type AccommodationStore interface {
	Create(ctx context.Context, a *model.Accommodation) error
	GetByID(ctx context.Context, id string) (*model.Accommodation, error)
	Update(ctx context.Context, a *model.Accommodation) error
	SaveCalendar(ctx context.Context, id string, version int64, entries []model.OccupancyEntry) (int64, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.Accommodation, error)
	ListByOwner(ctx context.Context, userID string) ([]model.Accommodation, error)
	Search(ctx context.Context, f query.Filter) ([]model.Accommodation, error)
	IncrementCounter(ctx context.Context, id, counter string) error
	SetAverageRating(ctx context.Context, id string, avg float64) error
	ListOwnerRefs(ctx context.Context) ([]model.OwnerRef, error)
	ListIDs(ctx context.Context) ([]string, error)
	ListFeeds(ctx context.Context) ([]model.FeedRef, error)
}

type AccommodationArchive interface {
	Upsert(ctx context.Context, a *model.ArchivedAccommodation) error
	Get(ctx context.Context, id string) (*model.ArchivedAccommodation, error)
	List(ctx context.Context) ([]model.ArchivedAccommodation, error)
	Delete(ctx context.Context, id string) error
}

type ReservationStore interface {
	Create(ctx context.Context, r *model.Reservation) error
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	Update(ctx context.Context, r *model.Reservation) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.Reservation, error)
	ListByUser(ctx context.Context, userID string) ([]model.Reservation, error)
	ListByProvider(ctx context.Context, providerID string) ([]model.Reservation, error)
	ListByName(ctx context.Context, name string) ([]model.Reservation, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	ListDueForReview(ctx context.Context, day time.Time) ([]model.Reservation, error)
	MarkReviewEmailSent(ctx context.Context, id string) error
}

type ReservationArchive interface {
	Upsert(ctx context.Context, r *model.ArchivedReservation) error
	Get(ctx context.Context, id string) (*model.ArchivedReservation, error)
	List(ctx context.Context) ([]model.ArchivedReservation, error)
	Delete(ctx context.Context, id string) error
}

type ReviewStore interface {
	Create(ctx context.Context, rv *model.Review) error
	GetByID(ctx context.Context, id string) (*model.Review, error)
	List(ctx context.Context) ([]model.Review, error)
	ListByAccommodation(ctx context.Context, accommodationID string) ([]model.Review, error)
	Delete(ctx context.Context, id string) error
	AverageFor(ctx context.Context, accommodationID string) (float64, error)
}

type BlogStore interface {
	Create(ctx context.Context, b *model.Blog) error
	GetByID(ctx context.Context, id string) (*model.Blog, error)
	GetBySlug(ctx context.Context, slug string) (*model.Blog, error)
	List(ctx context.Context, blogType string) ([]model.Blog, error)
	Update(ctx context.Context, b *model.Blog) error
	Delete(ctx context.Context, id string) error
	SlugTaken(ctx context.Context, slug, exceptID string) (bool, error)
}

type CommentStore interface {
	Create(ctx context.Context, c *model.BlogComment) error
	GetByID(ctx context.Context, id string) (*model.BlogComment, error)
	ListApproved(ctx context.Context, blogID, sort string, offset, limit int) ([]model.BlogComment, error)
	ApprovedRatings(ctx context.Context, blogID string) ([]int, error)
	Update(ctx context.Context, c *model.BlogComment) error
	Delete(ctx context.Context, id string) error
}

type LoginHistoryStore interface {
	Create(ctx context.Context, h *model.LoginHistory) error
	ListByHost(ctx context.Context, hostID string) ([]model.LoginHistory, error)
	ListBetween(ctx context.Context, from, to time.Time, hostID string) ([]model.LoginHistory, error)
}

// HostDirectory answers which users currently hold a role.
type HostDirectory interface {
	ListIDsByRole(ctx context.Context, role string) ([]string, error)
}

// Notifier delivers guest notifications. Implementations publish to the
// broker or send mail directly; callers treat failures as non-fatal.
type Notifier interface {
	ReservationArchived(ctx context.Context, r model.Reservation) error
	ReviewRequested(ctx context.Context, r model.Reservation, link string) error
}
