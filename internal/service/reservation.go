package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/iliyamo/vacation-rental/internal/applog"
	"github.com/iliyamo/vacation-rental/internal/model"
)

// ReservationService covers reservation CRUD and its archive.
type ReservationService struct {
	res     ReservationStore
	archive ReservationArchive
	accs    AccommodationStore
	now     func() time.Time
}

func NewReservationService(res ReservationStore, archive ReservationArchive, accs AccommodationStore) *ReservationService {
	return &ReservationService{res: res, archive: archive, accs: accs, now: func() time.Time { return time.Now().UTC() }}
}

var idChars = regexp.MustCompile(`[^a-zA-Z0-9-]`)

// SanitizeID strips braces, quotes and anything else that cannot be part
// of an id.
func SanitizeID(raw string) (string, error) {
	id := idChars.ReplaceAllString(raw, "")
	if id == "" {
		return "", fmt.Errorf("%w: invalid id", ErrInvalidInput)
	}
	return id, nil
}

// Create validates r and stores it as pending unless another approval
// state is given. The provider is taken from the accommodation when the
// caller leaves it out.
func (s *ReservationService) Create(ctx context.Context, r *model.Reservation) error {
	r.ID = ""
	if r.IsApproved == "" {
		r.IsApproved = model.ApprovalPending
	}
	if err := validateReservation(r); err != nil {
		return err
	}
	if r.AccommodationProvider == "" {
		acc, err := s.accs.GetByID(ctx, r.AccommodationID)
		switch {
		case err == nil:
			r.AccommodationProvider = acc.UserID
		case errors.Is(err, ErrNotFound):
			return fmt.Errorf("%w: accommodation %s", ErrNotFound, r.AccommodationID)
		default:
			return err
		}
	}
	return s.res.Create(ctx, r)
}

func validateReservation(r *model.Reservation) error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
	switch {
	case r.AccommodationID == "":
		return fmt.Errorf("%w: accommodationId is required", ErrInvalidInput)
	case r.Name == "" || r.Email == "":
		return fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	case r.CheckInDate.IsZero() || r.CheckOutDate.IsZero():
		return fmt.Errorf("%w: checkInDate and checkOutDate are required", ErrInvalidInput)
	case r.CheckOutDate.Before(r.CheckInDate):
		return fmt.Errorf("%w: checkOutDate before checkInDate", ErrInvalidInput)
	case r.Guests < 1:
		return fmt.Errorf("%w: guests must be at least 1", ErrInvalidInput)
	case r.TotalPrice < 0:
		return fmt.Errorf("%w: totalPrice must not be negative", ErrInvalidInput)
	case !model.ValidApproval(r.IsApproved):
		return fmt.Errorf("%w: isApproved %q", ErrInvalidInput, r.IsApproved)
	}
	return nil
}

func (s *ReservationService) Get(ctx context.Context, id string) (*model.Reservation, error) {
	return s.res.GetByID(ctx, id)
}

func (s *ReservationService) List(ctx context.Context) ([]model.Reservation, error) {
	return s.res.List(ctx)
}

func (s *ReservationService) ListByUser(ctx context.Context, userID string) ([]model.Reservation, error) {
	return nonEmpty(s.res.ListByUser(ctx, userID))
}

func (s *ReservationService) ListByProvider(ctx context.Context, providerID string) ([]model.Reservation, error) {
	return nonEmpty(s.res.ListByProvider(ctx, providerID))
}

// ListByName matches guest names containing name, ignoring case.
func (s *ReservationService) ListByName(ctx context.Context, name string) ([]model.Reservation, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return nonEmpty(s.res.ListByName(ctx, name))
}

// nonEmpty turns an empty lookup into ErrNotFound.
func nonEmpty(rs []model.Reservation, err error) ([]model.Reservation, error) {
	if err != nil {
		return nil, err
	}
	if len(rs) == 0 {
		return nil, fmt.Errorf("%w: no reservations match", ErrNotFound)
	}
	return rs, nil
}

// Update overlays patch onto the stored reservation.
func (s *ReservationService) Update(ctx context.Context, id string, patch []byte) (*model.Reservation, error) {
	cur, err := s.res.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, cur, patch)
}

// UpdateByName patches the first reservation whose guest name contains
// name.
func (s *ReservationService) UpdateByName(ctx context.Context, name string, patch []byte) (*model.Reservation, error) {
	matches, err := s.ListByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, &matches[0], patch)
}

func (s *ReservationService) apply(ctx context.Context, cur *model.Reservation, patch []byte) (*model.Reservation, error) {
	next := *cur
	if err := json.Unmarshal(patch, &next); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	next.ID, next.CreatedAt = cur.ID, cur.CreatedAt
	if err := validateReservation(&next); err != nil {
		return nil, err
	}
	if err := s.res.Update(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// Archive soft-deletes a reservation.
func (s *ReservationService) Archive(ctx context.Context, id string) error {
	r, err := s.res.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.archiveOne(ctx, *r)
}

func (s *ReservationService) archiveOne(ctx context.Context, r model.Reservation) error {
	if err := s.archive.Upsert(ctx, &model.ArchivedReservation{Reservation: r, DeletedAt: s.now()}); err != nil {
		return fmt.Errorf("archive reservation %s: %w", r.ID, err)
	}
	if err := s.res.Delete(ctx, r.ID); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete reservation %s: %w", r.ID, err)
	}
	return nil
}

func (s *ReservationService) ListArchived(ctx context.Context) ([]model.ArchivedReservation, error) {
	return s.archive.List(ctx)
}

// Restore moves an archived reservation back, keeping its id and
// creation time.
func (s *ReservationService) Restore(ctx context.Context, id string) (*model.Reservation, error) {
	arch, err := s.archive.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	r := arch.Reservation
	if err := s.res.Create(ctx, &r); err != nil {
		return nil, err
	}
	if err := s.archive.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	applog.Info("reservation restored", "id", id)
	return &r, nil
}

func (s *ReservationService) Purge(ctx context.Context, id string) error {
	return s.archive.Delete(ctx, id)
}

// DeleteByUser hard-deletes every reservation of a guest.
func (s *ReservationService) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	n, err := s.res.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: no reservations for user", ErrNotFound)
	}
	return n, nil
}
