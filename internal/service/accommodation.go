package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/vacation-rental/internal/applog"
	"github.com/iliyamo/vacation-rental/internal/daterange"
	"github.com/iliyamo/vacation-rental/internal/ics"
	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/query"
	"github.com/iliyamo/vacation-rental/internal/repository"
)

// AccommodationService implements listing CRUD, soft deletion and search.
type AccommodationService struct {
	accs    AccommodationStore
	archive AccommodationArchive
	owners  HostDirectory
	now     func() time.Time
}

func NewAccommodationService(accs AccommodationStore, archive AccommodationArchive) *AccommodationService {
	return &AccommodationService{accs: accs, archive: archive, now: func() time.Time { return time.Now().UTC() }}
}

// WithOwners makes Create reject listings whose userId is not a host or
// admin in dir.
func (s *AccommodationService) WithOwners(dir HostDirectory) *AccommodationService {
	s.owners = dir
	return s
}

// Create validates a, normalizes it and stores it. The supplied calendar
// must already satisfy the non-overlap rule.
func (s *AccommodationService) Create(ctx context.Context, a *model.Accommodation) error {
	a.ID = ""
	a.Views, a.Clicks, a.CustomerInterest, a.AverageRating = 0, 0, 0, 0
	a.Normalize()
	if err := validateAccommodation(a); err != nil {
		return err
	}
	if err := validateCalendar(a.OccupancyCalendar); err != nil {
		return err
	}
	if s.owners != nil {
		valid, err := ownerIDs(ctx, s.owners)
		if err != nil {
			return err
		}
		if _, ok := valid[a.UserID]; !ok {
			return fmt.Errorf("%w: userId %q is not a host or admin", ErrInvalidInput, a.UserID)
		}
	}
	if err := s.accs.Create(ctx, a); err != nil {
		return err
	}
	applog.Info("accommodation created", "id", a.ID, "owner", a.UserID)
	return nil
}

func (s *AccommodationService) Get(ctx context.Context, id string) (*model.Accommodation, error) {
	return s.accs.GetByID(ctx, id)
}

func (s *AccommodationService) List(ctx context.Context) ([]model.Accommodation, error) {
	return s.accs.List(ctx)
}

func (s *AccommodationService) ListByOwner(ctx context.Context, userID string) ([]model.Accommodation, error) {
	return s.accs.ListByOwner(ctx, userID)
}

// Update overlays the JSON object patch onto the stored document. Fields
// absent from patch keep their value; identity, counters and rating can't
// be changed this way.
func (s *AccommodationService) Update(ctx context.Context, id string, patch []byte) (*model.Accommodation, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(patch, &keys); err != nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", ErrInvalidInput)
	}
	_, calendarChanged := keys["occupancyCalendar"]
	for attempt := 1; attempt <= maxCalendarRetries; attempt++ {
		cur, err := s.accs.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		next := *cur
		// Replaced lists must not inherit fields of the stored elements.
		if calendarChanged {
			next.OccupancyCalendar = nil
		}
		if _, ok := keys["flexiblePrice"]; ok {
			next.FlexiblePrice = nil
		}
		if err := json.Unmarshal(patch, &next); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		next.ID, next.Version, next.CreatedAt = cur.ID, cur.Version, cur.CreatedAt
		next.Views, next.Clicks, next.CustomerInterest = cur.Views, cur.Clicks, cur.CustomerInterest
		next.AverageRating = cur.AverageRating
		next.Normalize()
		if err := validateAccommodation(&next); err != nil {
			return nil, err
		}
		if calendarChanged {
			if err := validateCalendar(next.OccupancyCalendar); err != nil {
				return nil, err
			}
		}
		err = s.accs.Update(ctx, &next)
		if errors.Is(err, repository.ErrStaleVersion) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &next, nil
	}
	return nil, fmt.Errorf("%w: accommodation %s kept changing, try again", ErrConflict, id)
}

// Archive moves an accommodation into the archive and removes the live
// row. The archive write is an upsert, so a retried call is harmless.
func (s *AccommodationService) Archive(ctx context.Context, id string) error {
	a, err := s.accs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.archiveOne(ctx, a)
}

func (s *AccommodationService) archiveOne(ctx context.Context, a *model.Accommodation) error {
	if err := s.archive.Upsert(ctx, &model.ArchivedAccommodation{Accommodation: *a, DeletedAt: s.now()}); err != nil {
		return fmt.Errorf("archive accommodation %s: %w", a.ID, err)
	}
	if err := s.accs.Delete(ctx, a.ID); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete accommodation %s: %w", a.ID, err)
	}
	return nil
}

func (s *AccommodationService) ListArchived(ctx context.Context) ([]model.ArchivedAccommodation, error) {
	return s.archive.List(ctx)
}

// Restore puts an archived accommodation back under its original id.
func (s *AccommodationService) Restore(ctx context.Context, id string) (*model.Accommodation, error) {
	arch, err := s.archive.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	a := arch.Accommodation
	if err := s.accs.Create(ctx, &a); err != nil {
		return nil, err
	}
	if err := s.archive.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	applog.Info("accommodation restored", "id", id)
	return &a, nil
}

// Purge permanently removes an archived accommodation.
func (s *AccommodationService) Purge(ctx context.Context, id string) error {
	return s.archive.Delete(ctx, id)
}

// Search applies the multi-filter search parameters.
func (s *AccommodationService) Search(ctx context.Context, params url.Values) ([]model.Accommodation, error) {
	f, err := query.Parse(params)
	if err != nil {
		return nil, err
	}
	return s.accs.Search(ctx, f)
}

// SimpleSearch matches any of category, city, country or location. No
// parameter at all lists everything.
func (s *AccommodationService) SimpleSearch(ctx context.Context, params url.Values) ([]model.Accommodation, error) {
	f, err := query.ParseSimple(params)
	if err != nil {
		return nil, err
	}
	if f.IsEmpty() {
		return s.accs.List(ctx)
	}
	return s.accs.Search(ctx, f)
}

// Increment bumps one of the view, click or interest counters and
// returns the fresh document.
func (s *AccommodationService) Increment(ctx context.Context, id, counter string) (*model.Accommodation, error) {
	if err := s.accs.IncrementCounter(ctx, id, counter); err != nil {
		return nil, err
	}
	return s.accs.GetByID(ctx, id)
}

// DeleteImage drops one image URL from the listing and returns the
// remaining images.
func (s *AccommodationService) DeleteImage(ctx context.Context, id, image string) ([]string, error) {
	image = strings.TrimSpace(image)
	if image == "" {
		return nil, fmt.Errorf("%w: provide a valid image URL to delete", ErrInvalidInput)
	}
	for attempt := 1; attempt <= maxCalendarRetries; attempt++ {
		a, err := s.accs.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		kept := make([]string, 0, len(a.Images))
		for _, img := range a.Images {
			if img != image {
				kept = append(kept, img)
			}
		}
		if len(kept) == len(a.Images) {
			return nil, fmt.Errorf("%w: image not found on accommodation", ErrInvalidInput)
		}
		a.Images = kept
		err = s.accs.Update(ctx, a)
		if errors.Is(err, repository.ErrStaleVersion) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return kept, nil
	}
	return nil, fmt.Errorf("%w: accommodation %s kept changing, try again", ErrConflict, id)
}

func validateAccommodation(a *model.Accommodation) error {
	var missing []string
	if strings.TrimSpace(a.UserID) == "" {
		missing = append(missing, "userId")
	}
	if strings.TrimSpace(a.PhoneNumber) == "" {
		missing = append(missing, "phoneNumber")
	}
	if a.NightMin <= 0 {
		missing = append(missing, "nightMin")
	}
	if a.NightMax <= 0 {
		missing = append(missing, "nightMax")
	}
	if a.Person <= 0 {
		missing = append(missing, "person")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	if !model.ValidPropertyType(a.PropertyType.En) {
		return fmt.Errorf("%w: unknown propertyType %q", ErrInvalidInput, a.PropertyType.En)
	}
	if a.NightMax < a.NightMin {
		return fmt.Errorf("%w: nightMax below nightMin", ErrInvalidInput)
	}
	if a.ICalURL != "" {
		if _, err := ics.ValidateURL(a.ICalURL); err != nil {
			return fmt.Errorf("%w: icalUrl: %v", ErrInvalidInput, err)
		}
	}
	return nil
}

// validateCalendar checks entry statuses and ranges, assigns missing ids
// and rejects overlapping booked entries.
func validateCalendar(entries []model.OccupancyEntry) error {
	var booked []daterange.Range
	for i := range entries {
		e := &entries[i]
		if !model.ValidEntryStatus(e.Status) {
			return fmt.Errorf("%w: occupancy status %q", ErrInvalidInput, e.Status)
		}
		if e.StartDate.IsZero() || e.EndDate.IsZero() {
			return fmt.Errorf("%w: occupancy entry needs startDate and endDate", ErrInvalidInput)
		}
		e.StartDate, e.EndDate = daterange.Normalize(e.StartDate), daterange.Normalize(e.EndDate)
		if e.EndDate.Before(e.StartDate) {
			return fmt.Errorf("%w: occupancy entry ends before it starts", ErrInvalidInput)
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.Status != model.StatusBooked {
			continue
		}
		r := daterange.Range{Start: e.StartDate, End: e.EndDate}
		for _, other := range booked {
			if daterange.Overlaps(r, other) {
				return fmt.Errorf("%w: booked entries %s and %s overlap", ErrConflict, r, other)
			}
		}
		booked = append(booked, r)
	}
	return nil
}
