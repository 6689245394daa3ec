package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/vacation-rental/internal/applog"
	"github.com/iliyamo/vacation-rental/internal/daterange"
	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/repository"
)

// maxCalendarRetries bounds how often a calendar write is recomputed after
// losing a version race.
const maxCalendarRetries = 5

// BookRequest asks for a date range to be added to a calendar.
type BookRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	GuestName string `json:"guestName"`
	Status    string `json:"status"`
}

// BookResult reports which parts of the request were accepted.
type BookResult struct {
	Added   []daterange.Range      `json:"addedRanges"`
	Count   int                    `json:"addedCount"`
	Entries []model.OccupancyEntry `json:"entries"`
}

// OccupancyService owns every mutation of an accommodation's occupancy
// calendar.
type OccupancyService struct {
	accs AccommodationStore
}

func NewOccupancyService(accs AccommodationStore) *OccupancyService {
	return &OccupancyService{accs: accs}
}

// Calendar returns the stored entries of one accommodation.
func (s *OccupancyService) Calendar(ctx context.Context, accommodationID string) ([]model.OccupancyEntry, error) {
	acc, err := s.accs.GetByID(ctx, accommodationID)
	if err != nil {
		return nil, err
	}
	return acc.OccupancyCalendar, nil
}

// Book adds the free part of [StartDate, EndDate] to the calendar. Days
// already covered by any entry, whatever its status, are left out; the
// remaining days are grouped into contiguous ranges and stored as one
// entry each. A request with no free day fails with ErrConflict.
func (s *OccupancyService) Book(ctx context.Context, accommodationID string, req BookRequest) (BookResult, error) {
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status == "" || status == model.StatusCancelled {
		return BookResult{}, fmt.Errorf("%w: cancelled or empty status is not added to the calendar", ErrInvalidInput)
	}
	if !model.ValidEntryStatus(status) {
		return BookResult{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}
	start, err := daterange.Parse(req.StartDate)
	if err != nil {
		return BookResult{}, err
	}
	end, err := daterange.Parse(req.EndDate)
	if err != nil {
		return BookResult{}, err
	}
	if end.Before(start) {
		return BookResult{}, fmt.Errorf("%w: endDate before startDate", ErrInvalidInput)
	}
	guest := strings.TrimSpace(req.GuestName)
	if guest == "" {
		guest = model.DefaultGuestName
	}
	requested := daterange.ExpandToDays(start, end)

	for attempt := 1; attempt <= maxCalendarRetries; attempt++ {
		acc, err := s.accs.GetByID(ctx, accommodationID)
		if err != nil {
			return BookResult{}, err
		}
		taken := occupiedDays(acc.OccupancyCalendar)
		free := make([]string, 0, len(requested))
		for _, d := range requested {
			if _, ok := taken[d]; !ok {
				free = append(free, d)
			}
		}
		if len(free) == 0 {
			return BookResult{}, fmt.Errorf("%w: %s..%s is already occupied",
				ErrConflict, daterange.Format(start), daterange.Format(end))
		}
		ranges, err := daterange.GroupContiguous(free)
		if err != nil {
			return BookResult{}, err
		}

		entries := make([]model.OccupancyEntry, 0, len(acc.OccupancyCalendar)+len(ranges))
		entries = append(entries, acc.OccupancyCalendar...)
		added := make([]model.OccupancyEntry, 0, len(ranges))
		for _, r := range ranges {
			added = append(added, model.OccupancyEntry{
				ID:        uuid.NewString(),
				StartDate: r.Start,
				EndDate:   r.End,
				GuestName: guest,
				Status:    status,
			})
		}
		entries = append(entries, added...)

		_, err = s.accs.SaveCalendar(ctx, acc.ID, acc.Version, entries)
		if errors.Is(err, repository.ErrStaleVersion) {
			applog.Debug("calendar write lost race, retrying", "accommodation", acc.ID, "attempt", attempt)
			continue
		}
		if err != nil {
			return BookResult{}, err
		}
		return BookResult{Added: ranges, Count: len(ranges), Entries: added}, nil
	}
	return BookResult{}, fmt.Errorf("%w: calendar of %s kept changing, try again", ErrConflict, accommodationID)
}

// PushResult is the outcome of one entry of a bulk push.
type PushResult struct {
	Index int               `json:"index"`
	Added []daterange.Range `json:"addedRanges,omitempty"`
	Error string            `json:"error,omitempty"`
}

// BulkPush books each request in order. Invalid or fully occupied entries
// are reported per index and do not stop the batch; a missing
// accommodation or a storage failure does.
func (s *OccupancyService) BulkPush(ctx context.Context, accommodationID string, reqs []BookRequest) ([]PushResult, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: occupancyCalendar is empty", ErrInvalidInput)
	}
	if _, err := s.accs.GetByID(ctx, accommodationID); err != nil {
		return nil, err
	}
	out := make([]PushResult, 0, len(reqs))
	for i, req := range reqs {
		res, err := s.Book(ctx, accommodationID, req)
		switch {
		case err == nil:
			out = append(out, PushResult{Index: i, Added: res.Added})
		case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrConflict), errors.Is(err, daterange.ErrInvalidDate):
			out = append(out, PushResult{Index: i, Error: err.Error()})
		default:
			return out, err
		}
	}
	return out, nil
}

// DeleteEntry removes the entry with entryID and, in the same write,
// drops every entry whose status is no longer storable. An unknown entry
// id leaves a clean calendar untouched and succeeds.
func (s *OccupancyService) DeleteEntry(ctx context.Context, accommodationID, entryID string) ([]model.OccupancyEntry, error) {
	for attempt := 1; attempt <= maxCalendarRetries; attempt++ {
		acc, err := s.accs.GetByID(ctx, accommodationID)
		if err != nil {
			return nil, err
		}
		kept := make([]model.OccupancyEntry, 0, len(acc.OccupancyCalendar))
		for _, e := range acc.OccupancyCalendar {
			if e.ID == entryID || !model.ValidEntryStatus(e.Status) {
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) == len(acc.OccupancyCalendar) {
			return kept, nil
		}
		_, err = s.accs.SaveCalendar(ctx, acc.ID, acc.Version, kept)
		if errors.Is(err, repository.ErrStaleVersion) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return kept, nil
	}
	return nil, fmt.Errorf("%w: calendar of %s kept changing, try again", ErrConflict, accommodationID)
}

// occupiedDays returns the set of days covered by any entry.
func occupiedDays(entries []model.OccupancyEntry) map[string]struct{} {
	days := make(map[string]struct{})
	for _, e := range entries {
		for _, d := range daterange.ExpandToDays(e.StartDate, e.EndDate) {
			days[d] = struct{}{}
		}
	}
	return days
}
