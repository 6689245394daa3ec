package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/vacation-rental/internal/applog"
	"github.com/iliyamo/vacation-rental/internal/daterange"
	"github.com/iliyamo/vacation-rental/internal/ics"
	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/repository"
)

// FeedFetcher downloads an ICS feed. *ics.Fetcher implements it.
type FeedFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// CalendarService imports external ICS feeds into occupancy calendars and
// renders calendars back out as ICS.
type CalendarService struct {
	accs        AccommodationStore
	fetcher     FeedFetcher
	concurrency int
	now         func() time.Time
}

// NewCalendarService returns a service that syncs at most concurrency
// feeds at a time during a sweep.
func NewCalendarService(accs AccommodationStore, fetcher FeedFetcher, concurrency int) *CalendarService {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &CalendarService{
		accs:        accs,
		fetcher:     fetcher,
		concurrency: concurrency,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Preview fetches and parses a feed without persisting anything.
func (s *CalendarService) Preview(ctx context.Context, rawURL string) ([]ics.Event, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, fmt.Errorf("%w: url is required", ErrInvalidInput)
	}
	return s.load(ctx, rawURL)
}

// PreviewAirbnb previews the export feed of an Airbnb listing.
func (s *CalendarService) PreviewAirbnb(ctx context.Context, calendarID, secretToken string) ([]ics.Event, error) {
	if strings.TrimSpace(calendarID) == "" || strings.TrimSpace(secretToken) == "" {
		return nil, fmt.Errorf("%w: calendar id and secret token are required", ErrInvalidInput)
	}
	return s.load(ctx, ics.AirbnbURL(calendarID, secretToken))
}

func (s *CalendarService) load(ctx context.Context, rawURL string) ([]ics.Event, error) {
	body, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, mapFeedError(err)
	}
	events, err := ics.Parse(body)
	if err != nil {
		return nil, mapFeedError(err)
	}
	return events, nil
}

// mapFeedError translates ics errors into service sentinels, keeping the
// original in the chain.
func mapFeedError(err error) error {
	switch {
	case errors.Is(err, ics.ErrInvalidURL):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, ics.ErrTimeout):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case errors.Is(err, ics.ErrUnavailable), errors.Is(err, ics.ErrMalformed):
		return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	return err
}

// SyncResult reports one feed import.
type SyncResult struct {
	AccommodationID string `json:"accommodationId"`
	Imported        int    `json:"imported"`
	Skipped         int    `json:"skipped"`
}

// Sync fetches the configured feed of one accommodation and appends the
// events that are not on its calendar yet.
func (s *CalendarService) Sync(ctx context.Context, accommodationID string) (SyncResult, error) {
	acc, err := s.accs.GetByID(ctx, accommodationID)
	if err != nil {
		return SyncResult{}, err
	}
	if acc.ICalURL == "" {
		return SyncResult{}, fmt.Errorf("%w: accommodation has no icalUrl", ErrInvalidInput)
	}
	return s.syncFeed(ctx, acc.ID, acc.ICalURL)
}

func (s *CalendarService) syncFeed(ctx context.Context, id, feedURL string) (SyncResult, error) {
	events, err := s.load(ctx, feedURL)
	if err != nil {
		return SyncResult{}, err
	}
	for attempt := 1; attempt <= maxCalendarRetries; attempt++ {
		acc, err := s.accs.GetByID(ctx, id)
		if err != nil {
			return SyncResult{}, err
		}
		added, skipped := mergeEvents(acc.OccupancyCalendar, events)
		res := SyncResult{AccommodationID: id, Imported: len(added), Skipped: skipped}
		if len(added) == 0 {
			return res, nil
		}
		entries := append(append([]model.OccupancyEntry{}, acc.OccupancyCalendar...), added...)
		_, err = s.accs.SaveCalendar(ctx, id, acc.Version, entries)
		if errors.Is(err, repository.ErrStaleVersion) {
			continue
		}
		if err != nil {
			return SyncResult{}, err
		}
		return res, nil
	}
	return SyncResult{}, fmt.Errorf("%w: calendar of %s kept changing, try again", ErrConflict, id)
}

type entryKey struct {
	start, end    string
	guest, status string
}

func keyOf(start, end time.Time, guest, status string) entryKey {
	if strings.TrimSpace(guest) == "" {
		guest = model.DefaultGuestName
	}
	if status == "" {
		status = model.StatusBooked
	}
	return entryKey{daterange.Format(start), daterange.Format(end), guest, status}
}

// mergeEvents returns the entries to append for events. An event is
// skipped when an identical entry already exists, or when it would
// overlap a booked entry.
func mergeEvents(existing []model.OccupancyEntry, events []ics.Event) ([]model.OccupancyEntry, int) {
	seen := make(map[entryKey]struct{}, len(existing))
	var booked []daterange.Range
	for _, e := range existing {
		seen[keyOf(e.StartDate, e.EndDate, e.GuestName, e.Status)] = struct{}{}
		if e.Status == model.StatusBooked {
			booked = append(booked, daterange.Range{Start: e.StartDate, End: e.EndDate})
		}
	}

	var added []model.OccupancyEntry
	skipped := 0
	for _, ev := range events {
		k := keyOf(ev.Start, ev.End, ev.GuestName(), model.StatusBooked)
		if _, dup := seen[k]; dup {
			skipped++
			continue
		}
		r := daterange.Range{Start: ev.Start, End: ev.End}
		if overlapsAny(r, booked) {
			applog.Warn("ics event overlaps a booking, skipped", "uid", ev.UID, "range", r)
			skipped++
			continue
		}
		seen[k] = struct{}{}
		booked = append(booked, r)
		added = append(added, model.OccupancyEntry{
			ID:        uuid.NewString(),
			StartDate: daterange.Normalize(ev.Start),
			EndDate:   daterange.Normalize(ev.End),
			GuestName: ev.GuestName(),
			Status:    model.StatusBooked,
		})
	}
	return added, skipped
}

func overlapsAny(r daterange.Range, ranges []daterange.Range) bool {
	for _, o := range ranges {
		if daterange.Overlaps(r, o) {
			return true
		}
	}
	return false
}

// SweepSummary reports a batch sync.
type SweepSummary struct {
	Feeds    int `json:"feeds"`
	Synced   int `json:"synced"`
	Failed   int `json:"failed"`
	Imported int `json:"imported"`
}

// SyncAll imports every configured feed. A failing feed is logged and
// counted; it never stops the others. Only listing the feeds can fail the
// sweep as a whole.
func (s *CalendarService) SyncAll(ctx context.Context) (SweepSummary, error) {
	feeds, err := s.accs.ListFeeds(ctx)
	if err != nil {
		return SweepSummary{}, fmt.Errorf("list feeds: %w", err)
	}
	var synced, failed, imported atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, f := range feeds {
		f := f
		g.Go(func() error {
			res, err := s.syncFeed(gctx, f.ID, f.ICalURL)
			if err != nil {
				failed.Add(1)
				applog.Error("ics sync failed", err, "accommodation", f.ID)
				return nil
			}
			synced.Add(1)
			imported.Add(int64(res.Imported))
			return nil
		})
	}
	_ = g.Wait()
	sum := SweepSummary{
		Feeds:    len(feeds),
		Synced:   int(synced.Load()),
		Failed:   int(failed.Load()),
		Imported: int(imported.Load()),
	}
	applog.Info("ics sweep finished", "feeds", sum.Feeds, "synced", sum.Synced, "failed", sum.Failed, "imported", sum.Imported)
	return sum, nil
}

// Export renders the calendar of one accommodation.
func (s *CalendarService) Export(ctx context.Context, accommodationID string) (string, error) {
	acc, err := s.accs.GetByID(ctx, accommodationID)
	if err != nil {
		return "", err
	}
	return ics.Export(acc, s.now()), nil
}
