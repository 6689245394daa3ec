package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/vacation-rental/internal/daterange"
	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/repository/repotest"
)

func day(s string) time.Time {
	t, err := daterange.Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

func entry(id, start, end, status string) model.OccupancyEntry {
	return model.OccupancyEntry{ID: id, StartDate: day(start), EndDate: day(end), GuestName: "Guest", Status: status}
}

// seedAccommodation stores a listing with the given calendar and returns its id.
func seedAccommodation(t *testing.T, store *repotest.Accommodations, owner string, entries ...model.OccupancyEntry) string {
	t.Helper()
	a := &model.Accommodation{UserID: owner, OccupancyCalendar: entries}
	if err := store.Create(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	return a.ID
}

func assertNoBookedOverlap(t *testing.T, entries []model.OccupancyEntry) {
	t.Helper()
	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			a, b := entries[i], entries[j]
			if a.Status != model.StatusBooked || b.Status != model.StatusBooked {
				continue
			}
			ra := daterange.Range{Start: a.StartDate, End: a.EndDate}
			rb := daterange.Range{Start: b.StartDate, End: b.EndDate}
			if daterange.Overlaps(ra, rb) {
				t.Fatalf("booked entries overlap: %s and %s", ra, rb)
			}
		}
	}
}

func TestBookPartialAcceptance(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewAccommodations()
	id := seedAccommodation(t, store, "h1", entry("e1", "2024-06-03", "2024-06-10", model.StatusBooked))
	svc := NewOccupancyService(store)

	res, err := svc.Book(ctx, id, BookRequest{StartDate: "2024-06-01", EndDate: "2024-06-05", Status: "booked"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Count != 1 || res.Added[0].String() != "2024-06-01..2024-06-02" {
		t.Fatalf("added = %v (count %d); want single 2024-06-01..2024-06-02", res.Added, res.Count)
	}
	if res.Entries[0].GuestName != model.DefaultGuestName || res.Entries[0].ID == "" {
		t.Fatalf("new entry = %+v", res.Entries[0])
	}
	cal, _ := svc.Calendar(ctx, id)
	if len(cal) != 2 {
		t.Fatalf("calendar has %d entries; want 2", len(cal))
	}
	assertNoBookedOverlap(t, cal)
}

func TestBookFullyContainedIsConflict(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewAccommodations()
	id := seedAccommodation(t, store, "h1", entry("e1", "2024-06-03", "2024-06-10", model.StatusBooked))
	svc := NewOccupancyService(store)

	_, err := svc.Book(ctx, id, BookRequest{StartDate: "2024-06-04", EndDate: "2024-06-06", Status: "booked"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v; want ErrConflict", err)
	}
	if store.Saves != 0 {
		t.Fatalf("conflict must not write, saw %d saves", store.Saves)
	}
	cal, _ := svc.Calendar(ctx, id)
	if len(cal) != 1 {
		t.Fatalf("calendar mutated: %v", cal)
	}
}

func TestBookNonBookedEntriesStillBlock(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewAccommodations()
	id := seedAccommodation(t, store, "h1", entry("e1", "2024-07-01", "2024-07-05", model.StatusBlocked))
	svc := NewOccupancyService(store)

	res, err := svc.Book(ctx, id, BookRequest{StartDate: "2024-07-04", EndDate: "2024-07-07", GuestName: "Eva", Status: "available"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Count != 1 || res.Added[0].String() != "2024-07-06..2024-07-07" {
		t.Fatalf("added = %v", res.Added)
	}
	if res.Entries[0].Status != model.StatusAvailable || res.Entries[0].GuestName != "Eva" {
		t.Fatalf("entry = %+v", res.Entries[0])
	}
}

func TestBookRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewAccommodations()
	id := seedAccommodation(t, store, "h1")
	svc := NewOccupancyService(store)

	tests := []struct {
		name string
		id   string
		req  BookRequest
		want error
	}{
		{"empty status", id, BookRequest{StartDate: "2024-06-01", EndDate: "2024-06-02"}, ErrInvalidInput},
		{"cancelled", id, BookRequest{StartDate: "2024-06-01", EndDate: "2024-06-02", Status: "cancelled"}, ErrInvalidInput},
		{"unknown status", id, BookRequest{StartDate: "2024-06-01", EndDate: "2024-06-02", Status: "pending"}, ErrInvalidInput},
		{"inverted", id, BookRequest{StartDate: "2024-06-05", EndDate: "2024-06-02", Status: "booked"}, ErrInvalidInput},
		{"bad date", id, BookRequest{StartDate: "June 1st", EndDate: "2024-06-02", Status: "booked"}, daterange.ErrInvalidDate},
		{"missing accommodation", "nope", BookRequest{StartDate: "2024-06-01", EndDate: "2024-06-02", Status: "booked"}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Book(ctx, tt.id, tt.req); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v; want %v", err, tt.want)
			}
		})
	}
	if store.Saves != 0 {
		t.Fatalf("rejected requests wrote %d times", store.Saves)
	}
}

func TestBookRetriesAfterLostRace(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewAccommodations()
	id := seedAccommodation(t, store, "h1")
	svc := NewOccupancyService(store)

	// A competing writer books 2024-06-02 between our read and our write.
	store.BeforeSave = func(accID string) {
		store.BeforeSave = nil
		cur, _ := store.GetByID(ctx, accID)
		entries := append(cur.OccupancyCalendar, entry("rival", "2024-06-02", "2024-06-02", model.StatusBooked))
		if _, err := store.SaveCalendar(ctx, accID, cur.Version, entries); err != nil {
			t.Errorf("rival write: %v", err)
		}
	}

	res, err := svc.Book(ctx, id, BookRequest{StartDate: "2024-06-01", EndDate: "2024-06-03", Status: "booked"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Count != 2 {
		t.Fatalf("added = %v; want the two days around the rival booking", res.Added)
	}
	cal, _ := svc.Calendar(ctx, id)
	if len(cal) != 3 {
		t.Fatalf("calendar = %v", cal)
	}
	assertNoBookedOverlap(t, cal)
}

func TestBookSequenceKeepsBookedRangesDisjoint(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewAccommodations()
	id := seedAccommodation(t, store, "h1")
	svc := NewOccupancyService(store)

	requests := [][2]string{
		{"2024-06-01", "2024-06-10"},
		{"2024-06-05", "2024-06-15"},
		{"2024-05-25", "2024-06-20"},
		{"2024-06-12", "2024-06-12"},
		{"2024-06-18", "2024-06-25"},
		{"2024-05-20", "2024-05-30"},
	}
	for _, r := range requests {
		_, err := svc.Book(ctx, id, BookRequest{StartDate: r[0], EndDate: r[1], Status: "booked"})
		if err != nil && !errors.Is(err, ErrConflict) {
			t.Fatalf("book %v: %v", r, err)
		}
	}
	cal, _ := svc.Calendar(ctx, id)
	assertNoBookedOverlap(t, cal)

	covered := occupiedDays(cal)
	for _, d := range daterange.ExpandToDays(day("2024-05-20"), day("2024-06-25")) {
		if _, ok := covered[d]; !ok {
			t.Fatalf("day %s requested but not covered", d)
		}
	}
}

func TestConcurrentBookingsKeepBookedRangesDisjoint(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewAccommodations()
	id := seedAccommodation(t, store, "h1")
	svc := NewOccupancyService(store)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := fmt.Sprintf("2024-06-%02d", 1+i)
			end := fmt.Sprintf("2024-06-%02d", 5+i)
			_, err := svc.Book(ctx, id, BookRequest{StartDate: start, EndDate: end, Status: "booked"})
			if err != nil && !errors.Is(err, ErrConflict) {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
	cal, _ := svc.Calendar(ctx, id)
	assertNoBookedOverlap(t, cal)
}

func TestDeleteEntry(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewAccommodations()
	id := seedAccommodation(t, store, "h1",
		entry("keep", "2024-06-01", "2024-06-02", model.StatusBooked),
		entry("drop", "2024-06-05", "2024-06-06", model.StatusBlocked),
	)
	svc := NewOccupancyService(store)

	cal, err := svc.DeleteEntry(ctx, id, "drop")
	if err != nil {
		t.Fatal(err)
	}
	if len(cal) != 1 || cal[0].ID != "keep" {
		t.Fatalf("calendar = %v", cal)
	}

	saves := store.Saves
	if _, err := svc.DeleteEntry(ctx, id, "unknown"); err != nil {
		t.Fatalf("unknown entry: %v", err)
	}
	if store.Saves != saves {
		t.Fatal("unknown entry id must not write")
	}

	if _, err := svc.DeleteEntry(ctx, "missing", "keep"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}
}

func TestDeleteEntryDropsUnstorableStatuses(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewAccommodations()
	id := seedAccommodation(t, store, "h1",
		entry("a", "2024-06-01", "2024-06-02", model.StatusBooked),
		entry("b", "2024-06-03", "2024-06-04", model.StatusCancelled),
		entry("c", "2024-06-05", "2024-06-06", model.StatusAvailable),
	)
	svc := NewOccupancyService(store)

	cal, err := svc.DeleteEntry(ctx, id, "a")
	if err != nil {
		t.Fatal(err)
	}
	if len(cal) != 1 || cal[0].ID != "c" {
		t.Fatalf("calendar = %v; want only the available entry", cal)
	}
}

func TestBulkPushReportsPerEntry(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewAccommodations()
	id := seedAccommodation(t, store, "h1", entry("e1", "2024-06-10", "2024-06-12", model.StatusBooked))
	svc := NewOccupancyService(store)

	results, err := svc.BulkPush(ctx, id, []BookRequest{
		{StartDate: "2024-06-01", EndDate: "2024-06-03", Status: "booked"},
		{StartDate: "2024-06-01", EndDate: "2024-06-03", Status: "cancelled"},
		{StartDate: "2024-06-10", EndDate: "2024-06-11", Status: "booked"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %v", results)
	}
	if results[0].Error != "" || len(results[0].Added) != 1 {
		t.Fatalf("first = %+v", results[0])
	}
	if results[1].Error == "" || results[2].Error == "" {
		t.Fatalf("invalid and conflicting entries must carry errors: %+v", results)
	}

	if _, err := svc.BulkPush(ctx, "missing", []BookRequest{{}}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}
	if _, err := svc.BulkPush(ctx, id, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v; want ErrInvalidInput", err)
	}
}
