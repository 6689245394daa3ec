package service

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/query"
	"github.com/iliyamo/vacation-rental/internal/repository/repotest"
)

func validListing(owner string) *model.Accommodation {
	return &model.Accommodation{
		UserID:       owner,
		Name:         "Cabin",
		PhoneNumber:  "+421900000000",
		PropertyType: model.Localized{En: "Wooden House"},
		NightMin:     1,
		NightMax:     7,
		Person:       4,
		LocationDetails: model.LocationDetails{
			City:    "  Poprad ",
			Country: "Slovakia",
		},
		Images: []string{"a.jpg", "b.jpg"},
	}
}

func newAccommodationService() (*AccommodationService, *repotest.Accommodations, *repotest.AccommodationArchive) {
	store := repotest.NewAccommodations()
	archive := repotest.NewAccommodationArchive()
	return NewAccommodationService(store, archive), store, archive
}

func TestCreateRequiresKnownOwner(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAccommodationService()
	svc.WithOwners(repotest.Hosts{"h1": model.RoleHost, "root": model.RoleAdmin, "g1": model.RoleGuest})

	for _, owner := range []string{"h1", "root"} {
		if err := svc.Create(ctx, validListing(owner)); err != nil {
			t.Errorf("owner %s: %v", owner, err)
		}
	}
	for _, owner := range []string{"g1", "nobody"} {
		if err := svc.Create(ctx, validListing(owner)); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("owner %s: err = %v; want ErrInvalidInput", owner, err)
		}
	}
}

func TestCreateAccommodation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAccommodationService()

	a := validListing("h1")
	a.Views = 99
	a.OccupancyCalendar = []model.OccupancyEntry{{StartDate: day("2024-06-01"), EndDate: day("2024-06-02"), Status: model.StatusBooked}}
	if err := svc.Create(ctx, a); err != nil {
		t.Fatal(err)
	}
	got, err := svc.Get(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.LocationDetails.City != "poprad" {
		t.Errorf("city = %q; want lowercased and trimmed", got.LocationDetails.City)
	}
	if got.Views != 0 {
		t.Errorf("views = %d; counters must start at zero", got.Views)
	}
	if e := got.OccupancyCalendar[0]; e.ID == "" || e.GuestName != model.DefaultGuestName {
		t.Errorf("entry = %+v", e)
	}
}

func TestCreateAccommodationValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAccommodationService()

	tests := []struct {
		name   string
		mutate func(a *model.Accommodation)
		want   error
	}{
		{"missing phone", func(a *model.Accommodation) { a.PhoneNumber = "" }, ErrInvalidInput},
		{"zero person", func(a *model.Accommodation) { a.Person = 0 }, ErrInvalidInput},
		{"unknown type", func(a *model.Accommodation) { a.PropertyType.En = "Castle" }, ErrInvalidInput},
		{"night range", func(a *model.Accommodation) { a.NightMin, a.NightMax = 5, 2 }, ErrInvalidInput},
		{"bad feed", func(a *model.Accommodation) { a.ICalURL = "file:///etc/passwd" }, ErrInvalidInput},
		{"cancelled entry", func(a *model.Accommodation) {
			a.OccupancyCalendar = []model.OccupancyEntry{entry("", "2024-06-01", "2024-06-02", model.StatusCancelled)}
		}, ErrInvalidInput},
		{"overlapping bookings", func(a *model.Accommodation) {
			a.OccupancyCalendar = []model.OccupancyEntry{
				entry("", "2024-06-01", "2024-06-05", model.StatusBooked),
				entry("", "2024-06-05", "2024-06-07", model.StatusBooked),
			}
		}, ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validListing("h1")
			tt.mutate(a)
			if err := svc.Create(ctx, a); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v; want %v", err, tt.want)
			}
		})
	}
}

func TestUpdateAccommodationPatch(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newAccommodationService()
	a := validListing("h1")
	if err := svc.Create(ctx, a); err != nil {
		t.Fatal(err)
	}
	_ = store.IncrementCounter(ctx, a.ID, model.CounterViews)

	got, err := svc.Update(ctx, a.ID, []byte(`{"name":"Lodge","id":"other","views":0,"nightMax":10}`))
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != a.ID || got.Name != "Lodge" || got.NightMax != 10 || got.Person != 4 {
		t.Fatalf("patched = %+v", got)
	}
	stored, _ := svc.Get(ctx, a.ID)
	if stored.Views != 1 {
		t.Fatalf("views = %d; the patch must not reset counters", stored.Views)
	}

	if _, err := svc.Update(ctx, a.ID, []byte(`[1,2]`)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("array patch err = %v", err)
	}
	if _, err := svc.Update(ctx, a.ID, []byte(`{"nightMin":20}`)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("invalid patch err = %v", err)
	}
	if _, err := svc.Update(ctx, "missing", []byte(`{}`)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing err = %v", err)
	}
}

func TestUpdateAccommodationCalendarMustNotOverlap(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAccommodationService()
	a := validListing("h1")
	if err := svc.Create(ctx, a); err != nil {
		t.Fatal(err)
	}
	patch := []byte(`{"occupancyCalendar":[
		{"startDate":"2024-06-01","endDate":"2024-06-04","status":"booked"},
		{"startDate":"2024-06-03","endDate":"2024-06-06","status":"booked"}]}`)
	if _, err := svc.Update(ctx, a.ID, patch); !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v; want ErrConflict", err)
	}

	patch = []byte(`{"occupancyCalendar":[
		{"startDate":"2024-06-01","endDate":"2024-06-04","status":"booked"},
		{"startDate":"2024-06-03","endDate":"2024-06-06","status":"blocked"}]}`)
	got, err := svc.Update(ctx, a.ID, patch)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.OccupancyCalendar) != 2 || got.OccupancyCalendar[1].ID == "" {
		t.Fatalf("calendar = %+v", got.OccupancyCalendar)
	}
}

func TestArchiveRestorePurge(t *testing.T) {
	ctx := context.Background()
	svc, _, archive := newAccommodationService()
	a := validListing("h1")
	if err := svc.Create(ctx, a); err != nil {
		t.Fatal(err)
	}

	if err := svc.Archive(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("archived listing still live: %v", err)
	}
	arch, err := svc.ListArchived(ctx)
	if err != nil || len(arch) != 1 || arch[0].DeletedAt.IsZero() {
		t.Fatalf("archive = %v %v", arch, err)
	}

	restored, err := svc.Restore(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if restored.ID != a.ID {
		t.Fatalf("restored id = %s; want %s", restored.ID, a.ID)
	}
	if _, err := archive.Get(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatal("restore must empty the archive slot")
	}

	if err := svc.Archive(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.Purge(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.Purge(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second purge err = %v", err)
	}
}

func TestSearchAccommodations(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAccommodationService()

	big := validListing("h1")
	big.Person = 6
	big.OccupancyCalendar = []model.OccupancyEntry{entry("", "2024-06-01", "2024-06-10", model.StatusBooked)}
	small := validListing("h2")
	small.Person = 2
	small.LocationDetails.City = "Kosice"
	for _, a := range []*model.Accommodation{big, small} {
		if err := svc.Create(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	got, err := svc.Search(ctx, url.Values{"person": {"4"}})
	if err != nil || len(got) != 1 || got[0].ID != big.ID {
		t.Fatalf("person search = %v %v", got, err)
	}
	got, err = svc.Search(ctx, url.Values{"startDate": {"2024-06-05"}, "endDate": {"2024-06-06"}})
	if err != nil || len(got) != 1 || got[0].ID != small.ID {
		t.Fatalf("availability search = %v %v", got, err)
	}
	if _, err := svc.Search(ctx, url.Values{"minPrice": {"cheap"}}); !errors.Is(err, query.ErrInvalidFilter) {
		t.Fatalf("err = %v; want ErrInvalidFilter", err)
	}

	got, err = svc.SimpleSearch(ctx, url.Values{"city": {"KOSICE"}, "country": {"Austria"}})
	if err != nil || len(got) != 1 || got[0].ID != small.ID {
		t.Fatalf("simple search = %v %v", got, err)
	}
	all, err := svc.SimpleSearch(ctx, url.Values{})
	if err != nil || len(all) != 2 {
		t.Fatalf("empty simple search = %v %v", all, err)
	}
}

func TestIncrementAndDeleteImage(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAccommodationService()
	a := validListing("h1")
	if err := svc.Create(ctx, a); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Increment(ctx, a.ID, model.CounterClicks)
	if err != nil || got.Clicks != 1 {
		t.Fatalf("Increment = %+v %v", got, err)
	}

	images, err := svc.DeleteImage(ctx, a.ID, "a.jpg")
	if err != nil || len(images) != 1 || images[0] != "b.jpg" {
		t.Fatalf("DeleteImage = %v %v", images, err)
	}
	if _, err := svc.DeleteImage(ctx, a.ID, "a.jpg"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v; want ErrInvalidInput for unknown image", err)
	}
	if _, err := svc.DeleteImage(ctx, a.ID, " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v; want ErrInvalidInput for blank image", err)
	}
}
