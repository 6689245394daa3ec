package service

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/repository/repotest"
)

type reservationFixture struct {
	svc     *ReservationService
	res     *repotest.Reservations
	archive *repotest.ReservationArchive
	accID   string
}

func newReservationFixture(t *testing.T) *reservationFixture {
	t.Helper()
	accs := repotest.NewAccommodations()
	f := &reservationFixture{
		res:     repotest.NewReservations(),
		archive: repotest.NewReservationArchive(),
		accID:   seedAccommodation(t, accs, "host-1"),
	}
	f.svc = NewReservationService(f.res, f.archive, accs)
	return f
}

func (f *reservationFixture) booking(name, userID string) *model.Reservation {
	return &model.Reservation{
		UserID:          userID,
		AccommodationID: f.accID,
		Name:            name,
		Email:           " " + name + "@Example.com",
		CheckInDate:     day("2024-06-01"),
		CheckOutDate:    day("2024-06-04"),
		Guests:          2,
		TotalPrice:      300,
	}
}

func TestCreateReservation(t *testing.T) {
	ctx := context.Background()
	f := newReservationFixture(t)

	r := f.booking("Ivy", "u1")
	if err := f.svc.Create(ctx, r); err != nil {
		t.Fatal(err)
	}
	got, err := f.svc.Get(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.IsApproved != model.ApprovalPending {
		t.Errorf("approval = %q; want pending", got.IsApproved)
	}
	if got.AccommodationProvider != "host-1" {
		t.Errorf("provider = %q; want the accommodation owner", got.AccommodationProvider)
	}
	if got.Email != "ivy@example.com" {
		t.Errorf("email = %q", got.Email)
	}
}

func TestCreateReservationValidation(t *testing.T) {
	ctx := context.Background()
	f := newReservationFixture(t)

	tests := []struct {
		name   string
		mutate func(r *model.Reservation)
		want   error
	}{
		{"no email", func(r *model.Reservation) { r.Email = "" }, ErrInvalidInput},
		{"inverted stay", func(r *model.Reservation) { r.CheckOutDate = day("2024-05-30") }, ErrInvalidInput},
		{"no guests", func(r *model.Reservation) { r.Guests = 0 }, ErrInvalidInput},
		{"negative price", func(r *model.Reservation) { r.TotalPrice = -1 }, ErrInvalidInput},
		{"bad approval", func(r *model.Reservation) { r.IsApproved = "maybe" }, ErrInvalidInput},
		{"unknown accommodation", func(r *model.Reservation) { r.AccommodationID = "gone" }, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := f.booking("Jo", "u1")
			tt.mutate(r)
			if err := f.svc.Create(ctx, r); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v; want %v", err, tt.want)
			}
		})
	}
}

func TestReservationLookups(t *testing.T) {
	ctx := context.Background()
	f := newReservationFixture(t)
	for _, r := range []*model.Reservation{f.booking("Kim Novak", "u1"), f.booking("Lee", "u1"), f.booking("kimberly", "u2")} {
		if err := f.svc.Create(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	byUser, err := f.svc.ListByUser(ctx, "u1")
	if err != nil || len(byUser) != 2 {
		t.Fatalf("ListByUser = %v %v", byUser, err)
	}
	byName, err := f.svc.ListByName(ctx, "KIM")
	if err != nil || len(byName) != 2 {
		t.Fatalf("ListByName = %v %v", byName, err)
	}
	byProvider, err := f.svc.ListByProvider(ctx, "host-1")
	if err != nil || len(byProvider) != 3 {
		t.Fatalf("ListByProvider = %v %v", byProvider, err)
	}

	if _, err := f.svc.ListByUser(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty ListByUser err = %v; want ErrNotFound", err)
	}
	if _, err := f.svc.ListByName(ctx, " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank name err = %v; want ErrInvalidInput", err)
	}
}

func TestUpdateReservation(t *testing.T) {
	ctx := context.Background()
	f := newReservationFixture(t)
	r := f.booking("Max", "u1")
	if err := f.svc.Create(ctx, r); err != nil {
		t.Fatal(err)
	}

	got, err := f.svc.Update(ctx, r.ID, []byte(`{"isApproved":"approved","checkOutDate":"2024-06-05","id":"x"}`))
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != r.ID || got.IsApproved != model.ApprovalApproved {
		t.Fatalf("updated = %+v", got)
	}
	if !got.CheckOutDate.Equal(day("2024-06-05")) || !got.CheckInDate.Equal(day("2024-06-01")) {
		t.Fatalf("dates = %s..%s", got.CheckInDate, got.CheckOutDate)
	}

	if _, err := f.svc.Update(ctx, r.ID, []byte(`{"checkOutDate":"2024-05-01"}`)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v; want ErrInvalidInput", err)
	}

	byName, err := f.svc.UpdateByName(ctx, "max", []byte(`{"notes":"late arrival"}`))
	if err != nil || byName.Notes != "late arrival" {
		t.Fatalf("UpdateByName = %+v %v", byName, err)
	}
	if _, err := f.svc.UpdateByName(ctx, "nobody", []byte(`{}`)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}
}

func TestReservationArchiveLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newReservationFixture(t)
	r := f.booking("Ned", "u1")
	if err := f.svc.Create(ctx, r); err != nil {
		t.Fatal(err)
	}

	if err := f.svc.Archive(ctx, r.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Get(ctx, r.ID); !errors.Is(err, ErrNotFound) {
		t.Fatal("archived reservation still live")
	}
	archived, _ := f.svc.ListArchived(ctx)
	if len(archived) != 1 || archived[0].ID != r.ID {
		t.Fatalf("archive = %v", archived)
	}

	restored, err := f.svc.Restore(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if restored.ID != r.ID || !restored.CreatedAt.Equal(r.CreatedAt) {
		t.Fatalf("restored = %+v", restored)
	}
	if err := f.svc.Purge(ctx, r.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("purge after restore err = %v; want ErrNotFound", err)
	}
}

func TestDeleteByUser(t *testing.T) {
	ctx := context.Background()
	f := newReservationFixture(t)
	for _, r := range []*model.Reservation{f.booking("Oz", "u1"), f.booking("Pia", "u1"), f.booking("Quinn", "u2")} {
		if err := f.svc.Create(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	n, err := f.svc.DeleteByUser(ctx, "u1")
	if err != nil || n != 2 {
		t.Fatalf("DeleteByUser = %d %v", n, err)
	}
	if _, err := f.svc.DeleteByUser(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}
}

func TestSanitizeID(t *testing.T) {
	got, err := SanitizeID(`{"abc-123"}`)
	if err != nil || got != "abc-123" {
		t.Fatalf("SanitizeID = %q %v", got, err)
	}
	if _, err := SanitizeID(`{}`); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v; want ErrInvalidInput", err)
	}
}
