package service

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/repository/repotest"
)

func TestReviewKeepsAverageRatingCurrent(t *testing.T) {
	ctx := context.Background()
	accs := repotest.NewAccommodations()
	accID := seedAccommodation(t, accs, "h1")
	svc := NewReviewService(repotest.NewReviews(), accs)

	mk := func(rating int) *model.Review {
		return &model.Review{AccommodationID: accID, Name: "Rita", Email: "Rita@example.com", ReviewText: "Lovely", OverallRating: rating}
	}
	first, second := mk(5), mk(2)
	for _, rv := range []*model.Review{first, second} {
		if err := svc.Create(ctx, rv); err != nil {
			t.Fatal(err)
		}
	}
	acc, _ := accs.GetByID(ctx, accID)
	if acc.AverageRating != 3.5 {
		t.Fatalf("average = %v; want 3.5", acc.AverageRating)
	}

	if err := svc.Delete(ctx, first.ID); err != nil {
		t.Fatal(err)
	}
	acc, _ = accs.GetByID(ctx, accID)
	if acc.AverageRating != 2 {
		t.Fatalf("average after delete = %v; want 2", acc.AverageRating)
	}

	list, _ := svc.ListByAccommodation(ctx, accID)
	if len(list) != 1 || list[0].Email != "rita@example.com" {
		t.Fatalf("reviews = %+v", list)
	}
}

func TestReviewValidation(t *testing.T) {
	ctx := context.Background()
	accs := repotest.NewAccommodations()
	accID := seedAccommodation(t, accs, "h1")
	svc := NewReviewService(repotest.NewReviews(), accs)

	tests := []struct {
		name string
		rv   model.Review
		want error
	}{
		{"missing text", model.Review{AccommodationID: accID, Name: "a", Email: "a@b.c", OverallRating: 4}, ErrInvalidInput},
		{"rating too high", model.Review{AccommodationID: accID, Name: "a", Email: "a@b.c", ReviewText: "x", OverallRating: 6}, ErrInvalidInput},
		{"category out of range", model.Review{AccommodationID: accID, Name: "a", Email: "a@b.c", ReviewText: "x", OverallRating: 4,
			CategoryRatings: model.CategoryRatings{WiFi: 7}}, ErrInvalidInput},
		{"unknown accommodation", model.Review{AccommodationID: "gone", Name: "a", Email: "a@b.c", ReviewText: "x", OverallRating: 4}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rv := tt.rv
			if err := svc.Create(ctx, &rv); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v; want %v", err, tt.want)
			}
		})
	}
	if err := svc.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}
}
