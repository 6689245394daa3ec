package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/vacation-rental/internal/applog"
	"github.com/iliyamo/vacation-rental/internal/model"
)

// ReviewService stores reviews and keeps each accommodation's average
// rating in step with them.
type ReviewService struct {
	reviews ReviewStore
	accs    AccommodationStore
}

func NewReviewService(reviews ReviewStore, accs AccommodationStore) *ReviewService {
	return &ReviewService{reviews: reviews, accs: accs}
}

func (s *ReviewService) Create(ctx context.Context, rv *model.Review) error {
	rv.ID = ""
	rv.Name = strings.TrimSpace(rv.Name)
	rv.Email = strings.ToLower(strings.TrimSpace(rv.Email))
	rv.ReviewText = strings.TrimSpace(rv.ReviewText)
	if rv.AccommodationID == "" || rv.Name == "" || rv.Email == "" || rv.ReviewText == "" {
		return fmt.Errorf("%w: accommodation, name, email and reviewText are required", ErrInvalidInput)
	}
	if rv.OverallRating < 1 || rv.OverallRating > 5 {
		return fmt.Errorf("%w: overallRating must be between 1 and 5", ErrInvalidInput)
	}
	for _, v := range rv.CategoryRatings.Values() {
		if v < 0 || v > 5 {
			return fmt.Errorf("%w: category ratings must be between 0 and 5", ErrInvalidInput)
		}
	}
	if _, err := s.accs.GetByID(ctx, rv.AccommodationID); err != nil {
		return err
	}
	if err := s.reviews.Create(ctx, rv); err != nil {
		return err
	}
	s.recompute(ctx, rv.AccommodationID)
	return nil
}

func (s *ReviewService) List(ctx context.Context) ([]model.Review, error) {
	return s.reviews.List(ctx)
}

func (s *ReviewService) ListByAccommodation(ctx context.Context, accommodationID string) ([]model.Review, error) {
	return s.reviews.ListByAccommodation(ctx, accommodationID)
}

func (s *ReviewService) Delete(ctx context.Context, id string) error {
	rv, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return err
	}
	s.recompute(ctx, rv.AccommodationID)
	return nil
}

// recompute refreshes the stored average. The review write already
// succeeded, so a failure here is only logged.
func (s *ReviewService) recompute(ctx context.Context, accommodationID string) {
	avg, err := s.reviews.AverageFor(ctx, accommodationID)
	if err == nil {
		err = s.accs.SetAverageRating(ctx, accommodationID, avg)
	}
	if err != nil {
		applog.Error("average rating refresh failed", err, "accommodation", accommodationID)
	}
}
