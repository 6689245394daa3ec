package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/vacation-rental/internal/model"
)

type ReviewRepo struct {
	db *sql.DB
}

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

const reviewCols = `id, accommodation_id, name, email, review_text, COALESCE(pluses, ''), COALESCE(cons, ''),
	overall_rating, category_ratings, created_at, updated_at`

func scanReview(s rowScanner) (*model.Review, error) {
	var (
		rv      model.Review
		ratings []byte
	)
	if err := s.Scan(&rv.ID, &rv.AccommodationID, &rv.Name, &rv.Email, &rv.ReviewText, &rv.Pluses,
		&rv.Cons, &rv.OverallRating, &ratings, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
		return nil, err
	}
	if len(ratings) > 0 {
		if err := json.Unmarshal(ratings, &rv.CategoryRatings); err != nil {
			return nil, err
		}
	}
	return &rv, nil
}

func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	rv.CreatedAt, rv.UpdatedAt = now, now
	ratings, err := json.Marshal(rv.CategoryRatings)
	if err != nil {
		return err
	}
	const q = `INSERT INTO reviews (id, accommodation_id, name, email, review_text, pluses, cons,
		overall_rating, category_ratings, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, q, rv.ID, rv.AccommodationID, rv.Name, rv.Email, rv.ReviewText,
		rv.Pluses, rv.Cons, rv.OverallRating, string(ratings), rv.CreatedAt, rv.UpdatedAt)
	return err
}

func (r *ReviewRepo) GetByID(ctx context.Context, id string) (*model.Review, error) {
	rv, err := scanReview(r.db.QueryRowContext(ctx, "SELECT "+reviewCols+" FROM reviews WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rv, err
}

func (r *ReviewRepo) List(ctx context.Context) ([]model.Review, error) {
	return r.list(ctx, "SELECT "+reviewCols+" FROM reviews ORDER BY created_at DESC")
}

func (r *ReviewRepo) ListByAccommodation(ctx context.Context, accommodationID string) ([]model.Review, error) {
	return r.list(ctx, "SELECT "+reviewCols+" FROM reviews WHERE accommodation_id = ? ORDER BY created_at DESC", accommodationID)
}

func (r *ReviewRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "reviews", id)
}

// AverageFor returns the mean overall rating of an accommodation, or zero
// when it has no reviews.
func (r *ReviewRepo) AverageFor(ctx context.Context, accommodationID string) (float64, error) {
	var avg float64
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(AVG(overall_rating), 0) FROM reviews WHERE accommodation_id = ?",
		accommodationID).Scan(&avg)
	return avg, err
}

func (r *ReviewRepo) list(ctx context.Context, q string, args ...any) ([]model.Review, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Review, 0)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rv)
	}
	return out, rows.Err()
}
