package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/vacation-rental/internal/database"
	"github.com/iliyamo/vacation-rental/internal/model"
)

// ReservationRepo provides CRUD operations for reservations. Check-in and
// check-out are DATE columns; all timestamps are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const resCols = `id, user_id, accommodation_id, accommodation_provider, name, email, phone,
	check_in_date, check_out_date, guests, total_price, is_approved, review_email_sent,
	COALESCE(notes, ''), created_at, updated_at`

func scanReservation(s rowScanner) (*model.Reservation, error) {
	var r model.Reservation
	err := s.Scan(&r.ID, &r.UserID, &r.AccommodationID, &r.AccommodationProvider, &r.Name, &r.Email,
		&r.Phone, &r.CheckInDate, &r.CheckOutDate, &r.Guests, &r.TotalPrice, &r.IsApproved,
		&r.ReviewEmailSent, &r.Notes, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts res. A missing ID is generated; an existing one is kept
// so archived reservations can be restored under their original id.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if res.CreatedAt.IsZero() {
		res.CreatedAt = now
	}
	res.UpdatedAt = now
	const q = `INSERT INTO reservations (id, user_id, accommodation_id, accommodation_provider, name, email,
		phone, check_in_date, check_out_date, guests, total_price, is_approved, review_email_sent, notes,
		created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, res.ID, res.UserID, res.AccommodationID, res.AccommodationProvider,
		res.Name, res.Email, res.Phone, res.CheckInDate, res.CheckOutDate, res.Guests, res.TotalPrice,
		res.IsApproved, res.ReviewEmailSent, res.Notes, res.CreatedAt, res.UpdatedAt)
	if database.IsDuplicateKey(err) {
		return fmt.Errorf("%w: reservation %s already exists", ErrConflict, res.ID)
	}
	return err
}

func (r *ReservationRepo) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx, "SELECT "+resCols+" FROM reservations WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return res, err
}

// Update overwrites every mutable column of res.
func (r *ReservationRepo) Update(ctx context.Context, res *model.Reservation) error {
	res.UpdatedAt = time.Now().UTC()
	const q = `UPDATE reservations SET user_id = ?, accommodation_id = ?, accommodation_provider = ?, name = ?,
		email = ?, phone = ?, check_in_date = ?, check_out_date = ?, guests = ?, total_price = ?, is_approved = ?,
		review_email_sent = ?, notes = ?, updated_at = ? WHERE id = ?`
	out, err := r.db.ExecContext(ctx, q, res.UserID, res.AccommodationID, res.AccommodationProvider, res.Name,
		res.Email, res.Phone, res.CheckInDate, res.CheckOutDate, res.Guests, res.TotalPrice, res.IsApproved,
		res.ReviewEmailSent, res.Notes, res.UpdatedAt, res.ID)
	if err != nil {
		return err
	}
	// MySQL reports zero affected rows for a no-op update, so confirm the row.
	if n, _ := out.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, res.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *ReservationRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "reservations", id)
}

func (r *ReservationRepo) List(ctx context.Context) ([]model.Reservation, error) {
	return r.list(ctx, "SELECT "+resCols+" FROM reservations ORDER BY created_at DESC")
}

func (r *ReservationRepo) ListByUser(ctx context.Context, userID string) ([]model.Reservation, error) {
	return r.list(ctx, "SELECT "+resCols+" FROM reservations WHERE user_id = ? ORDER BY created_at DESC", userID)
}

func (r *ReservationRepo) ListByProvider(ctx context.Context, providerID string) ([]model.Reservation, error) {
	return r.list(ctx, "SELECT "+resCols+" FROM reservations WHERE accommodation_provider = ? ORDER BY created_at DESC", providerID)
}

// ListByName matches guest names containing name, ignoring case.
func (r *ReservationRepo) ListByName(ctx context.Context, name string) ([]model.Reservation, error) {
	pattern := "%" + escapeLike(strings.ToLower(name)) + "%"
	return r.list(ctx, "SELECT "+resCols+" FROM reservations WHERE LOWER(name) LIKE ? ORDER BY created_at DESC", pattern)
}

// DeleteByUser removes every reservation of a guest and reports how many.
func (r *ReservationRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reservations WHERE user_id = ?", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListDueForReview returns approved reservations checking out on day that
// have not been sent a review request yet.
func (r *ReservationRepo) ListDueForReview(ctx context.Context, day time.Time) ([]model.Reservation, error) {
	return r.list(ctx, "SELECT "+resCols+` FROM reservations
		WHERE is_approved = 'approved' AND review_email_sent = FALSE AND check_out_date = ?`,
		day.UTC().Format("2006-01-02"))
}

func (r *ReservationRepo) MarkReviewEmailSent(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE reservations SET review_email_sent = TRUE WHERE id = ?", id)
	return err
}

func (r *ReservationRepo) list(ctx context.Context, q string, args ...any) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
