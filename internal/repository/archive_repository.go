package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/iliyamo/vacation-rental/internal/model"
)

// Archive writes are upserts keyed by the original id, so archiving the
// same record twice leaves exactly one archive row.

// AccommodationArchiveRepo stores soft-deleted accommodations.
type AccommodationArchiveRepo struct {
	db *sql.DB
}

func NewAccommodationArchiveRepo(db *sql.DB) *AccommodationArchiveRepo {
	return &AccommodationArchiveRepo{db: db}
}

func (r *AccommodationArchiveRepo) Upsert(ctx context.Context, a *model.ArchivedAccommodation) error {
	doc, err := json.Marshal(a.Accommodation)
	if err != nil {
		return err
	}
	const q = `INSERT INTO deleted_accommodations (id, user_id, doc, deleted_at) VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE user_id = VALUES(user_id), doc = VALUES(doc), deleted_at = VALUES(deleted_at)`
	_, err = r.db.ExecContext(ctx, q, a.ID, a.UserID, string(doc), a.DeletedAt.UTC())
	return err
}

func (r *AccommodationArchiveRepo) Get(ctx context.Context, id string) (*model.ArchivedAccommodation, error) {
	var (
		doc       []byte
		deletedAt time.Time
	)
	err := r.db.QueryRowContext(ctx, "SELECT doc, deleted_at FROM deleted_accommodations WHERE id = ?", id).
		Scan(&doc, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	out := &model.ArchivedAccommodation{DeletedAt: deletedAt}
	if err := json.Unmarshal(doc, &out.Accommodation); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AccommodationArchiveRepo) List(ctx context.Context) ([]model.ArchivedAccommodation, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT doc, deleted_at FROM deleted_accommodations ORDER BY deleted_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ArchivedAccommodation, 0)
	for rows.Next() {
		var (
			doc []byte
			a   model.ArchivedAccommodation
		)
		if err := rows.Scan(&doc, &a.DeletedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(doc, &a.Accommodation); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AccommodationArchiveRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "deleted_accommodations", id)
}

// ReservationArchiveRepo stores soft-deleted reservations.
type ReservationArchiveRepo struct {
	db *sql.DB
}

func NewReservationArchiveRepo(db *sql.DB) *ReservationArchiveRepo {
	return &ReservationArchiveRepo{db: db}
}

func (r *ReservationArchiveRepo) Upsert(ctx context.Context, res *model.ArchivedReservation) error {
	doc, err := json.Marshal(res.Reservation)
	if err != nil {
		return err
	}
	const q = `INSERT INTO deleted_reservations (id, doc, deleted_at) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE doc = VALUES(doc), deleted_at = VALUES(deleted_at)`
	_, err = r.db.ExecContext(ctx, q, res.ID, string(doc), res.DeletedAt.UTC())
	return err
}

func (r *ReservationArchiveRepo) Get(ctx context.Context, id string) (*model.ArchivedReservation, error) {
	var doc []byte
	out := &model.ArchivedReservation{}
	err := r.db.QueryRowContext(ctx, "SELECT doc, deleted_at FROM deleted_reservations WHERE id = ?", id).
		Scan(&doc, &out.DeletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(doc, &out.Reservation); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReservationArchiveRepo) List(ctx context.Context) ([]model.ArchivedReservation, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT doc, deleted_at FROM deleted_reservations ORDER BY deleted_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ArchivedReservation, 0)
	for rows.Next() {
		var (
			doc []byte
			a   model.ArchivedReservation
		)
		if err := rows.Scan(&doc, &a.DeletedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(doc, &a.Reservation); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *ReservationArchiveRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "deleted_reservations", id)
}

// deleteByID removes one row by primary key. table is always a constant.
func deleteByID(ctx context.Context, db *sql.DB, table, id string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
