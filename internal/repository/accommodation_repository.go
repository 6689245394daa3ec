package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/vacation-rental/internal/database"
	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/query"
)

// AccommodationRepo stores accommodations as JSON documents. Writes that
// replace the document or its calendar are guarded by the version column:
// a write only lands if the caller saw the latest version.
type AccommodationRepo struct {
	db *sql.DB
}

func NewAccommodationRepo(db *sql.DB) *AccommodationRepo { return &AccommodationRepo{db: db} }

// projected columns, kept in the same order as projection().
var projectedCols = []string{
	"property_type", "city", "country", "address", "price_mon_thus", "pet", "smoking",
	"rentalform", "party_organizing", "person", "beds", "bedroom", "bathroom", "ical_url",
}

func projection(a *model.Accommodation) []any {
	return []any{
		a.PropertyType.En, a.LocationDetails.City, a.LocationDetails.Country, a.Location.Address,
		a.PriceMonThus, a.Pet.En, a.Smoking.En, a.RentalForm.En, a.PartyOrganizing.En,
		a.Person, a.Beds, a.Bedroom, a.Bathroom, a.ICalURL,
	}
}

const accSelect = `SELECT doc, version, views, clicks, customer_interest, average_rating, created_at, updated_at FROM accommodations`

var counterCols = map[string]string{
	model.CounterViews:            "views",
	model.CounterClicks:           "clicks",
	model.CounterCustomerInterest: "customer_interest",
}

// Create inserts a. A missing ID is generated; an existing one is kept so
// archived accommodations can be restored under their original id.
func (r *AccommodationRepo) Create(ctx context.Context, a *model.Accommodation) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.Version = 1
	a.CreatedAt, a.UpdatedAt = now, now
	doc, err := json.Marshal(a)
	if err != nil {
		return err
	}

	cols := append([]string{"id", "user_id", "doc", "version", "views", "clicks",
		"customer_interest", "average_rating", "created_at", "updated_at"}, projectedCols...)
	args := append([]any{a.ID, a.UserID, string(doc), a.Version, a.Views, a.Clicks,
		a.CustomerInterest, a.AverageRating, now, now}, projection(a)...)
	q := "INSERT INTO accommodations (" + strings.Join(cols, ", ") + ") VALUES (" +
		strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",") + ")"
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		if database.IsDuplicateKey(err) {
			return fmt.Errorf("%w: accommodation %s already exists", ErrConflict, a.ID)
		}
		return err
	}
	return nil
}

// GetByID returns ErrNotFound when no row matches.
func (r *AccommodationRepo) GetByID(ctx context.Context, id string) (*model.Accommodation, error) {
	a, err := scanAccommodation(r.db.QueryRowContext(ctx, accSelect+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

// Update replaces the whole document if a.Version is still current and
// bumps a.Version on success.
func (r *AccommodationRepo) Update(ctx context.Context, a *model.Accommodation) error {
	a.UpdatedAt = time.Now().UTC()
	doc, err := json.Marshal(a)
	if err != nil {
		return err
	}
	sets := make([]string, 0, len(projectedCols)+3)
	sets = append(sets, "doc = ?", "user_id = ?", "version = version + 1")
	for _, c := range projectedCols {
		sets = append(sets, c+" = ?")
	}
	args := append([]any{string(doc), a.UserID}, projection(a)...)
	args = append(args, a.ID, a.Version)
	q := "UPDATE accommodations SET " + strings.Join(sets, ", ") + " WHERE id = ? AND version = ?"
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if err := r.checkVersioned(ctx, res, a.ID); err != nil {
		return err
	}
	a.Version++
	return nil
}

// SaveCalendar swaps the occupancy calendar if version is current and
// returns the new version.
func (r *AccommodationRepo) SaveCalendar(ctx context.Context, id string, version int64, entries []model.OccupancyEntry) (int64, error) {
	if entries == nil {
		entries = []model.OccupancyEntry{}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return 0, err
	}
	const q = `UPDATE accommodations
		SET doc = JSON_SET(doc, '$.occupancyCalendar', CAST(? AS JSON)), version = version + 1
		WHERE id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, q, string(b), id, version)
	if err != nil {
		return 0, err
	}
	if err := r.checkVersioned(ctx, res, id); err != nil {
		return 0, err
	}
	return version + 1, nil
}

// checkVersioned tells a missing row apart from a lost race.
func (r *AccommodationRepo) checkVersioned(ctx context.Context, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var one int
	err = r.db.QueryRowContext(ctx, "SELECT 1 FROM accommodations WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrStaleVersion
}

func (r *AccommodationRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM accommodations WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AccommodationRepo) List(ctx context.Context) ([]model.Accommodation, error) {
	return r.list(ctx, accSelect+" ORDER BY created_at DESC")
}

func (r *AccommodationRepo) ListByOwner(ctx context.Context, userID string) ([]model.Accommodation, error) {
	return r.list(ctx, accSelect+" WHERE user_id = ? ORDER BY created_at DESC", userID)
}

// Search runs the column part of f in SQL and applies the availability
// range to each candidate afterwards.
func (r *AccommodationRepo) Search(ctx context.Context, f query.Filter) ([]model.Accommodation, error) {
	q := accSelect
	where, args := f.SQL()
	if where != "" {
		q += " WHERE " + where
	}
	rows, err := r.list(ctx, q+" ORDER BY created_at DESC", args...)
	if err != nil || f.Available == nil {
		return rows, err
	}
	out := rows[:0]
	for _, a := range rows {
		if query.Available(a.OccupancyCalendar, *f.Available) {
			out = append(out, a)
		}
	}
	return out, nil
}

// IncrementCounter adds one to a named counter.
func (r *AccommodationRepo) IncrementCounter(ctx context.Context, id, counter string) error {
	col, ok := counterCols[counter]
	if !ok {
		return fmt.Errorf("unknown counter %q", counter)
	}
	res, err := r.db.ExecContext(ctx, "UPDATE accommodations SET "+col+" = "+col+" + 1 WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAverageRating ignores missing accommodations; reviews may outlive them.
func (r *AccommodationRepo) SetAverageRating(ctx context.Context, id string, avg float64) error {
	_, err := r.db.ExecContext(ctx, "UPDATE accommodations SET average_rating = ? WHERE id = ?", avg, id)
	return err
}

func (r *AccommodationRepo) ListOwnerRefs(ctx context.Context) ([]model.OwnerRef, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, user_id FROM accommodations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.OwnerRef
	for rows.Next() {
		var ref model.OwnerRef
		if err := rows.Scan(&ref.ID, &ref.UserID); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (r *AccommodationRepo) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id FROM accommodations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ListFeeds returns accommodations that have an external ICS feed.
func (r *AccommodationRepo) ListFeeds(ctx context.Context) ([]model.FeedRef, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, ical_url FROM accommodations WHERE ical_url <> ''")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.FeedRef
	for rows.Next() {
		var f model.FeedRef
		if err := rows.Scan(&f.ID, &f.ICalURL); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *AccommodationRepo) list(ctx context.Context, q string, args ...any) ([]model.Accommodation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Accommodation, 0)
	for rows.Next() {
		a, err := scanAccommodation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccommodation(s rowScanner) (*model.Accommodation, error) {
	var (
		doc      []byte
		a        model.Accommodation
		ver      int64
		views    int64
		clicks   int64
		interest int64
		avg      float64
		created  time.Time
		updated  time.Time
	)
	if err := s.Scan(&doc, &ver, &views, &clicks, &interest, &avg, &created, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(doc, &a); err != nil {
		return nil, fmt.Errorf("decode accommodation document: %w", err)
	}
	a.Version = ver
	a.Views, a.Clicks, a.CustomerInterest, a.AverageRating = views, clicks, interest, avg
	a.CreatedAt, a.UpdatedAt = created, updated
	if a.OccupancyCalendar == nil {
		a.OccupancyCalendar = []model.OccupancyEntry{}
	}
	return &a, nil
}
