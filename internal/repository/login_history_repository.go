package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/vacation-rental/internal/model"
)

// LoginHistoryRepo records host sign-ins.
type LoginHistoryRepo struct {
	db *sql.DB
}

func NewLoginHistoryRepo(db *sql.DB) *LoginHistoryRepo { return &LoginHistoryRepo{db: db} }

func (r *LoginHistoryRepo) Create(ctx context.Context, h *model.LoginHistory) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.Timestamp.IsZero() {
		h.Timestamp = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO login_histories (id, host_id, ts, ip, user_agent) VALUES (?, ?, ?, ?, ?)",
		h.ID, h.HostID, h.Timestamp, h.IP, h.UserAgent)
	return err
}

func (r *LoginHistoryRepo) ListByHost(ctx context.Context, hostID string) ([]model.LoginHistory, error) {
	return r.list(ctx, "SELECT id, host_id, ts, ip, user_agent FROM login_histories WHERE host_id = ? ORDER BY ts DESC", hostID)
}

// ListBetween returns entries with from <= ts <= to, newest first. An
// empty hostID matches every host.
func (r *LoginHistoryRepo) ListBetween(ctx context.Context, from, to time.Time, hostID string) ([]model.LoginHistory, error) {
	q := "SELECT id, host_id, ts, ip, user_agent FROM login_histories WHERE ts >= ? AND ts <= ?"
	args := []any{from.UTC(), to.UTC()}
	if hostID != "" {
		q += " AND host_id = ?"
		args = append(args, hostID)
	}
	return r.list(ctx, q+" ORDER BY ts DESC", args...)
}

func (r *LoginHistoryRepo) list(ctx context.Context, q string, args ...any) ([]model.LoginHistory, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.LoginHistory, 0)
	for rows.Next() {
		var h model.LoginHistory
		if err := rows.Scan(&h.ID, &h.HostID, &h.Timestamp, &h.IP, &h.UserAgent); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
