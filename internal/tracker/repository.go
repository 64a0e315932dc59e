package tracker

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"fit-companion/internal/plan"
)

// LogStore is the persistence gateway the trackers depend on: point lookup
// and upsert by the (user, date, kind) unique key. Nothing here assumes
// transactions or row locks.
type LogStore interface {
	Get(ctx context.Context, userID, date string, kind LogKind) (*DailyLog, error)
	Upsert(ctx context.Context, log *DailyLog) error
}

// Repository is the SQLite-backed LogStore.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new daily log Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Get retrieves the log for (user, date, kind). Returns (nil, nil) when no
// row exists; callers fall back to a zeroed default record.
func (r *Repository) Get(ctx context.Context, userID, date string, kind LogKind) (*DailyLog, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT item_status, calories, protein, note, updated_at
		FROM daily_logs
		WHERE user_id = ? AND date = ? AND kind = ?
	`, userID, date, string(kind))

	var statusJSON string
	l := &DailyLog{UserID: userID, Date: date, Kind: kind}
	if err := row.Scan(&statusJSON, &l.Totals.Calories, &l.Totals.Protein, &l.Note, &l.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get daily log: %w", err)
	}

	var status plan.StatusMap
	if err := json.Unmarshal([]byte(statusJSON), &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item status for %s/%s: %w", userID, date, err)
	}
	if status == nil {
		status = plan.StatusMap{}
	}
	l.ItemStatus = status
	return l, nil
}

// Upsert writes the full log row, inserting or overwriting the record sharing
// its (user, date, kind) key. The unique index enforces the one-log-per-day
// invariant; there is no application-level locking.
func (r *Repository) Upsert(ctx context.Context, l *DailyLog) error {
	statusJSON, err := json.Marshal(l.ItemStatus)
	if err != nil {
		return fmt.Errorf("failed to marshal item status: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO daily_logs (user_id, date, kind, item_status, calories, protein, note, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date, kind) DO UPDATE SET
			item_status = excluded.item_status,
			calories    = excluded.calories,
			protein     = excluded.protein,
			note        = excluded.note,
			updated_at  = excluded.updated_at
	`, l.UserID, l.Date, string(l.Kind), string(statusJSON),
		l.Totals.Calories, l.Totals.Protein, l.Note, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert daily log: %w", err)
	}
	return nil
}
