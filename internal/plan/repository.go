package plan

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// StoredPlan is a weekly plan row as persisted.
type StoredPlan struct {
	ID        int64
	UserID    string
	Title     string
	PlanData  []byte // raw generator JSON
	Active    bool
	CreatedAt time.Time
}

// Repository is a database-backed repository for weekly plans.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new plan Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// SaveActive stores a freshly generated plan as the user's active plan.
// Previous plans are marked inactive, never deleted; they remain as history.
func (r *Repository) SaveActive(ctx context.Context, userID, title string, planData []byte) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin plan transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE weekly_plans SET active = 0 WHERE user_id = ? AND active = 1
	`, userID); err != nil {
		return 0, fmt.Errorf("failed to deactivate previous plans: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO weekly_plans (user_id, title, plan_data, active, created_at)
		VALUES (?, ?, ?, 1, ?)
	`, userID, title, string(planData), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert weekly plan: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read plan insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit plan transaction: %w", err)
	}
	return id, nil
}

// GetActive retrieves and parses the user's active plan. Returns (nil, nil)
// when the user has no active plan.
func (r *Repository) GetActive(ctx context.Context, userID string) (*WeeklyPlan, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, plan_data FROM weekly_plans
		WHERE user_id = ? AND active = 1
		ORDER BY created_at DESC
		LIMIT 1
	`, userID)

	var id int64
	var data string
	if err := row.Scan(&id, &data); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active plan: %w", err)
	}

	wp, err := Parse([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored plan %d: %w", id, err)
	}
	wp.ID = id
	return wp, nil
}

// ListRecent retrieves the N most recent plans for a user, newest first.
func (r *Repository) ListRecent(ctx context.Context, userID string, limit int) ([]StoredPlan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, title, plan_data, active, created_at
		FROM weekly_plans
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent plans for user %s: %w", userID, err)
	}
	defer rows.Close()

	var plans []StoredPlan
	for rows.Next() {
		var p StoredPlan
		var data string
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &data, &p.Active, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan plan row: %w", err)
		}
		p.PlanData = []byte(data)
		plans = append(plans, p)
	}
	return plans, rows.Err()
}
