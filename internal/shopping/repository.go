package shopping

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Repository handles persistence of shopping lists.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new shopping list repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save upserts the shopping list for a plan; regenerating overwrites the
// previous list for the same (user, plan).
func (r *Repository) Save(ctx context.Context, list *ShoppingList) (int64, error) {
	itemsJSON, err := json.Marshal(list.Items)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal shopping list items: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO shopping_lists (user_id, plan_id, from_day, items, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, plan_id) DO UPDATE SET
			from_day   = excluded.from_day,
			items      = excluded.items,
			created_at = excluded.created_at
	`, list.UserID, list.PlanID, list.FromDay, string(itemsJSON), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to upsert shopping list: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read shopping list insert id: %w", err)
	}
	return id, nil
}

// GetByPlanID retrieves a shopping list by plan ID. Returns (nil, nil) when
// no list has been generated for that plan.
func (r *Repository) GetByPlanID(ctx context.Context, userID string, planID int64) (*ShoppingList, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, plan_id, from_day, items, created_at
		FROM shopping_lists
		WHERE user_id = ? AND plan_id = ?
	`, userID, planID)

	list, err := scanList(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shopping list by plan ID: %w", err)
	}
	return list, nil
}

// GetLatest retrieves the user's most recent shopping list. Returns
// (nil, nil) when the user has none.
func (r *Repository) GetLatest(ctx context.Context, userID string) (*ShoppingList, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, plan_id, from_day, items, created_at
		FROM shopping_lists
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, userID)

	list, err := scanList(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest shopping list: %w", err)
	}
	return list, nil
}

func scanList(row *sql.Row) (*ShoppingList, error) {
	var list ShoppingList
	var itemsJSON string
	if err := row.Scan(&list.ID, &list.UserID, &list.PlanID, &list.FromDay, &itemsJSON, &list.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(itemsJSON), &list.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shopping list items: %w", err)
	}
	return &list, nil
}
