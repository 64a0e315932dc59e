package workout

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SetRecord is one performed set, expanded from a completed plan exercise.
// Weight is a placeholder until the user logs real loads; RPE defaults to 8.
type SetRecord struct {
	ExerciseID   string
	ExerciseName string
	Reps         int
	Weight       float64
	RPE          int
}

// SessionMeta describes the workout session being recorded.
type SessionMeta struct {
	UserID   string
	Date     string
	DayIndex int
	Focus    string
}

// Recorder persists workout sessions and their sets, resolving free-text
// exercise names against the canonical catalog.
type Recorder struct {
	db *sql.DB
}

// NewRecorder creates a new session Recorder.
func NewRecorder(d *sql.DB) *Recorder {
	return &Recorder{db: d}
}

// ResolveExerciseID looks up a catalog exercise by case-insensitive exact
// name match. Returns ("", nil) when the name is not in the catalog.
func (r *Recorder) ResolveExerciseID(ctx context.Context, name string) (string, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id FROM exercises WHERE LOWER(name) = ?
	`, strings.ToLower(strings.TrimSpace(name)))

	var id string
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to resolve exercise %q: %w", name, err)
	}
	return id, nil
}

// CreateSession inserts a session row and returns its generated ID.
func (r *Recorder) CreateSession(ctx context.Context, meta SessionMeta) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO workout_sessions (id, user_id, date, day_index, focus, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, meta.UserID, meta.Date, meta.DayIndex, meta.Focus, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to create workout session: %w", err)
	}
	return id, nil
}

// BulkInsertSets writes the expanded set records for a session.
func (r *Recorder) BulkInsertSets(ctx context.Context, sessionID string, sets []SetRecord) error {
	if len(sets) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin set insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO session_sets (session_id, exercise_id, set_number, reps, weight, rpe)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare set insert: %w", err)
	}
	defer stmt.Close()

	for i, s := range sets {
		if _, err := stmt.ExecContext(ctx, sessionID, s.ExerciseID, i+1, s.Reps, s.Weight, s.RPE); err != nil {
			return fmt.Errorf("failed to insert set %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

// CountSets returns the number of sets stored for a session.
func (r *Recorder) CountSets(ctx context.Context, sessionID string) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM session_sets WHERE session_id = ?
	`, sessionID)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count session sets: %w", err)
	}
	return n, nil
}
