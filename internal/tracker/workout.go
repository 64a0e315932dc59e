package tracker

import (
	"context"
	"fmt"
	"log"
	"time"

	"fit-companion/internal/plan"
	"fit-companion/internal/workout"
)

const defaultRPE = 8

// SessionRecorder is the external collaborator that persists finished
// workout sessions.
type SessionRecorder interface {
	ResolveExerciseID(ctx context.Context, name string) (string, error)
	CreateSession(ctx context.Context, meta workout.SessionMeta) (string, error)
	BulkInsertSets(ctx context.Context, sessionID string, sets []workout.SetRecord) error
}

// SessionResult summarizes a finished session after delegation to the recorder.
type SessionResult struct {
	SessionID          string
	CompletedExercises int
	RecordedSets       int
	DroppedExercises   []string
}

// WorkoutTracker toggles exercise-completion flags and derives a session
// record when the user finishes a workout.
type WorkoutTracker struct {
	store    LogStore
	plans    PlanSource
	recorder SessionRecorder
	now      func() time.Time
}

// NewWorkoutTracker creates a WorkoutTracker.
func NewWorkoutTracker(store LogStore, plans PlanSource, recorder SessionRecorder) *WorkoutTracker {
	return &WorkoutTracker{store: store, plans: plans, recorder: recorder, now: time.Now}
}

// LoadDay returns the workout log for the given calendar day, or a zeroed
// default record when none has been persisted yet.
func (t *WorkoutTracker) LoadDay(ctx context.Context, userID, date string) (*DailyLog, error) {
	l, err := t.store.Get(ctx, userID, date, KindWorkout)
	if err != nil {
		return nil, err
	}
	if l == nil {
		l = NewDailyLog(userID, date, KindWorkout)
	}
	return l, nil
}

// ToggleExercise flips the completion flag of one exercise and persists the
// full status map together with the current free-text note. Exercise toggles
// carry no day-window restriction, unlike meal toggles; the completed count
// is derived at read time rather than stored.
func (t *WorkoutTracker) ToggleExercise(ctx context.Context, userID string, key plan.ItemKey, note string) (*DailyLog, error) {
	wp, err := t.plans.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wp == nil {
		return nil, NoActivePlanError{UserID: userID}
	}

	day := wp.Day(key.Day)
	if day == nil || key.Item < 0 || key.Item >= len(day.Items) || day.Items[key.Item].Exercise == nil {
		return nil, fmt.Errorf("no exercise at %s in active plan", key)
	}

	l, err := t.LoadDay(ctx, userID, DateOf(t.now()))
	if err != nil {
		return nil, err
	}

	l.ItemStatus[key] = !l.ItemStatus[key]
	l.Note = note

	if err := t.store.Upsert(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to persist workout log: %w", err)
	}
	return l, nil
}

// FinishSession expands every completed exercise of the day into its set
// records and hands them to the session recorder. Exercise names that do not
// resolve against the catalog are dropped with a warning; the session still
// persists with fewer sets. Finishing with nothing completed is rejected
// before any recorder call.
func (t *WorkoutTracker) FinishSession(ctx context.Context, userID string, dayIndex int) (*SessionResult, error) {
	wp, err := t.plans.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wp == nil {
		return nil, NoActivePlanError{UserID: userID}
	}

	now := t.now()
	l, err := t.LoadDay(ctx, userID, DateOf(now))
	if err != nil {
		return nil, err
	}

	day := wp.Day(dayIndex)
	var completed []plan.IndexedExercise
	for _, ex := range day.Exercises() {
		if l.ItemStatus[plan.ItemKey{Day: dayIndex, Item: ex.Index}] {
			completed = append(completed, ex)
		}
	}
	if len(completed) == 0 {
		return nil, EmptySessionError{DayIndex: dayIndex}
	}

	var sets []workout.SetRecord
	var dropped []string
	for _, ex := range completed {
		id, err := t.recorder.ResolveExerciseID(ctx, ex.Exercise.Name)
		if err != nil {
			return nil, err
		}
		if id == "" {
			log.Printf("Warning: exercise %q not found in catalog, dropping its sets", ex.Exercise.Name)
			dropped = append(dropped, ex.Exercise.Name)
			continue
		}

		numSets := ex.Exercise.Sets.Int()
		if numSets <= 0 {
			numSets = 1
		}
		for s := 0; s < numSets; s++ {
			sets = append(sets, workout.SetRecord{
				ExerciseID:   id,
				ExerciseName: ex.Exercise.Name,
				Reps:         ex.Exercise.Reps.Int(),
				Weight:       0,
				RPE:          defaultRPE,
			})
		}
	}

	focus := ""
	if day != nil {
		focus = day.Focus
	}
	sessionID, err := t.recorder.CreateSession(ctx, workout.SessionMeta{
		UserID:   userID,
		Date:     DateOf(now),
		DayIndex: dayIndex,
		Focus:    focus,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := t.recorder.BulkInsertSets(ctx, sessionID, sets); err != nil {
		return nil, fmt.Errorf("failed to record sets: %w", err)
	}

	return &SessionResult{
		SessionID:          sessionID,
		CompletedExercises: len(completed),
		RecordedSets:       len(sets),
		DroppedExercises:   dropped,
	}, nil
}
