package tracker

import (
	"context"
	"fmt"
	"time"

	"fit-companion/internal/plan"
)

// DefaultCalorieTarget is the daily target used when the plan is absent or
// the scheduled day sums to zero calories.
const DefaultCalorieTarget = 2000

// PlanSource yields the caller's active weekly plan. (nil, nil) means none.
type PlanSource interface {
	GetActive(ctx context.Context, userID string) (*plan.WeeklyPlan, error)
}

// NutritionTracker toggles meal-consumption flags for the current day and
// keeps the calorie/protein totals consistent under those toggles.
type NutritionTracker struct {
	store LogStore
	plans PlanSource
	now   func() time.Time
}

// NewNutritionTracker creates a NutritionTracker.
func NewNutritionTracker(store LogStore, plans PlanSource) *NutritionTracker {
	return &NutritionTracker{store: store, plans: plans, now: time.Now}
}

// LoadDay returns the nutrition log for the given calendar day, or a zeroed
// default record when none has been persisted yet.
func (t *NutritionTracker) LoadDay(ctx context.Context, userID, date string) (*DailyLog, error) {
	l, err := t.store.Get(ctx, userID, date, KindNutrition)
	if err != nil {
		return nil, err
	}
	if l == nil {
		l = NewDailyLog(userID, date, KindNutrition)
	}
	return l, nil
}

// ToggleItem flips the consumption flag of one meal and applies its calorie
// and protein contribution to the running totals (added on check, subtracted
// on uncheck, clamped at zero). Only today's plan day is editable; an
// OutOfWindowError is returned before any store access otherwise.
func (t *NutritionTracker) ToggleItem(ctx context.Context, userID string, key plan.ItemKey) (*DailyLog, error) {
	now := t.now()
	today := plan.DayIndex(now)
	if key.Day != today {
		dir := WindowPast
		if key.Day > today {
			dir = WindowFuture
		}
		return nil, OutOfWindowError{DayIndex: key.Day, TodayIndex: today, Direction: dir}
	}

	wp, err := t.plans.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wp == nil {
		return nil, NoActivePlanError{UserID: userID}
	}

	day := wp.Day(key.Day)
	if day == nil || key.Item < 0 || key.Item >= len(day.Items) || day.Items[key.Item].Meal == nil {
		return nil, fmt.Errorf("no meal at %s in active plan", key)
	}
	meal := day.Items[key.Item].Meal

	l, err := t.LoadDay(ctx, userID, DateOf(now))
	if err != nil {
		return nil, err
	}

	checked := !l.ItemStatus[key]
	l.ItemStatus[key] = checked

	calories := meal.Calories
	protein := meal.Protein.Int()
	if checked {
		l.Totals.Calories += calories
		l.Totals.Protein += protein
	} else {
		l.Totals.Calories -= calories
		l.Totals.Protein -= protein
	}
	// Clamp to absorb drift from inconsistent external edits.
	if l.Totals.Calories < 0 {
		l.Totals.Calories = 0
	}
	if l.Totals.Protein < 0 {
		l.Totals.Protein = 0
	}

	if err := t.store.Upsert(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to persist nutrition log: %w", err)
	}
	return l, nil
}

// DayTarget returns the calorie target for a plan day: the sum of scheduled
// meal calories, or DefaultCalorieTarget when the plan is absent or the sum
// is zero. Never returns a non-positive target.
func (t *NutritionTracker) DayTarget(ctx context.Context, userID string, dayIndex int) (int, error) {
	wp, err := t.plans.GetActive(ctx, userID)
	if err != nil {
		return 0, err
	}

	total := 0
	if wp != nil {
		for _, m := range wp.Day(dayIndex).Meals() {
			total += m.Meal.Calories
		}
	}
	if total <= 0 {
		return DefaultCalorieTarget, nil
	}
	return total, nil
}
