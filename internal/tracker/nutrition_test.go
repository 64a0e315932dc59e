package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"fit-companion/internal/plan"
)

// fixedNow is a Wednesday, so today's Monday-first day index is 2.
var fixedNow = time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)

const testPlanJSON = `{
	"title": "Test Week",
	"days": [
		{"day": "Monday", "items": []},
		{"day": "Tuesday", "items": []},
		{"day": "Wednesday", "items": [
			{"type": "breakfast", "name": "Oatmeal", "calories": 400, "protein": "20g", "ingredients": ["80 g oats"]},
			{"name": "Bench Press", "sets": 3, "reps": 10, "rest": 90},
			{"type": "lunch", "name": "Chicken Rice", "calories": 600, "protein": 45, "ingredients": ["100 g rice"]},
			{"name": "Unknown Movement", "sets": "2", "reps": "12", "rest": 60}
		]},
		{"day": "Thursday", "items": [
			{"type": "dinner", "name": "Salmon", "calories": 500, "protein": 40, "ingredients": ["200 g salmon"]}
		]}
	]
}`

// memStore is an in-memory LogStore that counts gateway calls.
type memStore struct {
	logs    map[string]*DailyLog
	gets    int
	upserts int
	failAll bool
}

func newMemStore() *memStore {
	return &memStore{logs: map[string]*DailyLog{}}
}

func (s *memStore) key(userID, date string, kind LogKind) string {
	return userID + "|" + date + "|" + string(kind)
}

func (s *memStore) Get(_ context.Context, userID, date string, kind LogKind) (*DailyLog, error) {
	s.gets++
	if s.failAll {
		return nil, errors.New("store down")
	}
	l, ok := s.logs[s.key(userID, date, kind)]
	if !ok {
		return nil, nil
	}
	return l, nil
}

func (s *memStore) Upsert(_ context.Context, l *DailyLog) error {
	s.upserts++
	if s.failAll {
		return errors.New("store down")
	}
	s.logs[s.key(l.UserID, l.Date, l.Kind)] = l
	return nil
}

// fixedPlans serves one parsed plan for every user.
type fixedPlans struct {
	wp *plan.WeeklyPlan
}

func (p *fixedPlans) GetActive(context.Context, string) (*plan.WeeklyPlan, error) {
	return p.wp, nil
}

func newTestNutritionTracker(t *testing.T, store LogStore) *NutritionTracker {
	t.Helper()
	wp, err := plan.Parse([]byte(testPlanJSON))
	if err != nil {
		t.Fatalf("Failed to parse test plan: %v", err)
	}
	tr := NewNutritionTracker(store, &fixedPlans{wp: wp})
	tr.now = func() time.Time { return fixedNow }
	return tr
}

func TestToggleItemUpdatesTotals(t *testing.T) {
	store := newMemStore()
	tr := newTestNutritionTracker(t, store)
	ctx := context.Background()

	l, err := tr.ToggleItem(ctx, "u1", plan.ItemKey{Day: 2, Item: 0})
	if err != nil {
		t.Fatalf("ToggleItem failed: %v", err)
	}
	if l.Totals.Calories != 400 || l.Totals.Protein != 20 {
		t.Errorf("Expected totals 400/20, got %d/%d", l.Totals.Calories, l.Totals.Protein)
	}

	l, err = tr.ToggleItem(ctx, "u1", plan.ItemKey{Day: 2, Item: 2})
	if err != nil {
		t.Fatalf("ToggleItem failed: %v", err)
	}
	if l.Totals.Calories != 1000 || l.Totals.Protein != 65 {
		t.Errorf("Expected totals 1000/65, got %d/%d", l.Totals.Calories, l.Totals.Protein)
	}
	if store.upserts != 2 {
		t.Errorf("Expected 2 upserts, got %d", store.upserts)
	}
}

func TestToggleItemIsItsOwnInverse(t *testing.T) {
	store := newMemStore()
	tr := newTestNutritionTracker(t, store)
	ctx := context.Background()
	key := plan.ItemKey{Day: 2, Item: 0}

	// Establish a non-trivial starting state.
	if _, err := tr.ToggleItem(ctx, "u1", plan.ItemKey{Day: 2, Item: 2}); err != nil {
		t.Fatalf("ToggleItem failed: %v", err)
	}
	before, err := tr.LoadDay(ctx, "u1", DateOf(fixedNow))
	if err != nil {
		t.Fatalf("LoadDay failed: %v", err)
	}
	beforeTotals := before.Totals

	if _, err := tr.ToggleItem(ctx, "u1", key); err != nil {
		t.Fatalf("ToggleItem failed: %v", err)
	}
	after, err := tr.ToggleItem(ctx, "u1", key)
	if err != nil {
		t.Fatalf("ToggleItem failed: %v", err)
	}

	if after.Totals != beforeTotals {
		t.Errorf("Expected totals %+v after double toggle, got %+v", beforeTotals, after.Totals)
	}
	if after.ItemStatus[key] {
		t.Error("Expected item to be unchecked after double toggle")
	}
}

func TestTotalsMatchCheckedItems(t *testing.T) {
	store := newMemStore()
	tr := newTestNutritionTracker(t, store)
	ctx := context.Background()

	wp, _ := plan.Parse([]byte(testPlanJSON))
	day := wp.Day(2)

	toggles := []plan.ItemKey{
		{Day: 2, Item: 0},
		{Day: 2, Item: 2},
		{Day: 2, Item: 0},
		{Day: 2, Item: 0},
		{Day: 2, Item: 2},
	}

	var last *DailyLog
	for _, key := range toggles {
		var err error
		last, err = tr.ToggleItem(ctx, "u1", key)
		if err != nil {
			t.Fatalf("ToggleItem(%v) failed: %v", key, err)
		}

		wantCalories := 0
		for _, m := range day.Meals() {
			if last.ItemStatus[plan.ItemKey{Day: 2, Item: m.Index}] {
				wantCalories += m.Meal.Calories
			}
		}
		if last.Totals.Calories != wantCalories {
			t.Fatalf("Totals diverged from checked items: want %d, got %d", wantCalories, last.Totals.Calories)
		}
	}
}

func TestToggleItemClampsTotalsAtZero(t *testing.T) {
	store := newMemStore()
	tr := newTestNutritionTracker(t, store)
	ctx := context.Background()
	key := plan.ItemKey{Day: 2, Item: 0}

	// Simulate an inconsistent external edit: item checked but totals zeroed.
	date := DateOf(fixedNow)
	corrupted := NewDailyLog("u1", date, KindNutrition)
	corrupted.ItemStatus[key] = true
	if err := store.Upsert(ctx, corrupted); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	l, err := tr.ToggleItem(ctx, "u1", key)
	if err != nil {
		t.Fatalf("ToggleItem failed: %v", err)
	}
	if l.Totals.Calories != 0 || l.Totals.Protein != 0 {
		t.Errorf("Expected clamped totals 0/0, got %d/%d", l.Totals.Calories, l.Totals.Protein)
	}
}

func TestToggleItemRejectsOtherDays(t *testing.T) {
	cases := []struct {
		name string
		day  int
		want WindowDirection
	}{
		{"Past", 1, WindowPast},
		{"Future", 3, WindowFuture},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			tr := newTestNutritionTracker(t, store)

			_, err := tr.ToggleItem(context.Background(), "u1", plan.ItemKey{Day: tc.day, Item: 0})
			var window OutOfWindowError
			if !errors.As(err, &window) {
				t.Fatalf("Expected OutOfWindowError, got %v", err)
			}
			if window.Direction != tc.want {
				t.Errorf("Expected direction %s, got %s", tc.want, window.Direction)
			}
			if store.gets != 0 || store.upserts != 0 {
				t.Errorf("Expected no store calls for rejected toggle, got %d gets / %d upserts", store.gets, store.upserts)
			}
		})
	}
}

func TestToggleItemRequiresActivePlan(t *testing.T) {
	store := newMemStore()
	tr := NewNutritionTracker(store, &fixedPlans{wp: nil})
	tr.now = func() time.Time { return fixedNow }

	_, err := tr.ToggleItem(context.Background(), "u1", plan.ItemKey{Day: 2, Item: 0})
	var noPlan NoActivePlanError
	if !errors.As(err, &noPlan) {
		t.Fatalf("Expected NoActivePlanError, got %v", err)
	}
}

func TestToggleItemSurfacesPersistenceFailure(t *testing.T) {
	store := newMemStore()
	store.failAll = true
	tr := newTestNutritionTracker(t, store)

	_, err := tr.ToggleItem(context.Background(), "u1", plan.ItemKey{Day: 2, Item: 0})
	if err == nil {
		t.Fatal("Expected an error when the store is down, got nil")
	}
}

func TestLoadDayDefaultsToZeroedRecord(t *testing.T) {
	store := newMemStore()
	tr := newTestNutritionTracker(t, store)

	l, err := tr.LoadDay(context.Background(), "u1", "2025-03-05")
	if err != nil {
		t.Fatalf("LoadDay failed: %v", err)
	}
	if l.Totals.Calories != 0 || len(l.ItemStatus) != 0 {
		t.Errorf("Expected zeroed default record, got %+v", l)
	}
}

func TestDayTarget(t *testing.T) {
	store := newMemStore()
	tr := newTestNutritionTracker(t, store)
	ctx := context.Background()

	t.Run("SumsScheduledCalories", func(t *testing.T) {
		target, err := tr.DayTarget(ctx, "u1", 2)
		if err != nil {
			t.Fatalf("DayTarget failed: %v", err)
		}
		if target != 1000 {
			t.Errorf("Expected target 1000, got %d", target)
		}
	})

	t.Run("FallsBackOnEmptyDay", func(t *testing.T) {
		target, err := tr.DayTarget(ctx, "u1", 0)
		if err != nil {
			t.Fatalf("DayTarget failed: %v", err)
		}
		if target != DefaultCalorieTarget {
			t.Errorf("Expected fallback target %d, got %d", DefaultCalorieTarget, target)
		}
	})

	t.Run("FallsBackWithoutPlan", func(t *testing.T) {
		noPlanTracker := NewNutritionTracker(store, &fixedPlans{wp: nil})
		noPlanTracker.now = func() time.Time { return fixedNow }

		target, err := noPlanTracker.DayTarget(ctx, "u1", 2)
		if err != nil {
			t.Fatalf("DayTarget failed: %v", err)
		}
		if target != DefaultCalorieTarget {
			t.Errorf("Expected fallback target %d, got %d", DefaultCalorieTarget, target)
		}
	})
}
