package plan

import (
	"encoding/json"
	"testing"
	"time"
)

const samplePlanJSON = `{
	"title": "Cut Week 1",
	"days": [
		{
			"day": "Monday",
			"focus": "Push day",
			"items": [
				{"type": "breakfast", "name": "Oatmeal", "calories": 420, "protein": "18g", "ingredients": ["80 g oats", "250 ml milk"]},
				{"name": "Bench Press", "sets": 4, "reps": "8-10", "rest": 120},
				{"type": "lunch", "name": "Chicken Rice", "calories": 650, "protein": 45, "ingredients": ["100 g rice", "150 g chicken breast"]}
			]
		},
		{
			"items": [
				{"name": "Eggs on Toast", "calories": 380, "ingredients": ["2 eggs", "1 slice bread"]}
			]
		}
	]
}`

func TestParse(t *testing.T) {
	wp, err := Parse([]byte(samplePlanJSON))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if wp.Title != "Cut Week 1" {
		t.Errorf("Expected title 'Cut Week 1', got '%s'", wp.Title)
	}
	if len(wp.Days) != 7 {
		t.Fatalf("Expected 7 days after normalization, got %d", len(wp.Days))
	}

	monday := wp.Day(0)
	if len(monday.Items) != 3 {
		t.Fatalf("Expected 3 items on Monday, got %d", len(monday.Items))
	}
	if monday.Items[0].Kind != KindMeal {
		t.Errorf("Expected item 0 to be a meal, got %s", monday.Items[0].Kind)
	}
	if monday.Items[1].Kind != KindExercise {
		t.Errorf("Expected item 1 to be an exercise, got %s", monday.Items[1].Kind)
	}
	if got := monday.Items[0].Meal.Protein.Int(); got != 18 {
		t.Errorf("Expected protein '18g' to parse to 18, got %d", got)
	}
	if got := monday.Items[1].Exercise.Reps.Int(); got != 8 {
		t.Errorf("Expected reps '8-10' to parse to 8, got %d", got)
	}
	if got := monday.Items[2].Meal.Protein.Int(); got != 45 {
		t.Errorf("Expected numeric protein 45, got %d", got)
	}
}

func TestParseDefaultsMissingFields(t *testing.T) {
	wp, err := Parse([]byte(samplePlanJSON))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	// Day 2 had no label; days 3..7 were absent entirely.
	if wp.Days[1].Label != "Tuesday" {
		t.Errorf("Expected defaulted label 'Tuesday', got '%s'", wp.Days[1].Label)
	}
	if wp.Days[6].Label != "Sunday" {
		t.Errorf("Expected padded day to be labeled 'Sunday', got '%s'", wp.Days[6].Label)
	}
	if len(wp.Days[6].Items) != 0 {
		t.Errorf("Expected padded day to have no items, got %d", len(wp.Days[6].Items))
	}

	// Missing protein defaults to 0, not an error.
	if got := wp.Days[1].Items[0].Meal.Protein.Int(); got != 0 {
		t.Errorf("Expected missing protein to default to 0, got %d", got)
	}
}

func TestMealsAndExercisesKeepItemIndexes(t *testing.T) {
	wp, _ := Parse([]byte(samplePlanJSON))
	monday := wp.Day(0)

	meals := monday.Meals()
	if len(meals) != 2 {
		t.Fatalf("Expected 2 meals, got %d", len(meals))
	}
	if meals[0].Index != 0 || meals[1].Index != 2 {
		t.Errorf("Expected meal indexes [0 2], got [%d %d]", meals[0].Index, meals[1].Index)
	}

	exercises := monday.Exercises()
	if len(exercises) != 1 || exercises[0].Index != 1 {
		t.Fatalf("Expected one exercise at index 1, got %+v", exercises)
	}
}

func TestProteinGrams(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int
	}{
		{"Number", `30`, 30},
		{"StringWithUnit", `"25g"`, 25},
		{"StringWithNoise", `"approx. 30 g"`, 30},
		{"Garbage", `"plenty"`, 0},
		{"Null", `null`, 0},
		{"Float", `27.6`, 27},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var p ProteinGrams
			if err := json.Unmarshal([]byte(tc.in), &p); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if p.Int() != tc.want {
				t.Errorf("Expected %d, got %d", tc.want, p.Int())
			}
		})
	}
}

func TestFlexInt(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int
	}{
		{"Number", `4`, 4},
		{"RangeString", `"8-12"`, 8},
		{"UnitString", `"90s"`, 90},
		{"Garbage", `"to failure"`, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var f FlexInt
			if err := json.Unmarshal([]byte(tc.in), &f); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if f.Int() != tc.want {
				t.Errorf("Expected %d, got %d", tc.want, f.Int())
			}
		})
	}
}

func TestItemKeyRoundTrip(t *testing.T) {
	k := ItemKey{Day: 3, Item: 12}
	parsed, err := ParseItemKey(k.String())
	if err != nil {
		t.Fatalf("ParseItemKey failed: %v", err)
	}
	if parsed != k {
		t.Errorf("Expected %v, got %v", k, parsed)
	}

	if _, err := ParseItemKey("day_3_item_12"); err == nil {
		t.Error("Expected error for legacy key format, got nil")
	}
}

func TestStatusMapJSON(t *testing.T) {
	m := StatusMap{
		{Day: 0, Item: 1}: true,
		{Day: 2, Item: 0}: false,
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"d0.i1":true,"d2.i0":false}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}

	var back StatusMap
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !back[ItemKey{Day: 0, Item: 1}] {
		t.Error("Expected d0.i1 to be true after round trip")
	}
	if back.CountDone(-1) != 1 {
		t.Errorf("Expected 1 done entry, got %d", back.CountDone(-1))
	}
}

func TestStatusMapToleratesUnknownKeys(t *testing.T) {
	var m StatusMap
	if err := json.Unmarshal([]byte(`{"d0.i0":true,"legacy_key":true}`), &m); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(m) != 1 {
		t.Errorf("Expected malformed key to be skipped, got %d entries", len(m))
	}
}

func TestDayIndex(t *testing.T) {
	cases := []struct {
		name string
		date time.Time
		want int
	}{
		{"Monday", time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC), 0},
		{"Wednesday", time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC), 2},
		{"Sunday", time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC), 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DayIndex(tc.date); got != tc.want {
				t.Errorf("Expected index %d for %s, got %d", tc.want, tc.name, got)
			}
		})
	}
}
