package plan

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ItemKind distinguishes the two shapes a day-plan item can take.
type ItemKind string

const (
	KindMeal     ItemKind = "meal"
	KindExercise ItemKind = "exercise"
)

// NutritionItem is a single meal entry of a day plan.
type NutritionItem struct {
	Type        string       `json:"type"`
	Name        string       `json:"name"`
	Calories    int          `json:"calories"`
	Protein     ProteinGrams `json:"protein"`
	Ingredients []string     `json:"ingredients"`
}

// ExerciseItem is a single workout entry of a day plan.
type ExerciseItem struct {
	Name        string  `json:"name"`
	Sets        FlexInt `json:"sets"`
	Reps        FlexInt `json:"reps"`
	RestSeconds FlexInt `json:"rest"`
	Notes       string  `json:"notes,omitempty"`
}

// Item is one ordered entry of a DayPlan. Exactly one of Meal or Exercise is set.
type Item struct {
	Kind     ItemKind
	Meal     *NutritionItem
	Exercise *ExerciseItem
}

// UnmarshalJSON classifies the raw generator item by shape: anything carrying
// sets or reps is an exercise, everything else is a meal.
func (it *Item) UnmarshalJSON(data []byte) error {
	var probe struct {
		Sets json.RawMessage `json:"sets"`
		Reps json.RawMessage `json:"reps"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("failed to probe plan item: %w", err)
	}

	if probe.Sets != nil || probe.Reps != nil {
		var ex ExerciseItem
		if err := json.Unmarshal(data, &ex); err != nil {
			return fmt.Errorf("failed to unmarshal exercise item: %w", err)
		}
		it.Kind = KindExercise
		it.Exercise = &ex
		return nil
	}

	var meal NutritionItem
	if err := json.Unmarshal(data, &meal); err != nil {
		return fmt.Errorf("failed to unmarshal nutrition item: %w", err)
	}
	it.Kind = KindMeal
	it.Meal = &meal
	return nil
}

// MarshalJSON writes the item back in the generator wire shape.
func (it Item) MarshalJSON() ([]byte, error) {
	if it.Kind == KindExercise && it.Exercise != nil {
		return json.Marshal(it.Exercise)
	}
	if it.Meal != nil {
		return json.Marshal(it.Meal)
	}
	return []byte("null"), nil
}

// DayPlan is one day's slice of a weekly plan.
type DayPlan struct {
	Label string `json:"day"`
	Focus string `json:"focus,omitempty"`
	Items []Item `json:"items"`
}

// WeeklyPlan is the read-only in-memory representation of a generated week.
// It always holds exactly seven days, Monday first.
type WeeklyPlan struct {
	ID    int64     `json:"id,omitempty"`
	Title string    `json:"title"`
	Days  []DayPlan `json:"days"`
}

var weekdayLabels = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// Parse decodes the generator's wire JSON into a WeeklyPlan. Missing optional
// fields are defaulted and the day list is normalized to seven entries; extra
// days beyond Sunday are discarded.
func Parse(data []byte) (*WeeklyPlan, error) {
	var wp WeeklyPlan
	if err := json.Unmarshal(data, &wp); err != nil {
		return nil, fmt.Errorf("failed to parse weekly plan JSON: %w", err)
	}

	if len(wp.Days) > 7 {
		wp.Days = wp.Days[:7]
	}
	for len(wp.Days) < 7 {
		wp.Days = append(wp.Days, DayPlan{})
	}
	for i := range wp.Days {
		if strings.TrimSpace(wp.Days[i].Label) == "" {
			wp.Days[i].Label = weekdayLabels[i]
		}
	}
	return &wp, nil
}

// Day returns the plan for the given Monday-first index, or nil when the index
// is out of range.
func (wp *WeeklyPlan) Day(dayIndex int) *DayPlan {
	if wp == nil || dayIndex < 0 || dayIndex >= len(wp.Days) {
		return nil
	}
	return &wp.Days[dayIndex]
}

// Meals returns the meal items of a day paired with their original item index.
func (d *DayPlan) Meals() []IndexedMeal {
	if d == nil {
		return nil
	}
	var out []IndexedMeal
	for i, it := range d.Items {
		if it.Kind == KindMeal && it.Meal != nil {
			out = append(out, IndexedMeal{Index: i, Meal: it.Meal})
		}
	}
	return out
}

// Exercises returns the exercise items of a day paired with their original
// item index.
func (d *DayPlan) Exercises() []IndexedExercise {
	if d == nil {
		return nil
	}
	var out []IndexedExercise
	for i, it := range d.Items {
		if it.Kind == KindExercise && it.Exercise != nil {
			out = append(out, IndexedExercise{Index: i, Exercise: it.Exercise})
		}
	}
	return out
}

// IndexedMeal pairs a meal with its position in the day's item list.
type IndexedMeal struct {
	Index int
	Meal  *NutritionItem
}

// IndexedExercise pairs an exercise with its position in the day's item list.
type IndexedExercise struct {
	Index    int
	Exercise *ExerciseItem
}
