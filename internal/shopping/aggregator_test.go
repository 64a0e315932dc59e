package shopping

import (
	"reflect"
	"testing"

	"fit-companion/internal/plan"
)

func TestAggregate(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "MergesMatchingNames",
			in:   []string{"100 g rice", "100 g rice"},
			want: []string{"200 g rice"},
		},
		{
			name: "CaseAndWhitespaceFold",
			in:   []string{"100 g Rice", "  100 g rice  "},
			want: []string{"200 g rice"},
		},
		{
			name: "DistinctNamesStayApart",
			in:   []string{"100 g rice", "150 g chicken breast", "50 g rice"},
			want: []string{"150 g rice", "150 g chicken breast"},
		},
		{
			name: "DecimalQuantities",
			in:   []string{"1.5 kg chicken", "0.5 kg chicken"},
			want: []string{"2 kg chicken"},
		},
		{
			name: "RoundsToTwoDecimals",
			in:   []string{"0.1 l milk", "0.2 l milk"},
			want: []string{"0.3 l milk"},
		},
		{
			name: "PassthroughAfterMergedGroups",
			in:   []string{"a pinch of salt", "100 g rice", "olive oil to taste", "100 g rice"},
			want: []string{"200 g rice", "a pinch of salt", "olive oil to taste"},
		},
		{
			name: "SkipsBlankEntries",
			in:   []string{"", "  ", "2 eggs"},
			want: []string{"2 eggs"},
		},
		{
			name: "Empty",
			in:   nil,
			want: []string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Aggregate(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestRemainingIngredients(t *testing.T) {
	wp, err := plan.Parse([]byte(`{
		"title": "Week",
		"days": [
			{"day": "Monday", "items": [{"name": "Oats", "calories": 400, "ingredients": ["80 g oats"]}]},
			{"day": "Tuesday", "items": [{"name": "Rice Bowl", "calories": 600, "ingredients": ["100 g rice", "150 g chicken breast"]}]},
			{"day": "Wednesday", "items": [
				{"name": "Bench Press", "sets": 3, "reps": 10},
				{"name": "Fried Rice", "calories": 550, "ingredients": ["100 g rice"]}
			]}
		]
	}`))
	if err != nil {
		t.Fatalf("Failed to parse plan: %v", err)
	}

	t.Run("ForwardLookingOnly", func(t *testing.T) {
		got := RemainingIngredients(wp, 1)
		want := []string{"100 g rice", "150 g chicken breast", "100 g rice"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Expected %v, got %v", want, got)
		}
	})

	t.Run("NegativeFromDayCoversWholeWeek", func(t *testing.T) {
		got := RemainingIngredients(wp, -3)
		if len(got) != 4 {
			t.Errorf("Expected all 4 ingredients, got %v", got)
		}
	})

	t.Run("PastEndOfWeek", func(t *testing.T) {
		if got := RemainingIngredients(wp, 7); len(got) != 0 {
			t.Errorf("Expected no ingredients past Sunday, got %v", got)
		}
	})

	t.Run("NilPlan", func(t *testing.T) {
		if got := RemainingIngredients(nil, 0); got != nil {
			t.Errorf("Expected nil for nil plan, got %v", got)
		}
	})
}
