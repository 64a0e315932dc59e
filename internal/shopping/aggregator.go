package shopping

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"fit-companion/internal/plan"
)

// leadingQuantity matches a leading numeric quantity followed by free text,
// e.g. "100 g rice" or "1.5 kg chicken breast".
var leadingQuantity = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(\S.*)$`)

// Aggregate merges raw ingredient strings by summing quantities of entries
// whose trailing text matches after trimming and case-folding. Entries with
// no parsable leading quantity pass through unchanged, after the merged
// groups, preserving their input order.
func Aggregate(raw []string) []string {
	totals := map[string]float64{}
	var order []string
	var passthrough []string

	for _, entry := range raw {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		m := leadingQuantity.FindStringSubmatch(entry)
		if m == nil {
			passthrough = append(passthrough, entry)
			continue
		}

		qty, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			passthrough = append(passthrough, entry)
			continue
		}

		name := strings.ToLower(strings.TrimSpace(m[2]))
		if _, seen := totals[name]; !seen {
			order = append(order, name)
		}
		totals[name] += qty
	}

	out := make([]string, 0, len(order)+len(passthrough))
	for _, name := range order {
		// Round to 2 decimals to absorb float artifacts from repeated summation.
		qty := math.Round(totals[name]*100) / 100
		out = append(out, strconv.FormatFloat(qty, 'f', -1, 64)+" "+name)
	}
	out = append(out, passthrough...)
	return out
}

// RemainingIngredients collects every ingredient scheduled from fromDay
// through Sunday of the active plan. Days already behind the user are left
// out: the result feeds a forward-looking shopping list.
func RemainingIngredients(wp *plan.WeeklyPlan, fromDay int) []string {
	if wp == nil {
		return nil
	}
	if fromDay < 0 {
		fromDay = 0
	}

	var raw []string
	for d := fromDay; d < len(wp.Days); d++ {
		for _, m := range wp.Days[d].Meals() {
			raw = append(raw, m.Meal.Ingredients...)
		}
	}
	return raw
}
