package plan

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ItemKey identifies one item inside a weekly plan by day and position.
// Keys are compared structurally in memory and only rendered to their
// canonical "d<day>.i<item>" form at the persistence boundary.
type ItemKey struct {
	Day  int
	Item int
}

func (k ItemKey) String() string {
	return fmt.Sprintf("d%d.i%d", k.Day, k.Item)
}

// ParseItemKey parses the canonical "d<day>.i<item>" form.
func ParseItemKey(s string) (ItemKey, error) {
	rest, ok := strings.CutPrefix(s, "d")
	if !ok {
		return ItemKey{}, fmt.Errorf("malformed item key %q", s)
	}
	dayPart, itemPart, ok := strings.Cut(rest, ".i")
	if !ok {
		return ItemKey{}, fmt.Errorf("malformed item key %q", s)
	}
	day, err := strconv.Atoi(dayPart)
	if err != nil {
		return ItemKey{}, fmt.Errorf("malformed item key %q: %w", s, err)
	}
	item, err := strconv.Atoi(itemPart)
	if err != nil {
		return ItemKey{}, fmt.Errorf("malformed item key %q: %w", s, err)
	}
	return ItemKey{Day: day, Item: item}, nil
}

// StatusMap tracks per-item completion flags keyed by structured ItemKey.
// It serializes as a JSON object keyed by the canonical string form so the
// stored shape stays stable across reloads.
type StatusMap map[ItemKey]bool

func (m StatusMap) MarshalJSON() ([]byte, error) {
	keys := make([]ItemKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Day != keys[j].Day {
			return keys[i].Day < keys[j].Day
		}
		return keys[i].Item < keys[j].Item
	})

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%q:%t", k.String(), m[k])
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

func (m *StatusMap) UnmarshalJSON(data []byte) error {
	raw := map[string]bool{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(StatusMap, len(raw))
	for s, v := range raw {
		k, err := ParseItemKey(s)
		if err != nil {
			// Tolerate unknown keys from older writers rather than losing the row.
			continue
		}
		out[k] = v
	}
	*m = out
	return nil
}

// CountDone returns the number of keys flagged true, optionally limited to a
// single day (pass a negative day for no filter).
func (m StatusMap) CountDone(day int) int {
	n := 0
	for k, v := range m {
		if v && (day < 0 || k.Day == day) {
			n++
		}
	}
	return n
}

// DayIndex converts a native weekday to the Monday-first index (0=Monday ...
// 6=Sunday). Every "is this day today" comparison in the engine goes through
// this single remap.
func DayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
