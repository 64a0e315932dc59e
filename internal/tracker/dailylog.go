package tracker

import (
	"time"

	"fit-companion/internal/plan"
)

// LogKind separates the two daily log streams a user has per calendar day.
type LogKind string

const (
	KindNutrition LogKind = "nutrition"
	KindWorkout   LogKind = "workout"
)

// Totals are the incrementally maintained nutrition aggregates of one day.
type Totals struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
}

// DailyLog is the per-user, per-day adherence record. Exactly one exists per
// (user, date, kind); it is created lazily on the first toggle of a day and
// never deleted afterwards.
type DailyLog struct {
	UserID     string
	Date       string // calendar day, "2006-01-02"
	Kind       LogKind
	ItemStatus plan.StatusMap
	Totals     Totals
	Note       string
	UpdatedAt  time.Time
}

// NewDailyLog returns the zeroed default record for a day with no persisted log.
func NewDailyLog(userID, date string, kind LogKind) *DailyLog {
	return &DailyLog{
		UserID:     userID,
		Date:       date,
		Kind:       kind,
		ItemStatus: plan.StatusMap{},
	}
}

// Done reports whether the item at key is currently checked.
func (l *DailyLog) Done(key plan.ItemKey) bool {
	return l.ItemStatus[key]
}

// CompletedCount derives the number of checked items. The workout tracker
// stores no numeric aggregate; this count is computed at read time.
func (l *DailyLog) CompletedCount() int {
	return l.ItemStatus.CountDone(-1)
}

// DateOf formats t as the calendar-day key used by daily logs.
func DateOf(t time.Time) string {
	return t.Format("2006-01-02")
}
