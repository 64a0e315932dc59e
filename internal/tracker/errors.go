package tracker

import "fmt"

// WindowDirection says which side of today a rejected edit targeted.
type WindowDirection string

const (
	WindowFuture WindowDirection = "future"
	WindowPast   WindowDirection = "past"
)

// OutOfWindowError rejects a toggle aimed at any day other than today.
// No state is mutated when it is returned.
type OutOfWindowError struct {
	DayIndex   int
	TodayIndex int
	Direction  WindowDirection
}

func (e OutOfWindowError) Error() string {
	return fmt.Sprintf("day %d is not editable: only today (day %d) can be changed, requested day is in the %s",
		e.DayIndex, e.TodayIndex, e.Direction)
}

// EmptySessionError rejects finishing a workout session with nothing completed.
type EmptySessionError struct {
	DayIndex int
}

func (e EmptySessionError) Error() string {
	return fmt.Sprintf("cannot finish session for day %d: no exercises completed", e.DayIndex)
}

// NoActivePlanError indicates no active plan exists for the user. Callers
// should treat it as "nothing to display", not as a failure.
type NoActivePlanError struct {
	UserID string
}

func (e NoActivePlanError) Error() string {
	return fmt.Sprintf("no active plan for user %s", e.UserID)
}
