package query

import (
	"time"

	"expensetracker/internal/core"
)

// WindowStart returns the inclusive lower bound of the rolling window that
// ends at now:
//
//	Day   -> midnight of now's day
//	Week  -> midnight of the most recent week-start day (now's day included)
//	Month -> midnight of the 1st of now's month
//
// Boundaries are computed in the engine's location. An unrecognised filter
// is treated as Month, the widest window.
func (e *Engine) WindowStart(filter core.DurationFilter, now time.Time) time.Time {
	now = now.In(e.loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, e.loc)

	switch filter {
	case core.Day:
		return midnight
	case core.Week:
		back := (int(now.Weekday()) - int(e.weekStart) + 7) % 7
		return midnight.AddDate(0, 0, -back)
	default:
		return core.MonthOf(now).Start(e.loc)
	}
}
