package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	Day   DurationFilter = "day"
	Week  DurationFilter = "week"
	Month DurationFilter = "month"
)

type (
	// DurationFilter selects the start of the rolling window the list view shows.
	DurationFilter string

	// MonthID names one calendar month, independent of any time zone.
	MonthID struct {
		Year  int
		Month time.Month
	}

	// ViewState is the small set of UI selections persisted next to expenses.
	ViewState struct {
		SearchTerm  string
		Filter      DurationFilter
		ReportMonth MonthID
	}
)

func (f DurationFilter) Validate() error {
	switch f {
	case Day, Week, Month:
		return nil
	default:
		return ErrInvalidFilter
	}
}

func ParseDurationFilter(s string) (DurationFilter, error) {
	f := DurationFilter(strings.ToLower(strings.TrimSpace(s)))
	if err := f.Validate(); err != nil {
		return "", fmt.Errorf("%q: %w", s, err)
	}
	return f, nil
}

func NewMonthID(year int, month time.Month) MonthID {
	return MonthID{Year: year, Month: month}
}

// MonthOf returns the month containing t, read in t's own location.
func MonthOf(t time.Time) MonthID {
	return MonthID{Year: t.Year(), Month: t.Month()}
}

// ParseMonthID parses "YYYY-MM".
func ParseMonthID(s string) (MonthID, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return MonthID{}, fmt.Errorf("%q: %w", s, ErrInvalidMonth)
	}
	return MonthOf(t), nil
}

func (m MonthID) Validate() error {
	if m.Month < time.January || m.Month > time.December || m.Year < 1 {
		return ErrInvalidMonth
	}
	return nil
}

func (m MonthID) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

func (m MonthID) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Start is midnight of the first day of the month in loc (inclusive).
func (m MonthID) Start(loc *time.Location) time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
}

// End is the start of the following month in loc (exclusive).
func (m MonthID) End(loc *time.Location) time.Time {
	return m.Start(loc).AddDate(0, 1, 0)
}

// Days returns the number of days in the month.
func (m MonthID) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (m MonthID) Next() MonthID {
	return MonthOf(time.Date(m.Year, m.Month+1, 1, 0, 0, 0, 0, time.UTC))
}

func (m MonthID) Prev() MonthID {
	return MonthOf(time.Date(m.Year, m.Month-1, 1, 0, 0, 0, 0, time.UTC))
}

// Contains reports whether t falls in the month as observed in loc.
func (m MonthID) Contains(t time.Time, loc *time.Location) bool {
	return !t.Before(m.Start(loc)) && t.Before(m.End(loc))
}

// DefaultViewState is what a fresh install shows: this month, no search.
func DefaultViewState(now time.Time) ViewState {
	return ViewState{Filter: Month, ReportMonth: MonthOf(now)}
}

func (v ViewState) WithSearch(term string) ViewState {
	v.SearchTerm = term
	return v
}

func (v ViewState) WithFilter(f DurationFilter) ViewState {
	v.Filter = f
	return v
}

func (v ViewState) WithReportMonth(m MonthID) ViewState {
	v.ReportMonth = m
	return v
}
