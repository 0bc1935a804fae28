package core

import (
	"sort"
)

// GroupAmount is an amount aggregated under one group label.
type GroupAmount struct {
	Name   string
	Amount Money
}

// SkippedExpense records a record left out of a report and why.
type SkippedExpense struct {
	ID  string
	Err error
}

// ReportSummary is the derived aggregate for one calendar month.
type ReportSummary struct {
	Month   MonthID
	Total   Money
	Count   int
	Largest *Expense // nil when the month has no expenses

	ByCategory    map[string]Money
	ByPaymentMode map[string]Money
	ByPayee       map[string]Money
	ByNecessity   map[string]Money
	ByDate        map[int]Money // day of month; days without spend are absent

	Skipped []SkippedExpense
}

// NewReportSummary returns an empty summary with all groupings allocated.
func NewReportSummary(month MonthID) ReportSummary {
	return ReportSummary{
		Month:         month,
		ByCategory:    map[string]Money{},
		ByPaymentMode: map[string]Money{},
		ByPayee:       map[string]Money{},
		ByNecessity:   map[string]Money{},
		ByDate:        map[int]Money{},
	}
}

// Ranked orders a grouping by amount, largest first, then by name.
func Ranked(groups map[string]Money) []GroupAmount {
	out := make([]GroupAmount, 0, len(groups))
	for name, amount := range groups {
		out = append(out, GroupAmount{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Minor != out[j].Amount.Minor {
			return out[i].Amount.Minor > out[j].Amount.Minor
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// DailySeries expands ByDate into one entry per day of the month, zero filled.
// Index 0 is day 1.
func (r ReportSummary) DailySeries() []Money {
	series := make([]Money, r.Month.Days())
	for day, amount := range r.ByDate {
		if day >= 1 && day <= len(series) {
			series[day-1] = amount
		}
	}
	return series
}
