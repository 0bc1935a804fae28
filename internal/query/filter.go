package query

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"expensetracker/internal/core"
)

// Visible returns the expenses the list view shows for filter and term at now.
//
// An expense is kept when its date is not before WindowStart(filter, now) and,
// for a non-empty term, the lower-cased term occurs in the lower-cased payee,
// category, payment mode, location or notes. The term is not trimmed, and
// lower-casing does not fold "ß" to "ss". Empty fields never match.
//
// The result is ordered by date, most recent first. Expenses with equal dates
// keep their relative order from all.
func (e *Engine) Visible(all []core.Expense, filter core.DurationFilter, term string, now time.Time) []core.Expense {
	start := e.WindowStart(filter, now)
	m := newMatcher(term)

	out := make([]core.Expense, 0, len(all))
	for _, exp := range all {
		if exp.Date.Before(start) {
			continue
		}
		if !m.match(exp) {
			continue
		}
		out = append(out, exp)
	}

	slices.SortStableFunc(out, func(a, b core.Expense) int {
		return b.Date.Compare(a.Date)
	})
	return out
}

// matcher compares lower-cased text. A Caser is not safe for concurrent use,
// so each call builds its own.
type matcher struct {
	lower cases.Caser
	term  string
}

func newMatcher(term string) *matcher {
	if term == "" {
		return &matcher{}
	}
	m := &matcher{lower: cases.Lower(language.Und)}
	m.term = m.lower.String(term)
	return m
}

func (m *matcher) match(exp core.Expense) bool {
	if m.term == "" {
		return true
	}
	for _, field := range exp.SearchFields() {
		if field == "" {
			continue
		}
		if strings.Contains(m.lower.String(field), m.term) {
			return true
		}
	}
	return false
}
