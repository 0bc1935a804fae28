package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
)

func sampleExpenses() []core.Expense {
	return []core.Expense{
		{ID: "a", Amount: core.Money{Minor: 10000}, Date: utc(2024, time.February, 1, 9, 0), Category: "Food", Payee: "A"},
		{ID: "b", Amount: core.Money{Minor: 20000}, Date: utc(2024, time.February, 15, 13, 0), Category: "Food", Payee: "B"},
		{ID: "c", Amount: core.Money{Minor: 5000}, Date: utc(2024, time.March, 1, 18, 0), Category: "Travel", Payee: "A"},
	}
}

func ids(list []core.Expense) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.ID)
	}
	return out
}

func TestVisibleDayFilterWithoutMatches(t *testing.T) {
	e := New(WithLocation(time.UTC))
	got := e.Visible(sampleExpenses(), core.Day, "", utc(2024, time.February, 20, 12, 0))
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestVisibleSortsMostRecentFirst(t *testing.T) {
	e := New(WithLocation(time.UTC))
	all := []core.Expense{
		{ID: "older", Amount: core.Money{Minor: 1}, Date: utc(2024, time.February, 5, 10, 0)},
		{ID: "newer", Amount: core.Money{Minor: 1}, Date: utc(2024, time.February, 10, 10, 0)},
	}
	got := e.Visible(all, core.Month, "", utc(2024, time.February, 20, 12, 0))
	assert.Equal(t, []string{"newer", "older"}, ids(got))
}

func TestVisibleKeepsInsertionOrderForEqualDates(t *testing.T) {
	e := New(WithLocation(time.UTC))
	same := utc(2024, time.February, 10, 10, 0)
	all := []core.Expense{
		{ID: "first", Date: same},
		{ID: "latest", Date: utc(2024, time.February, 11, 10, 0)},
		{ID: "second", Date: same},
		{ID: "third", Date: same},
	}
	got := e.Visible(all, core.Month, "", utc(2024, time.February, 20, 12, 0))
	assert.Equal(t, []string{"latest", "first", "second", "third"}, ids(got))
}

func TestVisibleWindowBoundaryIsInclusive(t *testing.T) {
	e := New(WithLocation(time.UTC))
	now := utc(2024, time.February, 20, 12, 0)
	all := []core.Expense{
		{ID: "midnight", Date: utc(2024, time.February, 20, 0, 0)},
		{ID: "before", Date: utc(2024, time.February, 19, 23, 59)},
	}
	assert.Equal(t, []string{"midnight"}, ids(e.Visible(all, core.Day, "", now)))
}

func TestVisibleSearch(t *testing.T) {
	e := New(WithLocation(time.UTC))
	now := utc(2024, time.February, 20, 12, 0)
	all := []core.Expense{
		{ID: "payee", Date: utc(2024, time.February, 2, 0, 0), Payee: "Corner Café"},
		{ID: "category", Date: utc(2024, time.February, 3, 0, 0), Category: "Groceries"},
		{ID: "mode", Date: utc(2024, time.February, 4, 0, 0), Mode: "UPI"},
		{ID: "location", Date: utc(2024, time.February, 5, 0, 0), Location: "Bandra West"},
		{ID: "notes", Date: utc(2024, time.February, 6, 0, 0), Notes: "birthday GIFT"},
		{ID: "spender", Date: utc(2024, time.February, 7, 0, 0), Spender: "gift giver"},
		{ID: "street", Date: utc(2024, time.February, 7, 12, 0), Payee: "Kaffee Straße", Category: "Coffee"},
		{ID: "blank", Date: utc(2024, time.February, 8, 0, 0)},
	}

	tests := []struct {
		term string
		want []string
	}{
		{"café", []string{"payee"}},
		{"CORNER", []string{"payee"}},
		{"CAFÉ", []string{"payee"}},
		{"grocer", []string{"category"}},
		{"upi", []string{"mode"}},
		{"WEST", []string{"location"}},
		{"gift", []string{"notes"}},
		{"straße", []string{"street"}},
		{"STRASSE", []string{}},
		{"coffee", []string{"street"}},
		{"coffee ", []string{}},
		{" west", []string{"location"}},
		{"zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(e.Visible(all, core.Month, tt.term, now)))
		})
	}

	assert.Len(t, e.Visible(all, core.Month, "", now), len(all), "empty term should not filter")
	assert.Empty(t, e.Visible(all, core.Month, "   ", now), "spaces are matched literally")
}

func TestVisibleDoesNotMutateInput(t *testing.T) {
	e := New(WithLocation(time.UTC))
	all := sampleExpenses()
	before := ids(all)
	got := e.Visible(all, core.Month, "", utc(2024, time.March, 2, 0, 0))
	got[0].Payee = "changed"
	assert.Equal(t, before, ids(all))
	assert.Equal(t, "A", all[2].Payee)
}

func TestVisibleIdempotentAndSearchNarrows(t *testing.T) {
	e := New(WithLocation(time.UTC))
	all := append(sampleExpenses(),
		core.Expense{ID: "d", Date: utc(2024, time.February, 14, 0, 0), Payee: "Bakery", Category: "Food"},
		core.Expense{ID: "e", Date: utc(2024, time.February, 19, 0, 0), Payee: "Metro", Category: "Transport"},
	)
	now := utc(2024, time.February, 20, 12, 0)

	for _, f := range []core.DurationFilter{core.Day, core.Week, core.Month} {
		once := e.Visible(all, f, "", now)
		twice := e.Visible(once, f, "", now)
		assert.Equal(t, once, twice, "filter %s not idempotent", f)

		for _, term := range []string{"food", "a", "metro", "nothing"} {
			narrowed := ids(e.Visible(all, f, term, now))
			assert.Subset(t, ids(once), narrowed, "search %q widened %s", term, f)
		}
	}
}

func TestVisibleEmptyInput(t *testing.T) {
	e := New()
	got := e.Visible(nil, core.Week, "", time.Now())
	require.NotNil(t, got)
	assert.Empty(t, got)
}
