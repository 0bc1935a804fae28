// Package storetest holds the behaviour every store.ExpenseStore must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
	"expensetracker/internal/store"
)

func expense(id string, minor int64, day int) core.Expense {
	created := time.Date(2024, 3, day, 9, 0, 0, 0, time.UTC)
	return core.Expense{
		ID:        id,
		Amount:    core.Money{Minor: minor},
		Date:      time.Date(2024, 3, day, 12, 30, 0, 0, time.UTC),
		Category:  "Food",
		Mode:      "UPI",
		Payee:     "Corner Café",
		Notes:     "lunch",
		Source:    core.SourceSelf,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// Run exercises a fresh store produced by open.
func Run(t *testing.T, open func(t *testing.T) store.ExpenseStore) {
	t.Run("AddGet", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)
		want := expense("a", 1250, 3)
		require.NoError(t, s.Add(ctx, want))

		got, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Amount, got.Amount)
		assert.True(t, want.Date.Equal(got.Date))
		assert.Equal(t, want.Payee, got.Payee)
		assert.Equal(t, want.Source, got.Source)
	})

	t.Run("DuplicateID", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)
		require.NoError(t, s.Add(ctx, expense("a", 100, 1)))
		err := s.Add(ctx, expense("a", 200, 2))
		assert.ErrorIs(t, err, store.ErrDuplicateID)
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := open(t).Get(context.Background(), "nope")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("ListInsertionOrder", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)
		for i, id := range []string{"c", "a", "b"} {
			require.NoError(t, s.Add(ctx, expense(id, int64(100*(i+1)), i+1)))
		}
		// Update must not move an expense.
		updated := expense("c", 999, 20)
		require.NoError(t, s.Update(ctx, updated))

		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "c", list[0].ID)
		assert.Equal(t, "a", list[1].ID)
		assert.Equal(t, "b", list[2].ID)
		assert.Equal(t, int64(999), list[0].Amount.Minor)
	})

	t.Run("ListEmpty", func(t *testing.T) {
		list, err := open(t).List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		err := open(t).Update(context.Background(), expense("ghost", 1, 1))
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("ViewState", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)
		_, ok, err := s.ViewState(ctx)
		require.NoError(t, err)
		assert.False(t, ok)

		v := core.ViewState{SearchTerm: "café", Filter: core.Week, ReportMonth: core.NewMonthID(2024, time.March)}
		require.NoError(t, s.SaveViewState(ctx, v))
		require.NoError(t, s.SaveViewState(ctx, v.WithFilter(core.Day)))

		got, ok, err := s.ViewState(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, v.WithFilter(core.Day), got)
	})
}
