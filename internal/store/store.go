// Package store defines the expense store: an opaque object store of expenses
// keyed by ID, plus the persisted view state.
package store

import (
	"context"
	"errors"

	"expensetracker/internal/core"
)

var (
	ErrNotFound    = errors.New("expense not found")
	ErrDuplicateID = errors.New("duplicate expense id")
)

// ExpenseStore is implemented by the memory and sqlite backends.
type ExpenseStore interface {
	// Add stores a new expense. The ID must not exist yet.
	Add(ctx context.Context, e core.Expense) error

	// Update replaces an existing expense, keeping its insertion position.
	Update(ctx context.Context, e core.Expense) error

	Get(ctx context.Context, id string) (core.Expense, error)

	// List returns every expense, each ID once, in insertion order.
	List(ctx context.Context) ([]core.Expense, error)

	// ViewState returns the persisted view state, or ok=false if none was saved.
	ViewState(ctx context.Context) (v core.ViewState, ok bool, err error)

	SaveViewState(ctx context.Context, v core.ViewState) error

	Close() error
}
