// Package services ties the expense store to the query engine: it applies the
// save rule on the way in and answers list and report queries on the way out.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/query"
	"expensetracker/internal/store"
)

// Draft is the user-editable part of an expense.
type Draft struct {
	Amount   core.Money
	Date     time.Time
	Category string
	Mode     string
	Payee    string
	Spender  string
	Location string
	Notes    string
	Source   core.Source
}

// Invalidator is told which report months an edit touched.
type Invalidator interface {
	Invalidate(month core.MonthID)
}

type ExpenseService struct {
	store       store.ExpenseStore
	engine      *query.Engine
	invalidator Invalidator
	now         func() time.Time
	newID       func() string
	logger      *log.Logger
}

type ExpenseOption func(*ExpenseService)

func WithClock(now func() time.Time) ExpenseOption {
	return func(s *ExpenseService) { s.now = now }
}

func WithIDGenerator(newID func() string) ExpenseOption {
	return func(s *ExpenseService) { s.newID = newID }
}

func WithInvalidator(inv Invalidator) ExpenseOption {
	return func(s *ExpenseService) { s.invalidator = inv }
}

func WithLogger(l *log.Logger) ExpenseOption {
	return func(s *ExpenseService) { s.logger = l.WithComponent(log.ComponentExpense) }
}

func NewExpenseService(st store.ExpenseStore, engine *query.Engine, opts ...ExpenseOption) *ExpenseService {
	s := &ExpenseService{
		store:  st,
		engine: engine,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
		logger: log.New(log.DefaultConfig()).WithComponent(log.ComponentExpense),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create assigns an ID and timestamps to d and stores it if it passes the
// save rule.
func (s *ExpenseService) Create(ctx context.Context, d Draft) (core.Expense, error) {
	now := s.now()
	e := d.apply(core.Expense{ID: s.newID(), CreatedAt: now})
	e.UpdatedAt = now

	if err := e.Validate(); err != nil {
		s.logger.WarnContext(ctx, "Expense rejected",
			log.NewFields().WithOperation(log.OpCreate).WithError(err).WithErrorType(log.ErrorTypeValidation).ToSlice()...)
		return core.Expense{}, err
	}
	if err := s.store.Add(ctx, e); err != nil {
		s.logStoreError(ctx, log.OpCreate, e.ID, err)
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	s.invalidate(e.Date)
	s.logger.InfoContext(ctx, "Expense created",
		log.NewFields().WithOperation(log.OpCreate).WithExpense(e).ToSlice()...)
	return e, nil
}

// Update replaces the editable fields of an existing expense. ID and CreatedAt
// are kept.
func (s *ExpenseService) Update(ctx context.Context, id string, d Draft) (core.Expense, error) {
	old, err := s.store.Get(ctx, id)
	if err != nil {
		s.logStoreError(ctx, log.OpUpdate, id, err)
		return core.Expense{}, fmt.Errorf("load expense: %w", err)
	}

	e := d.apply(core.Expense{ID: old.ID, CreatedAt: old.CreatedAt})
	e.UpdatedAt = s.now()
	if err := e.Validate(); err != nil {
		s.logger.WarnContext(ctx, "Expense update rejected",
			log.NewFields().WithOperation(log.OpUpdate).WithError(err).WithErrorType(log.ErrorTypeValidation).ToSlice()...)
		return core.Expense{}, err
	}
	if err := s.store.Update(ctx, e); err != nil {
		s.logStoreError(ctx, log.OpUpdate, id, err)
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	s.invalidate(old.Date)
	s.invalidate(e.Date)
	s.logger.InfoContext(ctx, "Expense updated",
		log.NewFields().WithOperation(log.OpUpdate).WithExpense(e).ToSlice()...)
	return e, nil
}

func (s *ExpenseService) Get(ctx context.Context, id string) (core.Expense, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		s.logStoreError(ctx, log.OpRead, id, err)
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// logStoreError logs a failed store call, classified by the store's sentinels.
// Missing IDs are the caller's mistake and only logged at debug.
func (s *ExpenseService) logStoreError(ctx context.Context, op, id string, err error) {
	fields := log.NewFields().WithOperation(op).WithError(err)
	fields[log.FieldExpenseID] = id
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.logger.DebugContext(ctx, "Expense not found", fields.WithErrorType(log.ErrorTypeNotFound).ToSlice()...)
	case errors.Is(err, store.ErrDuplicateID):
		s.logger.WarnContext(ctx, "Expense ID already used", fields.WithErrorType(log.ErrorTypeConflict).ToSlice()...)
	default:
		s.logger.ErrorContext(ctx, "Expense store failed", fields.WithErrorType(log.ErrorTypeDatabase).ToSlice()...)
	}
}

// Visible lists the expenses inside filter's window ending now that match term,
// newest first.
func (s *ExpenseService) Visible(ctx context.Context, filter core.DurationFilter, term string) ([]core.Expense, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	out := s.engine.Visible(all, filter, term, s.now())
	fields := log.NewFields().WithOperation(log.OpList).WithView(filter, term)
	fields[log.FieldCount] = len(out)
	s.logger.DebugContext(ctx, "Expenses listed", fields.ToSlice()...)
	return out, nil
}

// ViewState returns the persisted view state, or the default one when nothing
// has been saved yet.
func (s *ExpenseService) ViewState(ctx context.Context) (core.ViewState, error) {
	v, ok, err := s.store.ViewState(ctx)
	if err != nil {
		return core.ViewState{}, fmt.Errorf("load view state: %w", err)
	}
	if !ok {
		return core.DefaultViewState(s.now().In(s.engine.Location())), nil
	}
	return v, nil
}

// VisibleFromViewState lists expenses using the persisted filter and search.
func (s *ExpenseService) VisibleFromViewState(ctx context.Context) ([]core.Expense, core.ViewState, error) {
	v, err := s.ViewState(ctx)
	if err != nil {
		return nil, core.ViewState{}, err
	}
	list, err := s.Visible(ctx, v.Filter, v.SearchTerm)
	if err != nil {
		return nil, core.ViewState{}, err
	}
	return list, v, nil
}

// UpdateViewState applies fn to the current view state and persists the result.
func (s *ExpenseService) UpdateViewState(ctx context.Context, fn func(core.ViewState) core.ViewState) (core.ViewState, error) {
	cur, err := s.ViewState(ctx)
	if err != nil {
		return core.ViewState{}, err
	}
	next := fn(cur)
	if err := next.Filter.Validate(); err != nil {
		return core.ViewState{}, &core.ValidationError{Field: "filter", Err: err}
	}
	if !next.ReportMonth.IsZero() {
		if err := next.ReportMonth.Validate(); err != nil {
			return core.ViewState{}, &core.ValidationError{Field: "report_month", Err: err}
		}
	}
	if err := s.store.SaveViewState(ctx, next); err != nil {
		return core.ViewState{}, fmt.Errorf("save view state: %w", err)
	}
	return next, nil
}

func (s *ExpenseService) invalidate(date time.Time) {
	if s.invalidator == nil || date.IsZero() {
		return
	}
	s.invalidator.Invalidate(core.MonthOf(date.In(s.engine.Location())))
}

func (d Draft) apply(e core.Expense) core.Expense {
	e.Amount = d.Amount
	e.Date = d.Date
	e.Category = d.Category
	e.Mode = d.Mode
	e.Payee = d.Payee
	e.Spender = d.Spender
	e.Location = d.Location
	e.Notes = d.Notes
	e.Source = d.Source
	if e.Source == "" {
		e.Source = core.SourceSelf
	}
	return e
}
