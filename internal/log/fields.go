package log

import "expensetracker/internal/core"

// Field names for structured logging
const (
	FieldComponent   = "component"
	FieldError       = "error"
	FieldErrorType   = "error_type"
	FieldOperation   = "operation"
	FieldDuration    = "duration_ms"
	FieldExpenseID   = "expense_id"
	FieldAmountMinor = "amount_minor"
	FieldCategory    = "category"
	FieldMode        = "mode"
	FieldSource      = "source"
	FieldMonth       = "month"
	FieldFilter      = "filter"
	FieldSearchTerm  = "search_term"
	FieldCount       = "count"
	FieldSkipped     = "skipped"
	FieldCacheHit    = "cache_hit"
	FieldBackend     = "backend"
	FieldPath        = "path"
)

const (
	ComponentApp      = "app"
	ComponentExpense  = "expense"
	ComponentReport   = "report"
	ComponentStorage  = "storage"
	ComponentCache    = "cache"
	ComponentBackend  = "backend"
	ComponentTaxonomy = "taxonomy"
	ComponentCLI      = "cli"
)

const (
	OpCreate     = "create"
	OpRead       = "read"
	OpUpdate     = "update"
	OpList       = "list"
	OpSummarize  = "summarize"
	OpInvalidate = "invalidate"
	OpValidate   = "validate"
	OpStartup    = "startup"
	OpShutdown   = "shutdown"
)

const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeConflict      = "conflict_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithErrorType(errorType string) LogFields {
	f[FieldErrorType] = errorType
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithExpense adds the identifying fields of an expense. Free text (payee,
// notes) is left out of logs.
func (f LogFields) WithExpense(e core.Expense) LogFields {
	f[FieldExpenseID] = e.ID
	f[FieldAmountMinor] = e.Amount.Minor
	if e.Category != "" {
		f[FieldCategory] = e.Category
	}
	if e.Mode != "" {
		f[FieldMode] = e.Mode
	}
	f[FieldSource] = string(e.Source)
	return f
}

func (f LogFields) WithMonth(m core.MonthID) LogFields {
	f[FieldMonth] = m.String()
	return f
}

func (f LogFields) WithView(filter core.DurationFilter, term string) LogFields {
	f[FieldFilter] = string(filter)
	if term != "" {
		f[FieldSearchTerm] = term
	}
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
