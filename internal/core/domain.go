package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	SourceSelf Source = "Self"
	SourceOCR  Source = "OCR"
	SourceSMS  Source = "SMS"
)

type (
	// Source tags how an expense entered the system.
	Source string

	Expense struct {
		ID        string
		Amount    Money
		Date      time.Time // when the spend happened
		Category  string
		Mode      string // payment mode
		Payee     string
		Spender   string
		Location  string
		Notes     string
		Source    Source
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	// ValidationError ties a failed check to the expense and field it concerns.
	ValidationError struct {
		ID    string
		Field string
		Err   error
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidSource = errors.New("invalid source")
	ErrInvalidFilter = errors.New("invalid duration filter")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrNotesTooLong  = errors.New("notes too long (max 500 characters)")
)

func (e *ValidationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("expense %s: %s: %v", e.ID, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (s Source) Validate() error {
	switch s {
	case SourceSelf, SourceOCR, SourceSMS:
		return nil
	default:
		return ErrInvalidSource
	}
}

// ParseSource accepts the source tag case-insensitively; empty means Self.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "self":
		return SourceSelf, nil
	case "ocr":
		return SourceOCR, nil
	case "sms":
		return SourceSMS, nil
	}
	return "", ErrInvalidSource
}

// Validate applies the editor's save rules. Zero amounts are rejected here,
// while reports still accept them (see ValidateForReport).
func (e Expense) Validate() error {
	if e.Date.IsZero() {
		return &ValidationError{ID: e.ID, Field: "date", Err: ErrInvalidDate}
	}
	if err := e.Amount.Validate(); err != nil {
		return &ValidationError{ID: e.ID, Field: "amount", Err: err}
	}
	if err := e.Source.Validate(); err != nil {
		return &ValidationError{ID: e.ID, Field: "source", Err: err}
	}
	if len(e.Notes) > 500 {
		return &ValidationError{ID: e.ID, Field: "notes", Err: ErrNotesTooLong}
	}
	return nil
}

// ValidateForReport is the looser check used while aggregating legacy data.
func (e Expense) ValidateForReport() error {
	if e.Date.IsZero() {
		return &ValidationError{ID: e.ID, Field: "date", Err: ErrInvalidDate}
	}
	if e.Amount.Minor < 0 {
		return &ValidationError{ID: e.ID, Field: "amount", Err: ErrInvalidAmount}
	}
	return nil
}

// SearchFields returns the descriptive fields free-text search looks at.
func (e Expense) SearchFields() []string {
	return []string{e.Payee, e.Category, e.Mode, e.Location, e.Notes}
}
