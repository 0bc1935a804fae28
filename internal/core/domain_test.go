package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestExpenseValidate(t *testing.T) {
	day := time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC)
	good := Expense{
		ID:       "e1",
		Date:     day,
		Amount:   Money{Minor: 100},
		Category: "Food",
		Source:   SourceSelf,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		e     Expense
		field string
		want  error
	}{
		{Expense{Amount: Money{Minor: 1}, Source: SourceSelf}, "date", ErrInvalidDate},
		{Expense{Date: day, Amount: Money{Minor: 0}, Source: SourceSelf}, "amount", ErrInvalidAmount},
		{Expense{Date: day, Amount: Money{Minor: -5}, Source: SourceSelf}, "amount", ErrInvalidAmount},
		{Expense{Date: day, Amount: Money{Minor: 1}, Source: "Fax"}, "source", ErrInvalidSource},
		{Expense{Date: day, Amount: Money{Minor: 1}, Source: SourceSMS, Notes: strings.Repeat("x", 501)}, "notes", ErrNotesTooLong},
	}
	for i, tc := range bads {
		err := tc.e.Validate()
		if !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != tc.field {
			t.Fatalf("case %d expected field %q, got %v", i, tc.field, err)
		}
	}
}

func TestValidateForReportAcceptsZeroAmount(t *testing.T) {
	e := Expense{ID: "legacy", Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}
	if err := e.ValidateForReport(); err != nil {
		t.Fatalf("zero amount should be tolerated in reports: %v", err)
	}
	e.Amount = Money{Minor: -1}
	if err := e.ValidateForReport(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if err := (Expense{ID: "nodate"}).ValidateForReport(); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected invalid date, got %v", err)
	}
}

func TestParseSource(t *testing.T) {
	cases := map[string]Source{"": SourceSelf, "self": SourceSelf, "OCR": SourceOCR, " sms ": SourceSMS}
	for in, want := range cases {
		got, err := ParseSource(in)
		if err != nil || got != want {
			t.Fatalf("%q: expected %s, got %s (err=%v)", in, want, got, err)
		}
	}
	if _, err := ParseSource("email"); err == nil {
		t.Fatalf("expected error for unknown source")
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{ID: "abc", Field: "date", Err: ErrInvalidDate}
	if got := err.Error(); got != "expense abc: date: invalid date" {
		t.Fatalf("unexpected message %q", got)
	}
	err.ID = ""
	if got := err.Error(); got != "date: invalid date" {
		t.Fatalf("unexpected message %q", got)
	}
}
