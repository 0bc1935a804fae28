package store

import (
	"encoding/json"
	"fmt"
	"time"

	"expensetracker/internal/core"
)

// Record is the serialised form of an expense used by the sqlite backend and
// by JSON seed files.
type Record struct {
	ID          string    `json:"id"`
	AmountMinor int64     `json:"amount_minor"`
	Date        time.Time `json:"date"`
	Category    string    `json:"category,omitempty"`
	Mode        string    `json:"mode,omitempty"`
	Payee       string    `json:"payee,omitempty"`
	Spender     string    `json:"spender,omitempty"`
	Location    string    `json:"location,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	Source      string    `json:"source,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func RecordFrom(e core.Expense) Record {
	return Record{
		ID:          e.ID,
		AmountMinor: e.Amount.Minor,
		Date:        e.Date,
		Category:    e.Category,
		Mode:        e.Mode,
		Payee:       e.Payee,
		Spender:     e.Spender,
		Location:    e.Location,
		Notes:       e.Notes,
		Source:      string(e.Source),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (r Record) Expense() core.Expense {
	src := core.Source(r.Source)
	if src == "" {
		src = core.SourceSelf
	}
	return core.Expense{
		ID:        r.ID,
		Amount:    core.Money{Minor: r.AmountMinor},
		Date:      r.Date,
		Category:  r.Category,
		Mode:      r.Mode,
		Payee:     r.Payee,
		Spender:   r.Spender,
		Location:  r.Location,
		Notes:     r.Notes,
		Source:    src,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func MarshalExpense(e core.Expense) ([]byte, error) {
	return json.Marshal(RecordFrom(e))
}

func UnmarshalExpense(data []byte) (core.Expense, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return core.Expense{}, fmt.Errorf("decode expense: %w", err)
	}
	return r.Expense(), nil
}

// viewStateRecord is the JSON shape of core.ViewState.
type viewStateRecord struct {
	SearchTerm  string `json:"search_term"`
	Filter      string `json:"filter"`
	ReportMonth string `json:"report_month,omitempty"`
}

func MarshalViewState(v core.ViewState) ([]byte, error) {
	r := viewStateRecord{SearchTerm: v.SearchTerm, Filter: string(v.Filter)}
	if !v.ReportMonth.IsZero() {
		r.ReportMonth = v.ReportMonth.String()
	}
	return json.Marshal(r)
}

func UnmarshalViewState(data []byte) (core.ViewState, error) {
	var r viewStateRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return core.ViewState{}, fmt.Errorf("decode view state: %w", err)
	}
	v := core.ViewState{SearchTerm: r.SearchTerm, Filter: core.DurationFilter(r.Filter)}
	if r.ReportMonth != "" {
		m, err := core.ParseMonthID(r.ReportMonth)
		if err != nil {
			return core.ViewState{}, fmt.Errorf("decode view state: %w", err)
		}
		v.ReportMonth = m
	}
	return v, nil
}
