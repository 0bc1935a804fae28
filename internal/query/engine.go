// Package query implements the expense query engine: rolling duration
// windows, filtered and searched list views, and monthly report summaries.
//
// Every operation is a pure function of its arguments. Inputs are never
// modified and results are freshly allocated, so an Engine may be shared
// between goroutines.
package query

import (
	"time"
)

// Classifier maps a category to its necessity tag. The bool is false when
// the category has no tag.
type Classifier interface {
	Necessity(category string) (string, bool)
}

// ClassifierFunc adapts a plain function to Classifier.
type ClassifierFunc func(category string) (string, bool)

func (f ClassifierFunc) Necessity(category string) (string, bool) {
	return f(category)
}

// Engine carries the conventions the query functions depend on.
type Engine struct {
	weekStart  time.Weekday
	loc        *time.Location
	classifier Classifier
}

type Option func(*Engine)

// WithWeekStart pins the first day of the calendar week. Default Monday.
func WithWeekStart(d time.Weekday) Option {
	return func(e *Engine) {
		e.weekStart = d
	}
}

// WithLocation sets the zone in which days and months are delimited.
// Default time.Local.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithClassifier supplies the category to necessity lookup used by reports.
func WithClassifier(c Classifier) Option {
	return func(e *Engine) {
		e.classifier = c
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		weekStart: time.Monday,
		loc:       time.Local,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) WeekStart() time.Weekday {
	return e.weekStart
}

func (e *Engine) Location() *time.Location {
	return e.loc
}
