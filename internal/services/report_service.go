package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"expensetracker/internal/cache"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/query"
	"expensetracker/internal/store"
)

const (
	defaultReportCacheSize = 24
	defaultReportCacheTTL  = 5 * time.Minute
	maxParallelSummaries   = 4
)

// ReportService computes monthly summaries and memoises them until an edit
// touches the month or the entry expires. Cached summaries are shared between
// callers and must be treated as read-only.
type ReportService struct {
	store  store.ExpenseStore
	engine *query.Engine
	cache  cache.Cache[core.ReportSummary]
	group  singleflight.Group
	logger *log.Logger

	mu  sync.Mutex
	gen map[string]uint64
}

type ReportOption func(*ReportService)

func WithReportCache(c cache.Cache[core.ReportSummary]) ReportOption {
	return func(s *ReportService) { s.cache = c }
}

func WithReportLogger(l *log.Logger) ReportOption {
	return func(s *ReportService) { s.logger = l.WithComponent(log.ComponentReport) }
}

func NewReportService(st store.ExpenseStore, engine *query.Engine, opts ...ReportOption) *ReportService {
	s := &ReportService{
		store:  st,
		engine: engine,
		logger: log.New(log.DefaultConfig()).WithComponent(log.ComponentReport),
		gen:    map[string]uint64{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.NewLRUCache[core.ReportSummary](defaultReportCacheSize, defaultReportCacheTTL)
	}
	return s
}

// Summary returns the report for month. Concurrent requests for the same month
// share one computation.
func (s *ReportService) Summary(ctx context.Context, month core.MonthID) (core.ReportSummary, error) {
	if err := month.Validate(); err != nil {
		return core.ReportSummary{}, &core.ValidationError{Field: "month", Err: err}
	}
	key := month.String()
	if sum, ok := s.cache.Get(key); ok {
		s.logger.DebugContext(ctx, "Report served from cache", log.FieldMonth, key, log.FieldCacheHit, true)
		return sum, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		gen := s.generation(key)
		all, err := s.store.List(ctx)
		if err != nil {
			return core.ReportSummary{}, fmt.Errorf("list expenses: %w", err)
		}
		started := time.Now()
		sum := s.engine.Summarize(all, month)
		s.cacheIfCurrent(key, gen, sum)

		fields := log.NewFields().WithOperation(log.OpSummarize).WithMonth(month)
		fields[log.FieldCount] = sum.Count
		fields[log.FieldDuration] = time.Since(started).Milliseconds()
		fields[log.FieldSkipped] = len(sum.Skipped)
		s.logger.DebugContext(ctx, "Report computed", fields.ToSlice()...)
		for _, sk := range sum.Skipped {
			s.logger.WarnContext(ctx, "Expense skipped in report",
				log.FieldExpenseID, sk.ID, log.FieldMonth, key, log.FieldError, sk.Err.Error())
		}
		return sum, nil
	})
	if err != nil {
		return core.ReportSummary{}, err
	}
	return v.(core.ReportSummary), nil
}

// Summaries computes several months concurrently. The result is in the order
// of months.
func (s *ReportService) Summaries(ctx context.Context, months []core.MonthID) ([]core.ReportSummary, error) {
	out := make([]core.ReportSummary, len(months))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelSummaries)
	for i, m := range months {
		i, m := i, m
		g.Go(func() error {
			sum, err := s.Summary(ctx, m)
			if err != nil {
				return fmt.Errorf("summary %s: %w", m, err)
			}
			out[i] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Invalidate drops the cached report for month. A computation already in
// flight for it will not be cached.
func (s *ReportService) Invalidate(month core.MonthID) {
	key := month.String()
	s.mu.Lock()
	s.gen[key]++
	s.cache.Delete(key)
	s.mu.Unlock()
	s.group.Forget(key)
	s.logger.Debug("Report invalidated", log.FieldOperation, log.OpInvalidate, log.FieldMonth, key)
}

// CleanExpired lets a cache.Janitor sweep the report cache.
func (s *ReportService) CleanExpired() int {
	if c, ok := s.cache.(cache.Cleaner); ok {
		return c.CleanExpired()
	}
	return 0
}

func (s *ReportService) generation(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen[key]
}

// cacheIfCurrent caches sum unless key was invalidated since gen was read.
// The check and the write share s.mu with Invalidate.
func (s *ReportService) cacheIfCurrent(key string, gen uint64, sum core.ReportSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen[key] == gen {
		s.cache.Set(key, sum)
	}
}

var (
	_ Invalidator   = (*ReportService)(nil)
	_ cache.Cleaner = (*ReportService)(nil)
)
