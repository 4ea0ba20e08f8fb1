package finance

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/gestix-erp/gestix/internal/shared"
)

// RepositoryPort is what the service needs from the aggregation layer.
type RepositoryPort interface {
	Summarize(ctx context.Context, filter SummaryFilter) (Summary, error)
	CreateExpense(ctx context.Context, e Expense) (Expense, error)
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]Expense, error)
}

// Service serves cached summaries and the expense ledger.
type Service struct {
	repo   RepositoryPort
	cache  *Cache
	logger *slog.Logger
	group  singleflight.Group
}

// NewService constructs Service. cache may be nil.
func NewService(repo RepositoryPort, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// Summary returns the window's daily totals, from cache when warm. Concurrent
// requests for the same key collapse into one database pass.
func (s *Service) Summary(ctx context.Context, filter SummaryFilter) (Summary, error) {
	if filter.To.Before(filter.From) {
		return Summary{}, shared.ErrInvalidState
	}

	key, err := s.cache.BuildKey(ctx, keySummary(filter)...)
	if err != nil {
		s.logger.Warn("summary cache key", slog.Any("error", err))
		return s.repo.Summarize(ctx, filter)
	}

	result := s.group.DoChan(key, func() (interface{}, error) {
		var summary Summary
		err := s.cache.FetchJSON(context.WithoutCancel(ctx), key, &summary, func(ctx context.Context) (interface{}, error) {
			return s.repo.Summarize(ctx, filter)
		})
		return summary, err
	})
	select {
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	case res := <-result:
		if res.Err != nil {
			return Summary{}, res.Err
		}
		return res.Val.(Summary), nil
	}
}

// RecordExpense inserts an expense and invalidates cached summaries.
func (s *Service) RecordExpense(ctx context.Context, e Expense) (Expense, error) {
	e.Description = strings.TrimSpace(e.Description)
	if e.Description == "" || e.Amount <= 0 {
		return Expense{}, shared.ErrInvalidState
	}
	created, err := s.repo.CreateExpense(ctx, e)
	if err != nil {
		return Expense{}, err
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("bump finance cache", slog.Any("error", err))
	}
	return created, nil
}

// ListExpenses returns expenses matching the filter.
func (s *Service) ListExpenses(ctx context.Context, filter ExpenseFilter) ([]Expense, error) {
	return s.repo.ListExpenses(ctx, filter)
}
