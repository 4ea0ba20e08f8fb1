package finance

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/google/uuid"
)

type mockRepo struct {
	summary        Summary
	summarizeCalls int
	expenses       []Expense
}

func (m *mockRepo) Summarize(ctx context.Context, filter SummaryFilter) (Summary, error) {
	m.summarizeCalls++
	s := m.summary
	s.From = filter.From
	s.To = filter.To
	return s, nil
}

func (m *mockRepo) CreateExpense(ctx context.Context, e Expense) (Expense, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = time.Now()
	m.expenses = append(m.expenses, e)
	return e, nil
}

func (m *mockRepo) ListExpenses(ctx context.Context, filter ExpenseFilter) ([]Expense, error) {
	return m.expenses, nil
}

func newTestService(t *testing.T, repo RepositoryPort) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute)
	return NewService(repo, cache, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSummaryCaches(t *testing.T) {
	repo := &mockRepo{summary: Summary{
		TotalRevenue:     900,
		TotalOutstanding: 150,
		TotalExpenses:    300,
		Net:              600,
		Days:             []DayTotals{{Day: "2026-08-01", Revenue: 900, Outstanding: 150, Expenses: 300}},
	}}
	svc := newTestService(t, repo)

	ctx := context.Background()
	filter := SummaryFilter{
		CompanyID: uuid.New(),
		From:      time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		To:        time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}

	summary, err := svc.Summary(ctx, filter)
	require.NoError(t, err)
	require.Equal(t, 900.0, summary.TotalRevenue)
	require.Equal(t, 1, repo.summarizeCalls)

	// Second call hits the cache.
	summary, err = svc.Summary(ctx, filter)
	require.NoError(t, err)
	require.Equal(t, 900.0, summary.TotalRevenue)
	require.Equal(t, 1, repo.summarizeCalls)

	// A recorded expense bumps the version and forces a reload.
	_, err = svc.RecordExpense(ctx, Expense{
		CompanyID:   filter.CompanyID,
		Date:        time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		Description: "renda da loja",
		Amount:      200,
	})
	require.NoError(t, err)

	repo.summary.TotalRevenue = 1100
	summary, err = svc.Summary(ctx, filter)
	require.NoError(t, err)
	require.Equal(t, 1100.0, summary.TotalRevenue)
	require.Equal(t, 2, repo.summarizeCalls)
}

func TestSummaryRejectsInvertedWindow(t *testing.T) {
	svc := newTestService(t, &mockRepo{})
	_, err := svc.Summary(context.Background(), SummaryFilter{
		CompanyID: uuid.New(),
		From:      time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		To:        time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
}

func TestRecordExpenseValidates(t *testing.T) {
	svc := newTestService(t, &mockRepo{})
	_, err := svc.RecordExpense(context.Background(), Expense{Description: "  ", Amount: 10})
	require.Error(t, err)
	_, err = svc.RecordExpense(context.Background(), Expense{Description: "luz", Amount: 0})
	require.Error(t, err)
}
