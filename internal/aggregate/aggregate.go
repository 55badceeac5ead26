// Package aggregate computes read-side summaries over persisted
// transactions: per-statement category breakdowns, monthly spending trends,
// and rolling habit summaries. Nothing here mutates state.
package aggregate

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tallyflow/tally/internal/model"
	"github.com/tallyflow/tally/internal/service"
)

// TrendMonths is the fixed trailing window of the monthly trend series.
const TrendMonths = 6

// DefaultHabitMonths is the default rolling window for habit summaries.
const DefaultHabitMonths = 3

// Engine answers aggregate queries from the persistence gateway.
type Engine struct {
	storage service.Storage
}

// New creates an aggregation engine over the given storage.
func New(storage service.Storage) *Engine {
	return &Engine{storage: storage}
}

// CategoryBreakdown groups one statement's expense transactions by category
// and returns totals in major units, sorted descending by total. It answers
// "where did the money go" for a single statement.
func (e *Engine) CategoryBreakdown(ctx context.Context, statementID string) ([]model.CategorySummary, error) {
	txns, err := e.storage.GetTransactions(ctx, service.TransactionFilter{
		StatementID: statementID,
		Type:        model.TypeExpense,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load statement expenses: %w", err)
	}

	summaries := groupByCategory(txns, false)
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Total > summaries[j].Total
	})

	return summaries, nil
}

// MonthlyTrend builds the trailing six-month expense series for a user,
// ending at the month of now. Buckets are chronological, oldest first, and
// months with no spending stay at zero.
func (e *Engine) MonthlyTrend(ctx context.Context, userID string, now time.Time) ([]model.TrendBucket, error) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(TrendMonths - 1), 0)

	txns, err := e.storage.GetTransactions(ctx, service.TransactionFilter{
		UserID:    userID,
		Type:      model.TypeExpense,
		StartDate: &start,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load user expenses: %w", err)
	}

	buckets := make([]model.TrendBucket, 0, TrendMonths)
	index := make(map[string]int, TrendMonths)
	for i := TrendMonths - 1; i >= 0; i-- {
		d := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		key := fmt.Sprintf("%s-%d", d.Format("Jan"), d.Year())
		index[key] = len(buckets)
		buckets = append(buckets, model.TrendBucket{Month: d.Format("Jan"), Year: d.Year()})
	}

	for _, txn := range txns {
		key := fmt.Sprintf("%s-%d", txn.Date.Format("Jan"), txn.Date.Year())
		if i, ok := index[key]; ok {
			buckets[i].Total += txn.MajorUnits()
		}
	}

	return buckets, nil
}

// HabitSummary groups a user's expenses over a trailing window of the given
// number of months ending at now, with totals rounded to whole currency
// units. A window with no transactions returns nil: "insufficient data", not
// "zero spending".
func (e *Engine) HabitSummary(ctx context.Context, userID string, months int, now time.Time) ([]model.CategorySummary, error) {
	if months <= 0 {
		months = DefaultHabitMonths
	}

	start := now.AddDate(0, -months, 0)
	return e.habitsInWindow(ctx, userID, start, now)
}

// YearlyHabits is the habit summary over one full calendar year.
func (e *Engine) YearlyHabits(ctx context.Context, userID string, year int) ([]model.CategorySummary, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)
	return e.habitsInWindow(ctx, userID, start, end)
}

func (e *Engine) habitsInWindow(ctx context.Context, userID string, start, end time.Time) ([]model.CategorySummary, error) {
	txns, err := e.storage.GetTransactions(ctx, service.TransactionFilter{
		UserID:    userID,
		Type:      model.TypeExpense,
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load user expenses: %w", err)
	}

	if len(txns) == 0 {
		return nil, nil
	}

	summaries := groupByCategory(txns, true)
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Total > summaries[j].Total
	})

	return summaries, nil
}

// groupByCategory sums amounts and counts per category. Transactions without
// a category count against Uncategorized. With wholeUnits set, totals are
// rounded to whole currency units (the habit summary contract).
func groupByCategory(txns []model.Transaction, wholeUnits bool) []model.CategorySummary {
	totals := make(map[string]*model.CategorySummary)
	order := make([]string, 0)

	for _, txn := range txns {
		category := txn.Category
		if category == "" {
			category = model.CategoryUncategorized
		}

		summary, ok := totals[category]
		if !ok {
			summary = &model.CategorySummary{Category: category}
			totals[category] = summary
			order = append(order, category)
		}

		summary.Total += txn.MajorUnits()
		summary.Count++
	}

	summaries := make([]model.CategorySummary, 0, len(totals))
	for _, category := range order {
		summary := *totals[category]
		if wholeUnits {
			summary.Total = math.Round(summary.Total)
		}
		summaries = append(summaries, summary)
	}

	return summaries
}
