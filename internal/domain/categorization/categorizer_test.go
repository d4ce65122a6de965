package categorization

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Jameshuff91/budget-planner/internal/domain/transaction"
)

type staticRuleStore []CategoryRule

func (s staticRuleStore) Load(context.Context) []CategoryRule { return s }

type stubSuggester struct {
	suggestion Suggestion
	err        error
	calls      int
}

func (s *stubSuggester) Suggest(context.Context, string, decimal.Decimal, time.Time) (Suggestion, error) {
	s.calls++
	return s.suggestion, s.err
}

func TestCategorizer_Categorize(t *testing.T) {
	ctx := context.Background()
	amount := decimal.NewFromFloat(5.75)
	date := time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)

	t.Run("custom rule wins over everything", func(t *testing.T) {
		store := staticRuleStore{
			{ID: "r1", Pattern: "starbucks", Category: "Coffee Budget", MatchType: MatchContains, Priority: 1, Enabled: true},
		}
		sug := &stubSuggester{suggestion: Suggestion{Category: "Entertainment", Confidence: 0.99}}
		c := NewCategorizer(store, sug, 0, slog.Default())

		rules := c.LoadRules(ctx)
		got := c.Categorize(ctx, "Purchase at Starbucks", transaction.TypeExpense, amount, date, rules)
		assert.Equal(t, "Coffee Budget", got)
		assert.Zero(t, sug.calls)
	})

	t.Run("confident suggestion accepted", func(t *testing.T) {
		sug := &stubSuggester{suggestion: Suggestion{Category: "Dining Out", Confidence: 0.91}}
		c := NewCategorizer(nil, sug, 0, slog.Default())

		got := c.Categorize(ctx, "SOME NEW BISTRO", transaction.TypeExpense, amount, date, nil)
		assert.Equal(t, "Dining Out", got)
	})

	t.Run("low confidence falls through to keywords", func(t *testing.T) {
		sug := &stubSuggester{suggestion: Suggestion{Category: "Dining Out", Confidence: 0.5}}
		c := NewCategorizer(nil, sug, 0, slog.Default())

		got := c.Categorize(ctx, "Purchase at Starbucks", transaction.TypeExpense, amount, date, nil)
		assert.Equal(t, "Entertainment", got)
	})

	t.Run("suggester failure falls through", func(t *testing.T) {
		sug := &stubSuggester{err: errors.New("api unavailable")}
		c := NewCategorizer(nil, sug, 0, slog.Default())

		got := c.Categorize(ctx, "Purchase at Starbucks", transaction.TypeExpense, amount, date, nil)
		assert.Equal(t, "Entertainment", got)
	})

	t.Run("builtin path without suggester", func(t *testing.T) {
		c := NewCategorizer(nil, nil, 0, slog.Default())

		assert.Equal(t, "Entertainment",
			c.Categorize(ctx, "Purchase at Starbucks", transaction.TypeExpense, amount, date, nil))
		assert.Equal(t, "Salary",
			c.Categorize(ctx, "ACME PAYROLL", transaction.TypeIncome, amount, date, nil))
		assert.Equal(t, CategoryOtherIncome,
			c.Categorize(ctx, "MYSTERY CREDIT", transaction.TypeIncome, amount, date, nil))
	})
}
