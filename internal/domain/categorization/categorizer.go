package categorization

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Jameshuff91/budget-planner/internal/domain/transaction"
)

// DefaultMinConfidence is the acceptance bar for single-transaction AI
// suggestions. It is deliberately higher than the bulk-import default used
// elsewhere in the app.
const DefaultMinConfidence = 0.7

// Categorizer resolves a transaction's category via the fallback chain:
// user rules, then an optional AI suggestion, then the built-in keyword
// tables.
type Categorizer struct {
	rules         RuleStore
	engine        *RuleEngine
	suggester     Suggester // nil when smart categorization is disabled
	minConfidence float64
	logger        *slog.Logger
}

// NewCategorizer creates a categorizer. A nil suggester disables the AI tier;
// a non-positive minConfidence falls back to the default.
func NewCategorizer(rules RuleStore, suggester Suggester, minConfidence float64, logger *slog.Logger) *Categorizer {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Categorizer{
		rules:         rules,
		engine:        NewRuleEngine(logger),
		suggester:     suggester,
		minConfidence: minConfidence,
		logger:        logger,
	}
}

// LoadRules snapshots the user rules for one pipeline run. Rules are
// read-only per run; loading once per document keeps the store out of the
// per-transaction hot path.
func (c *Categorizer) LoadRules(ctx context.Context) []CategoryRule {
	if c.rules == nil {
		return nil
	}
	return c.rules.Load(ctx)
}

// Categorize assigns a category to one classified transaction. It never
// fails: every tier degrades to the next, and the keyword tables always
// produce a fallback label.
func (c *Categorizer) Categorize(ctx context.Context, description string, txType transaction.Type, amount decimal.Decimal, date time.Time, rules []CategoryRule) string {
	if len(rules) > 0 {
		if category, ok := c.engine.Apply(description, rules); ok {
			return category
		}
	}

	if c.suggester != nil {
		suggestion, err := c.suggester.Suggest(ctx, description, amount, date)
		switch {
		case err != nil:
			c.logger.Warn("ai category suggestion failed",
				slog.String("description", description), slog.Any("error", err))
		case suggestion.Confidence >= c.minConfidence:
			return suggestion.Category
		default:
			c.logger.Debug("ai category suggestion below confidence bar",
				slog.String("category", suggestion.Category),
				slog.Float64("confidence", suggestion.Confidence))
		}
	}

	if txType == transaction.TypeIncome {
		return determineIncomeCategory(description)
	}
	return determineExpenseCategory(description)
}
