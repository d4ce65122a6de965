package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Jameshuff91/budget-planner/pkg/money"
)

// Type is the direction of money movement.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// ExtractedTransaction is one transaction produced by statement extraction.
// Amount is always the non-negative magnitude; direction lives in Type.
type ExtractedTransaction struct {
	ID             uuid.UUID       `json:"id"`
	DocumentID     uuid.UUID       `json:"document_id"`
	Date           time.Time       `json:"date"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description"`
	Type           Type            `json:"type"`
	Category       string          `json:"category"`
	IsMonthSummary bool            `json:"is_month_summary"`
	AccountNumber  string          `json:"account_number,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// DisplayAmount formats the magnitude for human-facing output, e.g. "$5.75".
// Statements without an explicit currency marker are treated as USD.
func (t ExtractedTransaction) DisplayAmount() string {
	return money.NewFromDecimal(t.Amount, money.USD).Display()
}

// SignedAmount returns the amount with expense rows negated, for balance
// arithmetic on top of the stored non-negative magnitudes.
func (t ExtractedTransaction) SignedAmount() decimal.Decimal {
	if t.Type == TypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}
