package categorization

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Jameshuff91/budget-planner/internal/domain/transaction"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		description string
		negative    bool
		want        transaction.Type
	}{
		{"zelle from is income", "ZELLE FROM JOHN DOE", false, transaction.TypeIncome},
		{"zelle to is expense", "ZELLE TO JANE DOE", false, transaction.TypeExpense},
		{"venmo payment is expense", "VENMO PAYMENT 8827", false, transaction.TypeExpense},
		{"investment transfer is income", "TRANSFER TO VANGUARD BROKERAGE", false, transaction.TypeIncome},
		{"401k contribution is income", "401K CONTRIBUTION", true, transaction.TypeIncome},
		{"payroll", "ACME CORP PAYROLL", false, transaction.TypeIncome},
		{"direct deposit", "DIRECT DEPOSIT EMPLOYER", false, transaction.TypeIncome},
		{"refund", "AMAZON REFUND", false, transaction.TypeIncome},
		{"withdrawal", "ATM WITHDRAWAL MAIN ST", false, transaction.TypeExpense},
		{"monthly fee", "MONTHLY SERVICE FEE", false, transaction.TypeExpense},
		{"ocr truncated purchase", "PUR STARBUCKS 1234", false, transaction.TypeExpense},
		{"purchase", "Purchase at Starbucks", true, transaction.TypeExpense},
		{"negative marker forces expense", "UNKNOWN MERCHANT", true, transaction.TypeExpense},
		{"positive default is income", "UNKNOWN MERCHANT", false, transaction.TypeIncome},
		{"no partial word match", "DEBITO CARD SRL", false, transaction.TypeIncome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.description, tt.negative))
		})
	}
}
