package categorization

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetermineExpenseCategory(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        string
	}{
		{"starbucks is entertainment", "Purchase at Starbucks", "Entertainment"},
		{"grocery store", "SAFEWAY STORE 123", "Groceries"},
		{"utility bill", "CITY ELECTRIC UTILITY", "Utilities"},
		{"rideshare", "UBER TRIP HELP.UBER.COM", "Transportation"},
		{"pharmacy", "CVS PHARMACY 4421", "Healthcare"},
		{"big box", "WALMART SUPERCENTER", "Shopping"},
		{"hardware store", "HOME DEPOT 1180", "Home Improvement"},
		{"gym", "PLANET FITNESS GYM", "Personal Care"},
		{"pet store", "PETCO ANIMAL SUPPLIES", "Pet Care"},
		{"charity", "RED CROSS DONATION", "Gifts & Donations"},
		{"unknown merchant", "XJ-91 HOLDINGS LLC", CategoryOtherExpenses},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, determineExpenseCategory(tt.description))
		})
	}

	t.Run("word boundaries on insurance phrases", func(t *testing.T) {
		assert.NotEqual(t, "Insurance", determineExpenseCategory("scar insurance co"))
		assert.Equal(t, "Insurance", determineExpenseCategory("car insurance payment"))
	})

	t.Run("insurance premium beats healthcare terms", func(t *testing.T) {
		assert.Equal(t, "Insurance", determineExpenseCategory("HEALTH INSURANCE PREMIUM MEDICAL GRP"))
	})

	t.Run("credit card payment phrases", func(t *testing.T) {
		assert.Equal(t, CategoryCreditCardPayment, determineExpenseCategory("CREDIT CARD PAYMENT THANK YOU"))
		assert.Equal(t, CategoryCreditCardPayment, determineExpenseCategory("ACH PMT VISA ENDING 4412"))
	})

	t.Run("ach rent is not a card payment", func(t *testing.T) {
		assert.Equal(t, "Rent", determineExpenseCategory("ACH RENT PAYMENT VISA PROPERTY MGMT"))
	})
}

func TestDetermineIncomeCategory(t *testing.T) {
	tests := []struct {
		description string
		want        string
	}{
		{"ACME CORP PAYROLL DEP", "Salary"},
		{"VANGUARD DIVIDEND REINVEST", "Investment"},
		{"MERCHANT REFUND 4412", "Refunds"},
		{"MYSTERY CREDIT", CategoryOtherIncome},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.want, determineIncomeCategory(tt.description))
		})
	}
}
