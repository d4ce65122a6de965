package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "strips pos debit prefix",
			raw:      "POS DEBIT STARBUCKS STORE #1234",
			expected: "STARBUCKS STORE #1234",
		},
		{
			name:     "strips checkcard prefix",
			raw:      "CHECKCARD PURCHASE WALMART SUPERCENTER",
			expected: "WALMART SUPERCENTER",
		},
		{
			name:     "strips reference label and token",
			raw:      "AMAZON.COM REF# 8827341 SEATTLE WA",
			expected: "AMAZON.COM SEATTLE WA",
		},
		{
			name:     "strips embedded dollar amount",
			raw:      "TRANSFER TO SAVINGS $500.00 CONFIRMED",
			expected: "TRANSFER TO SAVINGS CONFIRMED",
		},
		{
			name:     "expands abbreviations",
			raw:      "CAR INS PMT",
			expected: "CAR Insurance Payment",
		},
		{
			name:     "expands xfer and acct",
			raw:      "XFER FROM ACCT 1234",
			expected: "Transfer FROM Account 1234",
		},
		{
			name:     "preserves store number through filter",
			raw:      "TARGET #0542 * MINNEAPOLIS",
			expected: "TARGET #0542 MINNEAPOLIS",
		},
		{
			name:     "preserves short date through filter",
			raw:      "UBER TRIP 03/14 HELP.UBER.COM",
			expected: "UBER TRIP 03/14 HELP.UBER.COM",
		},
		{
			name:     "collapses whitespace",
			raw:      "NETFLIX      STREAMING    SVC",
			expected: "NETFLIX STREAMING Service",
		},
		{
			name:     "strips orphan punctuation",
			raw:      "SHELL OIL - # - PORTLAND",
			expected: "SHELL OIL PORTLAND",
		},
		{
			name:     "strips trailing dot run",
			raw:      "COSTCO WHOLESALE.....",
			expected: "COSTCO WHOLESALE",
		},
		{
			name:     "punctuation only becomes empty",
			raw:      "***---***",
			expected: "",
		},
		{
			name:     "empty stays empty",
			raw:      "   ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanDescription(tt.raw))
		})
	}
}

func TestCleanDescription_Deterministic(t *testing.T) {
	raw := "POS DEBIT SQ *COFFEE SHOP #42 REF# 991 $4.50"
	first := CleanDescription(raw)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, CleanDescription(raw))
	}
}
