// Package categorization assigns income/expense polarity and a semantic
// category to extracted transactions. Custom user rules are consulted first,
// then an optional AI suggestion, then built-in keyword tables.
package categorization

import (
	"regexp"
	"strings"
	"sync"

	"github.com/Jameshuff91/budget-planner/internal/domain/transaction"
)

var (
	p2pPattern       = regexp.MustCompile(`\b(?:zelle|venmo)\b`)
	p2pInboundWord   = regexp.MustCompile(`\bfrom\b`)
	p2pOutboundWord  = regexp.MustCompile(`\b(?:to|payment)\b`)
	purchaseShorthand = regexp.MustCompile(`\b(?:pur|purchase)\b`)
)

// Investment activity is treated as savings rather than spending, so it
// always classifies as income regardless of direction words.
var investmentKeywords = []string{
	"vanguard", "fidelity", "schwab", "robinhood", "etrade", "wealthfront",
	"betterment", "brokerage", "401k", "403b", "roth", "ira", "mutual fund",
	"index fund", "investment",
}

var incomeKeywords = []string{
	"payroll", "direct deposit", "direct dep", "salary", "wages", "paycheck",
	"interest", "refund", "deposit", "dividend", "reimbursement", "rebate",
	"cashback", "cash back",
}

var expenseKeywords = []string{
	"payment to", "purchase", "withdrawal", "withdraw", "debit", "atm", "fee",
	"subscription", "bill pay", "autopay", "charge",
}

var wordPatterns sync.Map // keyword -> *regexp.Regexp

func wordPattern(keyword string) *regexp.Regexp {
	if v, ok := wordPatterns.Load(keyword); ok {
		return v.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
	wordPatterns.Store(keyword, re)
	return re
}

func containsWord(lower, keyword string) bool {
	if !strings.Contains(lower, keyword) {
		return false
	}
	return wordPattern(keyword).MatchString(lower)
}

func anyWord(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if containsWord(lower, kw) {
			return true
		}
	}
	return false
}

// Classify resolves a transaction's direction from its description, falling
// back to the sign marker seen in the original amount text. All keyword checks
// are whole-word so "scar" never matches "car".
func Classify(description string, negative bool) transaction.Type {
	lower := strings.ToLower(description)

	if p2pPattern.MatchString(lower) {
		switch {
		case p2pInboundWord.MatchString(lower):
			return transaction.TypeIncome
		case p2pOutboundWord.MatchString(lower):
			return transaction.TypeExpense
		}
	}

	if anyWord(lower, investmentKeywords) {
		return transaction.TypeIncome
	}
	if anyWord(lower, incomeKeywords) {
		return transaction.TypeIncome
	}
	if anyWord(lower, expenseKeywords) {
		return transaction.TypeExpense
	}
	// OCR often truncates "PURCHASE" to "PUR".
	if purchaseShorthand.MatchString(lower) {
		return transaction.TypeExpense
	}

	if negative {
		return transaction.TypeExpense
	}
	return transaction.TypeIncome
}
