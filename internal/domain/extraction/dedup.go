package extraction

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/Jameshuff91/budget-planner/internal/domain/transaction"
)

// DefaultDuplicateSimilarity is the description-similarity bar above which two
// same-day same-amount transactions are considered the same.
const DefaultDuplicateSimilarity = 0.8

// descriptionSimilarity is 1 - editDistance/maxLen over runes. Two empty
// strings are identical by definition.
func descriptionSimilarity(a, b string) float64 {
	lenA, lenB := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	maxLen := lenA
	if lenB > maxLen {
		maxLen = lenB
	}
	if maxLen == 0 {
		return 1
	}

	dist := fuzzy.LevenshteinDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

// isDuplicate reports whether the candidate matches any existing transaction
// on calendar day, exact amount, and near-identical description.
func isDuplicate(candidate transaction.ExtractedTransaction, existing []transaction.ExtractedTransaction, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultDuplicateSimilarity
	}

	candDesc := strings.ToLower(candidate.Description)
	for _, e := range existing {
		if !sameDay(candidate.Date, e.Date) {
			continue
		}
		if !candidate.Amount.Equal(e.Amount) {
			continue
		}
		if descriptionSimilarity(candDesc, strings.ToLower(e.Description)) >= threshold {
			return true
		}
	}
	return false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
