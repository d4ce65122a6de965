package normalizer

import (
	"regexp"
	"strings"
)

// Boilerplate labels whose following token carries no merchant information.
var boilerplatePattern = regexp.MustCompile(
	`(?i)\b(?:date|post(?:ing)?\s+date|eff(?:ective)?\s+date|account|acct|card|ref(?:erence)?|auth(?:orization)?(?:\s+code)?|trace)\s*(?:#|no\.?|num(?:ber)?|:)\s*\S+`,
)

// Generic transaction-type prefixes anchored at line start.
var typePrefixPattern = regexp.MustCompile(
	`(?i)^(?:pos\s+debit|pos\s+purchase|ach\s+debit|ach\s+credit|checkcard\s+purchase|check\s*card\s+purchase|debit\s+card\s+purchase|visa\s+purchase|recurring\s+payment|electronic\s+withdrawal|web\s+pmt)\s+`,
)

var embeddedAmountPattern = regexp.MustCompile(`\$\s?\d[\d,]*(?:\.\d{1,2})?`)

// Whole-word abbreviation expansions. Expanded words use first-letter caps.
var abbreviations = map[string]string{
	"pmt":   "Payment",
	"pymt":  "Payment",
	"acct":  "Account",
	"xfer":  "Transfer",
	"trnsfr": "Transfer",
	"svc":   "Service",
	"svcs":  "Services",
	"dep":   "Deposit",
	"wd":    "Withdrawal",
	"intl":  "International",
	"ins":   "Insurance",
	"med":   "Medical",
	"pharm": "Pharmacy",
	"mkt":   "Market",
	"sq":    "Square",
	"wm":    "Walmart",
	"amzn":  "Amazon",
}

var abbreviationPattern = regexp.MustCompile(`(?i)\b[a-z]+\b`)

var (
	storeNumberPattern = regexp.MustCompile(`#\d+`)
	shortDatePattern   = regexp.MustCompile(`\b\d{1,2}/\d{1,2}\b`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
	orphanPunctPattern = regexp.MustCompile(`(?:^|\s)[\-.#&/](?:\s|$)`)
	trailingDotsPattern = regexp.MustCompile(`\.{2,}$`)
)

// CleanDescription strips statement boilerplate and normalizes merchant text.
// It is deterministic and pure; the step order is part of the contract.
func CleanDescription(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	// 1. Boilerplate, type prefixes, embedded amounts.
	s = typePrefixPattern.ReplaceAllString(s, "")
	s = boilerplatePattern.ReplaceAllString(s, " ")
	s = embeddedAmountPattern.ReplaceAllString(s, " ")

	// 2. Abbreviation expansion on whole words.
	s = abbreviationPattern.ReplaceAllStringFunc(s, func(word string) string {
		if expanded, ok := abbreviations[strings.ToLower(word)]; ok {
			return expanded
		}
		return word
	})

	// 3. Charset filter, shielding store numbers (#1234) and short dates
	// (MM/DD) so their punctuation survives.
	s = filterCharset(s)

	// 4. Whitespace collapse.
	s = strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))

	// 5. Orphaned punctuation tokens left behind by the filter.
	for {
		cleaned := orphanPunctPattern.ReplaceAllString(s, " ")
		cleaned = strings.TrimSpace(whitespacePattern.ReplaceAllString(cleaned, " "))
		if cleaned == s {
			break
		}
		s = cleaned
	}

	// 6. Trailing dot runs from OCR'd dot leaders.
	s = strings.TrimSpace(trailingDotsPattern.ReplaceAllString(s, ""))

	if isOnlyPunctuation(s) {
		return ""
	}
	return s
}

const shieldRune = '\x00'

// filterCharset keeps letters, digits, space and &/.#- while temporarily
// shielding store-number and short-date substrings from the filter.
func filterCharset(s string) string {
	type shield struct {
		placeholder string
		original    string
	}
	var shields []shield

	shieldAll := func(pattern *regexp.Regexp) {
		s = pattern.ReplaceAllStringFunc(s, func(match string) string {
			placeholder := string(shieldRune) + string(rune('A'+len(shields)))
			shields = append(shields, shield{placeholder: placeholder, original: match})
			return placeholder
		})
	}
	shieldAll(storeNumberPattern)
	shieldAll(shortDatePattern)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == shieldRune,
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == ' ', r == '&', r == '/', r == '.', r == '#', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	s = b.String()

	for _, sh := range shields {
		s = strings.Replace(s, sh.placeholder, sh.original, 1)
	}
	return s
}

func isOnlyPunctuation(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
