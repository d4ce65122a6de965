package categorization

import (
	"regexp"
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// Built-in category labels.
const (
	CategoryOtherIncome       = "Other Income"
	CategoryOtherExpenses     = "Other Expenses"
	CategoryCreditCardPayment = "Credit Card Payment"
)

type keywordEntry struct {
	keyword  string
	category string
}

// keywordTable matches a fixed dictionary in one Aho-Corasick pass, then
// confirms candidates with a whole-word check. Entry order is priority order:
// the first listed entry that survives the word check wins.
type keywordTable struct {
	matcher *ahocorasick.Matcher
	entries []keywordEntry
	word    []*regexp.Regexp
}

func newKeywordTable(entries []keywordEntry) *keywordTable {
	dict := make([]string, len(entries))
	word := make([]*regexp.Regexp, len(entries))
	for i, e := range entries {
		dict[i] = e.keyword
		word[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(e.keyword) + `\b`)
	}
	return &keywordTable{
		matcher: ahocorasick.NewStringMatcher(dict),
		entries: entries,
		word:    word,
	}
}

func (t *keywordTable) lookup(lower string) (string, bool) {
	hits := t.matcher.Match([]byte(lower))
	if len(hits) == 0 {
		return "", false
	}

	hitSet := make(map[int]struct{}, len(hits))
	for _, h := range hits {
		hitSet[h] = struct{}{}
	}

	for i, e := range t.entries {
		if _, ok := hitSet[i]; !ok {
			continue
		}
		if t.word[i].MatchString(lower) {
			return e.category, true
		}
	}
	return "", false
}

var incomeTable = newKeywordTable([]keywordEntry{
	{"payroll", "Salary"},
	{"salary", "Salary"},
	{"direct deposit", "Salary"},
	{"direct dep", "Salary"},
	{"wages", "Salary"},
	{"paycheck", "Salary"},

	{"dividend", "Investment"},
	{"interest", "Investment"},
	{"vanguard", "Investment"},
	{"fidelity", "Investment"},
	{"schwab", "Investment"},
	{"robinhood", "Investment"},
	{"brokerage", "Investment"},
	{"401k", "Investment"},
	{"capital gain", "Investment"},

	{"refund", "Refunds"},
	{"reimbursement", "Refunds"},
	{"rebate", "Refunds"},
	{"cashback", "Refunds"},
	{"cash back", "Refunds"},
	{"return", "Refunds"},
})

// Insurance entries are listed before healthcare so premium payments to
// health insurers do not land in Healthcare. Bare "insurance" is deliberately
// not a keyword; it appears only in whole phrases.
var expenseTable = newKeywordTable([]keywordEntry{
	{"rent", "Rent"},
	{"landlord", "Rent"},
	{"mortgage", "Rent"},

	{"grocery", "Groceries"},
	{"groceries", "Groceries"},
	{"supermarket", "Groceries"},
	{"safeway", "Groceries"},
	{"kroger", "Groceries"},
	{"aldi", "Groceries"},
	{"trader joe", "Groceries"},
	{"whole foods", "Groceries"},
	{"wegmans", "Groceries"},

	{"utility", "Utilities"},
	{"utilities", "Utilities"},
	{"electric", "Utilities"},
	{"electricity", "Utilities"},
	{"water bill", "Utilities"},
	{"sewer", "Utilities"},
	{"internet", "Utilities"},
	{"comcast", "Utilities"},
	{"xfinity", "Utilities"},
	{"verizon", "Utilities"},
	{"t-mobile", "Utilities"},

	{"uber", "Transportation"},
	{"lyft", "Transportation"},
	{"shell", "Transportation"},
	{"chevron", "Transportation"},
	{"exxon", "Transportation"},
	{"gas station", "Transportation"},
	{"fuel", "Transportation"},
	{"parking", "Transportation"},
	{"transit", "Transportation"},
	{"metro", "Transportation"},
	{"toll", "Transportation"},
	{"airline", "Transportation"},

	{"starbucks", "Entertainment"},
	{"netflix", "Entertainment"},
	{"spotify", "Entertainment"},
	{"hulu", "Entertainment"},
	{"restaurant", "Entertainment"},
	{"coffee", "Entertainment"},
	{"cinema", "Entertainment"},
	{"movie", "Entertainment"},
	{"doordash", "Entertainment"},
	{"grubhub", "Entertainment"},
	{"mcdonald", "Entertainment"},
	{"chipotle", "Entertainment"},

	{"car insurance", "Insurance"},
	{"auto insurance", "Insurance"},
	{"home insurance", "Insurance"},
	{"health insurance", "Insurance"},
	{"life insurance", "Insurance"},
	{"renters insurance", "Insurance"},
	{"insurance premium", "Insurance"},
	{"insurance payment", "Insurance"},
	{"geico", "Insurance"},
	{"allstate", "Insurance"},
	{"state farm", "Insurance"},
	{"progressive", "Insurance"},

	{"pharmacy", "Healthcare"},
	{"cvs", "Healthcare"},
	{"walgreens", "Healthcare"},
	{"doctor", "Healthcare"},
	{"dental", "Healthcare"},
	{"dentist", "Healthcare"},
	{"medical", "Healthcare"},
	{"clinic", "Healthcare"},
	{"hospital", "Healthcare"},
	{"copay", "Healthcare"},

	{"amazon", "Shopping"},
	{"walmart", "Shopping"},
	{"target", "Shopping"},
	{"costco", "Shopping"},
	{"best buy", "Shopping"},
	{"ebay", "Shopping"},
	{"etsy", "Shopping"},
	{"ikea", "Shopping"},

	{"tuition", "Education"},
	{"university", "Education"},
	{"college", "Education"},
	{"textbook", "Education"},
	{"coursera", "Education"},
	{"udemy", "Education"},

	{"home depot", "Home Improvement"},
	{"lowes", "Home Improvement"},
	{"hardware", "Home Improvement"},
	{"plumber", "Home Improvement"},
	{"hvac", "Home Improvement"},
	{"contractor", "Home Improvement"},

	{"salon", "Personal Care"},
	{"barber", "Personal Care"},
	{"spa", "Personal Care"},
	{"gym", "Personal Care"},
	{"fitness", "Personal Care"},
	{"haircut", "Personal Care"},

	{"daycare", "Childcare"},
	{"childcare", "Childcare"},
	{"babysit", "Childcare"},
	{"preschool", "Childcare"},

	{"veterinary", "Pet Care"},
	{"vet", "Pet Care"},
	{"petco", "Pet Care"},
	{"petsmart", "Pet Care"},
	{"chewy", "Pet Care"},

	{"donation", "Gifts & Donations"},
	{"charity", "Gifts & Donations"},
	{"gofundme", "Gifts & Donations"},
	{"red cross", "Gifts & Donations"},
	{"tithe", "Gifts & Donations"},
})

var creditCardPhrases = []string{
	"credit card payment",
	"credit crd payment",
	"cardmember payment",
	"card payment",
	"payment thank you",
	"online payment - thank you",
	"autopay payment",
}

var cardTerms = []string{"credit card", "store card", "visa", "mastercard", "amex", "discover"}

var cardExclusions = []string{"rent", "utility", "utilities", "electric", "water"}

// isCreditCardPayment detects statement payments to a card issuer. Besides the
// explicit phrases, an ACH payment that also mentions a card term counts,
// unless the line looks like a rent or utility ACH instead.
func isCreditCardPayment(lower string) bool {
	for _, phrase := range creditCardPhrases {
		if containsWord(lower, phrase) {
			return true
		}
	}

	if containsWord(lower, "ach") && anyWord(lower, cardTerms) && !anyWord(lower, cardExclusions) {
		return true
	}
	return false
}

// determineIncomeCategory maps an income description to a built-in category.
func determineIncomeCategory(description string) string {
	lower := strings.ToLower(description)
	if cat, ok := incomeTable.lookup(lower); ok {
		return cat
	}
	return CategoryOtherIncome
}

// determineExpenseCategory maps an expense description to a built-in
// category. Credit card payments are checked before the keyword table.
func determineExpenseCategory(description string) string {
	lower := strings.ToLower(description)
	if isCreditCardPayment(lower) {
		return CategoryCreditCardPayment
	}
	if cat, ok := expenseTable.lookup(lower); ok {
		return cat
	}
	return CategoryOtherExpenses
}
