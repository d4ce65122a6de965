// Package parser scans OCR page text for transaction rows and statement
// metadata. OCR noise is expected: lines that do not look like transactions
// are skipped silently, and extracted fields stay raw strings for the
// normalizer to interpret.
package parser

import (
	"log/slog"
	"regexp"
	"strings"
	"time"
)

// RawTransaction is an unnormalized (date, description, amount) triple pulled
// from one OCR line. ContextYear is the month/year header context in effect at
// that line, used to resolve bare MM/DD dates.
type RawTransaction struct {
	DateRaw        string
	DescriptionRaw string
	AmountRaw      string
	ContextYear    int
	Line           int
}

// PageScan is the result of scanning one page of OCR text.
type PageScan struct {
	Transactions []RawTransaction
	// NewBalanceRaw holds the statement's "New Balance" amount when present,
	// emitted by the pipeline as a single month-summary record.
	NewBalanceRaw string
	// AccountFragment is the trailing digits of an account number when one
	// was printed on the page.
	AccountFragment string
}

var (
	monthHeaderPattern = regexp.MustCompile(
		`(?i)^\s*(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept?|oct|nov|dec)\.?\s+(\d{4})\s*$`)

	leadingDatePattern = regexp.MustCompile(
		`^\s*((?:\d{1,2}[/\-.]\d{1,2}(?:[/\-.]\d{2,4})?)|(?:[A-Za-z]{3,9}\.?\s+\d{1,2}(?:,?\s+\d{4})?))\s+`)

	// An amount token as OCR renders it: digits possibly corrupted into
	// look-alike letters, optional currency symbol, parens or hyphens for
	// negatives. At least one real digit is required.
	amountTokenPattern = regexp.MustCompile(
		`^\(?-?\$?[0-9OoSsIlBZzGgQqkK][0-9OoSsIlBZzGgQqkK,.]*\)?-?$`)

	newBalancePattern = regexp.MustCompile(
		`(?i)\bnew balance\b:?\s*(\(?-?\$?\s?[0-9OoSsIlBZzGgQqkK][0-9OoSsIlBZzGgQqkK,.]*\)?-?)`)

	accountFragmentPattern = regexp.MustCompile(
		`(?i)\baccount\s*(?:number|no\.?|#|ending(?:\s+in)?)?\s*:?\s*[x*.]*(\d{4})\b`)

	monthNumbers = map[string]time.Month{
		"january": time.January, "jan": time.January,
		"february": time.February, "feb": time.February,
		"march": time.March, "mar": time.March,
		"april": time.April, "apr": time.April,
		"may":  time.May,
		"june": time.June, "jun": time.June,
		"july": time.July, "jul": time.July,
		"august": time.August, "aug": time.August,
		"september": time.September, "sep": time.September, "sept": time.September,
		"october": time.October, "oct": time.October,
		"november": time.November, "nov": time.November,
		"december": time.December, "dec": time.December,
	}
)

// LineParser scans page text line by line, carrying month/year header context
// across lines and pages. One LineParser serves one document; it is not safe
// for concurrent use.
type LineParser struct {
	contextMonth time.Month
	contextYear  int
	logger       *slog.Logger
}

// NewLineParser creates a line parser whose initial year context is the
// processing year.
func NewLineParser(processingYear int, logger *slog.Logger) *LineParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &LineParser{contextYear: processingYear, logger: logger}
}

// ContextYear returns the current ambient year context.
func (p *LineParser) ContextYear() int {
	return p.contextYear
}

// ScanPage extracts raw transaction triples from one page of OCR text.
func (p *LineParser) ScanPage(text string) PageScan {
	scan := PageScan{}

	for lineNum, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := monthHeaderPattern.FindStringSubmatch(line); m != nil {
			if month, ok := monthNumbers[strings.ToLower(m[1])]; ok {
				p.contextMonth = month
				p.contextYear = atoi(m[2])
				p.logger.Debug("month header context",
					slog.String("month", m[1]), slog.Int("year", p.contextYear))
			}
			continue
		}

		if scan.AccountFragment == "" {
			if m := accountFragmentPattern.FindStringSubmatch(line); m != nil {
				scan.AccountFragment = m[1]
			}
		}

		if scan.NewBalanceRaw == "" {
			if m := newBalancePattern.FindStringSubmatch(line); m != nil {
				scan.NewBalanceRaw = m[1]
			}
		}

		if tx, ok := p.parseLine(line, lineNum); ok {
			scan.Transactions = append(scan.Transactions, tx)
		}
	}

	return scan
}

// parseLine matches one candidate line against the transaction-row shape:
// <date> <description tokens> <amount> [<running balance>].
func (p *LineParser) parseLine(line string, lineNum int) (RawTransaction, bool) {
	m := leadingDatePattern.FindStringSubmatch(line)
	if m == nil {
		return RawTransaction{}, false
	}
	dateRaw := strings.TrimSpace(m[1])
	rest := strings.TrimSpace(line[len(m[0]):])
	if rest == "" {
		return RawTransaction{}, false
	}

	tokens := strings.Fields(rest)

	// Trailing numeric tokens that look like currency amounts: the last is a
	// running balance when two are present, and is dropped.
	amountTokens := 0
	for i := len(tokens) - 1; i >= 0 && amountTokens < 2; i-- {
		if !amountTokenPattern.MatchString(tokens[i]) {
			break
		}
		amountTokens++
	}
	if amountTokens == 0 {
		return RawTransaction{}, false
	}

	amountIdx := len(tokens) - amountTokens
	descTokens := tokens[:amountIdx]
	if len(descTokens) == 0 {
		return RawTransaction{}, false
	}

	return RawTransaction{
		DateRaw:        dateRaw,
		DescriptionRaw: strings.Join(descTokens, " "),
		AmountRaw:      tokens[amountIdx],
		ContextYear:    p.contextYear,
		Line:           lineNum,
	}, true
}
