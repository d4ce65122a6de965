// Package normalizer turns raw OCR fragments (amounts, dates, merchant text)
// into clean structured values. All parsers here are defensive: OCR output is
// assumed to be corrupted and locale-ambiguous, and no function panics or
// returns an error for bad input - failures are logged and yield zero values.
package normalizer

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a parsed monetary value. Negative is tracked separately from the
// decimal so that a literal "-0" survives parsing as negative zero.
type Amount struct {
	Value    decimal.Decimal
	Negative bool
}

// Decimal returns the signed value.
func (a Amount) Decimal() decimal.Decimal {
	if a.Negative && a.Value.Sign() > 0 {
		return a.Value.Neg()
	}
	return a.Value
}

// Abs returns the magnitude.
func (a Amount) Abs() decimal.Decimal {
	return a.Value.Abs()
}

// IsNegative reports whether the raw text carried a negative marker.
func (a Amount) IsNegative() bool {
	return a.Negative || a.Value.Sign() < 0
}

// IsZero reports whether the magnitude is zero.
func (a Amount) IsZero() bool {
	return a.Value.IsZero()
}

// ocrDigitFixes maps letters that OCR engines commonly emit in place of digits.
var ocrDigitFixes = strings.NewReplacer(
	"S", "5",
	"B", "8",
	"I", "1",
	"l", "1",
	"Z", "2",
	"z", "2",
	"G", "6",
	"g", "6",
	"Q", "0",
	"q", "0",
	"O", "0",
	"o", "0",
	"k", "4",
	"K", "4",
	"–", "-", // en dash
	"—", "-", // em dash
)

var currencyStripper = strings.NewReplacer(
	"$", "", "€", "", "£", "", "¥", "", "₹", "", "R$", "",
	" ", "", "\t", "",
)

// AmountParser parses locale-ambiguous, OCR-corrupted amount strings.
type AmountParser struct {
	maxAmount decimal.Decimal
	logger    *slog.Logger
}

// NewAmountParser creates an amount parser with a symmetric sanity bound.
// Parsed magnitudes above maxAmount are rejected as OCR garbage.
func NewAmountParser(maxAmount float64, logger *slog.Logger) *AmountParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &AmountParser{
		maxAmount: decimal.NewFromFloat(maxAmount),
		logger:    logger,
	}
}

// Parse converts a raw amount string into an Amount. It never fails: empty or
// unrecoverable input yields zero and a log entry.
func (p *AmountParser) Parse(raw string) Amount {
	s := strings.TrimSpace(raw)
	if s == "" {
		p.logger.Warn("empty amount string")
		return Amount{Value: decimal.Zero}
	}

	negative := false

	// Accounting notation: (100.00) means -100.00.
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}

	s = ocrDigitFixes.Replace(s)
	s = currencyStripper.Replace(s)

	// Trailing-minus notation ("123.45-") and leading minus both normalize to
	// a single negative marker.
	for strings.HasSuffix(s, "-") {
		negative = true
		s = strings.TrimSuffix(s, "-")
	}
	for strings.HasPrefix(s, "-") {
		negative = true
		s = strings.TrimPrefix(s, "-")
	}

	s = disambiguateSeparators(s)
	s = stripNonNumeric(s)
	s = collapseDecimalPoints(s)

	if s == "" || s == "." {
		p.logger.Error("unparseable amount", slog.String("raw", raw))
		return Amount{Value: decimal.Zero}
	}

	value, err := decimal.NewFromString(s)
	if err != nil {
		p.logger.Error("amount failed to parse", slog.String("raw", raw), slog.String("cleaned", s))
		return Amount{Value: decimal.Zero}
	}

	if value.Abs().GreaterThan(p.maxAmount) {
		p.logger.Error("amount outside sanity bounds",
			slog.String("raw", raw),
			slog.String("value", value.String()),
			slog.String("max", p.maxAmount.String()),
		)
		return Amount{Value: decimal.Zero}
	}

	return Amount{Value: value, Negative: negative}
}

// disambiguateSeparators resolves thousands vs decimal separators. When both
// '.' and ',' appear, the one appearing last and followed by 1-2 digits is the
// decimal separator; the other is a thousands separator and is stripped.
func disambiguateSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot && trailingDigits(s, lastComma) <= 2 {
			// European format: 1.234,56
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// US format: 1,234.56
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if n := trailingDigits(s, lastComma); n >= 1 && n <= 2 {
			// Decimal comma: 123,45
			s = s[:lastComma] + "." + s[lastComma+1:]
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	return s
}

// trailingDigits counts the digits following the separator at index idx up to
// the next non-digit.
func trailingDigits(s string, idx int) int {
	count := 0
	for _, r := range s[idx+1:] {
		if r < '0' || r > '9' {
			break
		}
		count++
	}
	return count
}

func stripNonNumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// collapseDecimalPoints keeps only the first '.' as the decimal point and
// concatenates any remaining digit groups. Interior '-' left over from dashed
// OCR noise is dropped as well.
func collapseDecimalPoints(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	seenDot := false
	for _, r := range s {
		switch {
		case r == '.':
			if !seenDot {
				seenDot = true
				b.WriteRune(r)
			}
		case r == '-':
			// sign already extracted
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
