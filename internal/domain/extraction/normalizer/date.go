package normalizer

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Period is the inclusive date range a statement covers.
type Period struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether the period is usable: both bounds set and ordered.
func (p Period) Valid() bool {
	return !p.Start.IsZero() && !p.End.IsZero() && !p.Start.After(p.End)
}

// Contains reports whether d falls inside the period (inclusive).
func (p Period) Contains(d time.Time) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}

// Date is a parsed calendar date. YearAssumed is true when the source text had
// no year and the parser filled one in from context; such dates are candidates
// for statement-period correction.
type Date struct {
	Time        time.Time
	YearAssumed bool
}

var monthsByName = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// sep accepts /, -, . or space between date components.
var (
	isoDatePattern      = regexp.MustCompile(`^(\d{4})[/\-. ](\d{1,2})[/\-. ](\d{1,2})$`)
	usDatePattern       = regexp.MustCompile(`^(\d{1,2})[/\-. ](\d{1,2})[/\-. ](\d{4})$`)
	usShortYearPattern  = regexp.MustCompile(`^(\d{1,2})[/\-. ](\d{1,2})[/\-. ](\d{2})$`)
	monthFirstPattern   = regexp.MustCompile(`^([A-Za-z]+)\.?[ ]+(\d{1,2}),?[ ]+(\d{4})$`)
	dayFirstPattern     = regexp.MustCompile(`^(\d{1,2})[ ]+([A-Za-z]+)\.?,?[ ]+(\d{4})$`)
	monthDayOnlyPattern = regexp.MustCompile(`^(\d{1,2})[/\-. ](\d{1,2})$`)
)

// DateParser parses the date formats seen on US bank and card statements.
type DateParser struct {
	logger *slog.Logger
}

// NewDateParser creates a date parser.
func NewDateParser(logger *slog.Logger) *DateParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &DateParser{logger: logger}
}

// Parse tries a fixed battery of formats against raw. contextYear supplies the
// year for bare MM/DD dates (usually the running month header or the processing
// year). Returns false when no format matches.
func (p *DateParser) Parse(raw string, contextYear int) (Date, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Date{}, false
	}

	if m := isoDatePattern.FindStringSubmatch(s); m != nil {
		if d, ok := buildDate(atoi(m[1]), atoi(m[2]), atoi(m[3])); ok {
			return Date{Time: d}, true
		}
	}

	if m := usDatePattern.FindStringSubmatch(s); m != nil {
		if d, ok := buildDate(atoi(m[3]), atoi(m[1]), atoi(m[2])); ok {
			return Date{Time: d}, true
		}
	}

	if m := usShortYearPattern.FindStringSubmatch(s); m != nil {
		if d, ok := buildDate(2000+atoi(m[3]), atoi(m[1]), atoi(m[2])); ok {
			return Date{Time: d}, true
		}
	}

	if m := monthFirstPattern.FindStringSubmatch(s); m != nil {
		if month, ok := monthsByName[strings.ToLower(m[1])]; ok {
			if d, ok := buildDate(atoi(m[3]), int(month), atoi(m[2])); ok {
				return Date{Time: d}, true
			}
		}
	}

	if m := dayFirstPattern.FindStringSubmatch(s); m != nil {
		if month, ok := monthsByName[strings.ToLower(m[2])]; ok {
			if d, ok := buildDate(atoi(m[3]), int(month), atoi(m[1])); ok {
				return Date{Time: d}, true
			}
		}
	}

	if m := monthDayOnlyPattern.FindStringSubmatch(s); m != nil {
		if contextYear == 0 {
			contextYear = time.Now().Year()
		}
		if d, ok := buildDate(contextYear, atoi(m[1]), atoi(m[2])); ok {
			return Date{Time: d, YearAssumed: true}, true
		}
	}

	p.logger.Error("unrecognized date format", slog.String("raw", raw))
	return Date{}, false
}

// Correct resolves year ambiguity for dates parsed without an explicit year.
// Dates with an explicit year pass through unchanged. Correction is
// best-effort: a corrected date still outside the statement period is kept and
// logged rather than dropped.
func (p *DateParser) Correct(d Date, now time.Time, period *Period) time.Time {
	result := d.Time

	if d.YearAssumed {
		switch {
		case period != nil && period.Valid() && period.Start.Year() == period.End.Year():
			result = withYear(result, period.Start.Year())
		case period != nil && period.Valid():
			// Period spans two years (e.g. Dec-Jan). The transaction belongs
			// to whichever side of the boundary its month falls on.
			if result.Month() == period.End.Month() {
				result = withYear(result, period.End.Year())
			} else {
				result = withYear(result, period.Start.Year())
			}
		case result.After(now):
			p.logger.Info("future date assumed to be previous year",
				slog.Time("parsed", result))
			result = withYear(result, result.Year()-1)
		}
	}

	if period != nil && period.Valid() && !period.Contains(result) {
		p.logger.Warn("transaction date outside statement period",
			slog.Time("date", result),
			slog.Time("period_start", period.Start),
			slog.Time("period_end", period.End),
		)
	}

	return result
}

// buildDate constructs a calendar date and verifies the components round-trip,
// rejecting impossible dates like February 30 that time.Date would normalize.
func buildDate(year, month, day int) (time.Time, bool) {
	if year < 1900 || year > 2200 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func withYear(d time.Time, year int) time.Time {
	candidate := time.Date(year, d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	if candidate.Month() != d.Month() {
		// Feb 29 in a non-leap target year; clamp to Feb 28.
		candidate = time.Date(year, d.Month(), d.Day()-1, 0, 0, 0, 0, time.UTC)
	}
	return candidate
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
