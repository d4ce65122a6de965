package document

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	fullDateInName  = regexp.MustCompile(`(20\d{2})[-_.]?(\d{2})[-_.]?(\d{2})`)
	yearMonthInName = regexp.MustCompile(`(20\d{2})[-_.\s]?(0[1-9]|1[0-2])`)
	monthNameInName = regexp.MustCompile(`(?i)(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept?|oct|nov|dec)[-_.\s]?(20\d{2})`)
)

var monthAbbrevs = map[string]time.Month{
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

// DateFromFileName infers a statement date from names like
// "statement_2023-01-15.pdf", "chase_2023_01.pdf" or "January 2023.pdf".
// Month-only matches resolve to the first of the month.
func DateFromFileName(name string) (time.Time, bool) {
	if m := fullDateInName.FindStringSubmatch(name); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if d, ok := calendarDate(year, month, day); ok {
			return d, true
		}
	}

	if m := yearMonthInName.FindStringSubmatch(name); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if d, ok := calendarDate(year, month, 1); ok {
			return d, true
		}
	}

	if m := monthNameInName.FindStringSubmatch(name); m != nil {
		if month, ok := monthAbbrevs[strings.ToLower(m[1])]; ok {
			year, _ := strconv.Atoi(m[2])
			return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), true
		}
	}

	return time.Time{}, false
}

func calendarDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}
