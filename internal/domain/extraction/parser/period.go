package parser

import (
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/Jameshuff91/budget-planner/internal/domain/extraction/normalizer"
)

// dateSub matches one loosely-formatted date substring inside a larger phrase.
const dateSub = `((?:\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})|(?:\d{4}-\d{1,2}-\d{1,2})|(?:[A-Za-z]{3,9}\.?\s+\d{1,2},?\s+\d{4})|(?:\d{1,2}\s+[A-Za-z]{3,9}\.?,?\s+\d{4}))`

// Phrase-anchored range patterns, tried in order. Each captures exactly two
// date substrings.
var periodPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)statement\s+period\s*:?\s*` + dateSub + `\s*(?:to|through|thru|[-–])\s*` + dateSub),
	regexp.MustCompile(`(?i)billing\s+period\s*:?\s*` + dateSub + `\s*(?:to|through|thru|[-–])\s*` + dateSub),
	regexp.MustCompile(`(?i)activity\s+from\s*:?\s*` + dateSub + `\s*(?:to|through|thru|[-–])\s*` + dateSub),
	regexp.MustCompile(`(?i)opening/?closing\s+date\s*:?\s*` + dateSub + `\s*(?:to|through|thru|[-–])\s*` + dateSub),
	regexp.MustCompile(`(?i)\bbetween\s+` + dateSub + `\s+and\s+` + dateSub),
}

var looseDatePattern = regexp.MustCompile(dateSub)

// PeriodDetector extracts the statement's date range from full-page OCR text.
type PeriodDetector struct {
	dates  *normalizer.DateParser
	logger *slog.Logger
}

// NewPeriodDetector creates a period detector.
func NewPeriodDetector(dates *normalizer.DateParser, logger *slog.Logger) *PeriodDetector {
	if logger == nil {
		logger = slog.Default()
	}
	return &PeriodDetector{dates: dates, logger: logger}
}

// Detect returns the statement period found in text, or false when none can be
// established. Primary strategy: phrase-anchored range patterns in order; a
// match whose dates come out reversed is logged and discarded rather than
// swapped, and detection falls through to the loose-date scan.
func (d *PeriodDetector) Detect(text string) (normalizer.Period, bool) {
	for _, pattern := range periodPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		start, okStart := d.dates.Parse(m[1], 0)
		end, okEnd := d.dates.Parse(m[2], 0)
		if !okStart || !okEnd {
			continue
		}

		if start.Time.After(end.Time) {
			d.logger.Warn("statement period match has reversed dates, discarding",
				slog.String("start", m[1]),
				slog.String("end", m[2]),
			)
			continue
		}

		return normalizer.Period{Start: start.Time, End: end.Time}, true
	}

	return d.detectFromLooseDates(text)
}

// detectFromLooseDates scans for every date-like substring on the page and
// takes min/max of the unique calendar values. A single unique date is not a
// period.
func (d *PeriodDetector) detectFromLooseDates(text string) (normalizer.Period, bool) {
	seen := make(map[time.Time]struct{})
	for _, raw := range looseDatePattern.FindAllString(text, -1) {
		parsed, ok := d.dates.Parse(raw, 0)
		if !ok || parsed.YearAssumed {
			continue
		}
		seen[parsed.Time] = struct{}{}
	}

	if len(seen) < 2 {
		return normalizer.Period{}, false
	}

	var min, max time.Time
	for t := range seen {
		if min.IsZero() || t.Before(min) {
			min = t
		}
		if max.IsZero() || t.After(max) {
			max = t
		}
	}

	if !min.Before(max) {
		return normalizer.Period{}, false
	}

	return normalizer.Period{Start: min, End: max}, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
