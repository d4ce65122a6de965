package normalizer

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateParser_Parse_FormatCoverage(t *testing.T) {
	p := NewDateParser(slog.Default())
	expected := time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC)

	// Every supported format yields the same calendar date.
	inputs := []string{
		"01/15/2023",
		"1/15/23",
		"01-15-2023",
		"01.15.2023",
		"Jan 15, 2023",
		"Jan. 15 2023",
		"January 15, 2023",
		"15 January 2023",
		"15 Jan 2023",
		"2023-01-15",
		"2023/01/15",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got, ok := p.Parse(input, 0)
			require.True(t, ok, "should parse %q", input)
			assert.True(t, expected.Equal(got.Time), "parse %q: got %s", input, got.Time)
			assert.False(t, got.YearAssumed)
		})
	}
}

func TestDateParser_Parse_BareMonthDay(t *testing.T) {
	p := NewDateParser(slog.Default())

	got, ok := p.Parse("03/14", 2024)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC), got.Time)
	assert.True(t, got.YearAssumed)
}

func TestDateParser_Parse_RejectsImpossibleDates(t *testing.T) {
	p := NewDateParser(slog.Default())

	invalid := []string{
		"02/30/2023", // Feb 30 does not exist
		"13/45/2023",
		"2023-02-30",
		"garbage",
		"",
	}
	for _, input := range invalid {
		_, ok := p.Parse(input, 0)
		assert.False(t, ok, "should reject %q", input)
	}
}

func TestDateParser_Correct(t *testing.T) {
	p := NewDateParser(slog.Default())
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	t.Run("period in single year forces that year", func(t *testing.T) {
		period := &Period{
			Start: time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2023, time.March, 31, 0, 0, 0, 0, time.UTC),
		}
		d := Date{Time: time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC), YearAssumed: true}
		got := p.Correct(d, now, period)
		assert.Equal(t, 2023, got.Year())
	})

	t.Run("period spanning two years picks end year for end month", func(t *testing.T) {
		period := &Period{
			Start: time.Date(2023, time.December, 15, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, time.January, 14, 0, 0, 0, 0, time.UTC),
		}

		jan := Date{Time: time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC), YearAssumed: true}
		assert.Equal(t, 2024, p.Correct(jan, now, period).Year())

		dec := Date{Time: time.Date(2024, time.December, 20, 0, 0, 0, 0, time.UTC), YearAssumed: true}
		assert.Equal(t, 2023, p.Correct(dec, now, period).Year())
	})

	t.Run("future date without period rolls back one year", func(t *testing.T) {
		d := Date{Time: time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC), YearAssumed: true}
		got := p.Correct(d, now, nil)
		assert.Equal(t, 2023, got.Year())
	})

	t.Run("explicit year untouched", func(t *testing.T) {
		d := Date{Time: time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)}
		got := p.Correct(d, now, nil)
		assert.Equal(t, 2030, got.Year())
	})

	t.Run("date outside period is kept", func(t *testing.T) {
		period := &Period{
			Start: time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2023, time.March, 31, 0, 0, 0, 0, time.UTC),
		}
		d := Date{Time: time.Date(2023, time.June, 10, 0, 0, 0, 0, time.UTC)}
		got := p.Correct(d, now, period)
		assert.Equal(t, d.Time, got)
	})
}
