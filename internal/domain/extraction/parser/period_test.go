package parser

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jameshuff91/budget-planner/internal/domain/extraction/normalizer"
)

func newDetector() *PeriodDetector {
	return NewPeriodDetector(normalizer.NewDateParser(slog.Default()), slog.Default())
}

func TestPeriodDetector_Detect(t *testing.T) {
	d := newDetector()

	t.Run("statement period phrase", func(t *testing.T) {
		period, ok := d.Detect("Account Summary\nStatement Period: 01/01/2023 to 01/31/2023\nPrevious Balance $100.00")
		require.True(t, ok)
		assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), period.Start)
		assert.Equal(t, time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC), period.End)
	})

	t.Run("billing period with dash", func(t *testing.T) {
		period, ok := d.Detect("Billing Period 03/05/2024 - 04/04/2024")
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), period.Start)
		assert.Equal(t, time.Date(2024, 4, 4, 0, 0, 0, 0, time.UTC), period.End)
	})

	t.Run("activity from phrase with month names", func(t *testing.T) {
		period, ok := d.Detect("Activity from Dec 15, 2023 through Jan 14, 2024")
		require.True(t, ok)
		assert.Equal(t, 2023, period.Start.Year())
		assert.Equal(t, 2024, period.End.Year())
	})

	t.Run("between phrase", func(t *testing.T) {
		period, ok := d.Detect("transactions between 02/01/2023 and 02/28/2023 are shown")
		require.True(t, ok)
		assert.Equal(t, time.February, period.Start.Month())
	})

	t.Run("reversed primary match discarded not swapped", func(t *testing.T) {
		// The anchored match is reversed, so it is dropped; the loose-date
		// fallback then resolves the same two dates by min/max.
		period, ok := d.Detect("Statement Period: 01/31/2023 to 01/01/2023")
		require.True(t, ok)
		assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), period.Start)
		assert.Equal(t, time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC), period.End)
	})

	t.Run("fallback over scattered dates", func(t *testing.T) {
		text := "Payment due 04/25/2023\nsome noise\n04/02/2023 COFFEE 4.50\n04/19/2023 GROCERY 82.10"
		period, ok := d.Detect(text)
		require.True(t, ok)
		assert.Equal(t, time.Date(2023, 4, 2, 0, 0, 0, 0, time.UTC), period.Start)
		assert.Equal(t, time.Date(2023, 4, 25, 0, 0, 0, 0, time.UTC), period.End)
	})

	t.Run("single unique date is not a period", func(t *testing.T) {
		_, ok := d.Detect("Posted 05/05/2023 and again 05/05/2023")
		assert.False(t, ok)
	})

	t.Run("no dates", func(t *testing.T) {
		_, ok := d.Detect("TOTAL FEES CHARGED THIS PERIOD $0.00")
		assert.False(t, ok)
	})
}
