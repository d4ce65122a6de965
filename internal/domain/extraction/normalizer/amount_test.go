package normalizer

import (
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAmountParser() *AmountParser {
	return NewAmountParser(100000, slog.Default())
}

func TestAmountParser_Parse(t *testing.T) {
	p := testAmountParser()

	tests := []struct {
		name     string
		raw      string
		expected string
		negative bool
	}{
		{"plain", "123.45", "123.45", false},
		{"dollar sign with space", "$ 123.45", "123.45", false},
		{"euro symbol", "€1.234,56", "1234.56", false},
		{"parenthesized is negative", "(100.00)", "-100", true},
		{"leading minus", "-42.50", "-42.5", true},
		{"trailing minus", "42.50-", "-42.5", true},
		{"us thousands", "1,234.56", "1234.56", false},
		{"eu thousands", "1.234,56", "1234.56", false},
		{"comma decimal", "123,45", "123.45", false},
		{"comma thousands only", "1,234", "1234", false},
		{"large us", "12,345,678.90", "12345678.9", false},
		{"en dash negative", "–5.00", "-5", true},
		{"ocr S for 5", "S0.25", "50.25", false},
		{"ocr B for 8", "B.99", "8.99", false},
		{"ocr l for 1", "l2.00", "12", false},
		{"ocr O for 0", "1O.50", "10.5", false},
		{"multiple decimal points keep first", "12.3.4", "12.34", false},
		{"whitespace inside", "1 234.56", "1234.56", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Parse(tt.raw)
			expected, err := decimal.NewFromString(tt.expected)
			require.NoError(t, err)
			assert.True(t, expected.Equal(got.Decimal()),
				"parse %q: expected %s, got %s", tt.raw, expected, got.Decimal())
			assert.Equal(t, tt.negative, got.IsNegative())
		})
	}
}

func TestAmountParser_Parse_SignedZero(t *testing.T) {
	p := testAmountParser()

	got := p.Parse("-0")
	assert.True(t, got.IsZero())
	assert.True(t, got.IsNegative(), "literal -0 must keep its negative marker")

	positive := p.Parse("0")
	assert.True(t, positive.IsZero())
	assert.False(t, positive.IsNegative())
}

func TestAmountParser_Parse_Unrecoverable(t *testing.T) {
	p := testAmountParser()

	t.Run("empty", func(t *testing.T) {
		assert.True(t, p.Parse("").IsZero())
	})

	t.Run("whitespace only", func(t *testing.T) {
		assert.True(t, p.Parse("   ").IsZero())
	})

	t.Run("no digits", func(t *testing.T) {
		got := p.Parse("TOTAL DUE")
		assert.True(t, got.IsZero())
	})

	t.Run("out of range is zero not clamped", func(t *testing.T) {
		got := p.Parse("9,999,999.00")
		assert.True(t, got.IsZero())
	})
}

func TestAmountParser_RoundTrip(t *testing.T) {
	p := testAmountParser()

	// parseAmount(formatUS(x)) == x and parseAmount(formatEU(x)) == x
	values := []string{"0.01", "1.5", "999.99", "1234.56", "12345.67", "-1234.56"}
	for _, v := range values {
		d, err := decimal.NewFromString(v)
		require.NoError(t, err)

		us := formatUS(d)
		eu := formatEU(d)

		assert.True(t, d.Equal(p.Parse(us).Decimal()), "US round-trip for %s via %q", v, us)
		assert.True(t, d.Equal(p.Parse(eu).Decimal()), "EU round-trip for %s via %q", v, eu)
	}
}

func formatUS(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	s = groupThousands(s, ",")
	if d.Sign() < 0 {
		return "-" + s
	}
	return s
}

func formatEU(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart := s[:len(s)-3]
	frac := s[len(s)-2:]
	grouped := groupThousands(intPart+".00", ".")
	grouped = grouped[:len(grouped)-3]
	if d.Sign() < 0 {
		return "-" + grouped + "," + frac
	}
	return grouped + "," + frac
}

func groupThousands(fixed string, sep string) string {
	intPart := fixed[:len(fixed)-3]
	frac := fixed[len(fixed)-3:]
	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)
	out := ""
	for i, g := range groups {
		if i > 0 {
			out += sep
		}
		out += g
	}
	return out + frac
}
