package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_WholeNumber(t *testing.T) {
	result, err := Parse("123")
	require.NoError(t, err)
	assert.Equal(t, Cents(12300), result)
}

func TestParse_WithDecimals(t *testing.T) {
	result, err := Parse("123.45")
	require.NoError(t, err)
	assert.Equal(t, Cents(12345), result)
}

func TestParse_SingleDecimalDigit(t *testing.T) {
	result, err := Parse("0.5")
	require.NoError(t, err)
	assert.Equal(t, Cents(50), result)
}

func TestParse_Negative(t *testing.T) {
	result, err := Parse("-12.30")
	require.NoError(t, err)
	assert.Equal(t, Cents(-1230), result)
}

func TestParse_TruncatesExtraDigits(t *testing.T) {
	result, err := Parse("33.339")
	require.NoError(t, err)
	assert.Equal(t, Cents(3333), result)
}

func TestParse_LeadingDot(t *testing.T) {
	result, err := Parse(".25")
	require.NoError(t, err)
	assert.Equal(t, Cents(25), result)
}

func TestParse_Zero(t *testing.T) {
	result, err := Parse("0")
	require.NoError(t, err)
	assert.Equal(t, Cents(0), result)
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse("")
	assert.Error(t, err)
}

func TestParse_Garbage(t *testing.T) {
	_, err := Parse("12.3.4")
	assert.Error(t, err)
}

func TestParse_RejectsNonDigits(t *testing.T) {
	for _, input := range []string{"--5", "+-5", "-", "+", ".", "-.", "1-2", "12a.50", "12,50", " - 5"} {
		_, err := Parse(input)
		assert.Error(t, err, "input %q", input)
	}

	_, err := Parse("abc")
	assert.Error(t, err)
}

func TestString_RoundTrip(t *testing.T) {
	tests := []struct {
		cents Cents
		want  string
	}{
		{12345, "123.45"},
		{-50, "-0.50"},
		{0, "0.00"},
		{100, "1.00"},
		{5, "0.05"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.cents.String())
	}
}

func TestSplit_EvenDivision(t *testing.T) {
	shares, err := Split(Cents(9000), 3)
	require.NoError(t, err)
	assert.Equal(t, []Cents{3000, 3000, 3000}, shares)
}

func TestSplit_RemainderOnFirst(t *testing.T) {
	// 100.00 in 3 → [33.34, 33.33, 33.33]
	shares, err := Split(Cents(10000), 3)
	require.NoError(t, err)
	assert.Equal(t, []Cents{3334, 3333, 3333}, shares)
}

func TestSplit_SingleShare(t *testing.T) {
	shares, err := Split(Cents(777), 1)
	require.NoError(t, err)
	assert.Equal(t, []Cents{777}, shares)
}

func TestSplit_NegativeTotal(t *testing.T) {
	shares, err := Split(Cents(-10000), 3)
	require.NoError(t, err)
	assert.Equal(t, Cents(-10000), Sum(shares))
}

func TestSplit_InvalidCount(t *testing.T) {
	_, err := Split(Cents(100), 0)
	assert.Error(t, err)
}

// Sum of shares must equal the total exactly for every count in [1, 48].
func TestSplit_SumInvariant(t *testing.T) {
	totals := []Cents{10000, 9999, 1, 12345678, -10001, 333}
	for _, total := range totals {
		for n := 1; n <= 48; n++ {
			shares, err := Split(total, n)
			require.NoError(t, err)
			require.Len(t, shares, n)
			assert.Equal(t, total, Sum(shares), "total=%d n=%d", total, n)
		}
	}
}
