package bill_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cupcakehq/pos/internal/bill"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("20060102", value)
	require.NoError(t, err)
	return parsed
}

func TestNextNumberFirstOfDay(t *testing.T) {
	require.Equal(t, "20250101_0001", bill.NextNumber(day(t, "20250101"), nil))
}

func TestNextNumberIsMaxBased(t *testing.T) {
	existing := []string{"20250101_0001", "20250101_0003"}
	require.Equal(t, "20250101_0004", bill.NextNumber(day(t, "20250101"), existing))
}

func TestNextNumberIgnoresOtherDays(t *testing.T) {
	existing := []string{"20241231_0009", "20250101_0002"}
	require.Equal(t, "20250101_0003", bill.NextNumber(day(t, "20250101"), existing))
	require.Equal(t, "20250102_0001", bill.NextNumber(day(t, "20250102"), existing))
}

func TestNextNumberSkipsForeignNames(t *testing.T) {
	existing := []string{
		"notes",
		"20250101-0007",
		"2025_0008",
		"20250101_",
		"20250101_0002",
	}
	require.Equal(t, "20250101_0003", bill.NextNumber(day(t, "20250101"), existing))
}

func TestNextNumberStrictlyIncreasing(t *testing.T) {
	today := day(t, "20250601")
	var existing []string
	prev := ""
	for i := 0; i < 12; i++ {
		next := bill.NextNumber(today, existing)
		require.Greater(t, next, prev)
		existing = append(existing, next)
		prev = next
	}
	require.Equal(t, "20250601_0012", prev)
}

func TestValidNumber(t *testing.T) {
	require.True(t, bill.ValidNumber("20250101_0001"))
	require.True(t, bill.ValidNumber("20250101_123"))
	require.False(t, bill.ValidNumber("tax_20250101_0001"))
	require.False(t, bill.ValidNumber("20250101"))
	require.False(t, bill.ValidNumber("20250101_00a1"))
}
