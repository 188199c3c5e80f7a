package tax_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cupcakehq/pos/internal/tax"
)

func TestCanonicalLine(t *testing.T) {
	line := tax.CanonicalLine("20250101_0001", "Lemon_01", "9.99", "3", "28.47")
	require.Equal(t, "20250101_0001,Lemon_01,9.99,3,28.47", line)
}

func TestChecksumWorkedExample(t *testing.T) {
	// 1 uppercase + 4 lowercase + 24 digits/periods.
	line := tax.CanonicalLine("20250101_0001", "Lemon_01", "9.99", "3", "28.47")
	require.Equal(t, 29, tax.Checksum(line))
}

func TestChecksumDeterministic(t *testing.T) {
	line := tax.CanonicalLine("20250101_0002", "Choc_05", "3.10", "2", "6.20")
	first := tax.Checksum(line)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, tax.Checksum(line))
	}
}

func TestChecksumCharacterClasses(t *testing.T) {
	require.Zero(t, tax.Checksum(""))
	require.Zero(t, tax.Checksum(",,_-| "))
	require.Equal(t, 3, tax.Checksum("A.b"))
	require.Equal(t, 4, tax.Checksum("12.3"))
}
