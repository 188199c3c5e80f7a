package tax

import (
	"strings"
	"unicode"
)

// CanonicalLine joins the five reportable fields of one transaction line in
// the fixed audit order. Checksums are derived from this exact string and
// nothing else, so auditors can re-derive them independently.
func CanonicalLine(billNumber, itemCode, salePrice, quantity, lineTotal string) string {
	return strings.Join([]string{billNumber, itemCode, salePrice, quantity, lineTotal}, ",")
}

// Checksum is the structural fingerprint of a canonical transaction line:
// the count of uppercase letters, plus lowercase letters, plus characters
// that are decimal digits or the literal decimal point. It is tamper
// evidence, not cryptography.
func Checksum(line string) int {
	count := 0
	for _, r := range line {
		switch {
		case unicode.IsUpper(r):
			count++
		case unicode.IsLower(r):
			count++
		case unicode.IsDigit(r) || r == '.':
			count++
		}
	}
	return count
}
