package bill

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var numberPattern = regexp.MustCompile(`^(\d{8})_(\d+)$`)

// ValidNumber reports whether s parses as a bill number.
func ValidNumber(s string) bool {
	return numberPattern.MatchString(s)
}

// NextNumber derives the bill number for a new bill issued on day, given the
// keys already present in the bill store. The suffix is one past the highest
// suffix already used that day, so deleted bills never cause reuse. Keys that
// do not parse as bill numbers, or that belong to another day, are ignored:
// the store may accumulate files from other tools.
//
// The scan-then-increment scheme is not safe under concurrent issuance; the
// system assumes a single operator.
func NextNumber(day time.Time, existing []string) string {
	prefix := day.Format("20060102")
	latest := 0
	for _, key := range existing {
		m := numberPattern.FindStringSubmatch(key)
		if m == nil || m[1] != prefix {
			continue
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		if n > latest {
			latest = n
		}
	}
	return fmt.Sprintf("%s_%04d", prefix, latest+1)
}
