// Package core holds the domain model of the expense tracker: accounts,
// expense records, sessions, and the parsing rules applied to user input
// before anything reaches storage.
package core

import (
	"strconv"
	"strings"
)

// ParseAmount converts a free-text numeric field to a float64 amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and any
// sign: negative amounts are stored as entered and contribute with their sign
// to the ledger total. Returns ErrInvalidNumber for anything that does not
// parse as a plain decimal number.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidNumber
	}
	// A comma is accepted only as a decimal separator: exactly one, no dot,
	// and one or two digits after it. Thousands-separated input like "1,000"
	// is rejected rather than silently read as 1.
	if i := strings.IndexByte(s, ','); i >= 0 {
		frac := s[i+1:]
		if strings.Contains(s, ".") || strings.Contains(frac, ",") || len(frac) < 1 || len(frac) > 2 {
			return 0, ErrInvalidNumber
		}
		s = s[:i] + "." + frac
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidNumber
	}
	return v, nil
}
