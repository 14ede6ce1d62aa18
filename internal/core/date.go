package core

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ISODate is the storage and display layout for expense dates.
const ISODate = "2006-01-02"

// ParseDate normalizes a free-text date field to ISO YYYY-MM-DD.
//
// An empty field defaults to now's calendar date. Anything else goes through
// a permissive parser that understands common layouts ("2024-01-01",
// "01/02/2024", "Jan 2 2024", ...). Returns ErrInvalidDate when the text is
// non-empty and unparsable.
func ParseDate(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.Format(ISODate), nil
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return "", ErrInvalidDate
	}
	return t.Format(ISODate), nil
}
