package cleaning

import (
	"strings"
	"time"
)

// TimestampLayouts are tried in order and the first successful parse wins.
// Month-first layouts come before any day-first reading, so "3/4/21" is
// always March 4th.
var TimestampLayouts = []string{
	"2006-01-02 15:04:05",
	"1/2/06 15:04:05",
	"1/2/06 3:04 PM",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04:05 PM",
}

// ParseTimestamp parses a raw timestamp cell with TimestampLayouts.
// Times are returned in UTC with no zone conversion.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range TimestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
