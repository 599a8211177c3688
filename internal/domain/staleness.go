package domain

import (
	"strings"
	"time"
)

// DefaultStaleAfter is how old a source timestamp may be before the data is
// flagged as stale.
const DefaultStaleAfter = 30 * time.Minute

// hongKongTime is used for feed timestamps that carry no offset. Hong Kong
// does not observe daylight saving.
var hongKongTime = time.FixedZone("HKT", 8*60*60)

// timestampLayouts are tried in order. The first group carries its own
// offset; the rest are interpreted in Hong Kong time.
var (
	zonedTimestampLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04Z07:00",
	}
	localTimestampLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2/1/2006 3:04pm",
		"2/1/2006 3:04PM",
		"2/1/2006 15:04",
	}
)

// ParseSourceTimestamp parses a feed update timestamp. Date-only values are
// treated as UTC midnight.
//
// The feed's own "d/m/yyyy h:mmam" form is parsed here as Hong Kong time, so
// such timestamps take part in staleness checks. A parser that only accepts
// ISO-8601 would reject that form and never flag it stale.
func ParseSourceTimestamp(text string) (time.Time, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range zonedTimestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localTimestampLayouts {
		if t, err := time.ParseInLocation(layout, s, hongKongTime); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// IsSourceDataStale reports whether the timestamp is strictly older than
// threshold at now. Blank, unparseable and future timestamps are never stale.
func IsSourceDataStale(timestamp string, threshold time.Duration, now time.Time) bool {
	parsed, ok := ParseSourceTimestamp(timestamp)
	if !ok {
		return false
	}
	age := now.Sub(parsed)
	if age < 0 {
		return false
	}
	return age > threshold
}

// IsSourceDataStaleNow applies IsSourceDataStale against the package clock.
func IsSourceDataStaleNow(timestamp string, threshold time.Duration) bool {
	return IsSourceDataStale(timestamp, threshold, clock.Now())
}
