package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Wait-time text patterns emitted by the feed. Matching runs on trimmed,
// lower-cased text and none of the patterns are anchored except the digit rule.
var (
	// "45" -> 45 minutes.
	directMinutesPattern = regexp.MustCompile(`^\d+$`)

	// "less than 1 hour" -> one minute under the bound.
	lessThanHourPattern = regexp.MustCompile(`less than\s+(\d+)\s*hour`)

	// "over 8 hours" -> the stated bound.
	overHourPattern = regexp.MustCompile(`over\s+(\d+)\s*hour`)

	// "1.5 hours", "1 hour 30 minutes".
	hourComponentPattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*hour`)
	minuteComponentPattern = regexp.MustCompile(`(\d+)\s*minute`)
)

// WaitThresholds are the exclusive upper bounds of the short and moderate
// bands. Anything at or above ModerateMaxExclusive is long.
type WaitThresholds struct {
	ShortMaxExclusive    int
	ModerateMaxExclusive int
}

// DefaultWaitThresholds classifies under an hour as short and under two
// hours as moderate.
var DefaultWaitThresholds = WaitThresholds{
	ShortMaxExclusive:    60,
	ModerateMaxExclusive: 120,
}

// Classify maps a minute count to its severity band.
func (t WaitThresholds) Classify(minutes *int) WaitStatus {
	switch {
	case minutes == nil:
		return WaitUnknown
	case *minutes < t.ShortMaxExclusive:
		return WaitShort
	case *minutes < t.ModerateMaxExclusive:
		return WaitModerate
	default:
		return WaitLong
	}
}

// ClassifyText parses text and classifies it, returning fallback when the
// text carries no parseable duration.
func (t WaitThresholds) ClassifyText(text string, fallback WaitStatus) WaitStatus {
	minutes := ParseWaitingMinutes(text)
	if minutes == nil {
		return fallback
	}
	return t.Classify(minutes)
}

// DeriveWaitStatus classifies minutes with DefaultWaitThresholds.
func DeriveWaitStatus(minutes *int) WaitStatus {
	return DefaultWaitThresholds.Classify(minutes)
}

// DeriveWaitStatusFromText classifies a wait-time string with
// DefaultWaitThresholds. Upper-bound text is displayed without a stored
// status, so it is re-derived here with the caller's fallback.
func DeriveWaitStatusFromText(text string, fallback WaitStatus) WaitStatus {
	return DefaultWaitThresholds.ClassifyText(text, fallback)
}

// ParseWaitingMinutes converts a feed wait-time string into minutes.
// It returns nil when the text is a missing-value token or matches none of
// the known phrasings. The first matching rule wins.
func ParseWaitingMinutes(text string) *int {
	normalized := strings.ToLower(strings.TrimSpace(text))

	if isMissingWaitToken(normalized) {
		return nil
	}

	if directMinutesPattern.MatchString(normalized) {
		n, err := strconv.Atoi(normalized)
		if err != nil {
			// Only overflow gets here. Saturate so the value still reads as long.
			return intPtr(math.MaxInt)
		}
		return &n
	}

	if m := lessThanHourPattern.FindStringSubmatch(normalized); m != nil {
		hours, err := strconv.Atoi(m[1])
		if err != nil {
			return nil
		}
		return intPtr(max(hours*60-1, 0))
	}

	if m := overHourPattern.FindStringSubmatch(normalized); m != nil {
		hours, err := strconv.Atoi(m[1])
		if err != nil {
			return nil
		}
		return intPtr(hours * 60)
	}

	total, matched := 0, false
	if m := hourComponentPattern.FindStringSubmatch(normalized); m != nil {
		if hours, err := strconv.ParseFloat(m[1], 64); err == nil {
			total += int(math.Round(hours * 60))
			matched = true
		}
	}
	if m := minuteComponentPattern.FindStringSubmatch(normalized); m != nil {
		if minutes, err := strconv.Atoi(m[1]); err == nil {
			total += minutes
			matched = true
		}
	}
	if matched {
		return &total
	}

	return nil
}

func isMissingWaitToken(normalized string) bool {
	switch normalized {
	case "", UnavailableText, "n/a", "na":
		return true
	}
	return false
}

func intPtr(n int) *int { return &n }
