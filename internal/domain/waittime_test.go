package domain

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseWaitingMinutes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *int
	}{
		{"empty", "", nil},
		{"whitespace", "   ", nil},
		{"dash sentinel", "-", nil},
		{"n/a upper case", "N/A", nil},
		{"na", "na", nil},
		{"bare digits", "45", intPtr(45)},
		{"bare digits padded", " 120 ", intPtr(120)},
		{"bare digits overflow saturates", "99999999999999999999999", intPtr(math.MaxInt)},
		{"minutes", "45 minutes", intPtr(45)},
		{"single minute", "1 minute", intPtr(1)},
		{"hours and minutes", "1 hour 30 minutes", intPtr(90)},
		{"hours and minutes mixed case", "2 Hours 15 Minutes", intPtr(135)},
		{"decimal hours", "1.5 hours", intPtr(90)},
		{"half hour", "0.5 hours", intPtr(30)},
		{"whole hours", "3 hours", intPtr(180)},
		{"over hours", "over 8 hours", intPtr(480)},
		{"over one hour", "Over 1 hour", intPtr(60)},
		{"less than one hour", "less than 1 hour", intPtr(59)},
		{"less than zero hours floors at zero", "less than 0 hours", intPtr(0)},
		{"less than minutes uses minute component", "less than 15 minutes", intPtr(15)},
		{"unknown phrase", "managing multiple resuscitation cases", nil},
		{"chinese text", "少於 1 小時", nil},
		{"digits with suffix", "45m", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseWaitingMinutes(tt.text))
		})
	}
}

func TestParseWaitingMinutes_MinutePhrases(t *testing.T) {
	for _, n := range []int{0, 1, 5, 15, 59, 61, 240} {
		got := ParseWaitingMinutes(fmt.Sprintf("%d minutes", n))
		if assert.NotNil(t, got, "minutes %d", n) {
			assert.Equal(t, n, *got)
		}
	}
}

func TestDeriveWaitStatus(t *testing.T) {
	tests := []struct {
		minutes *int
		want    WaitStatus
	}{
		{nil, WaitUnknown},
		{intPtr(0), WaitShort},
		{intPtr(30), WaitShort},
		{intPtr(59), WaitShort},
		{intPtr(60), WaitModerate},
		{intPtr(90), WaitModerate},
		{intPtr(119), WaitModerate},
		{intPtr(120), WaitLong},
		{intPtr(480), WaitLong},
		{ParseWaitingMinutes("99999999999999999999999"), WaitLong},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DeriveWaitStatus(tt.minutes), "minutes %v", tt.minutes)
	}
}

func TestWaitThresholds_Classify_Custom(t *testing.T) {
	th := WaitThresholds{ShortMaxExclusive: 30, ModerateMaxExclusive: 90}

	assert.Equal(t, WaitShort, th.Classify(intPtr(29)))
	assert.Equal(t, WaitModerate, th.Classify(intPtr(30)))
	assert.Equal(t, WaitLong, th.Classify(intPtr(90)))
	assert.Equal(t, WaitUnknown, th.Classify(nil))
}

func TestDeriveWaitStatusFromText(t *testing.T) {
	assert.Equal(t, WaitLong, DeriveWaitStatusFromText("over 3 hours", WaitUnknown))
	assert.Equal(t, WaitModerate, DeriveWaitStatusFromText("1 hour 15 minutes", WaitShort))
	assert.Equal(t, WaitShort, DeriveWaitStatusFromText("garbled", WaitShort))
	assert.Equal(t, WaitUnknown, DeriveWaitStatusFromText("-", WaitUnknown))
}
