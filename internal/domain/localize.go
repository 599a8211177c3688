package domain

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Language selects the display language for localized output.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageZhHK    Language = "zh-HK"
)

// ParseLanguage accepts "en" and "zh-HK" (case-insensitive). Empty means English.
func ParseLanguage(s string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "en":
		return LanguageEnglish, true
	case "zh-hk":
		return LanguageZhHK, true
	}
	return "", false
}

var (
	cjkPattern = regexp.MustCompile(`[\x{3400}-\x{9FFF}]`)

	resuscitationPattern = regexp.MustCompile(`(?i)^managing multiple resuscitation cases\.?$`)

	localLessThanHourPattern   = regexp.MustCompile(`^less than\s+(\d+(?:\.\d+)?)\s*hours?$`)
	localLessThanMinutePattern = regexp.MustCompile(`^less than\s+(\d+)\s*minutes?$`)
	localOverHourPattern       = regexp.MustCompile(`^over\s+(\d+(?:\.\d+)?)\s*hours?$`)
	localHourPattern           = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*hours?`)
	localMinutePattern         = regexp.MustCompile(`(\d+)\s*minutes?`)
)

// LocalizeWaitTimeText renders canonical feed wait text in lang. English
// returns the input. Text that already contains CJK characters, or that
// matches no known phrasing, is returned trimmed and unchanged.
func LocalizeWaitTimeText(text string, lang Language) string {
	if lang != LanguageZhHK {
		return text
	}

	original := strings.TrimSpace(text)
	if cjkPattern.MatchString(original) {
		return original
	}

	normalized := strings.ToLower(original)
	if isMissingWaitToken(normalized) {
		return "未有資料"
	}
	if resuscitationPattern.MatchString(original) {
		return "多名病人正在搶救中"
	}
	if m := localLessThanHourPattern.FindStringSubmatch(normalized); m != nil {
		return fmt.Sprintf("少於 %s 小時", m[1])
	}
	if m := localLessThanMinutePattern.FindStringSubmatch(normalized); m != nil {
		return fmt.Sprintf("少於 %s 分鐘", m[1])
	}
	if m := localOverHourPattern.FindStringSubmatch(normalized); m != nil {
		return fmt.Sprintf("超過 %s 小時", m[1])
	}

	hour := localHourPattern.FindStringSubmatch(normalized)
	minute := localMinutePattern.FindStringSubmatch(normalized)
	switch {
	case hour != nil && minute != nil:
		return fmt.Sprintf("%s 小時 %s 分鐘", hour[1], minute[1])
	case hour != nil:
		return fmt.Sprintf("%s 小時", hour[1])
	case minute != nil:
		return fmt.Sprintf("%s 分鐘", minute[1])
	}
	return original
}

// LocalizeHospitals returns display copies of records in lang: translated
// name, district and address where the directory has them, and localized
// wait text. Minutes and statuses are carried over from the canonical
// record and never re-parsed from localized text.
func LocalizeHospitals(records []HospitalWaitingTime, lang Language) []HospitalWaitingTime {
	if lang != LanguageZhHK {
		return slices.Clone(records)
	}

	out := make([]HospitalWaitingTime, len(records))
	for i, h := range records {
		h = h.clone()
		if loc, ok := h.Details.Localized[lang]; ok {
			if loc.HospitalName != "" {
				h.HospitalName = loc.HospitalName
			}
			if loc.District != "" {
				h.Details.District = loc.District
			}
			if loc.Address != "" {
				h.Details.Address = loc.Address
			}
		}
		for cat, entry := range h.Triage {
			entry.WaitingTimeText = LocalizeWaitTimeText(entry.WaitingTimeText, lang)
			if entry.UpperBoundText != nil {
				upper := LocalizeWaitTimeText(*entry.UpperBoundText, lang)
				entry.UpperBoundText = &upper
			}
			h.Triage[cat] = entry
		}
		out[i] = h
	}
	return out
}
