package domain

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortMode selects the ordering applied by SortHospitals.
type SortMode string

const (
	SortWaiting SortMode = "waiting"
	SortName    SortMode = "name"
	SortNearest SortMode = "nearest"
)

// ParseSortMode validates a sort mode. Empty means SortWaiting.
func ParseSortMode(s string) (SortMode, bool) {
	switch SortMode(s) {
	case "", SortWaiting:
		return SortWaiting, true
	case SortName, SortNearest:
		return SortMode(s), true
	}
	return "", false
}

// SortHospitals returns a new slice ordered by mode, comparing names with
// English collation. The input is not modified.
func SortHospitals(records []HospitalWaitingTime, mode SortMode, category TriageCategory, user *Coordinate) []HospitalWaitingTime {
	return SortHospitalsForLanguage(records, mode, category, user, LanguageEnglish)
}

// SortHospitalsForLanguage is SortHospitals with names collated for lang.
//
//   - name: collated hospital name.
//   - waiting: ascending minutes for category; unknown waits last; ties by name.
//   - nearest: ascending distance; records without a distance last; equal
//     distances and the no-distance group fall back to the waiting order.
//
// The sort is stable.
func SortHospitalsForLanguage(records []HospitalWaitingTime, mode SortMode, category TriageCategory, user *Coordinate, lang Language) []HospitalWaitingTime {
	s := &sorter{
		collator: collate.New(collationTag(lang)),
		category: category,
		user:     user,
	}

	out := slices.Clone(records)
	switch mode {
	case SortName:
		slices.SortStableFunc(out, s.compareByName)
	case SortNearest:
		slices.SortStableFunc(out, s.compareByDistance)
	default:
		slices.SortStableFunc(out, s.compareByWaiting)
	}
	return out
}

// sorter carries per-call state. collate.Collator is not safe for
// concurrent use, so each call builds its own.
type sorter struct {
	collator *collate.Collator
	category TriageCategory
	user     *Coordinate
}

func (s *sorter) compareByName(a, b HospitalWaitingTime) int {
	return s.collator.CompareString(a.HospitalName, b.HospitalName)
}

func (s *sorter) compareByWaiting(a, b HospitalWaitingTime) int {
	am := a.Triage[s.category].WaitingMinutes
	bm := b.Triage[s.category].WaitingMinutes

	switch {
	case am == nil && bm == nil:
		return s.compareByName(a, b)
	case am == nil:
		return 1
	case bm == nil:
		return -1
	case *am == *bm:
		return s.compareByName(a, b)
	case *am < *bm:
		return -1
	default:
		return 1
	}
}

func (s *sorter) compareByDistance(a, b HospitalWaitingTime) int {
	ad, aok := distanceFrom(a, s.user)
	bd, bok := distanceFrom(b, s.user)

	switch {
	case !aok && !bok:
		return s.compareByWaiting(a, b)
	case !aok:
		return 1
	case !bok:
		return -1
	case ad == bd:
		return s.compareByWaiting(a, b)
	case ad < bd:
		return -1
	default:
		return 1
	}
}

func collationTag(lang Language) language.Tag {
	if lang == LanguageZhHK {
		return language.MustParse("zh-HK")
	}
	return language.English
}
