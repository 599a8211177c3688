package domain

import (
	"errors"
	"strings"
)

// ErrNoValidRecords is returned when a batch normalizes to zero hospitals.
var ErrNoValidRecords = errors.New("no valid hospital records found")

// MetadataLookup resolves static hospital details by name. Implementations
// return a default record for names they do not know.
type MetadataLookup interface {
	Lookup(hospitalName string) HospitalDetails
}

// Normalizer maps raw feed records onto the canonical record.
type Normalizer struct {
	metadata   MetadataLookup
	thresholds WaitThresholds
}

// NewNormalizer creates a Normalizer. A nil lookup leaves details empty.
func NewNormalizer(metadata MetadataLookup, thresholds WaitThresholds) *Normalizer {
	return &Normalizer{metadata: metadata, thresholds: thresholds}
}

// ResolveHospitalName picks hospName over hospitalName and trims it.
// A present hospName wins even when it is blank.
func ResolveHospitalName(raw RawFeedRecord) string {
	if raw.HospName.Present {
		return strings.TrimSpace(raw.HospName.Value)
	}
	if raw.HospitalName.Present {
		return strings.TrimSpace(raw.HospitalName.Value)
	}
	return ""
}

// IsValidRecord reports whether the record has a usable hospital name.
func IsValidRecord(raw RawFeedRecord) bool {
	return ResolveHospitalName(raw) != ""
}

// CheckBatch rejects a normalized batch that holds no hospitals.
func CheckBatch(records []HospitalWaitingTime) error {
	if len(records) == 0 {
		return ErrNoValidRecords
	}
	return nil
}

// NormalizeRecord converts one raw record. It returns false for records
// that fail IsValidRecord.
func (n *Normalizer) NormalizeRecord(raw RawFeedRecord) (HospitalWaitingTime, bool) {
	if !IsValidRecord(raw) {
		return HospitalWaitingTime{}, false
	}
	name := ResolveHospitalName(raw)

	var details HospitalDetails
	if n.metadata != nil {
		details = n.metadata.Lookup(name)
	}

	return HospitalWaitingTime{
		HospitalName: name,
		UpdateTime:   raw.UpdateTime.Value,
		Details:      details,
		Triage: map[TriageCategory]TriageWaitingTime{
			TriageI:   n.pointEntry(raw.T1WT, MetricT1WT),
			TriageII:  n.pointEntry(raw.T2WT, MetricT2WT),
			TriageIII: n.rangeEntry(raw.T3P50, raw.T3P95, MetricT3P50),
			TriageIVV: n.rangeEntry(raw.T45P50, raw.T45P95, MetricT45P50),
		},
	}, true
}

// NormalizeBatch normalizes every valid record, applies the batch timestamp
// to records without their own, and fails when nothing survives.
func (n *Normalizer) NormalizeBatch(batch FeedBatch) ([]HospitalWaitingTime, error) {
	out := make([]HospitalWaitingTime, 0, len(batch.Records))
	for _, raw := range batch.Records {
		rec, ok := n.NormalizeRecord(raw)
		if !ok {
			continue
		}
		if rec.UpdateTime == "" {
			rec.UpdateTime = batch.UpdateTime
		}
		out = append(out, rec)
	}
	if err := CheckBatch(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (n *Normalizer) pointEntry(value FeedText, metric MetricTag) TriageWaitingTime {
	text := normalizeWaitText(value)
	minutes := ParseWaitingMinutes(text)
	return TriageWaitingTime{
		WaitingTimeText: text,
		WaitingMinutes:  minutes,
		WaitStatus:      n.thresholds.Classify(minutes),
		MetricUsed:      metric,
	}
}

func (n *Normalizer) rangeEntry(p50, p95 FeedText, metric MetricTag) TriageWaitingTime {
	entry := n.pointEntry(p50, metric)

	upper := normalizeWaitText(p95)
	if upper == UnavailableText {
		return entry
	}
	upperMinutes := ParseWaitingMinutes(upper)
	upperStatus := n.thresholds.Classify(upperMinutes)
	entry.UpperBoundText = &upper
	entry.UpperBoundMinutes = upperMinutes
	entry.UpperBoundWaitStatus = &upperStatus
	return entry
}

// normalizeWaitText trims a feed value and substitutes the "-" sentinel for
// absent or blank values.
func normalizeWaitText(value FeedText) string {
	text := strings.TrimSpace(value.Value)
	if !value.Present || text == "" {
		return UnavailableText
	}
	return text
}
