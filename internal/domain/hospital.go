package domain

// TriageCategory identifies a clinical urgency tier. IV_V merges the two
// least urgent official tiers into one reporting bucket.
type TriageCategory string

const (
	TriageI   TriageCategory = "I"
	TriageII  TriageCategory = "II"
	TriageIII TriageCategory = "III"
	TriageIVV TriageCategory = "IV_V"
)

// TriageCategories lists every category in reporting order.
var TriageCategories = []TriageCategory{TriageI, TriageII, TriageIII, TriageIVV}

// WaitStatus is the severity band derived from a minute count.
type WaitStatus string

const (
	WaitShort    WaitStatus = "short"
	WaitModerate WaitStatus = "moderate"
	WaitLong     WaitStatus = "long"
	WaitUnknown  WaitStatus = "unknown"
)

// MetricTag names the raw feed field that produced a triage entry.
type MetricTag string

const (
	MetricT1WT   MetricTag = "t1wt"
	MetricT2WT   MetricTag = "t2wt"
	MetricT3P50  MetricTag = "t3p50"
	MetricT45P50 MetricTag = "t45p50"
)

// UnavailableText is the display sentinel for a missing wait time.
const UnavailableText = "-"

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// TriageWaitingTime is the normalized wait-time entry for one triage category.
// WaitingMinutes is nil exactly when WaitStatus is WaitUnknown.
type TriageWaitingTime struct {
	WaitingTimeText      string      `json:"waitingTimeText"`
	WaitingMinutes       *int        `json:"waitingMinutes"`
	WaitStatus           WaitStatus  `json:"waitStatus"`
	UpperBoundText       *string     `json:"upperBoundText,omitempty"`
	UpperBoundMinutes    *int        `json:"upperBoundMinutes,omitempty"`
	UpperBoundWaitStatus *WaitStatus `json:"upperBoundWaitStatus,omitempty"`
	MetricUsed           MetricTag   `json:"metricUsed"`
}

// LocalizedDetails holds translated display fields for one language.
type LocalizedDetails struct {
	HospitalName string `json:"hospitalName,omitempty" yaml:"name,omitempty"`
	District     string `json:"district,omitempty" yaml:"district,omitempty"`
	Address      string `json:"address,omitempty" yaml:"address,omitempty"`
}

// Phone is a display string plus an optional tel: link.
type Phone struct {
	Display  string  `json:"display"`
	DialHref *string `json:"dialHref"`
}

// HospitalDetails is the static reference data merged into every record.
type HospitalDetails struct {
	Cluster   string                        `json:"cluster"`
	District  string                        `json:"district"`
	Address   string                        `json:"address"`
	Location  *Coordinate                   `json:"location,omitempty"`
	Localized map[Language]LocalizedDetails `json:"localized,omitempty"`
	Phone     Phone                         `json:"phone"`
	MapsURL   string                        `json:"mapsUrl"`

	// LocationSource records where Location came from: "directory",
	// "geocoded", "failed" or empty when no lookup was attempted.
	LocationSource string `json:"locationSource,omitempty"`
}

// HospitalWaitingTime is the canonical per-hospital record produced by one
// fetch cycle. Records are values; every transformation returns new slices.
type HospitalWaitingTime struct {
	HospitalName string                               `json:"hospitalName"`
	UpdateTime   string                               `json:"updateTime"`
	Triage       map[TriageCategory]TriageWaitingTime `json:"triage"`
	Details      HospitalDetails                      `json:"details"`
	DistanceKm   *float64                             `json:"distanceKm,omitempty"`
}

// clone copies the record deeply enough that callers may replace the triage
// map entries without touching the original.
func (h HospitalWaitingTime) clone() HospitalWaitingTime {
	triage := make(map[TriageCategory]TriageWaitingTime, len(h.Triage))
	for k, v := range h.Triage {
		triage[k] = v
	}
	h.Triage = triage
	return h
}

// ParseTriageCategory validates a category tag.
func ParseTriageCategory(s string) (TriageCategory, bool) {
	for _, c := range TriageCategories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}
