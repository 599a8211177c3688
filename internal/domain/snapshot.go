package domain

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is one successful refresh: the normalized, geocoded hospital
// list plus when it was fetched. Snapshots are immutable once built.
type Snapshot struct {
	ID         uuid.UUID             `json:"snapshotId"`
	FetchedAt  time.Time             `json:"fetchedAt"`
	UpdateTime string                `json:"updateTime"`
	Hospitals  []HospitalWaitingTime `json:"hospitals"`
}

// NewSnapshot stamps records with a fresh ID. The source update time is
// taken from the first hospital, which is what the board displays.
func NewSnapshot(records []HospitalWaitingTime, fetchedAt time.Time) Snapshot {
	s := Snapshot{
		ID:        uuid.New(),
		FetchedAt: fetchedAt,
		Hospitals: records,
	}
	if len(records) > 0 {
		s.UpdateTime = records[0].UpdateTime
	}
	return s
}

// IsStale reports whether the snapshot's source update time is older than
// threshold at now.
func (s Snapshot) IsStale(threshold time.Duration, now time.Time) bool {
	return IsSourceDataStale(s.UpdateTime, threshold, now)
}

// HasUnknownWait reports whether any triage entry of any hospital has no
// parseable wait time.
func (s Snapshot) HasUnknownWait() bool {
	for _, h := range s.Hospitals {
		for _, t := range h.Triage {
			if t.WaitStatus == WaitUnknown {
				return true
			}
		}
	}
	return false
}
