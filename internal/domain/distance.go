package domain

import (
	"fmt"
	"math"
	"strconv"
)

const earthRadiusKm = 6371

// HaversineDistanceKm returns the great-circle distance between two points
// on a sphere of radius 6371 km.
func HaversineDistanceKm(origin, destination Coordinate) float64 {
	latDelta := toRadians(destination.Lat - origin.Lat)
	lngDelta := toRadians(destination.Lng - origin.Lng)
	latOrigin := toRadians(origin.Lat)
	latDestination := toRadians(destination.Lat)

	chord := math.Sin(latDelta/2)*math.Sin(latDelta/2) +
		math.Cos(latOrigin)*math.Cos(latDestination)*math.Sin(lngDelta/2)*math.Sin(lngDelta/2)

	angular := 2 * math.Atan2(math.Sqrt(chord), math.Sqrt(1-chord))

	return earthRadiusKm * angular
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// FormatDistanceKm renders a distance for display: one decimal place below
// 10 km, whole kilometres from 10 km up.
func FormatDistanceKm(km float64, lang Language) string {
	var rounded string
	if km < 10 {
		rounded = strconv.FormatFloat(km, 'f', 1, 64)
	} else {
		rounded = strconv.FormatFloat(math.Floor(km+0.5), 'f', 0, 64)
	}

	if lang == LanguageZhHK {
		return fmt.Sprintf("距離：%s 公里", rounded)
	}
	return fmt.Sprintf("Distance: %s km", rounded)
}

// distanceFrom resolves the distance used for nearest-first ordering: the
// precomputed DistanceKm if set, otherwise computed when both ends are known.
func distanceFrom(h HospitalWaitingTime, user *Coordinate) (float64, bool) {
	if h.DistanceKm != nil {
		return *h.DistanceKm, true
	}
	if user == nil || h.Details.Location == nil {
		return 0, false
	}
	return HaversineDistanceKm(*user, *h.Details.Location), true
}

// WithDistances returns copies of records with DistanceKm set from the user
// location, or cleared where it cannot be computed.
func WithDistances(records []HospitalWaitingTime, user *Coordinate) []HospitalWaitingTime {
	out := make([]HospitalWaitingTime, len(records))
	for i, h := range records {
		h.DistanceKm = nil
		if user != nil && h.Details.Location != nil {
			d := HaversineDistanceKm(*user, *h.Details.Location)
			h.DistanceKm = &d
		}
		out[i] = h
	}
	return out
}
