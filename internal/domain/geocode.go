package domain

import (
	"context"
	"log/slog"
)

// GeocodeRegion scopes forward lookups for hospitals.
const GeocodeRegion = "Hong Kong"

// Location sources recorded on HospitalDetails.
const (
	LocationFromDirectory = "directory"
	LocationGeocoded      = "geocoded"
	LocationFailed        = "failed"
)

// EnrichWithGeocoding fills in coordinates for records whose details lack a
// location. Directory coordinates are never overridden. A nil geocoder or a
// failed lookup leaves the record usable without a location.
func EnrichWithGeocoding(ctx context.Context, records []HospitalWaitingTime, geocoder Geocoder, logger *slog.Logger) []HospitalWaitingTime {
	out := make([]HospitalWaitingTime, len(records))
	copy(out, records)
	if geocoder == nil {
		return out
	}

	for i := range out {
		h := &out[i]
		if h.Details.Location != nil {
			continue
		}

		result, err := geocoder.ForwardGeocode(ctx, h.HospitalName, GeocodeRegion)
		if err != nil {
			logger.Warn("forward geocoding failed",
				"hospital", h.HospitalName,
				"error", err,
			)
			h.Details.LocationSource = LocationFailed
			continue
		}
		if result.Lat == 0 && result.Lon == 0 {
			continue
		}

		h.Details.Location = &Coordinate{Lat: result.Lat, Lng: result.Lon}
		h.Details.LocationSource = LocationGeocoded
		if h.Details.Address == "" {
			h.Details.Address = result.FormattedAddress
		}
	}
	return out
}
