package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	queenMary = Coordinate{Lat: 22.2702, Lng: 114.1316}
	alice     = Coordinate{Lat: 22.4501, Lng: 114.1694}
	pamelaYou = Coordinate{Lat: 22.2696, Lng: 114.2369}
)

func TestHaversineDistanceKm(t *testing.T) {
	t.Run("same point", func(t *testing.T) {
		for _, p := range []Coordinate{queenMary, alice, {}, {Lat: -33.86, Lng: 151.2}} {
			assert.InDelta(t, 0, HaversineDistanceKm(p, p), 1e-9)
		}
	})

	t.Run("known hong kong pair", func(t *testing.T) {
		d := HaversineDistanceKm(queenMary, Coordinate{Lat: 22.3121, Lng: 114.1748})
		assert.Greater(t, d, 5.0)
		assert.Less(t, d, 8.0)
	})

	t.Run("symmetric", func(t *testing.T) {
		assert.InDelta(t, HaversineDistanceKm(queenMary, alice), HaversineDistanceKm(alice, queenMary), 1e-9)
	})

	t.Run("antipodal", func(t *testing.T) {
		d := HaversineDistanceKm(Coordinate{Lat: 0, Lng: 0}, Coordinate{Lat: 0, Lng: 180})
		assert.InDelta(t, 20015.1, d, 0.1)
	})
}

func TestFormatDistanceKm(t *testing.T) {
	tests := []struct {
		name string
		km   float64
		lang Language
		want string
	}{
		{"one decimal below ten", 5.26, LanguageEnglish, "Distance: 5.3 km"},
		{"zero", 0, LanguageEnglish, "Distance: 0.0 km"},
		{"whole at ten", 10, LanguageEnglish, "Distance: 10 km"},
		{"rounds half up", 12.5, LanguageEnglish, "Distance: 13 km"},
		{"chinese", 3.04, LanguageZhHK, "距離：3.0 公里"},
		{"chinese whole", 21.4, LanguageZhHK, "距離：21 公里"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDistanceKm(tt.km, tt.lang))
		})
	}
}

func TestWithDistances(t *testing.T) {
	records := []HospitalWaitingTime{
		{HospitalName: "A", Details: HospitalDetails{Location: &queenMary}},
		{HospitalName: "B"},
	}
	user := Coordinate{Lat: 22.276, Lng: 114.175}

	got := WithDistances(records, &user)
	if assert.NotNil(t, got[0].DistanceKm) {
		assert.InDelta(t, HaversineDistanceKm(user, queenMary), *got[0].DistanceKm, 1e-9)
	}
	assert.Nil(t, got[1].DistanceKm)
	assert.Nil(t, records[0].DistanceKm, "input must not be modified")

	cleared := WithDistances(got, nil)
	assert.Nil(t, cleared[0].DistanceKm)
}
