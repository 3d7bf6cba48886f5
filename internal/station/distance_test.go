package station

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		delta                  float64
	}{
		{
			name: "same point",
			lat1: 48.11, lon1: -1.68, lat2: 48.11, lon2: -1.68,
			want: 0, delta: 0,
		},
		{
			name: "one degree of longitude on the equator",
			lat1: 0, lon1: 0, lat2: 0, lon2: 1,
			want: 111.1949, delta: 0.001,
		},
		{
			name: "one degree of latitude",
			lat1: 0, lon1: 0, lat2: 1, lon2: 0,
			want: 111.1949, delta: 0.001,
		},
		{
			name: "Paris to London",
			lat1: 48.8566, lon1: 2.3522, lat2: 51.5074, lon2: -0.1278,
			want: 343.556, delta: 0.01,
		},
		{
			name: "Rennes to Vannes",
			lat1: 48.11, lon1: -1.68, lat2: 47.66, lon2: -2.76,
			want: 94.8126, delta: 0.001,
		},
		{
			name: "Rennes to Brest",
			lat1: 48.11, lon1: -1.68, lat2: 48.39, lon2: -4.49,
			want: 210.3641, delta: 0.001,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := DistanceKm(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.want, got, tt.delta)
		})
	}
}

func TestDistanceKmSymmetry(t *testing.T) {
	t.Parallel()

	points := [][2]float64{
		{48.11, -1.68},
		{48.39, -4.49},
		{47.66, -2.76},
		{-33.8688, 151.2093},
		{89.9, 179.9},
		{-89.9, -179.9},
	}

	for _, a := range points {
		assert.Equal(t, 0.0, DistanceKm(a[0], a[1], a[0], a[1]))
		for _, b := range points {
			assert.Equal(t, DistanceKm(a[0], a[1], b[0], b[1]), DistanceKm(b[0], b[1], a[0], a[1]))
		}
	}
}
