package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestHaversineSymmetric(t *testing.T) {
	points := [][2]float64{
		{19.4326, -99.1332},  // CDMX
		{20.6597, -103.3496}, // Guadalajara
		{25.6866, -100.3161}, // Monterrey
		{-33.8688, 151.2093},
		{0, 0},
	}

	for _, a := range points {
		assert.Equal(t, 0, DistanceM(a[0], a[1], a[0], a[1]))
		for _, b := range points {
			assert.Equal(t,
				DistanceM(a[0], a[1], b[0], b[1]),
				DistanceM(b[0], b[1], a[0], a[1]),
			)
		}
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// 赤道上 1 度经度约 111195 米
	assert.InDelta(t, 111195, DistanceM(0, 0, 0, 1), 1)
	// CDMX - Guadalajara 约 461 km
	assert.InDelta(t, 461000, DistanceM(19.4326, -99.1332, 20.6597, -103.3496), 3000)
}

func TestEvaluateMissingInputs(t *testing.T) {
	fence := &Fence{Latitude: 19.4326, Longitude: -99.1332, RadiusM: 150}

	cases := []struct {
		name  string
		lat   *float64
		lon   *float64
		fence *Fence
	}{
		{"nil latitude", nil, ptr(20), fence},
		{"nil longitude", ptr(19.4), nil, fence},
		{"nil fence", ptr(19.4), ptr(-99.1), nil},
		{"all nil", nil, nil, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, inside := Evaluate(tc.lat, tc.lon, tc.fence)
			assert.Nil(t, d)
			assert.False(t, inside)
		})
	}
}

func TestEvaluateZeroRadiusNeverInside(t *testing.T) {
	for _, r := range []int{0, -5} {
		fence := &Fence{Latitude: 19.4326, Longitude: -99.1332, RadiusM: r}

		d, inside := Evaluate(ptr(19.4326), ptr(-99.1332), fence)
		require.NotNil(t, d)
		assert.Equal(t, 0, *d)
		assert.False(t, inside)

		d, inside = Evaluate(ptr(19.44), ptr(-99.14), fence)
		require.NotNil(t, d)
		assert.False(t, inside)
	}
}

func TestEvaluateInclusiveBoundary(t *testing.T) {
	lat, lon := ptr(0.0), ptr(0.001)
	exact := DistanceM(0, 0, *lat, *lon)

	d, inside := Evaluate(lat, lon, &Fence{RadiusM: exact})
	require.NotNil(t, d)
	assert.Equal(t, exact, *d)
	assert.True(t, inside)

	_, inside = Evaluate(lat, lon, &Fence{RadiusM: exact - 1})
	assert.False(t, inside)
}

func TestEvaluateIdempotent(t *testing.T) {
	fence := &Fence{Latitude: 25.6866, Longitude: -100.3161, RadiusM: 500}
	d1, in1 := Evaluate(ptr(25.687), ptr(-100.317), fence)
	d2, in2 := Evaluate(ptr(25.687), ptr(-100.317), fence)
	assert.Equal(t, *d1, *d2)
	assert.Equal(t, in1, in2)
	assert.True(t, in1)
}
