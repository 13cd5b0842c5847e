package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shyamkumar703/parky/module/core/domain"
)

func TestHaversine_SamePoint(t *testing.T) {
	p := domain.Coordinate{Lat: 37.7749, Lon: -122.4194}
	assert.Zero(t, Haversine(p, p))
}

func TestHaversine_KnownDistance(t *testing.T) {
	// one degree of latitude is roughly 111.19 km
	a := domain.Coordinate{Lat: 37.0, Lon: -122.0}
	b := domain.Coordinate{Lat: 38.0, Lon: -122.0}
	d := Haversine(a, b)
	assert.InDelta(t, 111195, d, 100)
}

func TestClosestPointOnSegment_Degenerate(t *testing.T) {
	a := domain.Coordinate{Lat: 37.7749, Lon: -122.4194}
	p := domain.Coordinate{Lat: 37.7750, Lon: -122.4194}
	d, closest := ClosestPointOnSegment(p, a, a)
	assert.Equal(t, a, closest)
	assert.InDelta(t, Haversine(p, a), d, 1e-9)
}

func TestClosestPointOnSegment_ProjectionInterior(t *testing.T) {
	// horizontal segment, point directly above its midpoint
	a := domain.Coordinate{Lat: 37.7700, Lon: -122.4200}
	b := domain.Coordinate{Lat: 37.7700, Lon: -122.4100}
	p := domain.Coordinate{Lat: 37.7705, Lon: -122.4150}

	d, closest := ClosestPointOnSegment(p, a, b)
	assert.InDelta(t, 37.7700, closest.Lat, 1e-9)
	assert.InDelta(t, -122.4150, closest.Lon, 1e-9)
	// 0.0005 degrees of latitude is about 55.6 m
	assert.InDelta(t, 55.6, d, 1.0)
}

func TestClosestPointOnSegment_ClampsToEndpoint(t *testing.T) {
	a := domain.Coordinate{Lat: 37.7700, Lon: -122.4200}
	b := domain.Coordinate{Lat: 37.7700, Lon: -122.4100}
	// beyond b along the segment direction
	p := domain.Coordinate{Lat: 37.7700, Lon: -122.4000}

	d, closest := ClosestPointOnSegment(p, a, b)
	assert.Equal(t, b, closest)
	assert.InDelta(t, Haversine(p, b), d, 1e-9)
}

func TestClosestPointOnPolyline_PicksGlobalMinimum(t *testing.T) {
	far := []domain.Coordinate{
		{Lat: 37.80, Lon: -122.40},
		{Lat: 37.80, Lon: -122.39},
	}
	near := []domain.Coordinate{
		{Lat: 37.7700, Lon: -122.4200},
		{Lat: 37.7700, Lon: -122.4100},
	}
	p := domain.Coordinate{Lat: 37.7701, Lon: -122.4150}

	d, closest := ClosestPointOnPolyline(p, [][]domain.Coordinate{far, near})
	require.False(t, math.IsInf(d, 1))
	assert.InDelta(t, 37.7700, closest.Lat, 1e-9)
	assert.Less(t, d, 20.0)
}

func TestClosestPointOnPolyline_Empty(t *testing.T) {
	p := domain.Coordinate{Lat: 37.77, Lon: -122.41}
	d, _ := ClosestPointOnPolyline(p, nil)
	assert.True(t, math.IsInf(d, 1))
}

func TestClosestPointOnPolyline_SinglePointLine(t *testing.T) {
	p := domain.Coordinate{Lat: 37.7701, Lon: -122.4150}
	only := domain.Coordinate{Lat: 37.7700, Lon: -122.4150}
	d, closest := ClosestPointOnPolyline(p, [][]domain.Coordinate{{only}})
	assert.Equal(t, only, closest)
	assert.InDelta(t, Haversine(p, only), d, 1e-9)
}
