// Package geo provides the planar/geodesic hybrid line geometry used to
// match parking coordinates against street centerlines. Projection onto a
// segment is done in raw lat/lon space, which is accurate enough at city
// block scale; reported distances use the haversine formula so they are
// true meters.
package geo

import (
	"math"

	"github.com/shyamkumar703/parky/module/core/domain"
)

const earthRadiusMeters = 6371000

// Haversine returns the great-circle distance between two coordinates in
// meters.
func Haversine(a, b domain.Coordinate) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// ClosestPointOnSegment projects p onto the segment a-b and returns the
// distance in meters to the projected point along with the point itself.
// A degenerate segment (a == b) collapses to the distance to a.
func ClosestPointOnSegment(p, a, b domain.Coordinate) (float64, domain.Coordinate) {
	dLat := b.Lat - a.Lat
	dLon := b.Lon - a.Lon
	lenSq := dLat*dLat + dLon*dLon
	if lenSq == 0 {
		return Haversine(p, a), a
	}

	t := ((p.Lat-a.Lat)*dLat + (p.Lon-a.Lon)*dLon) / lenSq
	t = math.Max(0, math.Min(1, t))

	closest := domain.Coordinate{
		Lat: a.Lat + t*dLat,
		Lon: a.Lon + t*dLon,
	}
	return Haversine(p, closest), closest
}

// ClosestPointOnPolyline returns the minimum distance from p to any segment
// across all constituent lines, and the nearest point itself. Returns
// +Inf distance when no line contains at least one point.
func ClosestPointOnPolyline(p domain.Coordinate, lines [][]domain.Coordinate) (float64, domain.Coordinate) {
	best := math.Inf(1)
	var bestPoint domain.Coordinate

	for _, line := range lines {
		if len(line) == 1 {
			if d := Haversine(p, line[0]); d < best {
				best = d
				bestPoint = line[0]
			}
			continue
		}
		for i := 0; i+1 < len(line); i++ {
			d, pt := ClosestPointOnSegment(p, line[i], line[i+1])
			if d < best {
				best = d
				bestPoint = pt
			}
		}
	}
	return best, bestPoint
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
