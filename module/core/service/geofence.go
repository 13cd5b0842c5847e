package service

import (
	"sync"

	"github.com/shyamkumar703/parky/module/core/domain"
	"github.com/shyamkumar703/parky/module/core/geo"
)

// GeofenceController maintains the single circular region around the last
// known parking spot. Registering a new region implicitly clears any prior
// one; at most one region is ever active.
type GeofenceController struct {
	mu     sync.Mutex
	active *domain.GeofenceRegion
}

func NewGeofenceController() *GeofenceController {
	return &GeofenceController{}
}

// Register starts monitoring a region centered on the parked coordinate.
func (c *GeofenceController) Register(center domain.Coordinate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = &domain.GeofenceRegion{
		ID:     domain.GeofenceID,
		Center: center,
		Radius: domain.GeofenceRadiusMeters,
	}
}

// Clear stops monitoring.
func (c *GeofenceController) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = nil
}

// Active returns the currently monitored region, or nil.
func (c *GeofenceController) Active() *domain.GeofenceRegion {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return nil
	}
	region := *c.active
	return &region
}

// ExitedBy reports whether the sample falls outside the active region.
// Always false with no active region.
func (c *GeofenceController) ExitedBy(sample domain.LocationSample) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return false
	}
	return geo.Haversine(sample.Coordinate, c.active.Center) > c.active.Radius
}
