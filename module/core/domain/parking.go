package domain

import "time"

// GeofenceID is the identifier of the single monitored parking region.
const GeofenceID = "parking_geofence"

// GeofenceRadiusMeters is the radius of the parking geofence.
const GeofenceRadiusMeters = 50.0

// GeofenceRegion is a circular monitored region around the parked vehicle.
// At most one region is active at a time: registering a new one implicitly
// clears any prior region.
type GeofenceRegion struct {
	ID     string     `json:"id"`
	Center Coordinate `json:"center"`
	Radius float64    `json:"radius"`
}

// ParkingEvent is a confirmed parking decision. It is created only when the
// tracker completes a driving-then-stop cycle or when the user sets the spot
// manually, and is superseded by the next event or a "moved car" action.
type ParkingEvent struct {
	Coordinate
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

// ParkingSpot is the persisted form of the current parking belief.
type ParkingSpot struct {
	Coordinate
	Accuracy float64   `json:"accuracy"`
	ParkedAt time.Time `json:"parked_at"`
}

// HistoryQuery bounds a parking-history lookup.
type HistoryQuery struct {
	Start time.Time
	End   time.Time
}
