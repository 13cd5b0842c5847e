package domain

import "time"

// Coordinate is an immutable latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// SpeedUnknown marks a sample whose speed could not be determined by the
// phone's location subsystem.
const SpeedUnknown = -1.0

// LocationSample is one raw fix from the phone. Speed is meters/second,
// negative when unknown. Accuracy is the horizontal accuracy radius in
// meters.
type LocationSample struct {
	Coordinate
	Accuracy  float64   `json:"accuracy"`
	Speed     float64   `json:"speed"`
	Timestamp time.Time `json:"timestamp"`
}

// Visit is a coarse, low-power arrival/departure signal. Departure is the
// zero time while the phone is still considered present at the location.
type Visit struct {
	Coordinate
	Accuracy  float64   `json:"accuracy"`
	Arrival   time.Time `json:"arrival"`
	Departure time.Time `json:"departure"`
}

// Arrived reports whether the visit describes an arrival that has not yet
// ended.
func (v Visit) Arrived() bool {
	return v.Departure.IsZero()
}
