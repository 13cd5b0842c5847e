package domain

// BlockSide is the side of the street a cleaning schedule applies to.
type BlockSide string

const (
	BlockSideNorth BlockSide = "North"
	BlockSideSouth BlockSide = "South"
	BlockSideEast  BlockSide = "East"
	BlockSideWest  BlockSide = "West"
)

// ScheduleRecord is one street-cleaning rule as served by the upstream
// dataset: a corridor segment, the side of the street it covers, and a
// weekly pattern gated by week-of-month flags. Weekday and FromHour stay as
// raw strings; upstream data is not guaranteed parseable and consumers skip
// records they cannot interpret.
type ScheduleRecord struct {
	Corridor  string    `json:"corridor"`
	Limits    string    `json:"limits"`
	BlockSide BlockSide `json:"blockside"`
	Weekday   string    `json:"weekday"`
	FromHour  string    `json:"fromhour"`
	ToHour    string    `json:"tohour"`
	// Weeks[i] reports whether the rule is active on the (i+1)th
	// occurrence of Weekday within a month.
	Weeks [5]bool `json:"weeks"`
	// Lines is the street centerline, possibly several disjoint runs for a
	// MultiLineString. Empty when the upstream record carried no usable
	// geometry.
	Lines [][]Coordinate `json:"lines,omitempty"`
}

// HasGeometry reports whether the record carries at least one centerline
// segment.
func (r ScheduleRecord) HasGeometry() bool {
	for _, line := range r.Lines {
		if len(line) > 0 {
			return true
		}
	}
	return false
}
