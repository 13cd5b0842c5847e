package service

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shyamkumar703/parky/module/core/domain"
	"github.com/shyamkumar703/parky/module/core/geo"
)

const (
	// proximityToleranceMeters absorbs the offset between a street
	// centerline and the actual curbside parking spot, plus near-parallel
	// adjacent segments.
	proximityToleranceMeters = 20.0
	// sideAmbiguityMeters: closer than this to the centerline, the side of
	// the street cannot be determined reliably.
	sideAmbiguityMeters = 5.0
	// nextOccurrenceWindowDays bounds the per-record scan. Any weekly
	// pattern with up-to-5 week-of-month occurrences recurs within 5 weeks,
	// so an empty result inside this window is definitive.
	nextOccurrenceWindowDays = 35
)

// ScheduleResolver maps a parked coordinate to the soonest upcoming
// street-cleaning instant among a candidate set of side-specific schedule
// records. Pure computation, no I/O.
type ScheduleResolver struct{}

func NewScheduleResolver() *ScheduleResolver {
	return &ScheduleResolver{}
}

// ResolveNextCleaning returns the soonest cleaning start strictly after
// referenceTime among the records relevant to parkingPoint, or nil when no
// record yields an upcoming occurrence.
func (r *ScheduleResolver) ResolveNextCleaning(records []domain.ScheduleRecord, parkingPoint domain.Coordinate, referenceTime time.Time) *time.Time {
	candidates := r.relevantRecords(records, parkingPoint)

	var soonest *time.Time
	for _, rec := range candidates {
		next := nextOccurrence(rec, referenceTime)
		if next == nil {
			continue
		}
		if soonest == nil || next.Before(*soonest) {
			soonest = next
		}
	}
	return soonest
}

// relevantRecords narrows the candidate set to the street and side of street
// the parking point sits on. Records without geometry cannot be filtered;
// when no record has geometry the whole set is used as-is.
func (r *ScheduleResolver) relevantRecords(records []domain.ScheduleRecord, parkingPoint domain.Coordinate) []domain.ScheduleRecord {
	type scored struct {
		rec     domain.ScheduleRecord
		dist    float64
		nearest domain.Coordinate
	}

	var withGeometry []scored
	for _, rec := range records {
		if !rec.HasGeometry() {
			continue
		}
		d, pt := geo.ClosestPointOnPolyline(parkingPoint, rec.Lines)
		if math.IsInf(d, 1) {
			continue
		}
		withGeometry = append(withGeometry, scored{rec: rec, dist: d, nearest: pt})
	}
	if len(withGeometry) == 0 {
		return records
	}

	minDist := math.Inf(1)
	for _, s := range withGeometry {
		if s.dist < minDist {
			minDist = s.dist
		}
	}

	var kept []scored
	for _, s := range withGeometry {
		if s.dist <= minDist+proximityToleranceMeters {
			kept = append(kept, s)
		}
	}

	nearest := kept[0]
	for _, s := range kept[1:] {
		if s.dist < nearest.dist {
			nearest = s
		}
	}

	keptRecords := make([]domain.ScheduleRecord, len(kept))
	for i, s := range kept {
		keptRecords[i] = s.rec
	}

	// Too close to the centerline to call a side.
	if nearest.dist < sideAmbiguityMeters {
		return keptRecords
	}

	side := sideOfStreet(parkingPoint, nearest.nearest)
	var sameSide []domain.ScheduleRecord
	for _, s := range kept {
		if s.rec.BlockSide == side {
			sameSide = append(sameSide, s.rec)
		}
	}
	// Zero side matches means the upstream data disagrees with our side
	// call; fall back to the whole kept set rather than returning nothing.
	if len(sameSide) == 0 {
		return keptRecords
	}
	return sameSide
}

// sideOfStreet decides which side of the centerline the parking point sits
// on by comparing which axis dominates the offset from the nearest
// centerline point. Valid for roughly axis-aligned streets; diagonal
// streets can be misclassified.
func sideOfStreet(parkingPoint, nearestOnLine domain.Coordinate) domain.BlockSide {
	dLat := parkingPoint.Lat - nearestOnLine.Lat
	dLon := parkingPoint.Lon - nearestOnLine.Lon

	if math.Abs(dLat) > math.Abs(dLon) {
		if dLat > 0 {
			return domain.BlockSideNorth
		}
		return domain.BlockSideSouth
	}
	if dLon > 0 {
		return domain.BlockSideEast
	}
	return domain.BlockSideWest
}

// nextOccurrence computes the record's own next cleaning start strictly
// after ref, scanning day by day. Unparseable weekday or hour fields yield
// nil; callers tolerate partial data.
func nextOccurrence(rec domain.ScheduleRecord, ref time.Time) *time.Time {
	weekday, ok := parseWeekday(rec.Weekday)
	if !ok {
		return nil
	}
	hour, err := strconv.Atoi(strings.TrimSpace(rec.FromHour))
	if err != nil || hour < 0 || hour > 23 {
		return nil
	}

	for i := 0; i < nextOccurrenceWindowDays; i++ {
		day := ref.AddDate(0, 0, i)
		if day.Weekday() != weekday {
			continue
		}
		occurrence := (day.Day()-1)/7 + 1
		if occurrence < 1 || occurrence > 5 || !rec.Weeks[occurrence-1] {
			continue
		}
		candidate := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, ref.Location())
		if candidate.After(ref) {
			t := candidate
			return &t
		}
	}
	return nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "weds": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

func parseWeekday(name string) (time.Weekday, bool) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	return wd, ok
}
