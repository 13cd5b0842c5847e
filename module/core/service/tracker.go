package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shyamkumar703/parky/module/core/domain"
	"github.com/shyamkumar703/parky/module/core/geo"
)

const (
	// walkingTimeout bounds the window in which a geofence exit can still
	// turn out to be the user walking away from the car.
	walkingTimeout = 3 * time.Minute
	// trackingTimeout abandons a driving session that never produces a
	// confirmed stop; the next coarse visit signal takes over.
	trackingTimeout = 30 * time.Minute
	// stopConfirmation is how long a low-speed window must persist before
	// the vehicle counts as parked.
	stopConfirmation = 30 * time.Second

	drivingSpeedThreshold   = 5.0   // m/s, instantaneous speed that implies driving
	drivingSpeedMaxDistance = 250.0 // m, speed heuristic only applies near the car
	distanceHeuristicDelay  = 15 * time.Second
	briskWalkSpeed          = 2.0 // m/s, upper bound on plausible walking pace
	stopSpeedThreshold      = 3.0 // m/s, below this a sample continues a stop window
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// MotionHinter is an optional corroborating activity-classification signal.
// It is best-effort: errors are treated as "assume driving" so a flaky
// classifier never blocks detection.
type MotionHinter interface {
	DrivingLikely(ctx context.Context) (bool, error)
}

// AlwaysDriving is the permissive MotionHinter used when no classifier is
// wired.
type AlwaysDriving struct{}

func (AlwaysDriving) DrivingLikely(context.Context) (bool, error) { return true, nil }

// DecisionSink receives the tracker's parking decisions. Exactly one call
// per physical event; errors are logged by the tracker and never alter
// tracker state.
type DecisionSink interface {
	VehicleParked(ctx context.Context, event domain.ParkingEvent) error
	VehicleDeparted(ctx context.Context) error
}

type trackerPhase int

const (
	phaseIdle trackerPhase = iota
	phaseAwaitingDriving
	phaseAwaitingStop
)

// trackingSession is the per-cycle state between a geofence exit and either
// a confirmed parking event or abandonment. It is replaced wholesale on
// each transition.
type trackingSession struct {
	id        string
	startedAt time.Time
	// origin is the believed parking coordinate snapshotted at session
	// start; distance heuristics compare against it even if the persisted
	// belief is cleared mid-session.
	origin domain.Coordinate
	// stopSample is the first sample of the current candidate stop window,
	// nil while moving. The emitted parking event uses this sample, not a
	// later one, since it best approximates the true stopping point before
	// GPS drift during the dwell.
	stopSample   *domain.LocationSample
	stoppedSince time.Time
}

// ParkingTracker is the state machine that turns raw location, visit, and
// geofence signals into parked/departed decisions. Events are processed one
// at a time under a single mutex; all timeouts are lazy wall-clock
// comparisons evaluated on the next incoming event.
type ParkingTracker struct {
	mu     sync.Mutex
	clock  Clock
	hints  MotionHinter
	sink   DecisionSink
	phase  trackerPhase
	sess   *trackingSession
	belief *domain.ParkingEvent
}

func NewParkingTracker(clock Clock, hints MotionHinter, sink DecisionSink) *ParkingTracker {
	return &ParkingTracker{
		clock: clock,
		hints: hints,
		sink:  sink,
	}
}

// RestoreBelief seeds the tracker with a previously persisted parking spot
// at startup. No decision is emitted.
func (t *ParkingTracker) RestoreBelief(spot *domain.ParkingSpot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if spot == nil {
		t.belief = nil
		return
	}
	t.belief = &domain.ParkingEvent{
		Coordinate: spot.Coordinate,
		Accuracy:   spot.Accuracy,
		Timestamp:  spot.ParkedAt,
	}
}

// Belief returns the current parking belief, or nil.
func (t *ParkingTracker) Belief() *domain.ParkingEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.belief == nil {
		return nil
	}
	evt := *t.belief
	return &evt
}

// HandleGeofenceExit starts a tracking session. Starting while one is
// already active is a logged no-op; the tracker never holds two sessions.
func (t *ParkingTracker) HandleGeofenceExit(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase != phaseIdle {
		log.Printf("tracker: geofence exit while session %s active, ignoring", t.sess.id)
		return
	}
	if t.belief == nil {
		log.Printf("tracker: geofence exit with no parking belief, ignoring")
		return
	}

	t.sess = &trackingSession{
		id:        uuid.NewString(),
		startedAt: t.clock.Now(),
		origin:    t.belief.Coordinate,
	}
	t.phase = phaseAwaitingDriving
	log.Printf("tracker: session %s started, awaiting driving confirmation", t.sess.id)
}

// HandleLocation feeds one location sample through the active session.
// Samples arriving while idle are ignored.
func (t *ParkingTracker) HandleLocation(ctx context.Context, sample domain.LocationSample) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.phase {
	case phaseAwaitingDriving:
		t.awaitDriving(ctx, sample)
	case phaseAwaitingStop:
		t.awaitStop(ctx, sample)
	}
}

func (t *ParkingTracker) awaitDriving(ctx context.Context, sample domain.LocationSample) {
	elapsed := t.clock.Now().Sub(t.sess.startedAt)
	if elapsed > walkingTimeout {
		// User walked away; the prior belief stays intact.
		log.Printf("tracker: session %s: no driving within %s, abandoning", t.sess.id, walkingTimeout)
		t.reset()
		return
	}

	dist := geo.Haversine(sample.Coordinate, t.sess.origin)

	speedSaysDriving := sample.Speed > drivingSpeedThreshold && dist <= drivingSpeedMaxDistance
	// Guards against stale GPS speed=0 reports: farther from the car than
	// any brisk walk could have covered means driving.
	distanceSaysDriving := elapsed > distanceHeuristicDelay &&
		dist > domain.GeofenceRadiusMeters+elapsed.Seconds()*briskWalkSpeed

	if !speedSaysDriving && !distanceSaysDriving {
		return
	}

	if driving, err := t.hints.DrivingLikely(ctx); err != nil {
		log.Printf("tracker: session %s: motion hint unavailable, assuming driving: %v", t.sess.id, err)
	} else if !driving {
		log.Printf("tracker: session %s: motion hint rejects driving, waiting", t.sess.id)
		return
	}

	// The vehicle is moving: the previous parking belief is no longer true.
	log.Printf("tracker: session %s: driving confirmed, awaiting stop", t.sess.id)
	t.phase = phaseAwaitingStop
	t.belief = nil
	if err := t.sink.VehicleDeparted(ctx); err != nil {
		log.Printf("tracker: session %s: departed sink error: %v", t.sess.id, err)
	}
}

func (t *ParkingTracker) awaitStop(ctx context.Context, sample domain.LocationSample) {
	elapsed := t.clock.Now().Sub(t.sess.startedAt)
	if elapsed > trackingTimeout {
		log.Printf("tracker: session %s: no stop within %s, abandoning", t.sess.id, trackingTimeout)
		t.reset()
		return
	}

	switch {
	case sample.Speed < 0:
		// Undetermined speed neither starts nor resets the stop window.
		return
	case sample.Speed >= stopSpeedThreshold:
		// Still moving; stop-and-go traffic resets the window.
		t.sess.stopSample = nil
		return
	}

	if t.sess.stopSample == nil {
		s := sample
		t.sess.stopSample = &s
		t.sess.stoppedSince = t.clock.Now()
		return
	}

	if t.clock.Now().Sub(t.sess.stoppedSince) < stopConfirmation {
		return
	}

	first := *t.sess.stopSample
	event := domain.ParkingEvent{
		Coordinate: first.Coordinate,
		Accuracy:   first.Accuracy,
		Timestamp:  first.Timestamp,
	}
	log.Printf("tracker: session %s: parking confirmed at (%.5f, %.5f)", t.sess.id, event.Lat, event.Lon)
	t.reset()
	t.belief = &event
	if err := t.sink.VehicleParked(ctx, event); err != nil {
		log.Printf("tracker: parked sink error: %v", err)
	}
}

// HandleVisit consumes a coarse arrival/departure signal. Visits are
// ignored outright while a geofence-based session is active; an arrival
// while idle with no belief establishes one at the visit's coordinate.
func (t *ParkingTracker) HandleVisit(ctx context.Context, visit domain.Visit) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase != phaseIdle {
		log.Printf("tracker: visit during session %s, ignoring", t.sess.id)
		return
	}
	if !visit.Arrived() || t.belief != nil {
		return
	}

	event := domain.ParkingEvent{
		Coordinate: visit.Coordinate,
		Accuracy:   visit.Accuracy,
		Timestamp:  visit.Arrival,
	}
	log.Printf("tracker: visit arrival taken as parking at (%.5f, %.5f)", event.Lat, event.Lon)
	t.belief = &event
	if err := t.sink.VehicleParked(ctx, event); err != nil {
		log.Printf("tracker: parked sink error: %v", err)
	}
}

// UserMovedCar forces the tracker to idle and invalidates any belief,
// regardless of the current phase.
func (t *ParkingTracker) UserMovedCar(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.reset()
	t.belief = nil
	if err := t.sink.VehicleDeparted(ctx); err != nil {
		log.Printf("tracker: departed sink error: %v", err)
	}
}

// UserSetInitialParking abandons any ongoing tracking and records an
// explicit user-provided parking spot.
func (t *ParkingTracker) UserSetInitialParking(ctx context.Context, coord domain.Coordinate, accuracy float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.reset()
	event := domain.ParkingEvent{
		Coordinate: coord,
		Accuracy:   accuracy,
		Timestamp:  t.clock.Now(),
	}
	t.belief = &event
	if err := t.sink.VehicleParked(ctx, event); err != nil {
		log.Printf("tracker: parked sink error: %v", err)
	}
}

func (t *ParkingTracker) reset() {
	t.phase = phaseIdle
	t.sess = nil
}
