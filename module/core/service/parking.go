package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shyamkumar703/parky/module/core/domain"
	"github.com/shyamkumar703/parky/module/core/internal/repository/database"
	"github.com/shyamkumar703/parky/module/core/internal/repository/publisher"
	"github.com/shyamkumar703/parky/module/core/internal/repository/schedules"
)

// reminderLead is how long before the cleaning start the reminder fires.
const reminderLead = time.Hour

// ErrNoParkingSpot is returned when an operation needs a recorded spot and
// none exists.
var ErrNoParkingSpot = errors.New("no parking spot recorded")

// ParkingService owns the belief lifecycle around the tracker's decisions:
// persistence, geofence registration, schedule resolution, and reminder
// scheduling. It implements DecisionSink.
type ParkingService struct {
	store     database.ParkingStore
	reminders publisher.ReminderScheduler
	source    schedules.Source
	resolver  *ScheduleResolver
	geofence  *GeofenceController
	clock     Clock

	mu         sync.Mutex
	generation uint64
}

func NewParkingService(
	store database.ParkingStore,
	reminders publisher.ReminderScheduler,
	source schedules.Source,
	resolver *ScheduleResolver,
	geofence *GeofenceController,
	clock Clock,
) *ParkingService {
	return &ParkingService{
		store:     store,
		reminders: reminders,
		source:    source,
		resolver:  resolver,
		geofence:  geofence,
		clock:     clock,
	}
}

var _ DecisionSink = (*ParkingService)(nil)

// VehicleParked persists the new belief, re-registers the geofence, and
// kicks off schedule resolution in the background. Store failures are
// surfaced but never block the in-memory belief.
func (s *ParkingService) VehicleParked(ctx context.Context, event domain.ParkingEvent) error {
	gen := s.bumpGeneration()

	spot := &domain.ParkingSpot{
		Coordinate: event.Coordinate,
		Accuracy:   event.Accuracy,
		ParkedAt:   event.Timestamp,
	}

	saveErr := s.store.Save(ctx, spot)
	if saveErr != nil {
		log.Printf("parking: save spot: %v", saveErr)
	}

	s.geofence.Register(event.Coordinate)

	// Schedule fetch is slow I/O; run it detached from the event that
	// triggered it.
	go s.scheduleReminder(context.Background(), gen, event)

	return saveErr
}

// VehicleDeparted tears the belief down: reminders cancelled, store
// cleared, geofence dropped.
func (s *ParkingService) VehicleDeparted(ctx context.Context) error {
	s.bumpGeneration()
	s.geofence.Clear()

	var firstErr error
	if err := s.reminders.CancelAll(ctx); err != nil {
		log.Printf("parking: cancel reminders: %v", err)
		firstErr = err
	}
	if err := s.store.Clear(ctx); err != nil {
		log.Printf("parking: clear spot: %v", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// scheduleReminder fetches schedules around the parked spot, resolves the
// next cleaning, and schedules the reminder at T-1h. A result arriving
// after the belief has changed again is discarded via the generation
// check.
func (s *ParkingService) scheduleReminder(ctx context.Context, gen uint64, event domain.ParkingEvent) {
	radius := event.Accuracy
	records, err := s.source.FetchNearby(ctx, event.Coordinate, radius)
	if err != nil {
		log.Printf("parking: fetch schedules: %v", err)
		return
	}

	next := s.resolver.ResolveNextCleaning(records, event.Coordinate, s.clock.Now())
	if next == nil {
		log.Printf("parking: no upcoming cleaning near (%.5f, %.5f)", event.Lat, event.Lon)
		return
	}

	if s.currentGeneration() != gen {
		log.Printf("parking: belief changed during schedule fetch, discarding result")
		return
	}

	fireAt := next.Add(-reminderLead)
	body := fmt.Sprintf("Street cleaning starts at %s. Move your car before then.", next.Format("Mon Jan 2 3:04 PM"))
	if err := s.reminders.ScheduleOneShot(ctx, "Move your car", body, fireAt); err != nil {
		log.Printf("parking: schedule reminder: %v", err)
	}
}

// Current returns the persisted parking belief, nil when none.
func (s *ParkingService) Current(ctx context.Context) (*domain.ParkingSpot, error) {
	return s.store.Load(ctx)
}

// NextCleaning resolves the next cleaning instant for the current spot on
// demand. Returns ErrNoParkingSpot without a recorded spot and a nil time
// when no cleaning is upcoming.
func (s *ParkingService) NextCleaning(ctx context.Context) (*time.Time, error) {
	spot, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if spot == nil {
		return nil, ErrNoParkingSpot
	}

	records, err := s.source.FetchNearby(ctx, spot.Coordinate, spot.Accuracy)
	if err != nil {
		return nil, err
	}
	return s.resolver.ResolveNextCleaning(records, spot.Coordinate, s.clock.Now()), nil
}

// History lists persisted parking spots in a time range.
func (s *ParkingService) History(ctx context.Context, query *domain.HistoryQuery) ([]domain.ParkingSpot, error) {
	return s.store.History(ctx, query)
}

func (s *ParkingService) bumpGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

func (s *ParkingService) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}
