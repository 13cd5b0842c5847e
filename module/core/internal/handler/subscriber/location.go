package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/shyamkumar703/parky/module/core/domain"
)

const (
	locationTopic = "/parky/phone/+/location"
	visitTopic    = "/parky/phone/+/visit"
)

type parkingTracker interface {
	HandleGeofenceExit(ctx context.Context)
	HandleLocation(ctx context.Context, sample domain.LocationSample)
	HandleVisit(ctx context.Context, visit domain.Visit)
}

type geofenceController interface {
	ExitedBy(sample domain.LocationSample) bool
}

type locationMessage struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  float64  `json:"accuracy"`
	Speed     *float64 `json:"speed"`
	Timestamp int64    `json:"timestamp"`
}

type visitMessage struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Arrival   int64   `json:"arrival"`
	Departure int64   `json:"departure"`
}

// LocationSubscriber feeds phone telemetry into the tracker. Per-message
// ordering is preserved by the tracker's own serialization; the subscriber
// just validates and translates.
type LocationSubscriber struct {
	client   mqtt.Client
	tracker  parkingTracker
	geofence geofenceController
}

func NewLocationSubscriber(client mqtt.Client, tracker parkingTracker, geofence geofenceController) *LocationSubscriber {
	return &LocationSubscriber{
		client:   client,
		tracker:  tracker,
		geofence: geofence,
	}
}

func (s *LocationSubscriber) Start() error {
	if token := s.client.Subscribe(locationTopic, 1, s.handleLocation); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	token := s.client.Subscribe(visitTopic, 1, s.handleVisit)
	token.Wait()
	return token.Error()
}

func (s *LocationSubscriber) handleLocation(_ mqtt.Client, msg mqtt.Message) {
	var raw locationMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		log.Printf("invalid location message: %v", err)
		return
	}

	if err := validateLocationMessage(&raw); err != nil {
		log.Printf("location validation error: %v", err)
		return
	}

	speed := domain.SpeedUnknown
	if raw.Speed != nil {
		speed = *raw.Speed
	}

	sample := domain.LocationSample{
		Coordinate: domain.Coordinate{Lat: raw.Latitude, Lon: raw.Longitude},
		Accuracy:   raw.Accuracy,
		Speed:      speed,
		Timestamp:  time.Unix(raw.Timestamp, 0),
	}

	ctx := context.Background()

	if s.geofence.ExitedBy(sample) {
		s.tracker.HandleGeofenceExit(ctx)
	}
	s.tracker.HandleLocation(ctx, sample)
}

func (s *LocationSubscriber) handleVisit(_ mqtt.Client, msg mqtt.Message) {
	var raw visitMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		log.Printf("invalid visit message: %v", err)
		return
	}

	if err := validateVisitMessage(&raw); err != nil {
		log.Printf("visit validation error: %v", err)
		return
	}

	visit := domain.Visit{
		Coordinate: domain.Coordinate{Lat: raw.Latitude, Lon: raw.Longitude},
		Accuracy:   raw.Accuracy,
		Arrival:    time.Unix(raw.Arrival, 0),
	}
	if raw.Departure > 0 {
		visit.Departure = time.Unix(raw.Departure, 0)
	}

	s.tracker.HandleVisit(context.Background(), visit)
}

func validateLocationMessage(msg *locationMessage) error {
	if msg.Latitude < -90 || msg.Latitude > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if msg.Longitude < -180 || msg.Longitude > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	if msg.Accuracy < 0 {
		return fmt.Errorf("accuracy: must be non-negative")
	}
	if msg.Timestamp <= 0 {
		return fmt.Errorf("timestamp: must be positive")
	}
	return nil
}

func validateVisitMessage(msg *visitMessage) error {
	if msg.Latitude < -90 || msg.Latitude > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if msg.Longitude < -180 || msg.Longitude > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	if msg.Arrival <= 0 {
		return fmt.Errorf("arrival: must be positive")
	}
	return nil
}
