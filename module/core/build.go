package core

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	nethttp "net/http"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"

	handler "github.com/shyamkumar703/parky/module/core/internal/handler/http"
	"github.com/shyamkumar703/parky/module/core/internal/handler/subscriber"
	"github.com/shyamkumar703/parky/module/core/internal/repository/database/postgres"
	"github.com/shyamkumar703/parky/module/core/internal/repository/publisher/rabbitmq"
	"github.com/shyamkumar703/parky/module/core/internal/repository/schedules/sweepdata"
	"github.com/shyamkumar703/parky/module/core/service"
)

type Module struct {
	ParkingSvc *service.ParkingService
	Tracker    *service.ParkingTracker
	handler    *handler.ParkingHandler
	subscriber *subscriber.LocationSubscriber
}

func Build(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, scheduleAPIURL string) (*Module, error) {
	store := postgres.NewParkingRepo(db)

	reminders, err := rabbitmq.NewReminderPublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("reminder publisher: %w", err)
	}

	source := sweepdata.NewClient(scheduleAPIURL, nethttp.DefaultClient)
	resolver := service.NewScheduleResolver()
	geofence := service.NewGeofenceController()
	clock := service.SystemClock{}

	parkingSvc := service.NewParkingService(store, reminders, source, resolver, geofence, clock)
	tracker := service.NewParkingTracker(clock, service.AlwaysDriving{}, parkingSvc)

	// Pick up where the last run left off: a persisted spot restores the
	// belief and re-arms the geofence.
	spot, err := store.Load(context.Background())
	if err != nil {
		log.Printf("core: load persisted spot: %v", err)
	} else if spot != nil {
		tracker.RestoreBelief(spot)
		geofence.Register(spot.Coordinate)
	}

	h := handler.NewParkingHandler(parkingSvc, tracker)
	sub := subscriber.NewLocationSubscriber(mqttClient, tracker, geofence)

	return &Module{
		ParkingSvc: parkingSvc,
		Tracker:    tracker,
		handler:    h,
		subscriber: sub,
	}, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.handler.Register(r)
}

func (m *Module) StartSubscribers() error {
	return m.subscriber.Start()
}
