// phonesim replays a scripted drive-away-and-park telemetry sequence
// against the MQTT broker: a few idle fixes near the parked car, a burst of
// driving samples leaving the geofence, then a sustained stop at a new
// block. Useful for exercising the full detection pipeline without a phone.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type locationMessage struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Speed     float64 `json:"speed"`
	Timestamp int64   `json:"timestamp"`
}

type step struct {
	lat, lon, speed float64
	repeat          int
}

// metersNorth converts a northward offset in meters to degrees latitude.
func metersNorth(m float64) float64 { return m / 111195 }

func scenario(baseLat, baseLon float64) []step {
	return []step{
		// idle near the car
		{baseLat, baseLon, 0.5, 3},
		// pulling out: fast samples still close to the spot
		{baseLat + metersNorth(80), baseLon, 8.0, 1},
		{baseLat + metersNorth(150), baseLon, 11.0, 1},
		// driving a few blocks north
		{baseLat + metersNorth(400), baseLon, 12.0, 3},
		{baseLat + metersNorth(700), baseLon, 9.0, 3},
		// parked at the new block: sustained slow samples
		{baseLat + metersNorth(800), baseLon, 0.8, 35},
	}
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds>\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}

	baseLat, baseLon := 37.7700, -122.4150
	if v := os.Getenv("SIM_LAT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			baseLat = f
		}
	}
	if v := os.Getenv("SIM_LON"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			baseLon = f
		}
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("parky-phone-sim")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("mqtt connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	topic := "/parky/phone/sim/location"
	log.Printf("connected to %s, replaying scenario from (%.4f, %.4f) every %ds", broker, baseLat, baseLon, intervalSec)

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	for _, st := range scenario(baseLat, baseLon) {
		for i := 0; i < st.repeat; i++ {
			<-ticker.C

			msg := locationMessage{
				Latitude:  st.lat,
				Longitude: st.lon,
				Accuracy:  10,
				Speed:     st.speed,
				Timestamp: time.Now().Unix(),
			}
			payload, _ := json.Marshal(msg)

			token := client.Publish(topic, 1, false, payload)
			token.Wait()

			log.Printf("published: %s", payload)
		}
	}

	log.Println("scenario complete")
}
