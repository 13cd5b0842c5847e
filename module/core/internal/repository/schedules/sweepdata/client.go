// Package sweepdata talks to the municipal street-sweeping dataset API. The
// upstream serves side-specific schedule records with centerline geometry
// as either GeoJSON LineString/MultiLineString coordinates or an encoded
// polyline string.
package sweepdata

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/twpayne/go-polyline"

	"github.com/shyamkumar703/parky/module/core/domain"
	"github.com/shyamkumar703/parky/module/core/internal/repository/schedules"
)

var _ schedules.Source = (*Client)(nil)

// minRadiusMeters floors the search radius: a too-tight radius risks
// missing the correct record since centerlines sit 10-30m from the true
// parked position.
const minRadiusMeters = 100.0

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

type recordPayload struct {
	Corridor  string          `json:"corridor"`
	Limits    string          `json:"limits"`
	BlockSide string          `json:"blockside"`
	Weekday   string          `json:"weekday"`
	FromHour  string          `json:"fromhour"`
	ToHour    string          `json:"tohour"`
	Week1     string          `json:"week1"`
	Week2     string          `json:"week2"`
	Week3     string          `json:"week3"`
	Week4     string          `json:"week4"`
	Week5     string          `json:"week5"`
	Line      *geometryPayload `json:"line,omitempty"`
	Shape     string          `json:"shape,omitempty"`
}

type geometryPayload struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// FetchNearby queries records around center, clamping the radius to the
// 100m floor.
func (c *Client) FetchNearby(ctx context.Context, center domain.Coordinate, radiusMeters float64) ([]domain.ScheduleRecord, error) {
	if radiusMeters < minRadiusMeters {
		radiusMeters = minRadiusMeters
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(center.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(center.Lon, 'f', -1, 64))
	q.Set("radius", strconv.FormatFloat(radiusMeters, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/schedules?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request schedules: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var payload []recordPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode schedules: %w", err)
	}

	records := make([]domain.ScheduleRecord, 0, len(payload))
	for _, p := range payload {
		records = append(records, toRecord(p))
	}
	return records, nil
}

func toRecord(p recordPayload) domain.ScheduleRecord {
	rec := domain.ScheduleRecord{
		Corridor:  p.Corridor,
		Limits:    p.Limits,
		BlockSide: domain.BlockSide(p.BlockSide),
		Weekday:   p.Weekday,
		FromHour:  p.FromHour,
		ToHour:    p.ToHour,
		Weeks: [5]bool{
			flagSet(p.Week1), flagSet(p.Week2), flagSet(p.Week3), flagSet(p.Week4), flagSet(p.Week5),
		},
	}

	// Bad geometry degrades to a record without lines, never an error.
	lines, err := decodeGeometry(p)
	if err != nil {
		log.Printf("sweepdata: %s (%s): dropping geometry: %v", p.Corridor, p.Limits, err)
		return rec
	}
	rec.Lines = lines
	return rec
}

func flagSet(v string) bool {
	return v == "1" || v == "true" || v == "Y"
}

func decodeGeometry(p recordPayload) ([][]domain.Coordinate, error) {
	if p.Line != nil {
		return decodeGeoJSON(p.Line)
	}
	if p.Shape != "" {
		coords, _, err := polyline.DecodeCoords([]byte(p.Shape))
		if err != nil {
			return nil, fmt.Errorf("decode polyline: %w", err)
		}
		line := make([]domain.Coordinate, len(coords))
		for i, c := range coords {
			line[i] = domain.Coordinate{Lat: c[0], Lon: c[1]}
		}
		return [][]domain.Coordinate{line}, nil
	}
	return nil, nil
}

// decodeGeoJSON handles LineString and MultiLineString coordinate arrays.
// GeoJSON positions are [lon, lat].
func decodeGeoJSON(g *geometryPayload) ([][]domain.Coordinate, error) {
	switch g.Type {
	case "LineString":
		var positions [][]float64
		if err := json.Unmarshal(g.Coordinates, &positions); err != nil {
			return nil, fmt.Errorf("linestring coordinates: %w", err)
		}
		line, err := toLine(positions)
		if err != nil {
			return nil, err
		}
		return [][]domain.Coordinate{line}, nil
	case "MultiLineString":
		var multi [][][]float64
		if err := json.Unmarshal(g.Coordinates, &multi); err != nil {
			return nil, fmt.Errorf("multilinestring coordinates: %w", err)
		}
		lines := make([][]domain.Coordinate, 0, len(multi))
		for _, positions := range multi {
			line, err := toLine(positions)
			if err != nil {
				return nil, err
			}
			lines = append(lines, line)
		}
		return lines, nil
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
	}
}

func toLine(positions [][]float64) ([]domain.Coordinate, error) {
	line := make([]domain.Coordinate, len(positions))
	for i, pos := range positions {
		if len(pos) < 2 {
			return nil, fmt.Errorf("position %d has %d components", i, len(pos))
		}
		line[i] = domain.Coordinate{Lat: pos[1], Lon: pos[0]}
	}
	return line, nil
}
