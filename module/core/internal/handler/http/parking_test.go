package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shyamkumar703/parky/module/core/domain"
	"github.com/shyamkumar703/parky/module/core/service"
)

type mockParkingService struct {
	currentFn      func(ctx context.Context) (*domain.ParkingSpot, error)
	nextCleaningFn func(ctx context.Context) (*time.Time, error)
	historyFn      func(ctx context.Context, query *domain.HistoryQuery) ([]domain.ParkingSpot, error)
}

func (m *mockParkingService) Current(ctx context.Context) (*domain.ParkingSpot, error) {
	return m.currentFn(ctx)
}

func (m *mockParkingService) NextCleaning(ctx context.Context) (*time.Time, error) {
	return m.nextCleaningFn(ctx)
}

func (m *mockParkingService) History(ctx context.Context, query *domain.HistoryQuery) ([]domain.ParkingSpot, error) {
	return m.historyFn(ctx, query)
}

type mockActions struct {
	moved int
	set   []domain.Coordinate
}

func (m *mockActions) UserMovedCar(context.Context) { m.moved++ }

func (m *mockActions) UserSetInitialParking(_ context.Context, coord domain.Coordinate, _ float64) {
	m.set = append(m.set, coord)
}

func setupRouter(svc parkingService, actions manualActions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewParkingHandler(svc, actions)
	h.Register(r.Group(""))
	return r
}

func TestGetCurrent_Success(t *testing.T) {
	ts := time.Unix(1772000000, 0)
	svc := &mockParkingService{
		currentFn: func(context.Context) (*domain.ParkingSpot, error) {
			return &domain.ParkingSpot{
				Coordinate: domain.Coordinate{Lat: 37.77, Lon: -122.415},
				Accuracy:   12,
				ParkedAt:   ts,
			}, nil
		},
	}

	r := setupRouter(svc, &mockActions{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/parking", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp spotResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Latitude != 37.77 {
		t.Errorf("expected 37.77, got %f", resp.Latitude)
	}
	if resp.ParkedAt != 1772000000 {
		t.Errorf("expected 1772000000, got %d", resp.ParkedAt)
	}
}

func TestGetCurrent_NoSpot(t *testing.T) {
	svc := &mockParkingService{
		currentFn: func(context.Context) (*domain.ParkingSpot, error) { return nil, nil },
	}

	r := setupRouter(svc, &mockActions{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/parking", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestSetParking(t *testing.T) {
	actions := &mockActions{}
	r := setupRouter(&mockParkingService{}, actions)

	w := httptest.NewRecorder()
	body := `{"latitude": 37.77, "longitude": -122.415, "accuracy": 15}`
	req, _ := http.NewRequest("PUT", "/parking", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if len(actions.set) != 1 {
		t.Fatalf("expected 1 set action, got %d", len(actions.set))
	}
	if actions.set[0].Lat != 37.77 {
		t.Errorf("expected 37.77, got %f", actions.set[0].Lat)
	}
}

func TestSetParking_OutOfRange(t *testing.T) {
	actions := &mockActions{}
	r := setupRouter(&mockParkingService{}, actions)

	w := httptest.NewRecorder()
	body := `{"latitude": 95, "longitude": -122.415, "accuracy": 15}`
	req, _ := http.NewRequest("PUT", "/parking", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if len(actions.set) != 0 {
		t.Fatal("invalid coordinate must not reach the tracker")
	}
}

func TestMovedCar(t *testing.T) {
	actions := &mockActions{}
	r := setupRouter(&mockParkingService{}, actions)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/parking/moved", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if actions.moved != 1 {
		t.Fatalf("expected 1 moved action, got %d", actions.moved)
	}
}

func TestGetNextCleaning_Success(t *testing.T) {
	next := time.Unix(1772100000, 0)
	svc := &mockParkingService{
		nextCleaningFn: func(context.Context) (*time.Time, error) { return &next, nil },
	}

	r := setupRouter(svc, &mockActions{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/parking/next-cleaning", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]int64
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["next_cleaning"] != 1772100000 {
		t.Errorf("expected 1772100000, got %d", resp["next_cleaning"])
	}
}

func TestGetNextCleaning_NoSpot(t *testing.T) {
	svc := &mockParkingService{
		nextCleaningFn: func(context.Context) (*time.Time, error) { return nil, service.ErrNoParkingSpot },
	}

	r := setupRouter(svc, &mockActions{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/parking/next-cleaning", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetNextCleaning_NoneUpcoming(t *testing.T) {
	svc := &mockParkingService{
		nextCleaningFn: func(context.Context) (*time.Time, error) { return nil, nil },
	}

	r := setupRouter(svc, &mockActions{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/parking/next-cleaning", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}

func TestGetNextCleaning_ResolverError(t *testing.T) {
	svc := &mockParkingService{
		nextCleaningFn: func(context.Context) (*time.Time, error) { return nil, errors.New("upstream down") },
	}

	r := setupRouter(svc, &mockActions{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/parking/next-cleaning", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestGetHistory(t *testing.T) {
	svc := &mockParkingService{
		historyFn: func(_ context.Context, query *domain.HistoryQuery) ([]domain.ParkingSpot, error) {
			if query.Start.Unix() != 1771000000 || query.End.Unix() != 1773000000 {
				t.Fatalf("unexpected query range: %v - %v", query.Start, query.End)
			}
			return []domain.ParkingSpot{
				{Coordinate: domain.Coordinate{Lat: 37.77, Lon: -122.415}, Accuracy: 12, ParkedAt: time.Unix(1772000000, 0)},
			}, nil
		},
	}

	r := setupRouter(svc, &mockActions{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/parking/history?start=1771000000&end=1773000000", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp []spotResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("expected 1 spot, got %d", len(resp))
	}
}

func TestGetHistory_InvalidParams(t *testing.T) {
	r := setupRouter(&mockParkingService{}, &mockActions{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/parking/history?start=abc&end=1", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
