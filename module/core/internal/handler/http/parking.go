package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shyamkumar703/parky/module/core/domain"
	"github.com/shyamkumar703/parky/module/core/service"
)

type parkingService interface {
	Current(ctx context.Context) (*domain.ParkingSpot, error)
	NextCleaning(ctx context.Context) (*time.Time, error)
	History(ctx context.Context, query *domain.HistoryQuery) ([]domain.ParkingSpot, error)
}

type manualActions interface {
	UserMovedCar(ctx context.Context)
	UserSetInitialParking(ctx context.Context, coord domain.Coordinate, accuracy float64)
}

type spotResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	ParkedAt  int64   `json:"parked_at"`
}

type setParkingRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}

type ParkingHandler struct {
	parkingSvc parkingService
	actions    manualActions
}

func NewParkingHandler(parkingSvc parkingService, actions manualActions) *ParkingHandler {
	return &ParkingHandler{parkingSvc: parkingSvc, actions: actions}
}

func (h *ParkingHandler) Register(r *gin.RouterGroup) {
	r.GET("/parking", h.GetCurrent)
	r.PUT("/parking", h.SetParking)
	r.POST("/parking/moved", h.MovedCar)
	r.GET("/parking/next-cleaning", h.GetNextCleaning)
	r.GET("/parking/history", h.GetHistory)
}

func (h *ParkingHandler) GetCurrent(c *gin.Context) {
	spot, err := h.parkingSvc.Current(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load parking spot"})
		return
	}
	if spot == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no parking spot recorded"})
		return
	}

	c.JSON(http.StatusOK, toSpotResponse(spot))
}

func (h *ParkingHandler) SetParking(c *gin.Context) {
	var req setParkingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coordinate out of range"})
		return
	}
	if req.Accuracy < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "accuracy must be non-negative"})
		return
	}

	h.actions.UserSetInitialParking(c.Request.Context(), domain.Coordinate{Lat: req.Latitude, Lon: req.Longitude}, req.Accuracy)
	c.Status(http.StatusNoContent)
}

func (h *ParkingHandler) MovedCar(c *gin.Context) {
	h.actions.UserMovedCar(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (h *ParkingHandler) GetNextCleaning(c *gin.Context) {
	next, err := h.parkingSvc.NextCleaning(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoParkingSpot) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no parking spot recorded"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve next cleaning"})
		return
	}
	if next == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, gin.H{"next_cleaning": next.Unix()})
}

func (h *ParkingHandler) GetHistory(c *gin.Context) {
	start, err := strconv.ParseInt(c.Query("start"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start parameter"})
		return
	}

	end, err := strconv.ParseInt(c.Query("end"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end parameter"})
		return
	}

	query := &domain.HistoryQuery{
		Start: time.Unix(start, 0),
		End:   time.Unix(end, 0),
	}

	spots, err := h.parkingSvc.History(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch history"})
		return
	}

	results := make([]spotResponse, len(spots))
	for i, spot := range spots {
		results[i] = toSpotResponse(&spot)
	}
	c.JSON(http.StatusOK, results)
}

func toSpotResponse(spot *domain.ParkingSpot) spotResponse {
	return spotResponse{
		Latitude:  spot.Lat,
		Longitude: spot.Lon,
		Accuracy:  spot.Accuracy,
		ParkedAt:  spot.ParkedAt.Unix(),
	}
}
