package database

import (
	"context"

	"github.com/shyamkumar703/parky/module/core/domain"
)

// ParkingStore persists the current parking belief plus an append-only
// history of confirmed spots.
type ParkingStore interface {
	Save(ctx context.Context, spot *domain.ParkingSpot) error
	// Load returns nil with no error when no spot is stored.
	Load(ctx context.Context) (*domain.ParkingSpot, error)
	Clear(ctx context.Context) error
	History(ctx context.Context, query *domain.HistoryQuery) ([]domain.ParkingSpot, error)
}
