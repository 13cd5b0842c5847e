package schedules

import (
	"context"

	"github.com/shyamkumar703/parky/module/core/domain"
)

// Source fetches the street-cleaning schedule records near a coordinate.
// radiusMeters is a hint; implementations clamp it to a sane floor because
// centerlines are typically 10-30m from the true parked position.
type Source interface {
	FetchNearby(ctx context.Context, center domain.Coordinate, radiusMeters float64) ([]domain.ScheduleRecord, error)
}
