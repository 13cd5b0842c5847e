package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shyamkumar703/parky/module/core/domain"
	"github.com/shyamkumar703/parky/module/core/internal/repository/database"
)

var _ database.ParkingStore = (*ParkingRepo)(nil)

type ParkingRepo struct {
	db *sql.DB
}

func NewParkingRepo(db *sql.DB) *ParkingRepo {
	return &ParkingRepo{db: db}
}

// Save upserts the single current-spot row and appends to the history.
func (r *ParkingRepo) Save(ctx context.Context, spot *domain.ParkingSpot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO current_spot (id, latitude, longitude, accuracy, parked_at) VALUES (1, $1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET latitude = $1, longitude = $2, accuracy = $3, parked_at = $4`,
		spot.Lat, spot.Lon, spot.Accuracy, spot.ParkedAt,
	)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO parking_history (latitude, longitude, accuracy, parked_at) VALUES ($1, $2, $3, $4)`,
		spot.Lat, spot.Lon, spot.Accuracy, spot.ParkedAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *ParkingRepo) Load(ctx context.Context) (*domain.ParkingSpot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT latitude, longitude, accuracy, parked_at FROM current_spot WHERE id = 1`,
	)

	var spot domain.ParkingSpot
	if err := row.Scan(&spot.Lat, &spot.Lon, &spot.Accuracy, &spot.ParkedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &spot, nil
}

func (r *ParkingRepo) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM current_spot WHERE id = 1`)
	return err
}

func (r *ParkingRepo) History(ctx context.Context, query *domain.HistoryQuery) ([]domain.ParkingSpot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT latitude, longitude, accuracy, parked_at FROM parking_history WHERE parked_at >= $1 AND parked_at <= $2 ORDER BY parked_at ASC`,
		query.Start, query.End,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.ParkingSpot
	for rows.Next() {
		var spot domain.ParkingSpot
		if err := rows.Scan(&spot.Lat, &spot.Lon, &spot.Accuracy, &spot.ParkedAt); err != nil {
			return nil, err
		}
		results = append(results, spot)
	}
	return results, rows.Err()
}
