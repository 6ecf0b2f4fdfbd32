package ports

import (
	"context"

	"github.com/feedr/routing-api/internal/core/domain"
)

// DriverRepository persists driver profile position snapshots.
type DriverRepository interface {
	FindByID(ctx context.Context, driverID string) (*domain.DriverProfile, error)
	// UpdatePosition sets the profile's current_latitude/current_longitude
	// snapshot and its update timestamp.
	UpdatePosition(ctx context.Context, driverID string, pos domain.Coordinate) error
}

// DriverLocationStore holds short-lived live driver positions. Entries
// expire; a miss is reported as found=false, not an error, so callers can
// fall back to the profile snapshot.
type DriverLocationStore interface {
	Set(ctx context.Context, driverID string, pos domain.Coordinate) error
	Get(ctx context.Context, driverID string) (pos domain.Coordinate, found bool, err error)
}
