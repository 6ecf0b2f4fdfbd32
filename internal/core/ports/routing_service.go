package ports

import (
	"context"
	"time"

	"github.com/feedr/routing-api/internal/core/domain"
)

// OrderETA is returned by CalculateOrderETA.
type OrderETA struct {
	ETA      time.Time
	Distance float64 // meters
	Duration float64 // seconds, includes the preparation buffer when applied
}

// DriverRoute is returned by OptimizeDriverRoute. OrderSequence lists the
// order identifiers in the sequence they were batched, which is the fixed
// waypoint order handed to the provider, not necessarily the sequence the
// provider's shortest path visits them in.
type DriverRoute struct {
	Route         *domain.OptimizedRoute
	OrderSequence []string
	TotalDistance float64
	TotalDuration float64
}

// RoutingService is the route and ETA engine.
type RoutingService interface {
	// CalculateRoute computes a single-leg route origin → destination.
	CalculateRoute(ctx context.Context, origin, destination domain.Coordinate, opts RouteOptions) (*domain.OptimizedRoute, error)

	// CalculateMultiStopRoute plans one route through every pickup/drop-off
	// pair, anchored at the actor's current position. Deliveries are ordered
	// descending by priority (stable on ties) before waypoint flattening.
	CalculateMultiStopRoute(ctx context.Context, anchor domain.Coordinate, deliveries []domain.BatchedDelivery) (*domain.OptimizedRoute, error)

	// CalculateOrderETA derives an arrival estimate for an order. With a
	// driver position the route is driver → restaurant → customer; without
	// one it is restaurant → customer plus a fixed preparation buffer.
	CalculateOrderETA(ctx context.Context, orderID string, driverLocation *domain.Coordinate) (*OrderETA, error)

	// UpdateOrderETA writes a computed ETA back onto the order record.
	UpdateOrderETA(ctx context.Context, orderID string, eta time.Time) error

	// OptimizeDriverRoute plans one multi-stop route over all of the
	// driver's active orders from their live position.
	OptimizeDriverRoute(ctx context.Context, driverID string) (*DriverRoute, error)
}
