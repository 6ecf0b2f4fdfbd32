package ports

import (
	"context"

	"github.com/feedr/routing-api/internal/core/domain"
)

// Routing profiles accepted by the directions provider.
const (
	ProfileDriving        = "driving"
	ProfileDrivingTraffic = "driving-traffic"
	ProfileWalking        = "walking"
	ProfileCycling        = "cycling"
)

// RouteOptions tunes a single directions request. The zero value selects
// the traffic-aware driving profile with turn-by-turn steps.
type RouteOptions struct {
	Profile      string // defaults to ProfileDrivingTraffic
	Alternatives bool
	Steps        bool
}

// DirectionsProvider issues one directions request through an ordered
// waypoint list and normalizes the first route candidate.
//
// Implementations must fail with *domain.ProviderError when the HTTP call
// fails or the provider returns zero routes, and perform no retries;
// retries, if desired, belong to the caller. The waypoint list must hold
// between 2 and domain.MaxWaypoints coordinates; callers enforce the cap
// before invoking the provider.
type DirectionsProvider interface {
	Route(ctx context.Context, waypoints []domain.Coordinate, opts RouteOptions) (*domain.OptimizedRoute, error)
}
