package ports

import "github.com/feedr/routing-api/internal/core/domain"

// ETARefreshJob asks for an order's delivery estimate to be recomputed and
// persisted. DriverLocation, when present, anchors the route at the driver's
// live position.
type ETARefreshJob struct {
	OrderID        string
	DriverLocation *domain.Coordinate
}
