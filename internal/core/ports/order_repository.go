package ports

import (
	"context"
	"time"

	"github.com/feedr/routing-api/internal/core/domain"
)

// OrderRepository defines the order reads and the single write this
// service performs.
type OrderRepository interface {
	// FindByID retrieves an order by its identifier.
	FindByID(ctx context.Context, orderID string) (*domain.Order, error)

	// FindActiveByDriver returns the driver's orders whose status is in
	// domain.ActiveStatuses, in storage order (oldest first).
	FindActiveByDriver(ctx context.Context, driverID string) ([]*domain.Order, error)

	// UpdateETA sets the order's estimated_delivery_time field. It is the
	// only mutation this service performs on order records.
	UpdateETA(ctx context.Context, orderID string, eta time.Time) error
}

// RestaurantRepository resolves pickup coordinates for orders.
type RestaurantRepository interface {
	FindByID(ctx context.Context, restaurantID string) (*domain.Restaurant, error)
}
