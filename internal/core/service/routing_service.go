package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/feedr/routing-api/internal/core/domain"
	"github.com/feedr/routing-api/internal/core/ports"
)

// prepTime is the fixed preparation buffer added when no driver position is
// known: the order still has to be cooked before anyone can pick it up. It
// is applied only in the no-driver branch of CalculateOrderETA.
const prepTime = 15 * time.Minute

// RoutingService implements ports.RoutingService. Every operation is a
// short-lived call chain (storage read → provider call → optional storage
// write) with no shared mutable state; the service is safe for concurrent
// use. Failures propagate unchanged, without retries or stale fallbacks.
type RoutingService struct {
	directions  ports.DirectionsProvider
	orders      ports.OrderRepository
	restaurants ports.RestaurantRepository
	drivers     ports.DriverRepository
	locations   ports.DriverLocationStore
	logger      zerolog.Logger

	// now is the clock used for ETA derivation; overridable in tests.
	now func() time.Time
}

func NewRoutingService(
	directions ports.DirectionsProvider,
	orders ports.OrderRepository,
	restaurants ports.RestaurantRepository,
	drivers ports.DriverRepository,
	locations ports.DriverLocationStore,
	logger zerolog.Logger,
) *RoutingService {
	return &RoutingService{
		directions:  directions,
		orders:      orders,
		restaurants: restaurants,
		drivers:     drivers,
		locations:   locations,
		logger:      logger,
		now:         time.Now,
	}
}

// CalculateRoute computes a single-leg route origin → destination.
func (s *RoutingService) CalculateRoute(ctx context.Context, origin, destination domain.Coordinate, opts ports.RouteOptions) (*domain.OptimizedRoute, error) {
	if !origin.Valid() || !destination.Valid() {
		return nil, domain.ErrInvalidCoordinate
	}
	return s.directions.Route(ctx, []domain.Coordinate{origin, destination}, opts)
}

// CalculateMultiStopRoute plans one route through every pickup/drop-off pair.
//
// Deliveries are ordered descending by priority (stable, so equal priorities
// keep their input order) and flattened into the waypoint sequence
// [anchor, pickup1, dropoff1, pickup2, dropoff2, …]. The provider cap is
// enforced before any network call.
func (s *RoutingService) CalculateMultiStopRoute(ctx context.Context, anchor domain.Coordinate, deliveries []domain.BatchedDelivery) (*domain.OptimizedRoute, error) {
	if len(deliveries) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	if !anchor.Valid() {
		return nil, domain.ErrInvalidCoordinate
	}

	sorted := make([]domain.BatchedDelivery, len(deliveries))
	copy(sorted, deliveries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})

	waypoints := make([]domain.Coordinate, 0, 1+2*len(sorted))
	waypoints = append(waypoints, anchor)
	for _, d := range sorted {
		if !d.Pickup.Valid() || !d.Dropoff.Valid() {
			return nil, fmt.Errorf("delivery %s: %w", d.OrderID, domain.ErrInvalidCoordinate)
		}
		waypoints = append(waypoints, d.Pickup, d.Dropoff)
	}

	if len(waypoints) > domain.MaxWaypoints {
		return nil, domain.ErrTooManyWaypoints
	}

	return s.directions.Route(ctx, waypoints, ports.RouteOptions{
		Profile: ports.ProfileDrivingTraffic,
		Steps:   true,
	})
}

// CalculateOrderETA derives an arrival estimate for an order.
//
// With a driver position the route models driver → restaurant → customer.
// Without one it models restaurant → customer and adds the preparation
// buffer: no driver assigned yet means the kitchen clock dominates.
func (s *RoutingService) CalculateOrderETA(ctx context.Context, orderID string, driverLocation *domain.Coordinate) (*ports.OrderETA, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	restaurant, err := s.restaurants.FindByID(ctx, order.RestaurantID)
	if err != nil {
		return nil, err
	}

	pickup := restaurant.Coordinate()
	dropoff := order.DeliveryCoordinate()
	if !pickup.Valid() || !dropoff.Valid() {
		return nil, domain.ErrMissingLocation
	}

	if driverLocation != nil {
		route, err := s.CalculateMultiStopRoute(ctx, *driverLocation, []domain.BatchedDelivery{{
			OrderID:  orderID,
			Pickup:   pickup,
			Dropoff:  dropoff,
			Priority: 1,
		}})
		if err != nil {
			return nil, err
		}
		return &ports.OrderETA{
			ETA:      route.ETA,
			Distance: route.Distance,
			Duration: route.Duration,
		}, nil
	}

	route, err := s.CalculateRoute(ctx, pickup, dropoff, ports.RouteOptions{Steps: true})
	if err != nil {
		return nil, err
	}

	totalDuration := route.Duration + prepTime.Seconds()
	return &ports.OrderETA{
		ETA:      s.now().Add(time.Duration(totalDuration * float64(time.Second))),
		Distance: route.Distance,
		Duration: totalDuration,
	}, nil
}

// UpdateOrderETA writes a computed ETA back onto the order record.
func (s *RoutingService) UpdateOrderETA(ctx context.Context, orderID string, eta time.Time) error {
	if err := s.orders.UpdateETA(ctx, orderID, eta); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID).Msg("failed to persist order ETA")
		return fmt.Errorf("update order eta: %w", err)
	}
	return nil
}

// OptimizeDriverRoute plans one multi-stop route over all of the driver's
// active orders, anchored at their current position.
//
// Priorities are assigned as 1000-index over the storage result order, so
// earlier-returned (older) orders are sequenced first. The returned order
// sequence is the batch order handed to the provider; the provider routes
// through that fixed sequence without re-optimizing it.
func (s *RoutingService) OptimizeDriverRoute(ctx context.Context, driverID string) (*ports.DriverRoute, error) {
	anchor, err := s.driverPosition(ctx, driverID)
	if err != nil {
		return nil, err
	}

	orders, err := s.orders.FindActiveByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, domain.ErrNoActiveOrders
	}

	deliveries := make([]domain.BatchedDelivery, 0, len(orders))
	for i, order := range orders {
		restaurant, err := s.restaurants.FindByID(ctx, order.RestaurantID)
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", order.ID, err)
		}
		deliveries = append(deliveries, domain.BatchedDelivery{
			OrderID:  order.ID,
			Pickup:   restaurant.Coordinate(),
			Dropoff:  order.DeliveryCoordinate(),
			Priority: 1000 - i,
		})
	}

	route, err := s.CalculateMultiStopRoute(ctx, anchor, deliveries)
	if err != nil {
		return nil, err
	}

	sequence := make([]string, len(deliveries))
	for i, d := range deliveries {
		sequence[i] = d.OrderID
	}

	s.logger.Info().
		Str("driver_id", driverID).
		Int("orders", len(sequence)).
		Float64("distance_m", route.Distance).
		Float64("duration_s", route.Duration).
		Msg("driver route optimized")

	return &ports.DriverRoute{
		Route:         route,
		OrderSequence: sequence,
		TotalDistance: route.Distance,
		TotalDuration: route.Duration,
	}, nil
}

// driverPosition resolves the driver's current coordinate: the live
// location store first, then the persisted profile snapshot. A live-store
// read error is logged and treated as a miss; position freshness is
// advisory, not a source of truth.
func (s *RoutingService) driverPosition(ctx context.Context, driverID string) (domain.Coordinate, error) {
	pos, found, err := s.locations.Get(ctx, driverID)
	if err != nil {
		s.logger.Warn().Err(err).Str("driver_id", driverID).Msg("live location lookup failed, using profile snapshot")
	} else if found && pos.Valid() {
		return pos, nil
	}

	profile, err := s.drivers.FindByID(ctx, driverID)
	if err != nil {
		return domain.Coordinate{}, err
	}
	snapshot := profile.Coordinate()
	if !snapshot.Valid() {
		return domain.Coordinate{}, domain.ErrMissingLocation
	}
	return snapshot, nil
}
