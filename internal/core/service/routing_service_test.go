package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/feedr/routing-api/internal/core/domain"
	"github.com/feedr/routing-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubDirections struct {
	calls     int
	waypoints [][]domain.Coordinate
	opts      []ports.RouteOptions
	duration  float64 // seconds returned per call
	distance  float64
	err       error
	now       time.Time // base for the ETA the stub derives
}

func (p *stubDirections) Route(_ context.Context, waypoints []domain.Coordinate, opts ports.RouteOptions) (*domain.OptimizedRoute, error) {
	p.calls++
	wp := make([]domain.Coordinate, len(waypoints))
	copy(wp, waypoints)
	p.waypoints = append(p.waypoints, wp)
	p.opts = append(p.opts, opts)
	if p.err != nil {
		return nil, p.err
	}
	return &domain.OptimizedRoute{
		Distance:          p.distance,
		Duration:          p.duration,
		DurationInTraffic: p.duration,
		Waypoints:         wp,
		ETA:               p.now.Add(time.Duration(p.duration) * time.Second),
	}, nil
}

type stubOrderRepo struct {
	orders     map[string]*domain.Order
	active     map[string][]*domain.Order
	updatedETA map[string]time.Time
	updateErr  error
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{
		orders:     make(map[string]*domain.Order),
		active:     make(map[string][]*domain.Order),
		updatedETA: make(map[string]time.Time),
	}
}

func (r *stubOrderRepo) FindByID(_ context.Context, orderID string) (*domain.Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	clone := *o
	return &clone, nil
}

func (r *stubOrderRepo) FindActiveByDriver(_ context.Context, driverID string) ([]*domain.Order, error) {
	return r.active[driverID], nil
}

func (r *stubOrderRepo) UpdateETA(_ context.Context, orderID string, eta time.Time) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updatedETA[orderID] = eta
	return nil
}

type stubRestaurantRepo struct {
	restaurants map[string]*domain.Restaurant
}

func (r *stubRestaurantRepo) FindByID(_ context.Context, id string) (*domain.Restaurant, error) {
	rest, ok := r.restaurants[id]
	if !ok {
		return nil, domain.ErrRestaurantNotFound
	}
	clone := *rest
	return &clone, nil
}

type stubDriverRepo struct {
	profiles map[string]*domain.DriverProfile
}

func (r *stubDriverRepo) FindByID(_ context.Context, id string) (*domain.DriverProfile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, domain.ErrDriverNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubDriverRepo) UpdatePosition(_ context.Context, id string, pos domain.Coordinate) error {
	r.profiles[id] = &domain.DriverProfile{ID: id, CurrentLatitude: pos.Latitude, CurrentLongitude: pos.Longitude}
	return nil
}

type stubLocationStore struct {
	positions map[string]domain.Coordinate
	err       error
}

func (s *stubLocationStore) Set(_ context.Context, id string, pos domain.Coordinate) error {
	s.positions[id] = pos
	return nil
}

func (s *stubLocationStore) Get(_ context.Context, id string) (domain.Coordinate, bool, error) {
	if s.err != nil {
		return domain.Coordinate{}, false, s.err
	}
	pos, ok := s.positions[id]
	return pos, ok, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestService(provider *stubDirections) (*RoutingService, *stubOrderRepo, *stubRestaurantRepo, *stubDriverRepo, *stubLocationStore) {
	orders := newStubOrderRepo()
	restaurants := &stubRestaurantRepo{restaurants: make(map[string]*domain.Restaurant)}
	drivers := &stubDriverRepo{profiles: make(map[string]*domain.DriverProfile)}
	locations := &stubLocationStore{positions: make(map[string]domain.Coordinate)}

	svc := NewRoutingService(provider, orders, restaurants, drivers, locations, discardLogger)
	svc.now = func() time.Time { return fixedNow }
	return svc, orders, restaurants, drivers, locations
}

func coord(lat, lng float64) domain.Coordinate {
	return domain.Coordinate{Latitude: lat, Longitude: lng}
}

func delivery(orderID string, priority int) domain.BatchedDelivery {
	return domain.BatchedDelivery{
		OrderID:  orderID,
		Pickup:   coord(19.43, -99.13),
		Dropoff:  coord(19.44, -99.14),
		Priority: priority,
	}
}

func seedOrder(orders *stubOrderRepo, restaurants *stubRestaurantRepo, orderID string) {
	orders.orders[orderID] = &domain.Order{
		ID:                orderID,
		RestaurantID:      "rest-1",
		Status:            domain.StatusConfirmed,
		DeliveryLatitude:  19.50,
		DeliveryLongitude: -99.20,
	}
	restaurants.restaurants["rest-1"] = &domain.Restaurant{
		ID:        "rest-1",
		Name:      "Taquería Central",
		Latitude:  19.43,
		Longitude: -99.13,
	}
}

// ---------------------------------------------------------------------------
// CalculateMultiStopRoute
// ---------------------------------------------------------------------------

func TestMultiStop_EmptyBatch(t *testing.T) {
	provider := &stubDirections{now: fixedNow}
	svc, _, _, _, _ := newTestService(provider)

	_, err := svc.CalculateMultiStopRoute(context.Background(), coord(19.4, -99.1), nil)
	if !errors.Is(err, domain.ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
	if provider.calls != 0 {
		t.Fatalf("provider must not be called on empty batch, got %d calls", provider.calls)
	}
}

func TestMultiStop_WaypointCap(t *testing.T) {
	provider := &stubDirections{now: fixedNow, duration: 600}
	svc, _, _, _, _ := newTestService(provider)

	// 13 deliveries → 1 anchor + 26 points = 27 waypoints, over the cap.
	var deliveries []domain.BatchedDelivery
	for i := 0; i < 13; i++ {
		deliveries = append(deliveries, delivery("order", i))
	}

	_, err := svc.CalculateMultiStopRoute(context.Background(), coord(19.4, -99.1), deliveries)
	if !errors.Is(err, domain.ErrTooManyWaypoints) {
		t.Fatalf("expected ErrTooManyWaypoints, got %v", err)
	}
	if provider.calls != 0 {
		t.Fatalf("provider must not be called past the cap, got %d calls", provider.calls)
	}
}

func TestMultiStop_ExactlyAtCap(t *testing.T) {
	provider := &stubDirections{now: fixedNow, duration: 600}
	svc, _, _, _, _ := newTestService(provider)

	// 12 deliveries → 25 waypoints, exactly the cap.
	var deliveries []domain.BatchedDelivery
	for i := 0; i < 12; i++ {
		deliveries = append(deliveries, delivery("order", i))
	}

	route, err := svc.CalculateMultiStopRoute(context.Background(), coord(19.4, -99.1), deliveries)
	if err != nil {
		t.Fatalf("unexpected error at cap boundary: %v", err)
	}
	if len(route.Waypoints) != domain.MaxWaypoints {
		t.Fatalf("expected %d waypoints, got %d", domain.MaxWaypoints, len(route.Waypoints))
	}
}

func TestMultiStop_PriorityOrdering(t *testing.T) {
	provider := &stubDirections{now: fixedNow, duration: 600}
	svc, _, _, _, _ := newTestService(provider)

	a := domain.BatchedDelivery{OrderID: "a", Pickup: coord(1, 1), Dropoff: coord(1, 2), Priority: 5}
	b := domain.BatchedDelivery{OrderID: "b", Pickup: coord(2, 1), Dropoff: coord(2, 2), Priority: 1}
	c := domain.BatchedDelivery{OrderID: "c", Pickup: coord(3, 1), Dropoff: coord(3, 2), Priority: 9}

	anchor := coord(9, 9)
	route, err := svc.CalculateMultiStopRoute(context.Background(), anchor, []domain.BatchedDelivery{a, b, c})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []domain.Coordinate{anchor, c.Pickup, c.Dropoff, a.Pickup, a.Dropoff, b.Pickup, b.Dropoff}
	if len(route.Waypoints) != len(want) {
		t.Fatalf("expected %d waypoints, got %d", len(want), len(route.Waypoints))
	}
	for i, w := range want {
		got := route.Waypoints[i]
		if got.Latitude != w.Latitude || got.Longitude != w.Longitude {
			t.Errorf("waypoint[%d]: got (%v,%v), want (%v,%v)", i, got.Latitude, got.Longitude, w.Latitude, w.Longitude)
		}
	}
}

func TestMultiStop_StableOnPriorityTies(t *testing.T) {
	provider := &stubDirections{now: fixedNow, duration: 600}
	svc, _, _, _, _ := newTestService(provider)

	first := domain.BatchedDelivery{OrderID: "first", Pickup: coord(1, 1), Dropoff: coord(1, 2), Priority: 3}
	second := domain.BatchedDelivery{OrderID: "second", Pickup: coord(2, 1), Dropoff: coord(2, 2), Priority: 3}

	route, err := svc.CalculateMultiStopRoute(context.Background(), coord(9, 9), []domain.BatchedDelivery{first, second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if route.Waypoints[1].Latitude != 1 || route.Waypoints[3].Latitude != 2 {
		t.Fatal("equal priorities must preserve input order")
	}
}

func TestMultiStop_InputSliceNotMutated(t *testing.T) {
	provider := &stubDirections{now: fixedNow, duration: 600}
	svc, _, _, _, _ := newTestService(provider)

	deliveries := []domain.BatchedDelivery{delivery("a", 1), delivery("b", 9)}
	_, err := svc.CalculateMultiStopRoute(context.Background(), coord(9, 9), deliveries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deliveries[0].OrderID != "a" || deliveries[1].OrderID != "b" {
		t.Fatal("caller's delivery slice must not be reordered")
	}
}

func TestMultiStop_ProviderErrorPropagates(t *testing.T) {
	provErr := &domain.ProviderError{Reason: "Internal Server Error"}
	provider := &stubDirections{now: fixedNow, err: provErr}
	svc, _, _, _, _ := newTestService(provider)

	_, err := svc.CalculateMultiStopRoute(context.Background(), coord(9, 9), []domain.BatchedDelivery{delivery("a", 1)})
	var pe *domain.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if pe.Reason != "Internal Server Error" {
		t.Errorf("provider reason lost: %q", pe.Reason)
	}
}

// ---------------------------------------------------------------------------
// CalculateOrderETA
// ---------------------------------------------------------------------------

func TestOrderETA_NotFound(t *testing.T) {
	provider := &stubDirections{now: fixedNow}
	svc, _, _, _, _ := newTestService(provider)

	_, err := svc.CalculateOrderETA(context.Background(), "missing", nil)
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderETA_MissingLocation(t *testing.T) {
	provider := &stubDirections{now: fixedNow}
	svc, orders, restaurants, _, _ := newTestService(provider)

	orders.orders["o1"] = &domain.Order{ID: "o1", RestaurantID: "rest-1"} // no delivery coords
	restaurants.restaurants["rest-1"] = &domain.Restaurant{ID: "rest-1", Latitude: 19.4, Longitude: -99.1}

	_, err := svc.CalculateOrderETA(context.Background(), "o1", nil)
	if !errors.Is(err, domain.ErrMissingLocation) {
		t.Fatalf("expected ErrMissingLocation, got %v", err)
	}
	if provider.calls != 0 {
		t.Fatal("provider must not be called when coordinates are absent")
	}
}

// The preparation buffer applies only when no driver position is supplied:
// with a 300 s provider stub the two branches must differ by exactly 900 s.
func TestOrderETA_PrepTimeAsymmetry(t *testing.T) {
	provider := &stubDirections{now: fixedNow, duration: 300, distance: 2500}
	svc, orders, restaurants, _, _ := newTestService(provider)
	seedOrder(orders, restaurants, "o1")

	noDriver, err := svc.CalculateOrderETA(context.Background(), "o1", nil)
	if err != nil {
		t.Fatalf("no-driver branch failed: %v", err)
	}

	driverPos := coord(19.42, -99.12)
	withDriver, err := svc.CalculateOrderETA(context.Background(), "o1", &driverPos)
	if err != nil {
		t.Fatalf("driver branch failed: %v", err)
	}

	if got := noDriver.Duration - withDriver.Duration; got != 900 {
		t.Errorf("expected 900s prep-time difference, got %vs", got)
	}
	if got := noDriver.ETA.Sub(withDriver.ETA); got != 900*time.Second {
		t.Errorf("expected ETAs 900s apart, got %v", got)
	}
}

func TestOrderETA_NoDriver_DeterministicETA(t *testing.T) {
	provider := &stubDirections{now: fixedNow, duration: 600}
	svc, orders, restaurants, _, _ := newTestService(provider)
	seedOrder(orders, restaurants, "o1")

	result, err := svc.CalculateOrderETA(context.Background(), "o1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := fixedNow.Add(600*time.Second + 15*time.Minute)
	if !result.ETA.Equal(want) {
		t.Errorf("eta = %v, want %v", result.ETA, want)
	}
}

func TestOrderETA_DriverBranch_RoutesThroughRestaurant(t *testing.T) {
	provider := &stubDirections{now: fixedNow, duration: 300}
	svc, orders, restaurants, _, _ := newTestService(provider)
	seedOrder(orders, restaurants, "o1")

	driverPos := coord(19.42, -99.12)
	_, err := svc.CalculateOrderETA(context.Background(), "o1", &driverPos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if provider.calls != 1 {
		t.Fatalf("expected 1 provider call, got %d", provider.calls)
	}
	wp := provider.waypoints[0]
	if len(wp) != 3 {
		t.Fatalf("expected driver→restaurant→customer (3 waypoints), got %d", len(wp))
	}
	if wp[0].Latitude != driverPos.Latitude || wp[1].Latitude != 19.43 || wp[2].Latitude != 19.50 {
		t.Errorf("waypoint sequence wrong: %+v", wp)
	}
}

// ---------------------------------------------------------------------------
// UpdateOrderETA
// ---------------------------------------------------------------------------

func TestUpdateOrderETA_Persists(t *testing.T) {
	provider := &stubDirections{now: fixedNow}
	svc, orders, _, _, _ := newTestService(provider)

	eta := fixedNow.Add(20 * time.Minute)
	if err := svc.UpdateOrderETA(context.Background(), "o1", eta); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := orders.updatedETA["o1"]; !got.Equal(eta) {
		t.Errorf("persisted eta = %v, want %v", got, eta)
	}
}

func TestUpdateOrderETA_WriteFailure(t *testing.T) {
	provider := &stubDirections{now: fixedNow}
	svc, orders, _, _, _ := newTestService(provider)
	orders.updateErr = errors.New("write timeout")

	err := svc.UpdateOrderETA(context.Background(), "o1", fixedNow)
	if err == nil {
		t.Fatal("expected error on write failure")
	}
	if !errors.Is(err, orders.updateErr) {
		t.Errorf("underlying write error must be wrapped, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// OptimizeDriverRoute
// ---------------------------------------------------------------------------

func seedDriverOrders(orders *stubOrderRepo, restaurants *stubRestaurantRepo, driverID string, n int) {
	for i := 0; i < n; i++ {
		id := string(rune('a' + i))
		restID := "rest-" + id
		restaurants.restaurants[restID] = &domain.Restaurant{
			ID:        restID,
			Latitude:  20 + float64(i),
			Longitude: -99,
		}
		orders.active[driverID] = append(orders.active[driverID], &domain.Order{
			ID:                id,
			RestaurantID:      restID,
			DriverID:          driverID,
			Status:            domain.StatusPickedUp,
			DeliveryLatitude:  30 + float64(i),
			DeliveryLongitude: -99,
		})
	}
}

func TestOptimizeDriverRoute_NoActiveOrders(t *testing.T) {
	provider := &stubDirections{now: fixedNow}
	svc, _, _, drivers, _ := newTestService(provider)
	drivers.profiles["d1"] = &domain.DriverProfile{ID: "d1", CurrentLatitude: 19.4, CurrentLongitude: -99.1}

	_, err := svc.OptimizeDriverRoute(context.Background(), "d1")
	if !errors.Is(err, domain.ErrNoActiveOrders) {
		t.Fatalf("expected ErrNoActiveOrders, got %v", err)
	}
	if provider.calls != 0 {
		t.Fatal("provider must not be called without active orders")
	}
}

func TestOptimizeDriverRoute_DriverNotFound(t *testing.T) {
	provider := &stubDirections{now: fixedNow}
	svc, _, _, _, _ := newTestService(provider)

	_, err := svc.OptimizeDriverRoute(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrDriverNotFound) {
		t.Fatalf("expected ErrDriverNotFound, got %v", err)
	}
}

func TestOptimizeDriverRoute_SequencesByStorageOrder(t *testing.T) {
	provider := &stubDirections{now: fixedNow, duration: 1800, distance: 12000}
	svc, orders, restaurants, drivers, _ := newTestService(provider)
	drivers.profiles["d1"] = &domain.DriverProfile{ID: "d1", CurrentLatitude: 19.4, CurrentLongitude: -99.1}
	seedDriverOrders(orders, restaurants, "d1", 3)

	result, err := svc.OptimizeDriverRoute(context.Background(), "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 1000-index priorities keep storage order: earliest-returned first.
	want := []string{"a", "b", "c"}
	if len(result.OrderSequence) != len(want) {
		t.Fatalf("sequence length = %d, want %d", len(result.OrderSequence), len(want))
	}
	for i, id := range want {
		if result.OrderSequence[i] != id {
			t.Errorf("sequence[%d] = %q, want %q", i, result.OrderSequence[i], id)
		}
	}
	if result.TotalDistance != 12000 || result.TotalDuration != 1800 {
		t.Errorf("totals = (%v, %v), want (12000, 1800)", result.TotalDistance, result.TotalDuration)
	}
	// anchor + 3×(pickup, dropoff)
	if len(provider.waypoints[0]) != 7 {
		t.Errorf("expected 7 waypoints, got %d", len(provider.waypoints[0]))
	}
}

func TestOptimizeDriverRoute_PrefersLivePosition(t *testing.T) {
	provider := &stubDirections{now: fixedNow, duration: 600}
	svc, orders, restaurants, drivers, locations := newTestService(provider)
	drivers.profiles["d1"] = &domain.DriverProfile{ID: "d1", CurrentLatitude: 10, CurrentLongitude: 10}
	locations.positions["d1"] = coord(55, 55)
	seedDriverOrders(orders, restaurants, "d1", 1)

	_, err := svc.OptimizeDriverRoute(context.Background(), "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anchor := provider.waypoints[0][0]; anchor.Latitude != 55 {
		t.Errorf("expected live position anchor, got %+v", anchor)
	}
}

func TestOptimizeDriverRoute_FallsBackToProfileOnStoreError(t *testing.T) {
	provider := &stubDirections{now: fixedNow, duration: 600}
	svc, orders, restaurants, drivers, locations := newTestService(provider)
	drivers.profiles["d1"] = &domain.DriverProfile{ID: "d1", CurrentLatitude: 10, CurrentLongitude: 10}
	locations.err = errors.New("redis down")
	seedDriverOrders(orders, restaurants, "d1", 1)

	_, err := svc.OptimizeDriverRoute(context.Background(), "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anchor := provider.waypoints[0][0]; anchor.Latitude != 10 {
		t.Errorf("expected profile snapshot anchor, got %+v", anchor)
	}
}
