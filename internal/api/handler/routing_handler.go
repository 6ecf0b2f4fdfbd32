package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/feedr/routing-api/internal/api/metrics"
	"github.com/feedr/routing-api/internal/core/domain"
	"github.com/feedr/routing-api/internal/core/ports"
	"github.com/feedr/routing-api/pkg/format"
)

// RoutingHandler handles HTTP requests for route and ETA calculations.
type RoutingHandler struct {
	service ports.RoutingService
	now     func() time.Time
}

func NewRoutingHandler(service ports.RoutingService) *RoutingHandler {
	return &RoutingHandler{service: service, now: time.Now}
}

// CalculateRoute handles POST /v1/routes.
//
// @Summary      Calculate a single-leg route
// @Tags         routes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      calculateRouteRequest  true  "Origin, destination, and routing options"
// @Success      200   {object}  routeResponse
// @Failure      400   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/routes [post]
func (h *RoutingHandler) CalculateRoute(c echo.Context) error {
	var req calculateRouteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	opts := ports.RouteOptions{
		Profile:      req.Profile,
		Alternatives: req.Alternatives,
		Steps:        req.Steps,
	}
	route, err := h.service.CalculateRoute(
		c.Request().Context(),
		domain.Coordinate{Latitude: req.Origin.Lat, Longitude: req.Origin.Lng},
		domain.Coordinate{Latitude: req.Destination.Lat, Longitude: req.Destination.Lng},
		opts,
	)
	if err != nil {
		return err
	}

	profile := req.Profile
	if profile == "" {
		profile = ports.ProfileDrivingTraffic
	}
	metrics.RoutesCalculatedTotal.WithLabelValues(profile, "single").Inc()

	return c.JSON(http.StatusOK, newRouteResponse(route, h.now()))
}

// CalculateMultiStopRoute handles POST /v1/routes/multi-stop.
//
// @Summary      Calculate a multi-stop route over a delivery batch
// @Tags         routes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      multiStopRequest  true  "Anchor position and delivery batch"
// @Success      200   {object}  routeResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/routes/multi-stop [post]
func (h *RoutingHandler) CalculateMultiStopRoute(c echo.Context) error {
	var req multiStopRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	deliveries := make([]domain.BatchedDelivery, len(req.Deliveries))
	for i, d := range req.Deliveries {
		deliveries[i] = domain.BatchedDelivery{
			OrderID:  d.OrderID,
			Pickup:   domain.Coordinate{Latitude: d.Pickup.Lat, Longitude: d.Pickup.Lng},
			Dropoff:  domain.Coordinate{Latitude: d.Dropoff.Lat, Longitude: d.Dropoff.Lng},
			Priority: d.Priority,
		}
	}

	route, err := h.service.CalculateMultiStopRoute(
		c.Request().Context(),
		domain.Coordinate{Latitude: req.Anchor.Lat, Longitude: req.Anchor.Lng},
		deliveries,
	)
	if err != nil {
		return err
	}

	metrics.RoutesCalculatedTotal.WithLabelValues(ports.ProfileDrivingTraffic, "multi_stop").Inc()

	return c.JSON(http.StatusOK, newRouteResponse(route, h.now()))
}

// OrderETA handles GET /v1/orders/:id/eta.
//
// The optional driver_lat/driver_lng query pair anchors the route at the
// driver's position; both must be present or both absent. With persist=true
// the derived estimate is also written back onto the order record.
//
// @Summary      Derive the delivery estimate for an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id          path      string   true   "Order ID"
// @Param        driver_lat  query     number   false  "Driver latitude"
// @Param        driver_lng  query     number   false  "Driver longitude"
// @Param        persist     query     boolean  false  "Write the estimate back onto the order"
// @Success      200         {object}  orderETAResponse
// @Failure      400         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Failure      422         {object}  errorResponse
// @Failure      502         {object}  errorResponse
// @Router       /v1/orders/{id}/eta [get]
func (h *RoutingHandler) OrderETA(c echo.Context) error {
	orderID := c.Param("id")

	driverLocation, err := driverPositionParams(c)
	if err != nil {
		return err
	}

	eta, err := h.service.CalculateOrderETA(c.Request().Context(), orderID, driverLocation)
	if err != nil {
		return err
	}

	persisted := false
	if persist, _ := strconv.ParseBool(c.QueryParam("persist")); persist {
		if err := h.service.UpdateOrderETA(c.Request().Context(), orderID, eta.ETA); err != nil {
			return err
		}
		metrics.ETAsPersistedTotal.Inc()
		persisted = true
	}

	return c.JSON(http.StatusOK, orderETAResponse{
		OrderID:      orderID,
		ETA:          eta.ETA,
		ETAText:      format.ETA(eta.ETA, h.now()),
		DistanceM:    eta.Distance,
		DistanceText: format.Distance(eta.Distance),
		DurationS:    eta.Duration,
		DurationText: format.Duration(eta.Duration),
		Persisted:    persisted,
	})
}

// driverPositionParams parses the optional driver_lat/driver_lng query pair.
func driverPositionParams(c echo.Context) (*domain.Coordinate, error) {
	latParam := c.QueryParam("driver_lat")
	lngParam := c.QueryParam("driver_lng")
	if latParam == "" && lngParam == "" {
		return nil, nil
	}
	if latParam == "" || lngParam == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "driver_lat and driver_lng must be provided together")
	}

	lat, err := strconv.ParseFloat(latParam, 64)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "driver_lat must be a number")
	}
	lng, err := strconv.ParseFloat(lngParam, 64)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "driver_lng must be a number")
	}

	pos := domain.Coordinate{Latitude: lat, Longitude: lng}
	if !pos.Valid() {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "driver position out of range")
	}
	return &pos, nil
}

func newRouteResponse(route *domain.OptimizedRoute, now time.Time) routeResponse {
	steps := make([]stepResponse, len(route.Steps))
	for i, s := range route.Steps {
		steps[i] = stepResponse{
			Instruction: s.Instruction,
			DistanceM:   s.Distance,
			DurationS:   s.Duration,
			Maneuver:    s.Maneuver,
		}
	}

	waypoints := make([]coordinateResponse, len(route.Waypoints))
	for i, w := range route.Waypoints {
		waypoints[i] = coordinateResponse{Lat: w.Latitude, Lng: w.Longitude}
	}

	return routeResponse{
		DistanceM:          route.Distance,
		DistanceText:       format.Distance(route.Distance),
		DurationS:          route.Duration,
		DurationText:       format.Duration(route.Duration),
		DurationInTrafficS: route.DurationInTraffic,
		Geometry:           route.Geometry,
		Steps:              steps,
		Waypoints:          waypoints,
		ETA:                route.ETA,
		ETAText:            format.ETA(route.ETA, now),
	}
}
