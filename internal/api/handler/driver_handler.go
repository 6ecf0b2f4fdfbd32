package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/feedr/routing-api/internal/api/metrics"
	"github.com/feedr/routing-api/internal/core/domain"
	"github.com/feedr/routing-api/internal/core/ports"
)

// refreshEnqueuer accepts ETA refresh jobs for background processing.
type refreshEnqueuer interface {
	EnqueueBatch(jobs []ports.ETARefreshJob)
}

// DriverHandler handles HTTP requests for driver routes and positions.
type DriverHandler struct {
	service   ports.RoutingService
	drivers   ports.DriverRepository
	orders    ports.OrderRepository
	locations ports.DriverLocationStore
	refresher refreshEnqueuer
	log       zerolog.Logger
}

func NewDriverHandler(
	service ports.RoutingService,
	drivers ports.DriverRepository,
	orders ports.OrderRepository,
	locations ports.DriverLocationStore,
	refresher refreshEnqueuer,
	log zerolog.Logger,
) *DriverHandler {
	return &DriverHandler{
		service:   service,
		drivers:   drivers,
		orders:    orders,
		locations: locations,
		refresher: refresher,
		log:       log,
	}
}

// OptimizedRoute handles GET /v1/drivers/:id/route.
//
// Drivers may only request their own route; dispatchers and admins may
// request any.
//
// @Summary      Plan a route over all of a driver's active orders
// @Tags         drivers
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Driver ID"
// @Success      200  {object}  driverRouteResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /v1/drivers/{id}/route [get]
func (h *DriverHandler) OptimizedRoute(c echo.Context) error {
	driverID := c.Param("id")

	role, claimedDriverID, err := ctxClaims(c)
	if err != nil {
		return err
	}
	if role == domain.RoleDriver && claimedDriverID != driverID {
		return echo.NewHTTPError(http.StatusForbidden, "drivers may only request their own route")
	}

	result, err := h.service.OptimizeDriverRoute(c.Request().Context(), driverID)
	if err != nil {
		return err
	}

	metrics.RoutesCalculatedTotal.WithLabelValues(ports.ProfileDrivingTraffic, "driver_optimization").Inc()

	return c.JSON(http.StatusOK, driverRouteResponse{
		DriverID:      driverID,
		OrderSequence: result.OrderSequence,
		TotalDistance: result.TotalDistance,
		TotalDuration: result.TotalDuration,
		Route:         newRouteResponse(result.Route, time.Now()),
	})
}

// UpdateLocation handles PUT /v1/drivers/:id/location.
//
// The position is written to the live location store and the driver profile,
// then an ETA refresh is queued for each of the driver's active orders.
//
// @Summary      Report a driver's current position
// @Tags         drivers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Driver ID"
// @Param        body  body      updateLocationRequest  true  "Current position"
// @Success      200   {object}  updateLocationResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/drivers/{id}/location [put]
func (h *DriverHandler) UpdateLocation(c echo.Context) error {
	driverID := c.Param("id")

	role, claimedDriverID, err := ctxClaims(c)
	if err != nil {
		return err
	}
	if role == domain.RoleDriver && claimedDriverID != driverID {
		return echo.NewHTTPError(http.StatusForbidden, "drivers may only update their own position")
	}

	var req updateLocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pos := domain.Coordinate{Latitude: req.Lat, Longitude: req.Lng}
	if !pos.Valid() {
		return domain.ErrInvalidCoordinate
	}

	ctx := c.Request().Context()
	if err := h.locations.Set(ctx, driverID, pos); err != nil {
		// The profile snapshot below still captures the position, so a
		// live-store outage degrades freshness rather than failing the call.
		h.log.Warn().Err(err).Str("driver_id", driverID).Msg("live location store write failed")
	}
	if err := h.drivers.UpdatePosition(ctx, driverID, pos); err != nil {
		return err
	}

	metrics.DriverLocationUpdatesTotal.Inc()
	h.enqueueRefreshes(c, driverID, pos)

	return c.JSON(http.StatusOK, updateLocationResponse{
		DriverID:  driverID,
		UpdatedAt: time.Now().UTC(),
	})
}

// enqueueRefreshes queues an ETA recomputation for each of the driver's
// active orders. A lookup failure is logged, not surfaced: the position
// update itself already succeeded.
func (h *DriverHandler) enqueueRefreshes(c echo.Context, driverID string, pos domain.Coordinate) {
	orders, err := h.orders.FindActiveByDriver(c.Request().Context(), driverID)
	if err != nil {
		h.log.Warn().Err(err).Str("driver_id", driverID).Msg("active order lookup failed")
		return
	}
	if len(orders) == 0 {
		return
	}

	jobs := make([]ports.ETARefreshJob, len(orders))
	for i, o := range orders {
		jobs[i] = ports.ETARefreshJob{OrderID: o.ID, DriverLocation: &pos}
	}
	h.refresher.EnqueueBatch(jobs)
}
