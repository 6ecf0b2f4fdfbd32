package handler

import (
	"encoding/json"
	"time"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type coordinateRequest struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

type calculateRouteRequest struct {
	Origin       coordinateRequest `json:"origin"       validate:"required"`
	Destination  coordinateRequest `json:"destination"  validate:"required"`
	Profile      string            `json:"profile"      validate:"omitempty,oneof=driving driving-traffic walking cycling"`
	Alternatives bool              `json:"alternatives"`
	Steps        bool              `json:"steps"`
}

type deliveryRequest struct {
	OrderID  string            `json:"order_id"`
	Pickup   coordinateRequest `json:"pickup"   validate:"required"`
	Dropoff  coordinateRequest `json:"dropoff"  validate:"required"`
	Priority int               `json:"priority"`
}

type multiStopRequest struct {
	Anchor     coordinateRequest `json:"anchor"     validate:"required"`
	Deliveries []deliveryRequest `json:"deliveries" validate:"required,min=1,dive"`
}

type updateLocationRequest struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

// --- Response types ---
// Response-only types owned by the transport layer, intentionally separate
// from domain types so the JSON contract is not coupled to internal changes.

type coordinateResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type stepResponse struct {
	Instruction string  `json:"instruction"`
	DistanceM   float64 `json:"distance_m"`
	DurationS   float64 `json:"duration_s"`
	Maneuver    string  `json:"maneuver"`
}

type routeResponse struct {
	DistanceM          float64              `json:"distance_m"`
	DistanceText       string               `json:"distance_text"`
	DurationS          float64              `json:"duration_s"`
	DurationText       string               `json:"duration_text"`
	DurationInTrafficS float64              `json:"duration_in_traffic_s"`
	Geometry           json.RawMessage      `json:"geometry,omitempty"`
	Steps              []stepResponse       `json:"steps,omitempty"`
	Waypoints          []coordinateResponse `json:"waypoints"`
	ETA                time.Time            `json:"eta"`
	ETAText            string               `json:"eta_text"`
}

type orderETAResponse struct {
	OrderID      string    `json:"order_id"`
	ETA          time.Time `json:"eta"`
	ETAText      string    `json:"eta_text"`
	DistanceM    float64   `json:"distance_m"`
	DistanceText string    `json:"distance_text"`
	DurationS    float64   `json:"duration_s"`
	DurationText string    `json:"duration_text"`
	Persisted    bool      `json:"persisted"`
}

type driverRouteResponse struct {
	DriverID      string        `json:"driver_id"`
	OrderSequence []string      `json:"order_sequence"`
	TotalDistance float64       `json:"total_distance_m"`
	TotalDuration float64       `json:"total_duration_s"`
	Route         routeResponse `json:"route"`
}

type updateLocationResponse struct {
	DriverID  string    `json:"driver_id"`
	UpdatedAt time.Time `json:"updated_at"`
}
