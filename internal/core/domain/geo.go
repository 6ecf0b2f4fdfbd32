package domain

import (
	"encoding/json"
	"time"
)

// MaxWaypoints is the hard cap on coordinates per directions request,
// a contract of the Mapbox Directions API. It is enforced client-side
// before any network call.
const MaxWaypoints = 25

// Coordinate represents a geographic point. The pair (Latitude, Longitude)
// is only meaningful together; either alone is invalid input.
type Coordinate struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
	Address   string  `json:"address,omitempty" bson:"address,omitempty"`
}

// Valid reports whether the coordinate is a usable lat/lng pair.
// The (0,0) null-island pair is treated as unset: it only ever appears
// here when a record was written without location data.
func (c Coordinate) Valid() bool {
	if c.Latitude == 0 && c.Longitude == 0 {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// RouteStep is one turn-by-turn instruction. Produced only as calculation
// output, never persisted.
type RouteStep struct {
	Instruction string  `json:"instruction"`
	Distance    float64 `json:"distance"` // meters
	Duration    float64 `json:"duration"` // seconds
	Maneuver    string  `json:"maneuver"`
}

// OptimizedRoute is the result of any route calculation.
//
// Geometry is the provider's GeoJSON path data passed through opaque;
// this service never interprets it. ETA is always derived locally as
// calculation time plus Duration, never as provider wall-clock time.
type OptimizedRoute struct {
	Distance          float64         `json:"distance"` // meters
	Duration          float64         `json:"duration"` // seconds
	DurationInTraffic float64         `json:"duration_in_traffic,omitempty"`
	Geometry          json.RawMessage `json:"geometry,omitempty"`
	Steps             []RouteStep     `json:"steps,omitempty"`
	Waypoints         []Coordinate    `json:"waypoints"`
	ETA               time.Time       `json:"eta"`
}

// BatchedDelivery is one unit of work for multi-stop planning. Priority is
// a hint for waypoint sequencing (higher values are visited earlier), not
// a guarantee of the visitation order the provider computes through the
// fixed waypoint list.
type BatchedDelivery struct {
	OrderID  string     `json:"order_id"`
	Pickup   Coordinate `json:"pickup"`
	Dropoff  Coordinate `json:"dropoff"`
	Priority int        `json:"priority"`
}
