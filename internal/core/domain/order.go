package domain

import "time"

// OrderStatus represents the lifecycle state of a delivery order.
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusReadyForPickup OrderStatus = "ready_for_pickup"
	StatusPickedUp       OrderStatus = "picked_up"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// ActiveStatuses is the set of non-terminal states a driver still has to
// act on. Route optimization only considers orders in these states.
var ActiveStatuses = []OrderStatus{
	StatusConfirmed,
	StatusPreparing,
	StatusReadyForPickup,
	StatusPickedUp,
}

// Active reports whether the status is in the active (routable) set.
func (s OrderStatus) Active() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// Order is the slice of the order record this service consumes: identity,
// both route endpoints, and the ETA field it may overwrite.
type Order struct {
	ID                    string      `json:"id" bson:"_id,omitempty"`
	RestaurantID          string      `json:"restaurant_id" bson:"restaurant_id"`
	DriverID              string      `json:"driver_id,omitempty" bson:"driver_id,omitempty"`
	Status                OrderStatus `json:"order_status" bson:"order_status"`
	DeliveryLatitude      float64     `json:"delivery_latitude" bson:"delivery_latitude"`
	DeliveryLongitude     float64     `json:"delivery_longitude" bson:"delivery_longitude"`
	EstimatedDeliveryTime time.Time   `json:"estimated_delivery_time,omitempty" bson:"estimated_delivery_time,omitempty"`
	CreatedAt             time.Time   `json:"created_at" bson:"created_at"`
}

// DeliveryCoordinate returns the order's drop-off point.
func (o *Order) DeliveryCoordinate() Coordinate {
	return Coordinate{Latitude: o.DeliveryLatitude, Longitude: o.DeliveryLongitude}
}

// Restaurant is the slice of the restaurant record this service consumes.
type Restaurant struct {
	ID        string  `json:"id" bson:"_id,omitempty"`
	Name      string  `json:"name" bson:"name"`
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// Coordinate returns the restaurant's pickup point.
func (r *Restaurant) Coordinate() Coordinate {
	return Coordinate{Latitude: r.Latitude, Longitude: r.Longitude, Address: r.Name}
}
