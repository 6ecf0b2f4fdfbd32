package domain

import "time"

// DriverProfile is the slice of the driver record this service consumes:
// the last persisted position snapshot. Live positions are kept separately
// in the location store and expire; the profile snapshot does not.
type DriverProfile struct {
	ID                string    `json:"id" bson:"_id,omitempty"`
	CurrentLatitude   float64   `json:"current_latitude" bson:"current_latitude"`
	CurrentLongitude  float64   `json:"current_longitude" bson:"current_longitude"`
	LocationUpdatedAt time.Time `json:"location_updated_at,omitempty" bson:"location_updated_at,omitempty"`
}

// Coordinate returns the driver's last known position.
func (d *DriverProfile) Coordinate() Coordinate {
	return Coordinate{Latitude: d.CurrentLatitude, Longitude: d.CurrentLongitude}
}
