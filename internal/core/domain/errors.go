package domain

import (
	"errors"
	"fmt"
)

var ErrOrderNotFound = errors.New("order not found")
var ErrDriverNotFound = errors.New("driver not found")
var ErrRestaurantNotFound = errors.New("restaurant not found")
var ErrMissingLocation = errors.New("missing location data")
var ErrNoActiveOrders = errors.New("no active orders for driver")
var ErrEmptyBatch = errors.New("no deliveries provided")
var ErrInvalidCoordinate = errors.New("invalid coordinate")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")

// ErrTooManyWaypoints indicates the composed waypoint list exceeds the
// provider cap. This is a caller error, raised before any network call;
// the caller must split the batch.
var ErrTooManyWaypoints = fmt.Errorf("too many waypoints (max %d)", MaxWaypoints)

// ProviderError reports a failed directions API call: a non-2xx response,
// an empty route set, or an unparseable body. Reason carries the provider's
// own status text or message for diagnosability.
type ProviderError struct {
	Reason string
	Err    error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("directions provider: %s: %v", e.Reason, e.Err)
	}
	return "directions provider: " + e.Reason
}

func (e *ProviderError) Unwrap() error { return e.Err }
