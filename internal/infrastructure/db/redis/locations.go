package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/feedr/routing-api/internal/core/domain"
)

const locationTTL = 5 * time.Minute

// DriverLocationStore keeps live driver positions in Redis with a short
// TTL. An expired or absent entry is a miss, not an error; callers fall
// back to the persisted profile snapshot.
// Key format: driver:location:<driver_id>
type DriverLocationStore struct {
	client *redis.Client
}

// NewDriverLocationStore creates a DriverLocationStore wrapping the given
// Redis client.
func NewDriverLocationStore(client *redis.Client) *DriverLocationStore {
	return &DriverLocationStore{client: client}
}

// Set records the driver's current position and refreshes the TTL.
func (s *DriverLocationStore) Set(ctx context.Context, driverID string, pos domain.Coordinate) error {
	key := s.key(driverID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key,
		"lat", strconv.FormatFloat(pos.Latitude, 'f', -1, 64),
		"lng", strconv.FormatFloat(pos.Longitude, 'f', -1, 64),
		"updated_at", strconv.FormatInt(time.Now().Unix(), 10),
	)
	pipe.Expire(ctx, key, locationTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set driver location: %w", err)
	}
	return nil
}

// Get returns the driver's live position, reporting found=false when the
// entry is absent or expired.
func (s *DriverLocationStore) Get(ctx context.Context, driverID string) (domain.Coordinate, bool, error) {
	fields, err := s.client.HGetAll(ctx, s.key(driverID)).Result()
	if err != nil {
		return domain.Coordinate{}, false, fmt.Errorf("get driver location: %w", err)
	}
	if len(fields) == 0 {
		return domain.Coordinate{}, false, nil
	}

	lat, err := strconv.ParseFloat(fields["lat"], 64)
	if err != nil {
		return domain.Coordinate{}, false, fmt.Errorf("parse driver latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(fields["lng"], 64)
	if err != nil {
		return domain.Coordinate{}, false, fmt.Errorf("parse driver longitude: %w", err)
	}

	return domain.Coordinate{Latitude: lat, Longitude: lng}, true, nil
}

func (s *DriverLocationStore) key(driverID string) string {
	return "driver:location:" + driverID
}
