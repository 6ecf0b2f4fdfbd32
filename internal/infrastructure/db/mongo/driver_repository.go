package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/feedr/routing-api/internal/core/domain"
)

const collectionDriverProfiles = "driver_profiles"

type DriverRepository struct {
	col *mongo.Collection
}

func NewDriverRepository(db *mongo.Database) *DriverRepository {
	return &DriverRepository{col: db.Collection(collectionDriverProfiles)}
}

// FindByID retrieves a driver profile by its identifier.
func (r *DriverRepository) FindByID(ctx context.Context, driverID string) (*domain.DriverProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.DriverProfile
	err := r.col.FindOne(ctx, bson.M{"_id": driverID}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDriverNotFound
		}
		return nil, err
	}
	return &p, nil
}

// UpdatePosition upserts the profile's position snapshot. The snapshot
// outlives the live location store entry and serves as its fallback.
func (r *DriverRepository) UpdatePosition(ctx context.Context, driverID string, pos domain.Coordinate) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"current_latitude":    pos.Latitude,
		"current_longitude":   pos.Longitude,
		"location_updated_at": time.Now().UTC(),
	}}

	_, err := r.col.UpdateOne(ctx, bson.M{"_id": driverID}, update, options.Update().SetUpsert(true))
	return err
}
