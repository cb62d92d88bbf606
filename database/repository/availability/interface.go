// File: database/repository/availability/interface.go
package availabilityRepo

import (
	"context"
	"errors"
	"time"

	"courtside/database"
	"courtside/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no unbooked window matches.
var ErrNotFound = errors.New("availability window not found")

// AvailabilityRepository reads the availability windows owned by the admin scheduling tools.
type AvailabilityRepository interface {
	// GetOpenByID returns the window with the given id when it is not booked.
	GetOpenByID(ctx context.Context, id string) (*models.AvailabilityWindow, error)
	// FindOpen returns unbooked windows of a location whose start time lies in [from, to].
	FindOpen(ctx context.Context, locationID string, from, to time.Time) ([]models.AvailabilityWindow, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoAvailabilityRepo struct {
	coll *mongo.Collection
}

// NewMongoAvailabilityRepo constructs a new MongoDB AvailabilityRepository.
func NewMongoAvailabilityRepo() AvailabilityRepository {
	return NewMongoAvailabilityRepoWithDB(database.DB())
}

// NewMongoAvailabilityRepoWithDB binds the repository to an explicit database.
func NewMongoAvailabilityRepoWithDB(db *mongo.Database) AvailabilityRepository {
	return &mongoAvailabilityRepo{
		coll: db.Collection(CollectionName),
	}
}

// CollectionName is shared with the booking repository, which flips isBooked.
const CollectionName = "availability"
