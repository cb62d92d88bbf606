package bookingRepo

import (
	"context"
	"time"

	"courtside/database"
	availabilityRepo "courtside/database/repository/availability"
	"courtside/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingRepository interface {
	// CountForWindow counts bookings with exactly this (location, start, end) triple.
	CountForWindow(ctx context.Context, locationID string, start, end time.Time) (int, error)
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	// WithTransaction runs fn in a single transaction. fn may be invoked more than once
	// when the transaction is retried after a write conflict.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx BookingTx) error) error
	EnsureIndexes(ctx context.Context) error
}

// BookingTx is the set of writes a booking commit performs atomically.
type BookingTx interface {
	// LockWindows bumps the version of the given windows so concurrent commits on the
	// same windows conflict instead of both passing the capacity count.
	LockWindows(ctx context.Context, availabilityIDs []string) error
	CountForWindow(ctx context.Context, locationID string, start, end time.Time) (int, error)
	InsertBooking(ctx context.Context, booking *models.Booking) error
	MarkWindowsBooked(ctx context.Context, availabilityIDs []string) error
}

type mongoBookingRepo struct {
	bookingColl      *mongo.Collection
	availabilityColl *mongo.Collection
}

// NewMongoBookingRepo constructs a new MongoDB BookingRepository.
func NewMongoBookingRepo() BookingRepository {
	return NewMongoBookingRepoWithDB(database.DB())
}

// NewMongoBookingRepoWithDB binds the repository to an explicit database.
func NewMongoBookingRepoWithDB(db *mongo.Database) BookingRepository {
	return &mongoBookingRepo{
		bookingColl:      db.Collection("bookings"),
		availabilityColl: db.Collection(availabilityRepo.CollectionName),
	}
}
