package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"courtside/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

type mongoBookingTx struct {
	bookingColl      *mongo.Collection
	availabilityColl *mongo.Collection
}

func (r *mongoBookingRepo) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx BookingTx) error) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := r.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	tx := &mongoBookingTx{bookingColl: r.bookingColl, availabilityColl: r.availabilityColl}
	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	// WithTransaction retries fn on TransientTransactionError, which is what a
	// concurrent LockWindows on the same window produces.
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, tx)
	}, txnOpts)
	if err != nil {
		return fmt.Errorf("booking transaction failed: %w", err)
	}
	return nil
}

func (tx *mongoBookingTx) LockWindows(ctx context.Context, availabilityIDs []string) error {
	if len(availabilityIDs) == 0 {
		return nil
	}
	res, err := tx.availabilityColl.UpdateMany(ctx,
		bson.M{"id": bson.M{"$in": availabilityIDs}},
		bson.M{"$inc": bson.M{"version": 1}},
	)
	if err != nil {
		return fmt.Errorf("lock availability windows failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("no availability windows found for %v", availabilityIDs)
	}
	return nil
}

func (tx *mongoBookingTx) CountForWindow(ctx context.Context, locationID string, start, end time.Time) (int, error) {
	return countForWindow(ctx, tx.bookingColl, locationID, start, end)
}

func (tx *mongoBookingTx) InsertBooking(ctx context.Context, booking *models.Booking) error {
	if _, err := tx.bookingColl.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("insert booking failed: %w", err)
	}
	return nil
}

func (tx *mongoBookingTx) MarkWindowsBooked(ctx context.Context, availabilityIDs []string) error {
	if len(availabilityIDs) == 0 {
		return nil
	}
	_, err := tx.availabilityColl.UpdateMany(ctx,
		bson.M{"id": bson.M{"$in": availabilityIDs}},
		bson.M{"$set": bson.M{"isBooked": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark availability booked: %w", err)
	}
	return nil
}
