package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"courtside/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func windowFilter(locationID string, start, end time.Time) bson.M {
	return bson.M{
		"locationId": locationID,
		"startTime":  start,
		"endTime":    end,
	}
}

func countForWindow(ctx context.Context, coll *mongo.Collection, locationID string, start, end time.Time) (int, error) {
	n, err := coll.CountDocuments(ctx, windowFilter(locationID, start, end))
	if err != nil {
		return 0, fmt.Errorf("error counting bookings for %s at %s: %w", locationID, start.Format(time.RFC3339), err)
	}
	return int(n), nil
}

func (r *mongoBookingRepo) CountForWindow(ctx context.Context, locationID string, start, end time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return countForWindow(ctx, r.bookingColl, locationID, start, end)
}

func (r *mongoBookingRepo) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}})
	cursor, err := r.bookingColl.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}
