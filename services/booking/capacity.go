package booking

import (
	"context"

	"courtside/models"
)

// CheckCapacity counts bookings on the intent's exact window and stores the count on
// the intent. A full window fails with SlotFull. The commit transaction repeats the
// check, so this one only spares the user a payment for a window that is already full.
func (s *DefaultBookingService) CheckCapacity(ctx context.Context, intent *models.BookingIntent) (int, error) {
	count, err := s.Bookings.CountForWindow(ctx, intent.LocationID, intent.StartTime, intent.EndTime)
	if err != nil {
		return 0, newError(ErrBookingFailed, err, "Could not check availability. Please try again.")
	}
	if count >= intent.MaxCapacity {
		return count, slotFull(s.display(intent.StartTime))
	}
	intent.CurrentCount = count
	return count, nil
}

// ReachesCapacity reports whether one more booking fills the window.
func ReachesCapacity(count, maxCapacity int) bool {
	return count+1 >= maxCapacity
}

func slotFull(label string) *BookingError {
	return newError(ErrSlotFull, nil, "The %s session is full. Please pick another time.", label)
}
