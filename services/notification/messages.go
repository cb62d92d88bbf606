package notification

import (
	"fmt"

	"courtside/models"

	"firebase.google.com/go/v4/messaging"
)

const displayLayout = "Mon Jan 2, 3:04 PM"

// BuildConfirmationMessage summarises a set of committed bookings.
func BuildConfirmationMessage(token string, bookings []models.Booking) *messaging.Message {
	summary := models.NewBookingSummary(bookings)
	body := fmt.Sprintf("%s at %s", bookings[0].ServiceName, bookings[0].StartTime.Format(displayLayout))
	if summary.Count > 1 {
		body = fmt.Sprintf("%d sessions, %.1f hours, %.2f credits", summary.Count, summary.TotalHours, summary.TotalCost)
	}
	return highPriority(&messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: "Booking confirmed",
			Body:  body,
		},
		Data: map[string]string{
			"type":      "booking_confirmed",
			"bookingId": bookings[0].ID,
			"count":     fmt.Sprint(summary.Count),
		},
	})
}

func BuildReminderMessage(token string, p models.ReminderPayload) *messaging.Message {
	return highPriority(&messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: p.Title,
			Body:  p.Body,
		},
		Data: map[string]string{
			"type":       "booking_reminder",
			"bookingId":  p.BookingID,
			"locationId": p.LocationID,
			"fireDate":   p.FireDate,
		},
	})
}

func highPriority(msg *messaging.Message) *messaging.Message {
	msg.Android = &messaging.AndroidConfig{
		Priority: "high",
		Notification: &messaging.AndroidNotification{
			ChannelID: "high_priority",
			Sound:     "default",
		},
	}
	msg.APNS = &messaging.APNSConfig{
		Headers: map[string]string{
			"apns-priority":  "10",
			"apns-push-type": "alert",
		},
		Payload: &messaging.APNSPayload{
			Aps: &messaging.Aps{Sound: "default"},
		},
	}
	return msg
}
