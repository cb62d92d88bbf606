package models

// ReminderPayload is the asynq payload for a booking reminder.
type ReminderPayload struct {
	BookingID  string `json:"bookingId"`
	UserID     string `json:"userId"`
	LocationID string `json:"locationId"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	FireDate   string `json:"fireDate"`
}
