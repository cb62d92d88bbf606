package models

import "time"

// Booking represents a confirmed booking record.
type Booking struct {
	ID          string    `bson:"id" json:"id"`
	UserID      string    `bson:"userId" json:"userId"`
	LocationID  string    `bson:"locationId" json:"locationId"`
	StartTime   time.Time `bson:"startTime" json:"startTime"`
	EndTime     time.Time `bson:"endTime" json:"endTime"`
	CreditCost  float64   `bson:"creditCost" json:"creditCost"`
	ServiceName string    `bson:"serviceName" json:"serviceName"`
	CoachID     string    `bson:"coachId,omitempty" json:"coachId,omitempty"`
	PaymentRef  string    `bson:"paymentRef,omitempty" json:"paymentRef,omitempty"` // "balance" or the checkout session id
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// Duration returns the booked time span.
func (b Booking) Duration() time.Duration {
	return b.EndTime.Sub(b.StartTime)
}

// BookingIntent is an in-flight, not yet committed booking for one location.
type BookingIntent struct {
	LocationID              string    `json:"locationId"`
	StartTime               time.Time `json:"startTime"`
	EndTime                 time.Time `json:"endTime"`
	ServiceName             string    `json:"serviceName"`
	Cost                    float64   `json:"cost"`
	MatchingAvailabilityIDs []string  `json:"matchingAvailabilityIds"`
	CurrentCount            int       `json:"currentCount"`
	MaxCapacity             int       `json:"maxCapacity"`
}

// DurationHours returns the intent's span in hours.
func (i BookingIntent) DurationHours() float64 {
	return i.EndTime.Sub(i.StartTime).Hours()
}

// BookingSummary is rendered on the confirmation screen.
type BookingSummary struct {
	Bookings   []Booking `json:"bookings"`
	Count      int       `json:"count"`
	TotalHours float64   `json:"totalHours"`
	TotalCost  float64   `json:"totalCost"`
	NewBalance *float64  `json:"newBalance,omitempty"`
}

// NewBookingSummary totals a set of committed bookings.
func NewBookingSummary(bookings []Booking) BookingSummary {
	s := BookingSummary{Bookings: bookings, Count: len(bookings)}
	for _, b := range bookings {
		s.TotalHours += b.Duration().Hours()
		s.TotalCost += b.CreditCost
	}
	return s
}
