package models

import "time"

// AvailabilityWindow is one bookable window at one location.
type AvailabilityWindow struct {
	ID          string    `bson:"id" json:"id"`
	LocationID  string    `bson:"locationId" json:"locationId"`
	StartTime   time.Time `bson:"startTime" json:"startTime"`
	EndTime     time.Time `bson:"endTime" json:"endTime"`
	ServiceName string    `bson:"serviceName" json:"serviceName"`
	MaxCapacity int       `bson:"maxCapacity" json:"maxCapacity"`
	IsBooked    bool      `bson:"isBooked" json:"isBooked"`
	Version     int       `bson:"version" json:"-"` // bumped inside booking transactions
}

// AvailableWindowResponse is an open window with its remaining capacity.
type AvailableWindowResponse struct {
	AvailabilityWindow
	Booked    int `json:"booked"`
	Remaining int `json:"remaining"`
}

// SelectedSlot is a calendar slot picked by the user. Either AvailabilityID is set,
// or LocationID together with a local Date ("2006-01-02") and Time ("15:04").
type SelectedSlot struct {
	AvailabilityID string `json:"availabilityId,omitempty"`
	LocationID     string `json:"locationId"`
	Date           string `json:"date,omitempty"`
	Time           string `json:"time,omitempty"`
	EndTime        string `json:"endTime,omitempty"`
}
