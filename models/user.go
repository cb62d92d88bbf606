package models

import "time"

// Roles carried in the auth token.
const (
	RoleStudent = "student"
	RoleCoach   = "coach"
	RoleAdmin   = "admin"
)

// User is the slice of the user document this service reads and writes.
type User struct {
	ID        string    `bson:"id" json:"id"`
	Balance   float64   `bson:"balance" json:"balance"`
	FCMToken  string    `bson:"fcmToken,omitempty" json:"-"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
