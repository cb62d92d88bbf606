// File: utils/constants.go
package utils

// Redis key prefixes for the checkout staging area.
const (
	PendingBookingPrefix   = "pending_booking_"
	SessionMarkerPrefix    = "session_id:"
	ProcessedSessionPrefix = "processed_session:"
)

// Gin context keys set by the auth middleware.
const (
	ContextUserID = "userID"
	ContextRole   = "role"
)
