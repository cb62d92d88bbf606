package booking

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeSlotUnavailable        ErrorCode = "SlotUnavailable"
	CodeSlotFull               ErrorCode = "SlotFull"
	CodePastBooking            ErrorCode = "PastBooking"
	CodeBookingTooSoon         ErrorCode = "BookingTooSoon"
	CodePaymentError           ErrorCode = "PaymentError"
	CodePaymentCancelled       ErrorCode = "PaymentCancelled"
	CodeBookingFailed          ErrorCode = "BookingFailed"
	CodePermissionDenied       ErrorCode = "PermissionDenied"
	CodeNonContiguousSelection ErrorCode = "NonContiguousSelection"
)

// BookingError is a user-facing failure carrying a modal title and message.
type BookingError struct {
	Code    ErrorCode
	Title   string
	Message string
	Err     error
}

func (e *BookingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BookingError) Unwrap() error { return e.Err }

// Is matches on Code so errors.Is(err, ErrSlotFull) holds for any SlotFull error.
func (e *BookingError) Is(target error) bool {
	t, ok := target.(*BookingError)
	return ok && t.Code == e.Code
}

var (
	ErrSlotUnavailable        = &BookingError{Code: CodeSlotUnavailable, Title: "Slot unavailable"}
	ErrSlotFull               = &BookingError{Code: CodeSlotFull, Title: "Session full"}
	ErrPastBooking            = &BookingError{Code: CodePastBooking, Title: "Time has passed"}
	ErrBookingTooSoon         = &BookingError{Code: CodeBookingTooSoon, Title: "Too soon to book"}
	ErrPaymentError           = &BookingError{Code: CodePaymentError, Title: "Payment failed"}
	ErrPaymentCancelled       = &BookingError{Code: CodePaymentCancelled, Title: "Payment cancelled"}
	ErrBookingFailed          = &BookingError{Code: CodeBookingFailed, Title: "Booking failed"}
	ErrPermissionDenied       = &BookingError{Code: CodePermissionDenied, Title: "Permission denied"}
	ErrNonContiguousSelection = &BookingError{Code: CodeNonContiguousSelection, Title: "Slots not consecutive"}
)

func newError(kind *BookingError, cause error, format string, args ...interface{}) *BookingError {
	return &BookingError{
		Code:    kind.Code,
		Title:   kind.Title,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

// AsBookingError extracts the outermost BookingError from err.
func AsBookingError(err error) (*BookingError, bool) {
	var be *BookingError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
