package models

import "time"

type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
	StatusCanceled BookingStatus = "CANCELED"
)

type Booking struct {
	ID       int64         `json:"id"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	ItemID   int64         `json:"itemId"`
	BookerID int64         `json:"bookerId"`
	Status   BookingStatus `json:"status"`
}

// BookingDetail is a booking joined with its item and booker, the shape
// list queries return and the API renders.
type BookingDetail struct {
	Booking
	Item   Item `json:"item"`
	Booker User `json:"booker"`
}

// BookingState is the filter enumeration for booking list queries. Matching
// is case-sensitive; anything outside the set converts to StateUnknown.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
	StateUnknown  BookingState = "UNKNOWN"
)

func ConvertBookingState(s string) BookingState {
	switch BookingState(s) {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return BookingState(s)
	default:
		return StateUnknown
	}
}
