package models

import "time"

type Item struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	OwnerID     int64  `json:"-"`
	RequestID   int64  `json:"requestId,omitempty"`
}

// ItemDetail is an item enriched for reads: booking edge timestamps and the
// item's comments. Absent bookings render as null, not as an error.
type ItemDetail struct {
	Item
	LastBooking *time.Time `json:"lastBooking"`
	NextBooking *time.Time `json:"nextBooking"`
	Comments    []Comment  `json:"comments"`
}

// ItemPatch carries a partial item update. Nil fields are left untouched.
type ItemPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}
