package models

import "time"

// ItemRequest is a "wanted item" posting. Items answering the request
// reference it by id; the Items list is computed at read time.
type ItemRequest struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	RequesterID int64     `json:"-"`
	Requester   User      `json:"requester"`
	Created     time.Time `json:"created"`
	Items       []Item    `json:"items,omitempty"`
}
