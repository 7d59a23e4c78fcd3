package models

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserPatch carries a partial user update. Nil fields are left untouched,
// which keeps "not supplied" distinct from "cleared".
type UserPatch struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}
