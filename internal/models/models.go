package models

import "time"

// Profile is a learner identity. Profiles are selected via cookie; there is
// no authentication layer.
type Profile struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
