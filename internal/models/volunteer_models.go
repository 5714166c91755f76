package models

import "time"

// Volunteer is a person who may borrow garments. The (last_name, first_name)
// pair, compared case-insensitively, is the natural lookup key used by the
// public kiosk endpoints and by CSV import de-duplication.
type Volunteer struct {
	ID        int64     `json:"id" db:"id"`
	FirstName string    `json:"first_name" db:"first_name" binding:"required"`
	LastName  string    `json:"last_name" db:"last_name" binding:"required"`
	Note      string    `json:"note" db:"note"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
