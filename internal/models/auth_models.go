package models

import "time"

// User roles. Admins manage users and read the audit log; staff run the
// day-to-day operations.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User represents an authenticated back-office user.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
