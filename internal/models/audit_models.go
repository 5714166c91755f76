package models

import "time"

// AuditEntry is one append-only record of a mutating action. Entries are
// never updated or deleted.
type AuditEntry struct {
	ID         int64     `json:"id" db:"id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	Actor      string    `json:"actor" db:"actor"`
	Action     string    `json:"action" db:"action"`
	EntityType string    `json:"entity_type" db:"entity_type"`
	EntityID   int64     `json:"entity_id" db:"entity_id"`
	Detail     string    `json:"detail" db:"detail"`
}
