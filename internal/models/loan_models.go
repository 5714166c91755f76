package models

import "time"

// Loan is a temporary transfer of garment units from stock to a volunteer.
// ReturnedAt is nil while the loan is open; it transitions to a timestamp
// exactly once and is never reversed.
type Loan struct {
	ID          int64      `json:"id" db:"id"`
	VolunteerID int64      `json:"volunteer_id" db:"volunteer_id"`
	StockItemID int64      `json:"stock_item_id" db:"stock_item_id"`
	Qty         int        `json:"qty" db:"qty"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	ReturnedAt  *time.Time `json:"returned_at,omitempty" db:"returned_at"`
}

// OpenLoanView is the joined representation served by the open-loans listing
// and the loans export.
type OpenLoanView struct {
	ID          int64      `json:"id"`
	Qty         int        `json:"qty"`
	Since       time.Time  `json:"since"`
	ReturnedAt  *time.Time `json:"returned_at,omitempty"`
	Volunteer   string     `json:"volunteer"`
	GarmentType string     `json:"type"`
	Size        string     `json:"size"`
	Antenna     string     `json:"antenna"`
}
