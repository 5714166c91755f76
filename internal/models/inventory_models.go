package models

import "time"

// InventorySession is one bounded reconciliation pass over one antenna's
// stock. It is open until ClosedAt is stamped, after which it and its lines
// are immutable.
type InventorySession struct {
	ID        int64      `json:"id" db:"id"`
	Reference string     `json:"reference" db:"reference"`
	AntennaID int64      `json:"antenna_id" db:"antenna_id"`
	UserID    int64      `json:"user_id" db:"user_id"`
	StartedAt time.Time  `json:"started_at" db:"started_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty" db:"closed_at"`
}

// InventoryLine is one physical count of one stock item within a session.
// PreviousQty is frozen at the first count of the item in the session so that
// re-counts do not drift the delta.
type InventoryLine struct {
	ID          int64  `json:"id" db:"id"`
	SessionID   int64  `json:"session_id" db:"session_id"`
	StockItemID int64  `json:"stock_item_id" db:"stock_item_id"`
	PreviousQty int    `json:"previous_qty" db:"previous_qty"`
	CountedQty  int    `json:"counted_qty" db:"counted_qty"`
	Delta       int    `json:"delta" db:"-"`
	GarmentType string `json:"garment_type,omitempty" db:"-"`
	Size        string `json:"size,omitempty" db:"-"`
}
