package models

import "time"

// Antenna represents a physical distribution point holding its own stock.
type Antenna struct {
	ID                int64     `json:"id" db:"id"`
	Name              string    `json:"name" db:"name" binding:"required"`
	Address           string    `json:"address" db:"address"`
	LowStockThreshold *int      `json:"low_stock_threshold,omitempty" db:"low_stock_threshold"`
	Lat               *float64  `json:"lat,omitempty" db:"lat"`
	Lng               *float64  `json:"lng,omitempty" db:"lng"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// GarmentType represents a clothing category (coat, trousers, ...).
type GarmentType struct {
	ID        int64     `json:"id" db:"id"`
	Label     string    `json:"label" db:"label" binding:"required"`
	HasSize   bool      `json:"has_size" db:"has_size"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
