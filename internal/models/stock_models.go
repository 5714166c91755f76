package models

import (
	"sort"
	"strings"
	"time"
)

// StockItem is the quantity of one garment type/size combination held at one
// antenna. The (garment_type, antenna, size) triple is the natural key; an
// empty size means the garment type is sizeless.
type StockItem struct {
	ID            int64     `json:"id" db:"id"`
	GarmentTypeID int64     `json:"garment_type_id" db:"garment_type_id"`
	AntennaID     int64     `json:"antenna_id" db:"antenna_id"`
	Size          string    `json:"size" db:"size"`
	Quantity      int       `json:"quantity" db:"quantity"`
	Tags          []string  `json:"tags" db:"-"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`

	// Joined labels, populated by list queries.
	GarmentType string `json:"garment_type,omitempty" db:"-"`
	Antenna     string `json:"antenna,omitempty" db:"-"`
}

// StockFilters narrows stock listings and exports.
type StockFilters struct {
	GarmentTypeID *int64
	AntennaID     *int64
	Size          *string
	Query         *string
	Page          int
	PageSize      int
}

// tagSeparator is the storage encoding of the tag set. Tags are a set of
// strings at the domain layer and only become delimited text at the SQL
// boundary.
const tagSeparator = ","

// ParseTags decodes the stored tag text into a normalized, sorted set.
func ParseTags(stored string) []string {
	if strings.TrimSpace(stored) == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var tags []string
	for _, raw := range strings.Split(stored, tagSeparator) {
		tag := strings.TrimSpace(raw)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// SerializeTags encodes a tag set for storage, dropping blanks and
// case-insensitive duplicates.
func SerializeTags(tags []string) string {
	return strings.Join(ParseTags(strings.Join(tags, tagSeparator)), tagSeparator)
}

// MergeTags unions two tag sets, case-insensitively.
func MergeTags(existing, incoming []string) []string {
	merged := append(append([]string{}, existing...), incoming...)
	return ParseTags(strings.Join(merged, tagSeparator))
}
