package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"vestiaire_backend/internal/models"
)

// StockRepository defines the interface for stock ledger database operations.
type StockRepository interface {
	Restock(tx SQLExecutor, garmentTypeID, antennaID int64, size string, qty int, tags []string) (int64, error)
	GetStockItemByID(id int64) (*models.StockItem, error)
	GetStockItemForUpdate(tx SQLExecutor, id int64) (*models.StockItem, error)
	UpdateStockItem(tx SQLExecutor, item *models.StockItem) error
	AddQuantity(tx SQLExecutor, id int64, delta int) error
	SetQuantity(tx SQLExecutor, id int64, qty int) error
	DeleteStockItem(tx SQLExecutor, id int64) error
	PurgeReturnedLoansForItem(tx SQLExecutor, id int64) error
	CountLoansForItem(id int64, openOnly bool) (int, error)
	GetStockItems(filters models.StockFilters) ([]models.StockItem, int, error)
	GetPublicStock() ([]models.StockItem, error)
	TotalQuantity() (int, error)
}

type stockRepository struct {
	db *sql.DB
}

// NewStockRepository creates a new instance of StockRepository.
func NewStockRepository(db *sql.DB) StockRepository {
	return &stockRepository{db: db}
}

// Restock performs the atomic natural-key upsert: inserting a new row for an
// unseen (type, antenna, size) triple, or incrementing the quantity of the
// existing one. The upsert locks the row, so the follow-up tag merge in the
// same transaction cannot race a concurrent restock.
func (r *stockRepository) Restock(tx SQLExecutor, garmentTypeID, antennaID int64, size string, qty int, tags []string) (int64, error) {
	query := `INSERT INTO stock_items (garment_type_id, antenna_id, size, quantity, tags)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT ON CONSTRAINT stock_items_natural_key
	          DO UPDATE SET quantity = stock_items.quantity + EXCLUDED.quantity, updated_at = now()
	          RETURNING id, tags`

	var id int64
	var storedTags string
	err := tx.QueryRow(query, garmentTypeID, antennaID, size, qty, models.SerializeTags(tags)).
		Scan(&id, &storedTags)
	if err != nil {
		return 0, translatePQError(err)
	}

	if len(tags) > 0 {
		merged := models.SerializeTags(models.MergeTags(models.ParseTags(storedTags), tags))
		if merged != storedTags {
			if _, err := tx.Exec(`UPDATE stock_items SET tags = $1 WHERE id = $2`, merged, id); err != nil {
				return 0, translatePQError(err)
			}
		}
	}
	return id, nil
}

const stockItemColumns = `s.id, s.garment_type_id, s.antenna_id, s.size, s.quantity, s.tags, s.created_at, s.updated_at, t.label, a.name`

func scanStockItem(s scanner, item *models.StockItem) error {
	var tags string
	if err := s.Scan(&item.ID, &item.GarmentTypeID, &item.AntennaID, &item.Size, &item.Quantity,
		&tags, &item.CreatedAt, &item.UpdatedAt, &item.GarmentType, &item.Antenna); err != nil {
		return err
	}
	item.Tags = models.ParseTags(tags)
	return nil
}

// GetStockItemByID retrieves one stock item with its joined labels.
func (r *stockRepository) GetStockItemByID(id int64) (*models.StockItem, error) {
	item := &models.StockItem{}
	query := `SELECT ` + stockItemColumns + `
	          FROM stock_items s
	          JOIN garment_types t ON t.id = s.garment_type_id
	          JOIN antennas a ON a.id = s.antenna_id
	          WHERE s.id = $1`

	err := scanStockItem(r.db.QueryRow(query, id), item)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting stock item by ID %d: %v", ErrDatabaseError, id, err)
	}
	return item, nil
}

// GetStockItemForUpdate retrieves a stock item with its row locked for the
// remainder of the transaction. Every read-then-write of a quantity goes
// through this lock.
func (r *stockRepository) GetStockItemForUpdate(tx SQLExecutor, id int64) (*models.StockItem, error) {
	item := &models.StockItem{}
	var tags string
	query := `SELECT id, garment_type_id, antenna_id, size, quantity, tags, created_at, updated_at
	          FROM stock_items WHERE id = $1 FOR UPDATE`

	err := tx.QueryRow(query, id).Scan(&item.ID, &item.GarmentTypeID, &item.AntennaID,
		&item.Size, &item.Quantity, &tags, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: locking stock item ID %d: %v", ErrDatabaseError, id, err)
	}
	item.Tags = models.ParseTags(tags)
	return item, nil
}

// UpdateStockItem overwrites the mutable fields of a stock item.
func (r *stockRepository) UpdateStockItem(tx SQLExecutor, item *models.StockItem) error {
	query := `UPDATE stock_items SET
	            garment_type_id = $1, antenna_id = $2, size = $3, quantity = $4, tags = $5, updated_at = now()
	          WHERE id = $6`

	result, err := tx.Exec(query, item.GarmentTypeID, item.AntennaID, item.Size,
		item.Quantity, models.SerializeTags(item.Tags), item.ID)
	if err != nil {
		return translatePQError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for updating stock item ID %d: %v", ErrDatabaseError, item.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddQuantity shifts a stock quantity by delta. The schema CHECK keeps the
// result non-negative; a violation surfaces as ErrCheckViolation.
func (r *stockRepository) AddQuantity(tx SQLExecutor, id int64, delta int) error {
	result, err := tx.Exec(`UPDATE stock_items SET quantity = quantity + $1, updated_at = now() WHERE id = $2`, delta, id)
	if err != nil {
		return translatePQError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for adjusting stock item ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetQuantity overwrites a stock quantity, used by inventory close.
func (r *stockRepository) SetQuantity(tx SQLExecutor, id int64, qty int) error {
	result, err := tx.Exec(`UPDATE stock_items SET quantity = $1, updated_at = now() WHERE id = $2`, qty, id)
	if err != nil {
		return translatePQError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for setting stock item ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteStockItem removes a stock item. Loans referencing it block the delete
// at the FK level.
func (r *stockRepository) DeleteStockItem(tx SQLExecutor, id int64) error {
	result, err := tx.Exec(`DELETE FROM stock_items WHERE id = $1`, id)
	if err != nil {
		return translatePQError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting stock item ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeReturnedLoansForItem deletes the settled loans referencing a stock
// item, clearing the FK references that would otherwise block the item's
// deletion. Open loans are left untouched.
func (r *stockRepository) PurgeReturnedLoansForItem(tx SQLExecutor, id int64) error {
	_, err := tx.Exec(`DELETE FROM loans WHERE stock_item_id = $1 AND returned_at IS NOT NULL`, id)
	if err != nil {
		return translatePQError(err)
	}
	return nil
}

// CountLoansForItem counts loans referencing a stock item, optionally only
// the open ones.
func (r *stockRepository) CountLoansForItem(id int64, openOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM loans WHERE stock_item_id = $1`
	if openOnly {
		query += ` AND returned_at IS NULL`
	}
	var count int
	if err := r.db.QueryRow(query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting loans for stock item ID %d: %v", ErrDatabaseError, id, err)
	}
	return count, nil
}

// GetStockItems lists the ledger with filters, free-text search and
// pagination. The free-text query matches case-insensitively across the type
// label, size, tags and antenna name.
func (r *stockRepository) GetStockItems(filters models.StockFilters) ([]models.StockItem, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + stockItemColumns + `, COUNT(*) OVER() as total_count
	                          FROM stock_items s
	                          JOIN garment_types t ON t.id = s.garment_type_id
	                          JOIN antennas a ON a.id = s.antenna_id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.GarmentTypeID != nil {
		conditions = append(conditions, fmt.Sprintf("s.garment_type_id = $%d", argCount))
		args = append(args, *filters.GarmentTypeID)
		argCount++
	}
	if filters.AntennaID != nil {
		conditions = append(conditions, fmt.Sprintf("s.antenna_id = $%d", argCount))
		args = append(args, *filters.AntennaID)
		argCount++
	}
	if filters.Size != nil {
		conditions = append(conditions, fmt.Sprintf("s.size = $%d", argCount))
		args = append(args, *filters.Size)
		argCount++
	}
	if filters.Query != nil && *filters.Query != "" {
		pattern := "%" + strings.ToLower(*filters.Query) + "%"
		conditions = append(conditions, fmt.Sprintf(
			"(t.label ILIKE $%d OR s.size ILIKE $%d OR s.tags ILIKE $%d OR a.name ILIKE $%d)",
			argCount, argCount, argCount, argCount))
		args = append(args, pattern)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY a.name ASC, t.label ASC, s.size ASC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, filters.PageSize)
		argCount++
		if filters.Page > 0 {
			offset := (filters.Page - 1) * filters.PageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCount))
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying stock items: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	items := []models.StockItem{}
	totalCount := 0
	for rows.Next() {
		var item models.StockItem
		var tags string
		if err := rows.Scan(&item.ID, &item.GarmentTypeID, &item.AntennaID, &item.Size, &item.Quantity,
			&tags, &item.CreatedAt, &item.UpdatedAt, &item.GarmentType, &item.Antenna, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning stock item: %v", ErrDatabaseError, err)
		}
		item.Tags = models.ParseTags(tags)
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating stock item rows: %v", ErrDatabaseError, err)
	}
	return items, totalCount, nil
}

// GetPublicStock lists stock items with units available, for the kiosk view.
func (r *stockRepository) GetPublicStock() ([]models.StockItem, error) {
	query := `SELECT ` + stockItemColumns + `
	          FROM stock_items s
	          JOIN garment_types t ON t.id = s.garment_type_id
	          JOIN antennas a ON a.id = s.antenna_id
	          WHERE s.quantity > 0
	          ORDER BY a.name ASC, t.label ASC, s.size ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying public stock: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	items := []models.StockItem{}
	for rows.Next() {
		var item models.StockItem
		if err := scanStockItem(rows, &item); err != nil {
			return nil, fmt.Errorf("%w: scanning public stock item: %v", ErrDatabaseError, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating public stock rows: %v", ErrDatabaseError, err)
	}
	return items, nil
}

// TotalQuantity sums the whole ledger.
func (r *stockRepository) TotalQuantity() (int, error) {
	var total int
	err := r.db.QueryRow(`SELECT COALESCE(SUM(quantity), 0) FROM stock_items`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%w: summing stock quantities: %v", ErrDatabaseError, err)
	}
	return total, nil
}
