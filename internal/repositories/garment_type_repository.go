package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"vestiaire_backend/internal/models"
)

// GarmentTypeRepository defines the interface for garment-type catalog operations.
type GarmentTypeRepository interface {
	CreateGarmentType(executor SQLExecutor, gt *models.GarmentType) (int64, error)
	GetGarmentTypeByID(id int64) (*models.GarmentType, error)
	GetGarmentTypes() ([]models.GarmentType, error)
	UpdateGarmentType(executor SQLExecutor, gt *models.GarmentType) error
	DeleteGarmentType(executor SQLExecutor, id int64) error
	HasStock(id int64) (bool, error)
}

type garmentTypeRepository struct {
	db *sql.DB
}

// NewGarmentTypeRepository creates a new instance of GarmentTypeRepository.
func NewGarmentTypeRepository(db *sql.DB) GarmentTypeRepository {
	return &garmentTypeRepository{db: db}
}

// CreateGarmentType inserts a new garment type.
func (r *garmentTypeRepository) CreateGarmentType(executor SQLExecutor, gt *models.GarmentType) (int64, error) {
	query := `INSERT INTO garment_types (label, has_size) VALUES ($1, $2) RETURNING id, created_at`

	err := executor.QueryRow(query, gt.Label, gt.HasSize).Scan(&gt.ID, &gt.CreatedAt)
	if err != nil {
		return 0, translatePQError(err)
	}
	return gt.ID, nil
}

// GetGarmentTypeByID retrieves a garment type by its ID.
func (r *garmentTypeRepository) GetGarmentTypeByID(id int64) (*models.GarmentType, error) {
	gt := &models.GarmentType{}
	query := `SELECT id, label, has_size, created_at FROM garment_types WHERE id = $1`

	err := r.db.QueryRow(query, id).Scan(&gt.ID, &gt.Label, &gt.HasSize, &gt.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting garment type by ID %d: %v", ErrDatabaseError, id, err)
	}
	return gt, nil
}

// GetGarmentTypes retrieves every garment type, ordered by label.
func (r *garmentTypeRepository) GetGarmentTypes() ([]models.GarmentType, error) {
	rows, err := r.db.Query(`SELECT id, label, has_size, created_at FROM garment_types ORDER BY label ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying garment types: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	types := []models.GarmentType{}
	for rows.Next() {
		var gt models.GarmentType
		if err := rows.Scan(&gt.ID, &gt.Label, &gt.HasSize, &gt.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning garment type: %v", ErrDatabaseError, err)
		}
		types = append(types, gt)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating garment type rows: %v", ErrDatabaseError, err)
	}
	return types, nil
}

// UpdateGarmentType updates an existing garment type.
func (r *garmentTypeRepository) UpdateGarmentType(executor SQLExecutor, gt *models.GarmentType) error {
	result, err := executor.Exec(`UPDATE garment_types SET label = $1, has_size = $2 WHERE id = $3`,
		gt.Label, gt.HasSize, gt.ID)
	if err != nil {
		return translatePQError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for updating garment type ID %d: %v", ErrDatabaseError, gt.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteGarmentType removes a garment type. The delete fails with
// ErrForeignKeyViolation while stock items still reference it.
func (r *garmentTypeRepository) DeleteGarmentType(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM garment_types WHERE id = $1`, id)
	if err != nil {
		return translatePQError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting garment type ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// HasStock reports whether any stock item references the garment type.
func (r *garmentTypeRepository) HasStock(id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM stock_items WHERE garment_type_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: checking stock for garment type ID %d: %v", ErrDatabaseError, id, err)
	}
	return exists, nil
}
