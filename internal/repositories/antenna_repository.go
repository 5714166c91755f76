package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"vestiaire_backend/internal/models"
)

// AntennaRepository defines the interface for antenna-related database operations.
type AntennaRepository interface {
	CreateAntenna(executor SQLExecutor, antenna *models.Antenna) (int64, error)
	GetAntennaByID(id int64) (*models.Antenna, error)
	GetAntennas() ([]models.Antenna, error)
	UpdateAntenna(executor SQLExecutor, antenna *models.Antenna) error
	DeleteAntenna(executor SQLExecutor, id int64) error
	HasStock(id int64) (bool, error)
}

type antennaRepository struct {
	db *sql.DB
}

// NewAntennaRepository creates a new instance of AntennaRepository.
func NewAntennaRepository(db *sql.DB) AntennaRepository {
	return &antennaRepository{db: db}
}

const antennaColumns = `id, name, address, low_stock_threshold, lat, lng, created_at`

func scanAntenna(s scanner, a *models.Antenna) error {
	return s.Scan(&a.ID, &a.Name, &a.Address, &a.LowStockThreshold, &a.Lat, &a.Lng, &a.CreatedAt)
}

// CreateAntenna inserts a new antenna.
func (r *antennaRepository) CreateAntenna(executor SQLExecutor, antenna *models.Antenna) (int64, error) {
	query := `INSERT INTO antennas (name, address, low_stock_threshold, lat, lng)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at`

	err := executor.QueryRow(query,
		antenna.Name, antenna.Address, antenna.LowStockThreshold, antenna.Lat, antenna.Lng,
	).Scan(&antenna.ID, &antenna.CreatedAt)
	if err != nil {
		return 0, translatePQError(err)
	}
	return antenna.ID, nil
}

// GetAntennaByID retrieves an antenna by its ID.
func (r *antennaRepository) GetAntennaByID(id int64) (*models.Antenna, error) {
	antenna := &models.Antenna{}
	query := `SELECT ` + antennaColumns + ` FROM antennas WHERE id = $1`

	err := scanAntenna(r.db.QueryRow(query, id), antenna)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting antenna by ID %d: %v", ErrDatabaseError, id, err)
	}
	return antenna, nil
}

// GetAntennas retrieves every antenna, ordered by name.
func (r *antennaRepository) GetAntennas() ([]models.Antenna, error) {
	query := `SELECT ` + antennaColumns + ` FROM antennas ORDER BY name ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying antennas: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	antennas := []models.Antenna{}
	for rows.Next() {
		var antenna models.Antenna
		if err := scanAntenna(rows, &antenna); err != nil {
			return nil, fmt.Errorf("%w: scanning antenna: %v", ErrDatabaseError, err)
		}
		antennas = append(antennas, antenna)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating antenna rows: %v", ErrDatabaseError, err)
	}
	return antennas, nil
}

// UpdateAntenna updates an existing antenna in place.
func (r *antennaRepository) UpdateAntenna(executor SQLExecutor, antenna *models.Antenna) error {
	query := `UPDATE antennas SET
	            name = $1, address = $2, low_stock_threshold = $3, lat = $4, lng = $5
	          WHERE id = $6`

	result, err := executor.Exec(query,
		antenna.Name, antenna.Address, antenna.LowStockThreshold, antenna.Lat, antenna.Lng, antenna.ID,
	)
	if err != nil {
		return translatePQError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for updating antenna ID %d: %v", ErrDatabaseError, antenna.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAntenna removes an antenna. The delete fails with
// ErrForeignKeyViolation while stock items still reference it.
func (r *antennaRepository) DeleteAntenna(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM antennas WHERE id = $1`, id)
	if err != nil {
		return translatePQError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting antenna ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// HasStock reports whether any stock item references the antenna.
func (r *antennaRepository) HasStock(id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM stock_items WHERE antenna_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: checking stock for antenna ID %d: %v", ErrDatabaseError, id, err)
	}
	return exists, nil
}
