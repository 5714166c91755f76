package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"vestiaire_backend/internal/models"
)

// InventoryRepository defines the interface for inventory reconciliation
// database operations.
type InventoryRepository interface {
	CreateSession(executor SQLExecutor, session *models.InventorySession) (int64, error)
	GetSessionByID(id int64) (*models.InventorySession, error)
	GetSessionForUpdate(tx SQLExecutor, id int64) (*models.InventorySession, error)
	UpsertLine(tx SQLExecutor, sessionID, stockItemID int64, countedQty int) error
	GetLines(executor SQLExecutor, sessionID int64) ([]models.InventoryLine, error)
	LockSessionStock(tx SQLExecutor, sessionID int64) error
	CloseSession(tx SQLExecutor, id int64) error
}

type inventoryRepository struct {
	db *sql.DB
}

// NewInventoryRepository creates a new instance of InventoryRepository.
func NewInventoryRepository(db *sql.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

const sessionColumns = `id, reference, antenna_id, user_id, started_at, closed_at`

func scanSession(s scanner, session *models.InventorySession) error {
	return s.Scan(&session.ID, &session.Reference, &session.AntennaID,
		&session.UserID, &session.StartedAt, &session.ClosedAt)
}

// CreateSession opens a new reconciliation session.
func (r *inventoryRepository) CreateSession(executor SQLExecutor, session *models.InventorySession) (int64, error) {
	query := `INSERT INTO inventory_sessions (reference, antenna_id, user_id)
	          VALUES ($1, $2, $3) RETURNING id, started_at`

	err := executor.QueryRow(query, session.Reference, session.AntennaID, session.UserID).
		Scan(&session.ID, &session.StartedAt)
	if err != nil {
		return 0, translatePQError(err)
	}
	return session.ID, nil
}

// GetSessionByID retrieves a session by its ID.
func (r *inventoryRepository) GetSessionByID(id int64) (*models.InventorySession, error) {
	session := &models.InventorySession{}
	err := scanSession(r.db.QueryRow(`SELECT `+sessionColumns+` FROM inventory_sessions WHERE id = $1`, id), session)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting inventory session by ID %d: %v", ErrDatabaseError, id, err)
	}
	return session, nil
}

// GetSessionForUpdate retrieves a session with its row locked, serializing
// concurrent count/close calls against the same session.
func (r *inventoryRepository) GetSessionForUpdate(tx SQLExecutor, id int64) (*models.InventorySession, error) {
	session := &models.InventorySession{}
	err := scanSession(tx.QueryRow(`SELECT `+sessionColumns+` FROM inventory_sessions WHERE id = $1 FOR UPDATE`, id), session)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: locking inventory session ID %d: %v", ErrDatabaseError, id, err)
	}
	return session, nil
}

// UpsertLine records one count. The previous quantity is captured from the
// ledger only on the first touch of the item within the session; re-counts
// overwrite counted_qty and leave previous_qty frozen.
func (r *inventoryRepository) UpsertLine(tx SQLExecutor, sessionID, stockItemID int64, countedQty int) error {
	query := `INSERT INTO inventory_lines (session_id, stock_item_id, previous_qty, counted_qty)
	          SELECT $1, s.id, s.quantity, $3 FROM stock_items s WHERE s.id = $2
	          ON CONFLICT ON CONSTRAINT inventory_lines_one_per_item
	          DO UPDATE SET counted_qty = EXCLUDED.counted_qty`

	result, err := tx.Exec(query, sessionID, stockItemID, countedQty)
	if err != nil {
		return translatePQError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for inventory count: %v", ErrDatabaseError, err)
	}
	if rowsAffected == 0 {
		// The SELECT matched no stock item.
		return ErrNotFound
	}
	return nil
}

// GetLines lists the session's lines with computed deltas and joined labels.
func (r *inventoryRepository) GetLines(executor SQLExecutor, sessionID int64) ([]models.InventoryLine, error) {
	query := `SELECT l.id, l.session_id, l.stock_item_id, l.previous_qty, l.counted_qty,
	                 l.counted_qty - l.previous_qty, t.label, s.size
	          FROM inventory_lines l
	          JOIN stock_items s ON s.id = l.stock_item_id
	          JOIN garment_types t ON t.id = s.garment_type_id
	          WHERE l.session_id = $1
	          ORDER BY t.label ASC, s.size ASC`

	rows, err := executor.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying inventory lines: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	lines := []models.InventoryLine{}
	for rows.Next() {
		var line models.InventoryLine
		if err := rows.Scan(&line.ID, &line.SessionID, &line.StockItemID, &line.PreviousQty,
			&line.CountedQty, &line.Delta, &line.GarmentType, &line.Size); err != nil {
			return nil, fmt.Errorf("%w: scanning inventory line: %v", ErrDatabaseError, err)
		}
		lines = append(lines, line)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating inventory line rows: %v", ErrDatabaseError, err)
	}
	return lines, nil
}

// LockSessionStock locks every stock row counted in the session, so the
// close's overwrite serializes with concurrent loans and restocks.
func (r *inventoryRepository) LockSessionStock(tx SQLExecutor, sessionID int64) error {
	query := `SELECT s.id
	          FROM inventory_lines l
	          JOIN stock_items s ON s.id = l.stock_item_id
	          WHERE l.session_id = $1
	          FOR UPDATE OF s`

	rows, err := tx.Query(query, sessionID)
	if err != nil {
		return fmt.Errorf("%w: locking stock for session ID %d: %v", ErrDatabaseError, sessionID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("%w: scanning locked stock row: %v", ErrDatabaseError, err)
		}
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("%w: iterating locked stock rows: %v", ErrDatabaseError, err)
	}
	return nil
}

// CloseSession stamps closed_at exactly once. ErrNotFound is returned when
// the session is missing or already closed; callers distinguish the two via
// GetSessionForUpdate.
func (r *inventoryRepository) CloseSession(tx SQLExecutor, id int64) error {
	result, err := tx.Exec(`UPDATE inventory_sessions SET closed_at = now() WHERE id = $1 AND closed_at IS NULL`, id)
	if err != nil {
		return translatePQError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for closing session ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
