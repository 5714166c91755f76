package services

import (
	"database/sql"
	"errors"
	"fmt"

	"vestiaire_backend/internal/models"
	"vestiaire_backend/internal/repositories"

	"github.com/google/uuid"
)

// --- Custom Service Errors for inventory reconciliation ---
var (
	ErrSessionNotFound     = errors.New("inventory session not found")
	ErrSessionClosed       = errors.New("inventory session is already closed")
	ErrInventoryValidation = errors.New("inventory data validation error")
)

// --- Inventory DTOs ---
type StartSessionRequest struct {
	AntennaID int64 `json:"antenna_id" binding:"required"`
}

type RecordCountRequest struct {
	StockItemID int64 `json:"stock_item_id" binding:"required"`
	CountedQty  int   `json:"counted_qty"`
}

// SessionDetail bundles a session with its recorded lines.
type SessionDetail struct {
	Session *models.InventorySession `json:"session"`
	Lines   []models.InventoryLine   `json:"lines"`
}

// --- InventoryService Interface ---
type InventoryService interface {
	StartSession(actor string, userID int64, req StartSessionRequest) (*models.InventorySession, error)
	RecordCount(sessionID int64, req RecordCountRequest) error
	GetSession(sessionID int64) (*SessionDetail, error)
	GetLines(sessionID int64) ([]models.InventoryLine, error)
	CloseSession(actor string, sessionID int64) (*models.InventorySession, error)
}

type inventoryService struct {
	inventoryRepo repositories.InventoryRepository
	stockRepo     repositories.StockRepository
	antennaRepo   repositories.AntennaRepository
	audit         AuditRecorder
	tx            repositories.TxRunner
	db            *sql.DB
}

// NewInventoryService creates a new instance of InventoryService.
func NewInventoryService(
	inventoryRepo repositories.InventoryRepository,
	stockRepo repositories.StockRepository,
	antennaRepo repositories.AntennaRepository,
	audit AuditRecorder,
	tx repositories.TxRunner,
	db *sql.DB,
) InventoryService {
	return &inventoryService{
		inventoryRepo: inventoryRepo,
		stockRepo:     stockRepo,
		antennaRepo:   antennaRepo,
		audit:         audit,
		tx:            tx,
		db:            db,
	}
}

func (s *inventoryService) StartSession(actor string, userID int64, req StartSessionRequest) (*models.InventorySession, error) {
	if req.AntennaID <= 0 {
		return nil, fmt.Errorf("%w: antenna is required", ErrInventoryValidation)
	}
	if _, err := s.antennaRepo.GetAntennaByID(req.AntennaID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown antenna", ErrInventoryValidation)
		}
		return nil, fmt.Errorf("failed to check antenna: %w", err)
	}

	session := &models.InventorySession{
		Reference: uuid.NewString(),
		AntennaID: req.AntennaID,
		UserID:    userID,
	}
	if _, err := s.inventoryRepo.CreateSession(s.db, session); err != nil {
		return nil, fmt.Errorf("failed to start inventory session: %w", err)
	}
	s.audit.Record(actor, "inventory.start", "inventory_session", session.ID,
		fmt.Sprintf("antenna %d", session.AntennaID))
	return session, nil
}

// RecordCount upserts one count line. The session row is locked first so a
// concurrent close cannot slip between the open check and the upsert. The
// line's previous quantity stays frozen at what the ledger said when the
// item was first counted in this session.
func (s *inventoryService) RecordCount(sessionID int64, req RecordCountRequest) error {
	if req.CountedQty < 0 {
		return fmt.Errorf("%w: counted quantity cannot be negative", ErrInventoryValidation)
	}
	return s.tx.WithinTx(func(tx repositories.SQLExecutor) error {
		session, err := s.inventoryRepo.GetSessionForUpdate(tx, sessionID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("failed to lock session: %w", err)
		}
		if session.ClosedAt != nil {
			return ErrSessionClosed
		}

		item, err := s.stockRepo.GetStockItemForUpdate(tx, req.StockItemID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrStockItemNotFound
			}
			return fmt.Errorf("failed to lock stock item: %w", err)
		}
		if item.AntennaID != session.AntennaID {
			return fmt.Errorf("%w: stock item belongs to another antenna", ErrInventoryValidation)
		}

		if err := s.inventoryRepo.UpsertLine(tx, sessionID, req.StockItemID, req.CountedQty); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrStockItemNotFound
			}
			return fmt.Errorf("failed to record count: %w", err)
		}
		return nil
	})
}

func (s *inventoryService) GetSession(sessionID int64) (*SessionDetail, error) {
	session, err := s.inventoryRepo.GetSessionByID(sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	lines, err := s.inventoryRepo.GetLines(s.db, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session lines: %w", err)
	}
	return &SessionDetail{Session: session, Lines: lines}, nil
}

func (s *inventoryService) GetLines(sessionID int64) ([]models.InventoryLine, error) {
	if _, err := s.inventoryRepo.GetSessionByID(sessionID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s.inventoryRepo.GetLines(s.db, sessionID)
}

// CloseSession applies every recorded count as an authoritative overwrite of
// the ledger and stamps the session closed, all in one transaction. Stock
// changes made between count and close are superseded by the counted value.
// Closing is not undoable.
func (s *inventoryService) CloseSession(actor string, sessionID int64) (*models.InventorySession, error) {
	var closed *models.InventorySession
	err := s.tx.WithinTx(func(tx repositories.SQLExecutor) error {
		session, err := s.inventoryRepo.GetSessionForUpdate(tx, sessionID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("failed to lock session: %w", err)
		}
		if session.ClosedAt != nil {
			return ErrSessionClosed
		}

		if err := s.inventoryRepo.LockSessionStock(tx, sessionID); err != nil {
			return fmt.Errorf("failed to lock counted stock: %w", err)
		}
		lines, err := s.inventoryRepo.GetLines(tx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to load session lines: %w", err)
		}
		for _, line := range lines {
			if err := s.stockRepo.SetQuantity(tx, line.StockItemID, line.CountedQty); err != nil {
				return fmt.Errorf("failed to apply count for stock item %d: %w", line.StockItemID, err)
			}
		}
		if err := s.inventoryRepo.CloseSession(tx, sessionID); err != nil {
			return fmt.Errorf("failed to close session: %w", err)
		}
		closed = session
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(actor, "inventory.close", "inventory_session", sessionID, "")
	return s.refreshSession(closed, sessionID)
}

func (s *inventoryService) refreshSession(fallback *models.InventorySession, sessionID int64) (*models.InventorySession, error) {
	session, err := s.inventoryRepo.GetSessionByID(sessionID)
	if err != nil {
		return fallback, nil
	}
	return session, nil
}
