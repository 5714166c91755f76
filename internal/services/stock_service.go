package services

import (
	"errors"
	"fmt"

	"vestiaire_backend/internal/models"
	"vestiaire_backend/internal/repositories"
)

// --- Custom Service Errors for the stock ledger ---
var (
	ErrStockItemNotFound = errors.New("stock item not found")
	ErrStockValidation   = errors.New("stock data validation error")
	ErrStockItemInUse    = errors.New("stock item is referenced by loans and cannot be deleted")
	ErrUnknownReference  = errors.New("referenced garment type or antenna does not exist")
)

// --- Stock DTOs ---
type RestockRequest struct {
	GarmentTypeID int64    `json:"garment_type_id" binding:"required"`
	AntennaID     int64    `json:"antenna_id" binding:"required"`
	Size          string   `json:"size"`
	Quantity      int      `json:"quantity" binding:"required"`
	Tags          []string `json:"tags"`
}

type UpdateStockItemRequest struct {
	GarmentTypeID *int64    `json:"garment_type_id"`
	AntennaID     *int64    `json:"antenna_id"`
	Size          *string   `json:"size"`
	Quantity      *int      `json:"quantity"`
	Tags          *[]string `json:"tags"`
}

// --- StockService Interface ---
type StockService interface {
	Restock(actor string, req RestockRequest) (*models.StockItem, error)
	GetStockItems(filters models.StockFilters) ([]models.StockItem, int, error)
	GetStockItemByID(id int64) (*models.StockItem, error)
	GetPublicStock() ([]models.StockItem, error)
	UpdateStockItem(actor string, id int64, req UpdateStockItemRequest) (*models.StockItem, error)
	DeleteStockItem(actor string, id int64) error
}

type stockService struct {
	stockRepo repositories.StockRepository
	audit     AuditRecorder
	tx        repositories.TxRunner

	// blockHistoricLoans extends the deletion guard to returned loans, not
	// just open ones. Driven by STOCK_DELETE_BLOCK_HISTORIC_LOANS.
	blockHistoricLoans bool
}

// NewStockService creates a new instance of StockService.
func NewStockService(repo repositories.StockRepository, audit AuditRecorder, tx repositories.TxRunner, blockHistoricLoans bool) StockService {
	return &stockService{stockRepo: repo, audit: audit, tx: tx, blockHistoricLoans: blockHistoricLoans}
}

// Restock adds units to the (type, antenna, size) triple, creating the row on
// first sight and incrementing it afterwards. Tag sets are unioned on the
// way in; updates through UpdateStockItem replace tags instead, preserving
// the historical merge-on-create-only behavior.
func (s *stockService) Restock(actor string, req RestockRequest) (*models.StockItem, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrStockValidation)
	}
	if req.GarmentTypeID <= 0 || req.AntennaID <= 0 {
		return nil, fmt.Errorf("%w: garment type and antenna are required", ErrStockValidation)
	}

	var itemID int64
	err := s.tx.WithinTx(func(tx repositories.SQLExecutor) error {
		id, err := s.stockRepo.Restock(tx, req.GarmentTypeID, req.AntennaID, req.Size, req.Quantity, req.Tags)
		if err != nil {
			if errors.Is(err, repositories.ErrForeignKeyViolation) {
				return ErrUnknownReference
			}
			return fmt.Errorf("failed to restock: %w", err)
		}
		itemID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(actor, "stock.restock", "stock_item", itemID,
		fmt.Sprintf("+%d (type %d, antenna %d, size %q)", req.Quantity, req.GarmentTypeID, req.AntennaID, req.Size))
	return s.GetStockItemByID(itemID)
}

func (s *stockService) GetStockItems(filters models.StockFilters) ([]models.StockItem, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize < 0 {
		filters.PageSize = 0
	}
	return s.stockRepo.GetStockItems(filters)
}

func (s *stockService) GetStockItemByID(id int64) (*models.StockItem, error) {
	item, err := s.stockRepo.GetStockItemByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStockItemNotFound
		}
		return nil, fmt.Errorf("failed to get stock item: %w", err)
	}
	return item, nil
}

func (s *stockService) GetPublicStock() ([]models.StockItem, error) {
	return s.stockRepo.GetPublicStock()
}

// UpdateStockItem partially updates a stock item, including setting the
// quantity directly. The schema CHECK still refuses negative quantities.
func (s *stockService) UpdateStockItem(actor string, id int64, req UpdateStockItemRequest) (*models.StockItem, error) {
	if req.Quantity != nil && *req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity cannot be negative", ErrStockValidation)
	}

	err := s.tx.WithinTx(func(tx repositories.SQLExecutor) error {
		item, err := s.stockRepo.GetStockItemForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrStockItemNotFound
			}
			return fmt.Errorf("failed to lock stock item: %w", err)
		}
		if req.GarmentTypeID != nil {
			item.GarmentTypeID = *req.GarmentTypeID
		}
		if req.AntennaID != nil {
			item.AntennaID = *req.AntennaID
		}
		if req.Size != nil {
			item.Size = *req.Size
		}
		if req.Quantity != nil {
			item.Quantity = *req.Quantity
		}
		if req.Tags != nil {
			item.Tags = *req.Tags
		}
		if err := s.stockRepo.UpdateStockItem(tx, item); err != nil {
			switch {
			case errors.Is(err, repositories.ErrDuplicateKey):
				return fmt.Errorf("%w: another stock row already holds this type/antenna/size", ErrStockValidation)
			case errors.Is(err, repositories.ErrForeignKeyViolation):
				return ErrUnknownReference
			case errors.Is(err, repositories.ErrCheckViolation):
				return fmt.Errorf("%w: quantity cannot be negative", ErrStockValidation)
			}
			return fmt.Errorf("failed to update stock item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(actor, "stock.update", "stock_item", id, "")
	return s.GetStockItemByID(id)
}

// DeleteStockItem removes a stock row unless loans still reference it. Which
// loans count (open only, or historic too) is a deployment decision. In the
// open-only configuration the settled loans are purged in the same
// transaction, otherwise their FK references would still block the delete.
func (s *stockService) DeleteStockItem(actor string, id int64) error {
	openOnly := !s.blockHistoricLoans
	count, err := s.stockRepo.CountLoansForItem(id, openOnly)
	if err != nil {
		return fmt.Errorf("failed to count loans for stock item: %w", err)
	}
	if count > 0 {
		return ErrStockItemInUse
	}

	err = s.tx.WithinTx(func(tx repositories.SQLExecutor) error {
		if !s.blockHistoricLoans {
			if err := s.stockRepo.PurgeReturnedLoansForItem(tx, id); err != nil {
				return fmt.Errorf("failed to purge returned loans for stock item: %w", err)
			}
		}
		if err := s.stockRepo.DeleteStockItem(tx, id); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrStockItemNotFound
			}
			if errors.Is(err, repositories.ErrForeignKeyViolation) {
				return ErrStockItemInUse
			}
			return fmt.Errorf("failed to delete stock item: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit.Record(actor, "stock.delete", "stock_item", id, "")
	return nil
}
