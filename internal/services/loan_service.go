package services

import (
	"errors"
	"fmt"

	"vestiaire_backend/internal/models"
	"vestiaire_backend/internal/repositories"
)

// --- Custom Service Errors for the loan engine ---
var (
	ErrLoanNotFound      = errors.New("loan not found")
	ErrLoanValidation    = errors.New("loan data validation error")
	ErrInsufficientStock = errors.New("insufficient stock for requested quantity")
)

// --- Loan DTOs ---
type CreateLoanRequest struct {
	VolunteerID int64 `json:"volunteer_id" binding:"required"`
	StockItemID int64 `json:"stock_item_id" binding:"required"`
	Qty         int   `json:"qty"`
}

// ReturnLoanResult reports the outcome of a return. Returning an
// already-returned loan is a no-op success with AlreadyReturned set; the
// stock increment happens exactly once per loan regardless of how many times
// the return is requested.
type ReturnLoanResult struct {
	Loan            *models.Loan `json:"loan"`
	AlreadyReturned bool         `json:"already_returned"`
}

// --- LoanService Interface ---
type LoanService interface {
	CreateLoan(actor string, req CreateLoanRequest) (*models.Loan, error)
	ReturnLoan(actor string, loanID int64) (*ReturnLoanResult, error)
	GetOpenLoans() ([]models.OpenLoanView, error)
}

type loanService struct {
	loanRepo      repositories.LoanRepository
	stockRepo     repositories.StockRepository
	volunteerRepo repositories.VolunteerRepository
	audit         AuditRecorder
	tx            repositories.TxRunner
}

// NewLoanService creates a new instance of LoanService.
func NewLoanService(
	loanRepo repositories.LoanRepository,
	stockRepo repositories.StockRepository,
	volunteerRepo repositories.VolunteerRepository,
	audit AuditRecorder,
	tx repositories.TxRunner,
) LoanService {
	return &loanService{
		loanRepo:      loanRepo,
		stockRepo:     stockRepo,
		volunteerRepo: volunteerRepo,
		audit:         audit,
		tx:            tx,
	}
}

// CreateLoan decrements stock and opens the loan in one transaction. The
// stock row is locked before the availability check, so two concurrent loans
// against the same item serialize instead of both reading a stale quantity.
func (s *loanService) CreateLoan(actor string, req CreateLoanRequest) (*models.Loan, error) {
	qty := req.Qty
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrLoanValidation)
	}

	if _, err := s.volunteerRepo.GetVolunteerByID(req.VolunteerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrVolunteerNotFound
		}
		return nil, fmt.Errorf("failed to check volunteer: %w", err)
	}

	loan := &models.Loan{VolunteerID: req.VolunteerID, StockItemID: req.StockItemID, Qty: qty}
	err := s.tx.WithinTx(func(tx repositories.SQLExecutor) error {
		item, err := s.stockRepo.GetStockItemForUpdate(tx, req.StockItemID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrStockItemNotFound
			}
			return fmt.Errorf("failed to lock stock item: %w", err)
		}
		if item.Quantity < qty {
			return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, qty, item.Quantity)
		}
		if err := s.stockRepo.AddQuantity(tx, item.ID, -qty); err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
		if _, err := s.loanRepo.CreateLoan(tx, loan); err != nil {
			return fmt.Errorf("failed to create loan: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(actor, "loan.create", "loan", loan.ID,
		fmt.Sprintf("volunteer %d borrowed %d from item %d", loan.VolunteerID, loan.Qty, loan.StockItemID))
	return loan, nil
}

// ReturnLoan settles a loan: stamps returned_at and restores the borrowed
// quantity to stock, atomically. Second and later calls for the same loan
// succeed without touching stock.
func (s *loanService) ReturnLoan(actor string, loanID int64) (*ReturnLoanResult, error) {
	result := &ReturnLoanResult{}
	err := s.tx.WithinTx(func(tx repositories.SQLExecutor) error {
		loan, updated, err := s.loanRepo.MarkReturned(tx, loanID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrLoanNotFound
			}
			return fmt.Errorf("failed to return loan: %w", err)
		}
		result.Loan = loan
		result.AlreadyReturned = !updated
		if updated {
			if err := s.stockRepo.AddQuantity(tx, loan.StockItemID, loan.Qty); err != nil {
				return fmt.Errorf("failed to restore stock: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyReturned {
		s.audit.Record(actor, "loan.return", "loan", loanID,
			fmt.Sprintf("restored %d to item %d", result.Loan.Qty, result.Loan.StockItemID))
	}
	return result, nil
}

func (s *loanService) GetOpenLoans() ([]models.OpenLoanView, error) {
	return s.loanRepo.GetLoanViews(true)
}
