package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"vestiaire_backend/internal/models"
)

// LoanRepository defines the interface for loan-related database operations.
type LoanRepository interface {
	CreateLoan(tx SQLExecutor, loan *models.Loan) (int64, error)
	GetLoanByID(id int64) (*models.Loan, error)
	MarkReturned(tx SQLExecutor, id int64) (*models.Loan, bool, error)
	GetLoanViews(openOnly bool) ([]models.OpenLoanView, error)
	CountOpenLoans() (int, error)
}

type loanRepository struct {
	db *sql.DB
}

// NewLoanRepository creates a new instance of LoanRepository.
func NewLoanRepository(db *sql.DB) LoanRepository {
	return &loanRepository{db: db}
}

// CreateLoan inserts a new open loan. It must run in the same transaction as
// the stock decrement so that both commit or neither does.
func (r *loanRepository) CreateLoan(tx SQLExecutor, loan *models.Loan) (int64, error) {
	query := `INSERT INTO loans (volunteer_id, stock_item_id, qty) VALUES ($1, $2, $3) RETURNING id, created_at`

	err := tx.QueryRow(query, loan.VolunteerID, loan.StockItemID, loan.Qty).
		Scan(&loan.ID, &loan.CreatedAt)
	if err != nil {
		return 0, translatePQError(err)
	}
	return loan.ID, nil
}

// GetLoanByID retrieves a loan by its ID.
func (r *loanRepository) GetLoanByID(id int64) (*models.Loan, error) {
	loan := &models.Loan{}
	query := `SELECT id, volunteer_id, stock_item_id, qty, created_at, returned_at FROM loans WHERE id = $1`

	err := r.db.QueryRow(query, id).Scan(&loan.ID, &loan.VolunteerID, &loan.StockItemID,
		&loan.Qty, &loan.CreatedAt, &loan.ReturnedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting loan by ID %d: %v", ErrDatabaseError, id, err)
	}
	return loan, nil
}

// MarkReturned stamps returned_at on an open loan. The WHERE clause on
// returned_at makes the transition happen at most once: the second return of
// the same loan reports updated == false and the caller skips the stock
// increment. Returns ErrNotFound when the loan does not exist at all.
func (r *loanRepository) MarkReturned(tx SQLExecutor, id int64) (*models.Loan, bool, error) {
	loan := &models.Loan{}
	query := `UPDATE loans SET returned_at = now()
	          WHERE id = $1 AND returned_at IS NULL
	          RETURNING id, volunteer_id, stock_item_id, qty, created_at, returned_at`

	err := tx.QueryRow(query, id).Scan(&loan.ID, &loan.VolunteerID, &loan.StockItemID,
		&loan.Qty, &loan.CreatedAt, &loan.ReturnedAt)
	if err == nil {
		return loan, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("%w: returning loan ID %d: %v", ErrDatabaseError, id, err)
	}

	// Not updated: either already returned or missing.
	existing := &models.Loan{}
	err = tx.QueryRow(`SELECT id, volunteer_id, stock_item_id, qty, created_at, returned_at FROM loans WHERE id = $1`, id).
		Scan(&existing.ID, &existing.VolunteerID, &existing.StockItemID,
			&existing.Qty, &existing.CreatedAt, &existing.ReturnedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, ErrNotFound
		}
		return nil, false, fmt.Errorf("%w: fetching loan ID %d after return: %v", ErrDatabaseError, id, err)
	}
	return existing, false, nil
}

// GetLoanViews lists loans joined with volunteer and stock labels, newest
// first. openOnly restricts to loans not yet returned.
func (r *loanRepository) GetLoanViews(openOnly bool) ([]models.OpenLoanView, error) {
	query := `SELECT l.id, l.qty, l.created_at, l.returned_at,
	                 v.last_name || ' ' || v.first_name,
	                 t.label, s.size, a.name
	          FROM loans l
	          JOIN volunteers v ON v.id = l.volunteer_id
	          JOIN stock_items s ON s.id = l.stock_item_id
	          JOIN garment_types t ON t.id = s.garment_type_id
	          JOIN antennas a ON a.id = s.antenna_id`
	if openOnly {
		query += ` WHERE l.returned_at IS NULL`
	}
	query += ` ORDER BY l.created_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying loans: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	views := []models.OpenLoanView{}
	for rows.Next() {
		var view models.OpenLoanView
		if err := rows.Scan(&view.ID, &view.Qty, &view.Since, &view.ReturnedAt,
			&view.Volunteer, &view.GarmentType, &view.Size, &view.Antenna); err != nil {
			return nil, fmt.Errorf("%w: scanning loan view: %v", ErrDatabaseError, err)
		}
		views = append(views, view)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating loan rows: %v", ErrDatabaseError, err)
	}
	return views, nil
}

// CountOpenLoans counts the loans not yet returned.
func (r *loanRepository) CountOpenLoans() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM loans WHERE returned_at IS NULL`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting open loans: %v", ErrDatabaseError, err)
	}
	return count, nil
}
