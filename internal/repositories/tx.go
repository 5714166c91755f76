package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// TxRunner is the unit-of-work boundary used by services. Every multi-row
// mutation (stock decrement + loan insert, inventory close, ...) runs inside
// exactly one WithinTx call: the transaction commits once when fn returns nil
// and rolls back on any error or panic.
type TxRunner interface {
	WithinTx(fn func(tx SQLExecutor) error) error
}

type sqlTxRunner struct {
	db *sql.DB
}

// NewTxRunner creates a TxRunner backed by a database connection pool.
func NewTxRunner(db *sql.DB) TxRunner {
	return &sqlTxRunner{db: db}
}

func (r *sqlTxRunner) WithinTx(fn func(tx SQLExecutor) error) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", ErrDatabaseError, err)
	}
	return nil
}

// translatePQError maps lib/pq constraint failures onto repository sentinels
// so that services never inspect driver errors directly.
func translatePQError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	switch pqErr.Code.Name() {
	case "unique_violation":
		return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
	case "foreign_key_violation":
		return fmt.Errorf("%w: %s (constraint: %s)", ErrForeignKeyViolation, pqErr.Message, pqErr.Constraint)
	case "check_violation":
		return fmt.Errorf("%w: %s (constraint: %s)", ErrCheckViolation, pqErr.Message, pqErr.Constraint)
	default:
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
}
