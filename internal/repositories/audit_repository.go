package repositories

import (
	"database/sql"
	"fmt"
	"vestiaire_backend/internal/models"
)

// AuditRepository defines the interface for the append-only audit log.
type AuditRepository interface {
	Append(executor SQLExecutor, entry *models.AuditEntry) error
	GetEntries(page, pageSize int) ([]models.AuditEntry, int, error)
}

type auditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new instance of AuditRepository.
func NewAuditRepository(db *sql.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Append inserts one audit entry. There is no update or delete path.
func (r *auditRepository) Append(executor SQLExecutor, entry *models.AuditEntry) error {
	query := `INSERT INTO audit_logs (actor, action, entity_type, entity_id, detail)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`

	err := executor.QueryRow(query, entry.Actor, entry.Action, entry.EntityType, entry.EntityID, entry.Detail).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return translatePQError(err)
	}
	return nil
}

// GetEntries lists audit entries newest first, paginated.
func (r *auditRepository) GetEntries(page, pageSize int) ([]models.AuditEntry, int, error) {
	query := `SELECT id, created_at, actor, action, entity_type, entity_id, detail, COUNT(*) OVER() as total_count
	          FROM audit_logs ORDER BY id DESC LIMIT $1 OFFSET $2`

	offset := 0
	if page > 1 {
		offset = (page - 1) * pageSize
	}
	rows, err := r.db.Query(query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying audit log: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	totalCount := 0
	for rows.Next() {
		var entry models.AuditEntry
		if err := rows.Scan(&entry.ID, &entry.CreatedAt, &entry.Actor, &entry.Action,
			&entry.EntityType, &entry.EntityID, &entry.Detail, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning audit entry: %v", ErrDatabaseError, err)
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating audit rows: %v", ErrDatabaseError, err)
	}
	return entries, totalCount, nil
}
