package services

import (
	"database/sql"

	"vestiaire_backend/internal/models"
	"vestiaire_backend/internal/repositories"
	"vestiaire_backend/pkg/utils"
)

// AuditRecorder appends entries to the audit log. Recording is best-effort
// and happens after the business transaction has committed: a failed audit
// write must never fail the mutation it accompanies, so errors are logged
// and swallowed.
type AuditRecorder interface {
	Record(actor, action, entityType string, entityID int64, detail string)
}

// AuditService extends AuditRecorder with the read side.
type AuditService interface {
	AuditRecorder
	GetEntries(page, pageSize int) ([]models.AuditEntry, int, error)
}

type auditService struct {
	auditRepo repositories.AuditRepository
	db        *sql.DB
}

// NewAuditService creates a new instance of AuditService.
func NewAuditService(repo repositories.AuditRepository, db *sql.DB) AuditService {
	return &auditService{auditRepo: repo, db: db}
}

func (s *auditService) Record(actor, action, entityType string, entityID int64, detail string) {
	entry := &models.AuditEntry{
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
	}
	if err := s.auditRepo.Append(s.db, entry); err != nil {
		utils.LogError(err, "audit: failed to append entry for action "+action)
	}
}

func (s *auditService) GetEntries(page, pageSize int) ([]models.AuditEntry, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	return s.auditRepo.GetEntries(page, pageSize)
}
