package services

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"vestiaire_backend/internal/models"
	"vestiaire_backend/internal/repositories"
	"vestiaire_backend/pkg/utils"
)

// --- Custom Service Errors for the volunteer registry ---
var (
	ErrVolunteerNotFound   = errors.New("volunteer not found")
	ErrVolunteerExists     = errors.New("volunteer with this name already exists")
	ErrVolunteerValidation = errors.New("volunteer data validation error")
	ErrVolunteerHasLoans   = errors.New("volunteer has open loans and cannot be deleted")
	ErrCSVColumnsMissing   = errors.New("required CSV columns not found")
)

// --- Volunteer DTOs ---
type CreateVolunteerRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Note      string `json:"note"`
}

type UpdateVolunteerRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Note      *string `json:"note"`
}

// ImportResult summarizes a CSV import. Malformed rows are skipped silently
// and land in Skipped.
type ImportResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

// --- VolunteerService Interface ---
type VolunteerService interface {
	CreateVolunteer(actor string, req CreateVolunteerRequest) (*models.Volunteer, error)
	GetVolunteers(page, pageSize int, searchTerm *string) ([]models.Volunteer, int, error)
	GetVolunteerByID(id int64) (*models.Volunteer, error)
	FindVolunteerByName(firstName, lastName string) (*models.Volunteer, error)
	UpdateVolunteer(actor string, id int64, req UpdateVolunteerRequest) (*models.Volunteer, error)
	DeleteVolunteer(actor string, id int64) error
	ImportCSV(actor string, content []byte) (*ImportResult, error)
}

type volunteerService struct {
	volunteerRepo repositories.VolunteerRepository
	audit         AuditRecorder
	db            *sql.DB
}

// NewVolunteerService creates a new instance of VolunteerService.
func NewVolunteerService(repo repositories.VolunteerRepository, audit AuditRecorder, db *sql.DB) VolunteerService {
	return &volunteerService{volunteerRepo: repo, audit: audit, db: db}
}

func (s *volunteerService) CreateVolunteer(actor string, req CreateVolunteerRequest) (*models.Volunteer, error) {
	first := strings.TrimSpace(req.FirstName)
	last := strings.TrimSpace(req.LastName)
	if first == "" || last == "" {
		return nil, fmt.Errorf("%w: first and last name are required", ErrVolunteerValidation)
	}

	existing, err := s.volunteerRepo.GetVolunteerByName(first, last)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check volunteer name: %w", err)
	}
	if existing != nil {
		return nil, ErrVolunteerExists
	}

	volunteer := &models.Volunteer{FirstName: first, LastName: last, Note: req.Note}
	if _, err := s.volunteerRepo.CreateVolunteer(s.db, volunteer); err != nil {
		return nil, fmt.Errorf("failed to create volunteer: %w", err)
	}
	s.audit.Record(actor, "volunteer.create", "volunteer", volunteer.ID, last+" "+first)
	return volunteer, nil
}

func (s *volunteerService) GetVolunteers(page, pageSize int, searchTerm *string) ([]models.Volunteer, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return s.volunteerRepo.GetVolunteers(page, pageSize, searchTerm)
}

func (s *volunteerService) GetVolunteerByID(id int64) (*models.Volunteer, error) {
	volunteer, err := s.volunteerRepo.GetVolunteerByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrVolunteerNotFound
		}
		return nil, fmt.Errorf("failed to get volunteer: %w", err)
	}
	return volunteer, nil
}

func (s *volunteerService) FindVolunteerByName(firstName, lastName string) (*models.Volunteer, error) {
	if strings.TrimSpace(firstName) == "" || strings.TrimSpace(lastName) == "" {
		return nil, fmt.Errorf("%w: first and last name are required", ErrVolunteerValidation)
	}
	volunteer, err := s.volunteerRepo.GetVolunteerByName(firstName, lastName)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrVolunteerNotFound
		}
		return nil, fmt.Errorf("failed to find volunteer: %w", err)
	}
	return volunteer, nil
}

func (s *volunteerService) UpdateVolunteer(actor string, id int64, req UpdateVolunteerRequest) (*models.Volunteer, error) {
	volunteer, err := s.GetVolunteerByID(id)
	if err != nil {
		return nil, err
	}
	if req.FirstName != nil {
		if strings.TrimSpace(*req.FirstName) == "" {
			return nil, fmt.Errorf("%w: first name cannot be empty", ErrVolunteerValidation)
		}
		volunteer.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		if strings.TrimSpace(*req.LastName) == "" {
			return nil, fmt.Errorf("%w: last name cannot be empty", ErrVolunteerValidation)
		}
		volunteer.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Note != nil {
		volunteer.Note = *req.Note
	}
	if err := s.volunteerRepo.UpdateVolunteer(s.db, volunteer); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrVolunteerNotFound
		}
		return nil, fmt.Errorf("failed to update volunteer: %w", err)
	}
	s.audit.Record(actor, "volunteer.update", "volunteer", volunteer.ID, "")
	return volunteer, nil
}

func (s *volunteerService) DeleteVolunteer(actor string, id int64) error {
	hasLoans, err := s.volunteerRepo.HasOpenLoans(id)
	if err != nil {
		return fmt.Errorf("failed to check volunteer loans: %w", err)
	}
	if hasLoans {
		return ErrVolunteerHasLoans
	}
	if err := s.volunteerRepo.DeleteVolunteer(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrVolunteerNotFound
		}
		if errors.Is(err, repositories.ErrForeignKeyViolation) {
			return ErrVolunteerHasLoans
		}
		return fmt.Errorf("failed to delete volunteer: %w", err)
	}
	s.audit.Record(actor, "volunteer.delete", "volunteer", id, "")
	return nil
}

// Header synonyms accepted by the CSV import, lowercased. The files come
// from whatever spreadsheet each antenna keeps, so both French and English
// headings show up in the wild.
var (
	lastNameHeaders  = []string{"nom", "last name", "lastname", "last_name"}
	firstNameHeaders = []string{"prénom", "prenom", "first name", "firstname", "first_name"}
	noteHeaders      = []string{"note", "notes", "remarque", "commentaire"}
)

func matchHeader(cell string, candidates []string) bool {
	normalized := strings.ToLower(strings.TrimSpace(cell))
	for _, candidate := range candidates {
		if normalized == candidate {
			return true
		}
	}
	return false
}

// mapImportColumns locates the last-name, first-name and note columns in a
// header row. The note column is optional; index -1 means absent.
func mapImportColumns(header []string) (lastCol, firstCol, noteCol int, err error) {
	lastCol, firstCol, noteCol = -1, -1, -1
	for i, cell := range header {
		switch {
		case lastCol == -1 && matchHeader(cell, lastNameHeaders):
			lastCol = i
		case firstCol == -1 && matchHeader(cell, firstNameHeaders):
			firstCol = i
		case noteCol == -1 && matchHeader(cell, noteHeaders):
			noteCol = i
		}
	}
	if lastCol == -1 || firstCol == -1 {
		return 0, 0, 0, ErrCSVColumnsMissing
	}
	return lastCol, firstCol, noteCol, nil
}

// ImportCSV bulk-loads volunteers from an uploaded CSV file. The separator
// is sniffed, headers are matched case-insensitively against the synonym
// table, and rows duplicating an existing (last, first) pair or another row
// of the same file are skipped.
func (s *volunteerService) ImportCSV(actor string, content []byte) (*ImportResult, error) {
	text := utils.StripBOM(string(content))
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = utils.DetectCSVSeparator(text)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: empty or unreadable file", ErrCSVColumnsMissing)
	}
	lastCol, firstCol, noteCol, err := mapImportColumns(header)
	if err != nil {
		return nil, err
	}

	existing, err := s.volunteerRepo.ExistingNameKeys()
	if err != nil {
		return nil, fmt.Errorf("failed to load existing volunteers: %w", err)
	}

	result := &ImportResult{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Malformed row: skipped silently, per the import contract.
			result.Total++
			result.Skipped++
			continue
		}
		if isBlankRow(record) {
			continue
		}
		result.Total++

		last := fieldAt(record, lastCol)
		first := fieldAt(record, firstCol)
		if last == "" || first == "" {
			result.Skipped++
			continue
		}
		key := repositories.NameKey(first, last)
		if _, dup := existing[key]; dup {
			result.Skipped++
			continue
		}

		volunteer := &models.Volunteer{FirstName: first, LastName: last, Note: fieldAt(record, noteCol)}
		if _, err := s.volunteerRepo.CreateVolunteer(s.db, volunteer); err != nil {
			result.Skipped++
			continue
		}
		existing[key] = struct{}{}
		result.Added++
	}

	s.audit.Record(actor, "volunteer.import", "volunteer", 0,
		fmt.Sprintf("added %d, skipped %d of %d", result.Added, result.Skipped, result.Total))
	utils.LogDebug("volunteer import finished", map[string]interface{}{
		"added": result.Added, "skipped": result.Skipped, "total": result.Total,
	})
	return result, nil
}

func fieldAt(record []string, col int) string {
	if col < 0 || col >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[col])
}

func isBlankRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
