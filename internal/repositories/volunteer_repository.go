package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"vestiaire_backend/internal/models"
)

// VolunteerRepository defines the interface for volunteer-related database operations.
type VolunteerRepository interface {
	CreateVolunteer(executor SQLExecutor, volunteer *models.Volunteer) (int64, error)
	GetVolunteerByID(id int64) (*models.Volunteer, error)
	GetVolunteerByName(firstName, lastName string) (*models.Volunteer, error)
	GetVolunteers(page, pageSize int, searchTerm *string) ([]models.Volunteer, int, error)
	UpdateVolunteer(executor SQLExecutor, volunteer *models.Volunteer) error
	DeleteVolunteer(executor SQLExecutor, id int64) error
	HasOpenLoans(id int64) (bool, error)
	ExistingNameKeys() (map[string]struct{}, error)
	CountVolunteers() (int, error)
}

type volunteerRepository struct {
	db *sql.DB
}

// NewVolunteerRepository creates a new instance of VolunteerRepository.
func NewVolunteerRepository(db *sql.DB) VolunteerRepository {
	return &volunteerRepository{db: db}
}

const volunteerColumns = `id, first_name, last_name, note, created_at`

func scanVolunteer(s scanner, v *models.Volunteer) error {
	return s.Scan(&v.ID, &v.FirstName, &v.LastName, &v.Note, &v.CreatedAt)
}

// NameKey builds the case-insensitive de-duplication key for a volunteer name
// pair.
func NameKey(firstName, lastName string) string {
	return strings.ToLower(strings.TrimSpace(lastName)) + "|" + strings.ToLower(strings.TrimSpace(firstName))
}

// CreateVolunteer inserts a new volunteer.
func (r *volunteerRepository) CreateVolunteer(executor SQLExecutor, volunteer *models.Volunteer) (int64, error) {
	query := `INSERT INTO volunteers (first_name, last_name, note) VALUES ($1, $2, $3) RETURNING id, created_at`

	err := executor.QueryRow(query, volunteer.FirstName, volunteer.LastName, volunteer.Note).
		Scan(&volunteer.ID, &volunteer.CreatedAt)
	if err != nil {
		return 0, translatePQError(err)
	}
	return volunteer.ID, nil
}

// GetVolunteerByID retrieves a volunteer by their ID.
func (r *volunteerRepository) GetVolunteerByID(id int64) (*models.Volunteer, error) {
	volunteer := &models.Volunteer{}
	query := `SELECT ` + volunteerColumns + ` FROM volunteers WHERE id = $1`

	err := scanVolunteer(r.db.QueryRow(query, id), volunteer)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting volunteer by ID %d: %v", ErrDatabaseError, id, err)
	}
	return volunteer, nil
}

// GetVolunteerByName retrieves a volunteer by the case-insensitive
// (first name, last name) pair, the natural key used by the kiosk endpoints.
func (r *volunteerRepository) GetVolunteerByName(firstName, lastName string) (*models.Volunteer, error) {
	volunteer := &models.Volunteer{}
	query := `SELECT ` + volunteerColumns + ` FROM volunteers
	          WHERE lower(first_name) = lower($1) AND lower(last_name) = lower($2)
	          ORDER BY id ASC LIMIT 1`

	err := scanVolunteer(r.db.QueryRow(query, strings.TrimSpace(firstName), strings.TrimSpace(lastName)), volunteer)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting volunteer by name: %v", ErrDatabaseError, err)
	}
	return volunteer, nil
}

// GetVolunteers retrieves volunteers with pagination and optional search.
func (r *volunteerRepository) GetVolunteers(page, pageSize int, searchTerm *string) ([]models.Volunteer, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + volunteerColumns + `, COUNT(*) OVER() as total_count FROM volunteers`)

	var args []interface{}
	argCount := 1

	if searchTerm != nil && *searchTerm != "" {
		pattern := "%" + strings.ToLower(*searchTerm) + "%"
		queryBuilder.WriteString(fmt.Sprintf(
			" WHERE (first_name ILIKE $%d OR last_name ILIKE $%d OR note ILIKE $%d)", argCount, argCount, argCount))
		args = append(args, pattern)
		argCount++
	}

	queryBuilder.WriteString(" ORDER BY last_name ASC, first_name ASC")

	if pageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, pageSize)
		argCount++
		if page > 0 {
			offset := (page - 1) * pageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCount))
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying volunteers: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	volunteers := []models.Volunteer{}
	totalCount := 0
	for rows.Next() {
		var volunteer models.Volunteer
		if err := rows.Scan(&volunteer.ID, &volunteer.FirstName, &volunteer.LastName,
			&volunteer.Note, &volunteer.CreatedAt, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning volunteer: %v", ErrDatabaseError, err)
		}
		volunteers = append(volunteers, volunteer)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating volunteer rows: %v", ErrDatabaseError, err)
	}
	return volunteers, totalCount, nil
}

// UpdateVolunteer updates an existing volunteer in place.
func (r *volunteerRepository) UpdateVolunteer(executor SQLExecutor, volunteer *models.Volunteer) error {
	query := `UPDATE volunteers SET first_name = $1, last_name = $2, note = $3 WHERE id = $4`

	result, err := executor.Exec(query, volunteer.FirstName, volunteer.LastName, volunteer.Note, volunteer.ID)
	if err != nil {
		return translatePQError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for updating volunteer ID %d: %v", ErrDatabaseError, volunteer.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteVolunteer removes a volunteer. Loans referencing them block the
// delete at the FK level.
func (r *volunteerRepository) DeleteVolunteer(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM volunteers WHERE id = $1`, id)
	if err != nil {
		return translatePQError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting volunteer ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// HasOpenLoans reports whether the volunteer currently holds an open loan.
func (r *volunteerRepository) HasOpenLoans(id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM loans WHERE volunteer_id = $1 AND returned_at IS NULL)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: checking open loans for volunteer ID %d: %v", ErrDatabaseError, id, err)
	}
	return exists, nil
}

// ExistingNameKeys returns the set of case-insensitive (last, first) name
// keys already registered, used by CSV import de-duplication.
func (r *volunteerRepository) ExistingNameKeys() (map[string]struct{}, error) {
	rows, err := r.db.Query(`SELECT first_name, last_name FROM volunteers`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying volunteer names: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var first, last string
		if err := rows.Scan(&first, &last); err != nil {
			return nil, fmt.Errorf("%w: scanning volunteer name: %v", ErrDatabaseError, err)
		}
		keys[NameKey(first, last)] = struct{}{}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating volunteer name rows: %v", ErrDatabaseError, err)
	}
	return keys, nil
}

// CountVolunteers counts the registry.
func (r *volunteerRepository) CountVolunteers() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM volunteers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting volunteers: %v", ErrDatabaseError, err)
	}
	return count, nil
}
