package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"vestiaire_backend/internal/models"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	CreateUser(executor SQLExecutor, user *models.User) (int64, error)
	GetUserByID(id int64) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUsers() ([]models.User, error)
	UpdateUser(executor SQLExecutor, user *models.User) error
	DeleteUser(executor SQLExecutor, id int64) error
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, name, password_hash, role, created_at`

func scanUser(s scanner, u *models.User) error {
	return s.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.CreatedAt)
}

// CreateUser inserts a new user. Emails are stored lowercased.
func (r *userRepository) CreateUser(executor SQLExecutor, user *models.User) (int64, error) {
	query := `INSERT INTO users (email, name, password_hash, role)
	          VALUES ($1, $2, $3, $4) RETURNING id, created_at`

	err := executor.QueryRow(query,
		strings.ToLower(strings.TrimSpace(user.Email)), user.Name, user.PasswordHash, user.Role,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return 0, translatePQError(err)
	}
	return user.ID, nil
}

// GetUserByID retrieves a user by their ID.
func (r *userRepository) GetUserByID(id int64) (*models.User, error) {
	user := &models.User{}
	err := scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id), user)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting user by ID %d: %v", ErrDatabaseError, id, err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email, case-insensitively.
func (r *userRepository) GetUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	err := scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = lower($1)`,
		strings.TrimSpace(email)), user)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting user by email: %v", ErrDatabaseError, err)
	}
	return user, nil
}

// GetUsers retrieves every user, ordered by email.
func (r *userRepository) GetUsers() ([]models.User, error) {
	rows, err := r.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY email ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying users: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := scanUser(rows, &user); err != nil {
			return nil, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating user rows: %v", ErrDatabaseError, err)
	}
	return users, nil
}

// UpdateUser updates a user's email, name, role and password hash.
func (r *userRepository) UpdateUser(executor SQLExecutor, user *models.User) error {
	query := `UPDATE users SET email = $1, name = $2, password_hash = $3, role = $4 WHERE id = $5`

	result, err := executor.Exec(query,
		strings.ToLower(strings.TrimSpace(user.Email)), user.Name, user.PasswordHash, user.Role, user.ID)
	if err != nil {
		return translatePQError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for updating user ID %d: %v", ErrDatabaseError, user.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes a user.
func (r *userRepository) DeleteUser(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return translatePQError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting user ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
