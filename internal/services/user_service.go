package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"vestiaire_backend/internal/models"
	"vestiaire_backend/internal/repositories"
	"vestiaire_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// --- Custom Service Errors for user management ---
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailExists    = errors.New("email already exists")
	ErrUserValidation = errors.New("user data validation error")
	ErrSelfDeletion   = errors.New("users cannot delete their own account")
)

const minPasswordLength = 8

// --- User DTOs ---
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// --- UserService Interface ---
type UserService interface {
	CreateUser(actor string, req CreateUserRequest) (*models.User, error)
	GetUsers() ([]models.User, error)
	GetUserByID(id int64) (*models.User, error)
	UpdateUser(actor string, id int64, req UpdateUserRequest) (*models.User, error)
	DeleteUser(actor string, actorID, id int64) error
}

type userService struct {
	userRepo repositories.UserRepository
	audit    AuditRecorder
	db       *sql.DB
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo repositories.UserRepository, audit AuditRecorder, db *sql.DB) UserService {
	return &userService{userRepo: repo, audit: audit, db: db}
}

func validRole(role string) bool {
	return role == models.RoleAdmin || role == models.RoleStaff
}

func (s *userService) CreateUser(actor string, req CreateUserRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !utils.IsValidEmail(email) {
		return nil, fmt.Errorf("%w: invalid email", ErrUserValidation)
	}
	if !utils.IsValidPasswordLength(req.Password, minPasswordLength) {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrUserValidation, minPasswordLength)
	}
	role := req.Role
	if role == "" {
		role = models.RoleStaff
	}
	if !validRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrUserValidation, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{Email: email, Name: strings.TrimSpace(req.Name), PasswordHash: string(hash), Role: role}
	if _, err := s.userRepo.CreateUser(s.db, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.audit.Record(actor, "user.create", "user", user.ID, user.Email)
	return user, nil
}

func (s *userService) GetUsers() ([]models.User, error) {
	return s.userRepo.GetUsers()
}

func (s *userService) GetUserByID(id int64) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateUser(actor string, id int64, req UpdateUserRequest) (*models.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if !utils.IsValidEmail(email) {
			return nil, fmt.Errorf("%w: invalid email", ErrUserValidation)
		}
		user.Email = email
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrUserValidation)
		}
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Password != nil {
		if !utils.IsValidPasswordLength(*req.Password, minPasswordLength) {
			return nil, fmt.Errorf("%w: password must be at least %d characters", ErrUserValidation, minPasswordLength)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	if req.Role != nil {
		if !validRole(*req.Role) {
			return nil, fmt.Errorf("%w: unknown role %q", ErrUserValidation, *req.Role)
		}
		user.Role = *req.Role
	}
	if err := s.userRepo.UpdateUser(s.db, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	s.audit.Record(actor, "user.update", "user", user.ID, "")
	return user, nil
}

// DeleteUser removes a user account. Self-deletion is forbidden so an admin
// cannot lock everyone out by removing the last account they control.
func (s *userService) DeleteUser(actor string, actorID, id int64) error {
	if actorID == id {
		return ErrSelfDeletion
	}
	if err := s.userRepo.DeleteUser(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.audit.Record(actor, "user.delete", "user", id, "")
	return nil
}
