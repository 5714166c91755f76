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

// --- Custom Service Errors ---
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenGeneration    = errors.New("failed to generate token")
)

// --- Data Transfer Objects (DTOs) ---

// LoginRequest DTO
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse DTO
type AuthResponse struct {
	User         *models.User `json:"user"`
	SessionToken string       `json:"-"`
	CSRFToken    string       `json:"-"`
}

// --- AuthService Interface ---
type AuthService interface {
	Login(req LoginRequest) (*AuthResponse, error)
	GetProfile(userID int64) (*models.User, error)
	EnsureDefaultAdmin(email, name, password string) error
}

type authService struct {
	userRepo repositories.UserRepository
	audit    AuditRecorder
	db       *sql.DB
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(userRepo repositories.UserRepository, audit AuditRecorder, db *sql.DB) AuthService {
	return &authService{userRepo: userRepo, audit: audit, db: db}
}

// Login verifies credentials and mints the session and CSRF tokens.
func (s *authService) Login(req LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.GetUserByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateSessionToken(user.ID, user.Email, user.Name, user.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	s.audit.Record(user.Email, "auth.login", "user", user.ID, "")
	return &AuthResponse{
		User:         user,
		SessionToken: token,
		CSRFToken:    utils.NewCSRFToken(),
	}, nil
}

func (s *authService) GetProfile(userID int64) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return user, nil
}

// EnsureDefaultAdmin seeds the bootstrap admin account on first startup when
// no user holds the configured email.
func (s *authService) EnsureDefaultAdmin(email, name, password string) error {
	_, err := s.userRepo.GetUserByEmail(email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to check bootstrap admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap password: %w", err)
	}
	admin := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if _, err := s.userRepo.CreateUser(s.db, admin); err != nil {
		// A concurrent replica may have seeded it first.
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil
		}
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}
	utils.LogInfo("Bootstrap admin created", map[string]interface{}{"email": email})
	return nil
}
