package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vestiaire_backend/internal/models"
	"vestiaire_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(t *testing.T) (AuthService, *fakeUserRepo, *recorderAudit) {
	t.Helper()
	utils.SetJWTSecret("test-secret")
	repo := newFakeUserRepo()
	audit := &recorderAudit{}
	svc := NewAuthService(repo, audit, nil)
	return svc, repo, audit
}

func seedUser(t *testing.T, repo *fakeUserRepo, email, password, role string) int64 {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	id, err := repo.CreateUser(nil, &models.User{
		Email: email, Name: "Test", PasswordHash: string(hash), Role: role,
	})
	require.NoError(t, err)
	return id
}

func TestLogin(t *testing.T) {
	svc, repo, audit := newAuthFixture(t)
	seedUser(t, repo, "admin@pc.fr", "admin123", models.RoleAdmin)

	resp, err := svc.Login(LoginRequest{Email: "  Admin@PC.fr ", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, "admin@pc.fr", resp.User.Email)
	assert.NotEmpty(t, resp.SessionToken)
	assert.NotEmpty(t, resp.CSRFToken)
	assert.True(t, audit.has("auth.login"))

	claims, err := utils.ValidateToken(resp.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	seedUser(t, repo, "admin@pc.fr", "admin123", models.RoleAdmin)

	_, err := svc.Login(LoginRequest{Email: "admin@pc.fr", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(LoginRequest{Email: "nobody@pc.fr", Password: "admin123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetProfile(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	id := seedUser(t, repo, "admin@pc.fr", "admin123", models.RoleAdmin)

	user, err := svc.GetProfile(id)
	require.NoError(t, err)
	assert.Equal(t, "admin@pc.fr", user.Email)

	_, err = svc.GetProfile(99)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestEnsureDefaultAdminIsIdempotent(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)

	require.NoError(t, svc.EnsureDefaultAdmin("admin@pc.fr", "Admin", "admin123"))
	require.Len(t, repo.users, 1)
	assert.Equal(t, models.RoleAdmin, repo.users[1].Role)

	// A second startup finds the account and does nothing.
	require.NoError(t, svc.EnsureDefaultAdmin("admin@pc.fr", "Admin", "admin123"))
	assert.Len(t, repo.users, 1)
}
