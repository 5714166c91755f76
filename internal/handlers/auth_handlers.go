package handlers

import (
	"errors"
	"net/http"

	"vestiaire_backend/internal/middleware"
	"vestiaire_backend/internal/services"
	"vestiaire_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the auth service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

var sessionCookieMaxAge = int(utils.SessionTokenTTL.Seconds())

// Login handles POST /api/login. On success it sets the HttpOnly session
// cookie and the readable CSRF cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed,
			"Email et mot de passe requis", err.Error()))
		return
	}

	resp, err := h.authService.Login(req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized,
				"Identifiants invalides", ""))
			return
		}
		utils.LogError(err, "Login: error from authService.Login")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError,
			"Échec de la connexion", "Internal error"))
		return
	}

	c.SetCookie(middleware.SessionCookieName, resp.SessionToken, sessionCookieMaxAge, "/", "", false, true)
	c.SetCookie(middleware.CSRFCookieName, resp.CSRFToken, sessionCookieMaxAge, "/", "", false, false)
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": resp.User, "csrf_token": resp.CSRFToken})
}

// Logout handles POST /api/logout by clearing both cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	c.SetCookie(middleware.CSRFCookieName, "", -1, "/", "", false, false)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Me handles GET /api/me. The front-end calls this on load to decide
// between the kiosk and the back office, so anonymous and stale sessions
// get a plain {ok:false} instead of an error status.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		c.JSON(http.StatusOK, gin.H{"ok": false})
		return
	}
	user, err := h.authService.GetProfile(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusOK, gin.H{"ok": false})
			return
		}
		utils.LogError(err, "Me: error from authService.GetProfile")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError,
			"Échec de la lecture du profil", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user})
}
