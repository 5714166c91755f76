package handlers

import (
	"errors"
	"net/http"

	"vestiaire_backend/internal/middleware"
	"vestiaire_backend/internal/models"
	"vestiaire_backend/internal/services"
	"vestiaire_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// UserHandler holds the user service.
type UserHandler struct {
	userService services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us services.UserService) *UserHandler {
	return &UserHandler{userService: us}
}

// CreateUser handles the creation of a new user account.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Données invalides: "+err.Error(), err.Error()))
		return
	}

	user, err := h.userService.CreateUser(middleware.Actor(c), req)
	if err != nil {
		utils.LogError(err, "CreateUser: error from userService.CreateUser")
		if errors.Is(err, services.ErrEmailExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Un compte existe déjà avec cet email.", err.Error()))
		} else if errors.Is(err, services.ErrUserValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Données invalides: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la création du compte.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "data": user})
}

// GetUsers handles fetching all users.
func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.userService.GetUsers()
	if err != nil {
		utils.LogError(err, "GetUsers: error from userService.GetUsers")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la lecture des comptes.", "Internal error"))
		return
	}
	if users == nil {
		users = []models.User{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": users})
}

// GetUserByID handles fetching a single user.
func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Identifiant de compte invalide.", err.Error()))
		return
	}

	user, err := h.userService.GetUserByID(id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Compte introuvable.", err.Error()))
			return
		}
		utils.LogError(err, "GetUserByID: error from userService.GetUserByID")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la lecture du compte.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": user})
}

// UpdateUser handles updating a user account.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Identifiant de compte invalide.", err.Error()))
		return
	}

	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Données invalides: "+err.Error(), err.Error()))
		return
	}

	user, err := h.userService.UpdateUser(middleware.Actor(c), id, req)
	if err != nil {
		utils.LogError(err, "UpdateUser: error from userService.UpdateUser")
		if errors.Is(err, services.ErrUserNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Compte introuvable.", err.Error()))
		} else if errors.Is(err, services.ErrEmailExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Un compte existe déjà avec cet email.", err.Error()))
		} else if errors.Is(err, services.ErrUserValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Données invalides: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la mise à jour du compte.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": user})
}

// DeleteUser handles deleting a user account. Users cannot delete their own
// account.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Identifiant de compte invalide.", err.Error()))
		return
	}

	if err := h.userService.DeleteUser(middleware.Actor(c), middleware.UserID(c), id); err != nil {
		utils.LogError(err, "DeleteUser: error from userService.DeleteUser for ID "+utils.Int64ToStr(id))
		if errors.Is(err, services.ErrUserNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Compte introuvable.", err.Error()))
		} else if errors.Is(err, services.ErrSelfDeletion) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Impossible de supprimer son propre compte.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la suppression du compte.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
