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

// InventoryHandler holds the inventory service.
type InventoryHandler struct {
	inventoryService services.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(is services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: is}
}

// StartSession handles POST /api/inventory/start.
func (h *InventoryHandler) StartSession(c *gin.Context) {
	var req services.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Données invalides: "+err.Error(), err.Error()))
		return
	}

	session, err := h.inventoryService.StartSession(middleware.Actor(c), middleware.UserID(c), req)
	if err != nil {
		utils.LogError(err, "StartSession: error from inventoryService.StartSession")
		if errors.Is(err, services.ErrInventoryValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Antenne inconnue.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de l'ouverture de l'inventaire.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "data": session})
}

// RecordCount handles POST /api/inventory/:id/count. The first count of an
// item freezes its previous quantity; later counts only move counted_qty.
func (h *InventoryHandler) RecordCount(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Identifiant de session invalide.", err.Error()))
		return
	}

	var req services.RecordCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Données invalides: "+err.Error(), err.Error()))
		return
	}

	if err := h.inventoryService.RecordCount(id, req); err != nil {
		utils.LogError(err, "RecordCount: error from inventoryService.RecordCount")
		if errors.Is(err, services.ErrSessionNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Session d'inventaire introuvable.", err.Error()))
		} else if errors.Is(err, services.ErrSessionClosed) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Session d'inventaire déjà clôturée.", err.Error()))
		} else if errors.Is(err, services.ErrStockItemNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Article de stock introuvable.", err.Error()))
		} else if errors.Is(err, services.ErrInventoryValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Données invalides: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de l'enregistrement du comptage.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetSession handles GET /api/inventory/:id, session header plus lines.
func (h *InventoryHandler) GetSession(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Identifiant de session invalide.", err.Error()))
		return
	}

	detail, err := h.inventoryService.GetSession(id)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Session d'inventaire introuvable.", err.Error()))
			return
		}
		utils.LogError(err, "GetSession: error from inventoryService.GetSession")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la lecture de la session.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": detail})
}

// GetLines handles GET /api/inventory/:id/items.
func (h *InventoryHandler) GetLines(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Identifiant de session invalide.", err.Error()))
		return
	}

	lines, err := h.inventoryService.GetLines(id)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Session d'inventaire introuvable.", err.Error()))
			return
		}
		utils.LogError(err, "GetLines: error from inventoryService.GetLines")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la lecture des comptages.", "Internal error"))
		return
	}
	if lines == nil {
		lines = []models.InventoryLine{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": lines})
}

// CloseSession handles POST /api/inventory/:id/close. Counted quantities
// overwrite the stock rows; the operation is irreversible.
func (h *InventoryHandler) CloseSession(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Identifiant de session invalide.", err.Error()))
		return
	}

	session, err := h.inventoryService.CloseSession(middleware.Actor(c), id)
	if err != nil {
		utils.LogError(err, "CloseSession: error from inventoryService.CloseSession")
		if errors.Is(err, services.ErrSessionNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Session d'inventaire introuvable.", err.Error()))
		} else if errors.Is(err, services.ErrSessionClosed) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Session d'inventaire déjà clôturée.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la clôture de l'inventaire.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": session})
}
