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

// GarmentTypeHandler holds the catalog service.
type GarmentTypeHandler struct {
	catalogService services.CatalogService
}

// NewGarmentTypeHandler creates a new GarmentTypeHandler.
func NewGarmentTypeHandler(cs services.CatalogService) *GarmentTypeHandler {
	return &GarmentTypeHandler{catalogService: cs}
}

// CreateGarmentType handles the creation of a new garment type.
func (h *GarmentTypeHandler) CreateGarmentType(c *gin.Context) {
	var req services.CreateGarmentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Données invalides: "+err.Error(), err.Error()))
		return
	}

	gt, err := h.catalogService.CreateGarmentType(middleware.Actor(c), req)
	if err != nil {
		utils.LogError(err, "CreateGarmentType: error from catalogService.CreateGarmentType")
		if errors.Is(err, services.ErrTypeLabelExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Un type de vêtement porte déjà ce libellé.", err.Error()))
		} else if errors.Is(err, services.ErrCatalogValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Données invalides: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la création du type.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "data": gt})
}

// GetGarmentTypes handles fetching all garment types.
func (h *GarmentTypeHandler) GetGarmentTypes(c *gin.Context) {
	types, err := h.catalogService.GetGarmentTypes()
	if err != nil {
		utils.LogError(err, "GetGarmentTypes: error from catalogService.GetGarmentTypes")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la lecture des types.", "Internal error"))
		return
	}
	if types == nil {
		types = []models.GarmentType{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": types})
}

// GetGarmentTypeByID handles fetching a single garment type.
func (h *GarmentTypeHandler) GetGarmentTypeByID(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Identifiant de type invalide.", err.Error()))
		return
	}

	gt, err := h.catalogService.GetGarmentTypeByID(id)
	if err != nil {
		if errors.Is(err, services.ErrTypeNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Type de vêtement introuvable.", err.Error()))
			return
		}
		utils.LogError(err, "GetGarmentTypeByID: error from catalogService.GetGarmentTypeByID")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la lecture du type.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": gt})
}

// UpdateGarmentType handles updating a garment type.
func (h *GarmentTypeHandler) UpdateGarmentType(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Identifiant de type invalide.", err.Error()))
		return
	}

	var req services.UpdateGarmentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Données invalides: "+err.Error(), err.Error()))
		return
	}

	gt, err := h.catalogService.UpdateGarmentType(middleware.Actor(c), id, req)
	if err != nil {
		utils.LogError(err, "UpdateGarmentType: error from catalogService.UpdateGarmentType")
		if errors.Is(err, services.ErrTypeNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Type de vêtement introuvable.", err.Error()))
		} else if errors.Is(err, services.ErrTypeLabelExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Un type de vêtement porte déjà ce libellé.", err.Error()))
		} else if errors.Is(err, services.ErrCatalogValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Données invalides: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la mise à jour du type.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": gt})
}

// DeleteGarmentType handles deleting a garment type. Deletion is refused
// while stock rows still reference it.
func (h *GarmentTypeHandler) DeleteGarmentType(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Identifiant de type invalide.", err.Error()))
		return
	}

	if err := h.catalogService.DeleteGarmentType(middleware.Actor(c), id); err != nil {
		utils.LogError(err, "DeleteGarmentType: error from catalogService.DeleteGarmentType")
		if errors.Is(err, services.ErrTypeNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Type de vêtement introuvable.", err.Error()))
		} else if errors.Is(err, services.ErrTypeInUse) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Type utilisé par des articles de stock.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la suppression du type.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
