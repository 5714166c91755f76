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

// AntennaHandler holds the catalog service.
type AntennaHandler struct {
	catalogService services.CatalogService
}

// NewAntennaHandler creates a new AntennaHandler.
func NewAntennaHandler(cs services.CatalogService) *AntennaHandler {
	return &AntennaHandler{catalogService: cs}
}

// CreateAntenna handles the creation of a new antenna.
func (h *AntennaHandler) CreateAntenna(c *gin.Context) {
	var req services.CreateAntennaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Données invalides: "+err.Error(), err.Error()))
		return
	}

	antenna, err := h.catalogService.CreateAntenna(middleware.Actor(c), req)
	if err != nil {
		utils.LogError(err, "CreateAntenna: error from catalogService.CreateAntenna")
		if errors.Is(err, services.ErrAntennaNameExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Une antenne porte déjà ce nom.", err.Error()))
		} else if errors.Is(err, services.ErrCatalogValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Données invalides: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la création de l'antenne.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "data": antenna})
}

// GetAntennas handles fetching all antennas.
func (h *AntennaHandler) GetAntennas(c *gin.Context) {
	antennas, err := h.catalogService.GetAntennas()
	if err != nil {
		utils.LogError(err, "GetAntennas: error from catalogService.GetAntennas")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la lecture des antennes.", "Internal error"))
		return
	}
	if antennas == nil {
		antennas = []models.Antenna{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": antennas})
}

// GetAntennaByID handles fetching a single antenna.
func (h *AntennaHandler) GetAntennaByID(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Identifiant d'antenne invalide.", err.Error()))
		return
	}

	antenna, err := h.catalogService.GetAntennaByID(id)
	if err != nil {
		if errors.Is(err, services.ErrAntennaNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Antenne introuvable.", err.Error()))
			return
		}
		utils.LogError(err, "GetAntennaByID: error from catalogService.GetAntennaByID")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la lecture de l'antenne.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": antenna})
}

// UpdateAntenna handles updating an antenna.
func (h *AntennaHandler) UpdateAntenna(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Identifiant d'antenne invalide.", err.Error()))
		return
	}

	var req services.UpdateAntennaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Données invalides: "+err.Error(), err.Error()))
		return
	}

	antenna, err := h.catalogService.UpdateAntenna(middleware.Actor(c), id, req)
	if err != nil {
		utils.LogError(err, "UpdateAntenna: error from catalogService.UpdateAntenna")
		if errors.Is(err, services.ErrAntennaNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Antenne introuvable.", err.Error()))
		} else if errors.Is(err, services.ErrAntennaNameExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Une antenne porte déjà ce nom.", err.Error()))
		} else if errors.Is(err, services.ErrCatalogValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Données invalides: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la mise à jour de l'antenne.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": antenna})
}

// DeleteAntenna handles deleting an antenna. Deletion is refused while stock
// rows still reference it.
func (h *AntennaHandler) DeleteAntenna(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Identifiant d'antenne invalide.", err.Error()))
		return
	}

	if err := h.catalogService.DeleteAntenna(middleware.Actor(c), id); err != nil {
		utils.LogError(err, "DeleteAntenna: error from catalogService.DeleteAntenna")
		if errors.Is(err, services.ErrAntennaNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Antenne introuvable.", err.Error()))
		} else if errors.Is(err, services.ErrAntennaInUse) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Antenne utilisée par des articles de stock.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la suppression de l'antenne.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
