package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"vestiaire_backend/internal/middleware"
	"vestiaire_backend/internal/models"
	"vestiaire_backend/internal/services"
	"vestiaire_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// importMaxSize caps uploaded CSV files at 5 MiB.
const importMaxSize = 5 << 20

// VolunteerHandler holds the volunteer service.
type VolunteerHandler struct {
	volunteerService services.VolunteerService
}

// NewVolunteerHandler creates a new VolunteerHandler.
func NewVolunteerHandler(vs services.VolunteerService) *VolunteerHandler {
	return &VolunteerHandler{volunteerService: vs}
}

// CreateVolunteer handles the creation of a new volunteer.
func (h *VolunteerHandler) CreateVolunteer(c *gin.Context) {
	var req services.CreateVolunteerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Données invalides: "+err.Error(), err.Error()))
		return
	}

	volunteer, err := h.volunteerService.CreateVolunteer(middleware.Actor(c), req)
	if err != nil {
		utils.LogError(err, "CreateVolunteer: error from volunteerService.CreateVolunteer")
		if errors.Is(err, services.ErrVolunteerExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Un bénévole porte déjà ce nom.", err.Error()))
		} else if errors.Is(err, services.ErrVolunteerValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Données invalides: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la création du bénévole.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "data": volunteer})
}

// GetVolunteers handles fetching volunteers with pagination and search.
func (h *VolunteerHandler) GetVolunteers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	var search *string
	if term := c.Query("search"); term != "" {
		search = &term
	}

	volunteers, total, err := h.volunteerService.GetVolunteers(page, pageSize, search)
	if err != nil {
		utils.LogError(err, "GetVolunteers: error from volunteerService.GetVolunteers")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la lecture des bénévoles.", "Internal error"))
		return
	}
	if volunteers == nil {
		volunteers = []models.Volunteer{}
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"data":      volunteers,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetVolunteerByID handles fetching a single volunteer.
func (h *VolunteerHandler) GetVolunteerByID(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Identifiant de bénévole invalide.", err.Error()))
		return
	}

	volunteer, err := h.volunteerService.GetVolunteerByID(id)
	if err != nil {
		if errors.Is(err, services.ErrVolunteerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Bénévole introuvable.", err.Error()))
			return
		}
		utils.LogError(err, "GetVolunteerByID: error from volunteerService.GetVolunteerByID")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la lecture du bénévole.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": volunteer})
}

// UpdateVolunteer handles updating a volunteer.
func (h *VolunteerHandler) UpdateVolunteer(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Identifiant de bénévole invalide.", err.Error()))
		return
	}

	var req services.UpdateVolunteerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Données invalides: "+err.Error(), err.Error()))
		return
	}

	volunteer, err := h.volunteerService.UpdateVolunteer(middleware.Actor(c), id, req)
	if err != nil {
		utils.LogError(err, "UpdateVolunteer: error from volunteerService.UpdateVolunteer")
		if errors.Is(err, services.ErrVolunteerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Bénévole introuvable.", err.Error()))
		} else if errors.Is(err, services.ErrVolunteerExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Un bénévole porte déjà ce nom.", err.Error()))
		} else if errors.Is(err, services.ErrVolunteerValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Données invalides: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la mise à jour du bénévole.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": volunteer})
}

// DeleteVolunteer handles deleting a volunteer. Deletion is refused while an
// open loan references them.
func (h *VolunteerHandler) DeleteVolunteer(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Identifiant de bénévole invalide.", err.Error()))
		return
	}

	if err := h.volunteerService.DeleteVolunteer(middleware.Actor(c), id); err != nil {
		utils.LogError(err, "DeleteVolunteer: error from volunteerService.DeleteVolunteer")
		if errors.Is(err, services.ErrVolunteerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Bénévole introuvable.", err.Error()))
		} else if errors.Is(err, services.ErrVolunteerHasLoans) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Le bénévole a des prêts en cours.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la suppression du bénévole.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ImportCSV handles POST /api/volunteers/import with a multipart "file"
// field.
func (h *VolunteerHandler) ImportCSV(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Fichier CSV manquant.", err.Error()))
		return
	}
	if fileHeader.Size > importMaxSize {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Fichier trop volumineux.", ""))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.LogError(err, "ImportCSV: failed to open uploaded file")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Fichier CSV illisible.", err.Error()))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, importMaxSize+1))
	if err != nil {
		utils.LogError(err, "ImportCSV: failed to read uploaded file")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Fichier CSV illisible.", err.Error()))
		return
	}

	result, err := h.volunteerService.ImportCSV(middleware.Actor(c), content)
	if err != nil {
		utils.LogError(err, "ImportCSV: error from volunteerService.ImportCSV")
		if errors.Is(err, services.ErrCSVColumnsMissing) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Colonnes Nom/Prénom introuvables dans le fichier.", err.Error()))
		} else if errors.Is(err, services.ErrVolunteerValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Fichier CSV invalide: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de l'import des bénévoles.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": result})
}
