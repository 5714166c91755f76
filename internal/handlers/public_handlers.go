package handlers

import (
	"errors"
	"net/http"

	"vestiaire_backend/internal/models"
	"vestiaire_backend/internal/services"
	"vestiaire_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// publicActor labels kiosk operations in the audit log.
const publicActor = "public"

// PublicHandler serves the unauthenticated kiosk endpoints. They reuse the
// same services as the staff endpoints.
type PublicHandler struct {
	volunteerService services.VolunteerService
	stockService     services.StockService
	loanService      services.LoanService
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(vs services.VolunteerService, ss services.StockService, ls services.LoanService) *PublicHandler {
	return &PublicHandler{volunteerService: vs, stockService: ss, loanService: ls}
}

// FindVolunteer handles GET /api/public/volunteer, an exact
// case-insensitive lookup by first and last name.
func (h *PublicHandler) FindVolunteer(c *gin.Context) {
	firstName := c.Query("first_name")
	lastName := c.Query("last_name")
	if utils.IsEmpty(firstName) || utils.IsEmpty(lastName) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Nom et prénom requis.", ""))
		return
	}

	volunteer, err := h.volunteerService.FindVolunteerByName(firstName, lastName)
	if err != nil {
		if errors.Is(err, services.ErrVolunteerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Bénévole introuvable.", err.Error()))
			return
		}
		utils.LogError(err, "FindVolunteer: error from volunteerService.FindVolunteerByName")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la recherche du bénévole.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": volunteer})
}

// GetStock handles GET /api/public/stock, the available items only.
func (h *PublicHandler) GetStock(c *gin.Context) {
	items, err := h.stockService.GetPublicStock()
	if err != nil {
		utils.LogError(err, "GetStock: error from stockService.GetPublicStock")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la lecture du stock.", "Internal error"))
		return
	}
	if items == nil {
		items = []models.StockItem{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": items})
}

// CreateLoan handles POST /api/public/loan from the kiosk.
func (h *PublicHandler) CreateLoan(c *gin.Context) {
	var req services.CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Données invalides: "+err.Error(), err.Error()))
		return
	}

	loan, err := h.loanService.CreateLoan(publicActor, req)
	if err != nil {
		utils.LogError(err, "CreateLoan: error from loanService.CreateLoan (public)")
		if errors.Is(err, services.ErrInsufficientStock) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeInsufficientStock, "Stock insuffisant", err.Error()))
		} else if errors.Is(err, services.ErrVolunteerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Bénévole introuvable.", err.Error()))
		} else if errors.Is(err, services.ErrStockItemNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Article de stock introuvable.", err.Error()))
		} else if errors.Is(err, services.ErrLoanValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Données invalides: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la création du prêt.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "data": loan})
}

// ReturnLoan handles POST /api/public/return/:id from the kiosk.
func (h *PublicHandler) ReturnLoan(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Identifiant de prêt invalide.", err.Error()))
		return
	}

	result, err := h.loanService.ReturnLoan(publicActor, id)
	if err != nil {
		utils.LogError(err, "ReturnLoan: error from loanService.ReturnLoan (public)")
		if errors.Is(err, services.ErrLoanNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Prêt introuvable.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec du retour du prêt.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": result.Loan, "already_returned": result.AlreadyReturned})
}
