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

// LoanHandler holds the loan service.
type LoanHandler struct {
	loanService services.LoanService
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(ls services.LoanService) *LoanHandler {
	return &LoanHandler{loanService: ls}
}

// CreateLoan handles POST /api/loans. The stock decrement and the loan row
// are written in one transaction.
func (h *LoanHandler) CreateLoan(c *gin.Context) {
	var req services.CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Données invalides: "+err.Error(), err.Error()))
		return
	}

	loan, err := h.loanService.CreateLoan(middleware.Actor(c), req)
	if err != nil {
		utils.LogError(err, "CreateLoan: error from loanService.CreateLoan")
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

// ReturnLoan handles POST /api/loans/return/:id. Returning an
// already-returned loan succeeds without touching stock again.
func (h *LoanHandler) ReturnLoan(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Identifiant de prêt invalide.", err.Error()))
		return
	}

	result, err := h.loanService.ReturnLoan(middleware.Actor(c), id)
	if err != nil {
		utils.LogError(err, "ReturnLoan: error from loanService.ReturnLoan for ID "+utils.Int64ToStr(id))
		if errors.Is(err, services.ErrLoanNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Prêt introuvable.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec du retour du prêt.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": result.Loan, "already_returned": result.AlreadyReturned})
}

// GetOpenLoans handles GET /api/loans/open, the joined open-loan view.
func (h *LoanHandler) GetOpenLoans(c *gin.Context) {
	loans, err := h.loanService.GetOpenLoans()
	if err != nil {
		utils.LogError(err, "GetOpenLoans: error from loanService.GetOpenLoans")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la lecture des prêts.", "Internal error"))
		return
	}
	if loans == nil {
		loans = []models.OpenLoanView{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": loans})
}
