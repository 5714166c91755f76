package handlers

import (
	"net/http"
	"strconv"

	"vestiaire_backend/internal/models"
	"vestiaire_backend/internal/services"
	"vestiaire_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuditHandler holds the audit service.
type AuditHandler struct {
	auditService services.AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(as services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: as}
}

// GetEntries handles GET /api/logs, newest first.
func (h *AuditHandler) GetEntries(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}

	entries, total, err := h.auditService.GetEntries(page, pageSize)
	if err != nil {
		utils.LogError(err, "GetEntries: error from auditService.GetEntries")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la lecture du journal.", "Internal error"))
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"data":      entries,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
