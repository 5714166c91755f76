package handlers

import (
	"net/http"

	"vestiaire_backend/internal/services"
	"vestiaire_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ExportHandler holds the report service.
type ExportHandler struct {
	reportService services.ReportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(rs services.ReportService) *ExportHandler {
	return &ExportHandler{reportService: rs}
}

func setAttachment(c *gin.Context, filename, contentType string) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", contentType)
}

// Stats handles GET /api/stats.
func (h *ExportHandler) Stats(c *gin.Context) {
	stats, err := h.reportService.Stats()
	if err != nil {
		utils.LogError(err, "Stats: error from reportService.Stats")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec du calcul des statistiques.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportStockCSV handles GET /api/export/stock.csv. Accepts the same filters
// as the stock list.
func (h *ExportHandler) ExportStockCSV(c *gin.Context) {
	filters := stockFiltersFromQuery(c)

	setAttachment(c, "stock.csv", "text/csv; charset=utf-8")
	if err := h.reportService.ExportStockCSV(c.Writer, filters); err != nil {
		utils.LogError(err, "ExportStockCSV: error from reportService.ExportStockCSV")
	}
}

// ExportLoansCSV handles GET /api/export/loans.csv.
func (h *ExportHandler) ExportLoansCSV(c *gin.Context) {
	openOnly := c.DefaultQuery("open_only", "false") == "true"

	setAttachment(c, "prets.csv", "text/csv; charset=utf-8")
	if err := h.reportService.ExportLoansCSV(c.Writer, openOnly); err != nil {
		utils.LogError(err, "ExportLoansCSV: error from reportService.ExportLoansCSV")
	}
}

// ExportStockXLSX handles GET /api/export/stock.xlsx.
func (h *ExportHandler) ExportStockXLSX(c *gin.Context) {
	filters := stockFiltersFromQuery(c)

	setAttachment(c, "stock.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := h.reportService.ExportStockXLSX(c.Writer, filters); err != nil {
		utils.LogError(err, "ExportStockXLSX: error from reportService.ExportStockXLSX")
	}
}

// VolunteerTemplate handles GET /api/volunteers/template.csv.
func (h *ExportHandler) VolunteerTemplate(c *gin.Context) {
	setAttachment(c, "benevoles.csv", "text/csv; charset=utf-8")
	if err := h.reportService.WriteVolunteerTemplate(c.Writer); err != nil {
		utils.LogError(err, "VolunteerTemplate: error from reportService.WriteVolunteerTemplate")
	}
}
