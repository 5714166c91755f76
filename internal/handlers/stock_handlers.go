package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"vestiaire_backend/internal/middleware"
	"vestiaire_backend/internal/models"
	"vestiaire_backend/internal/services"
	"vestiaire_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// StockHandler holds the stock service.
type StockHandler struct {
	stockService services.StockService
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(ss services.StockService) *StockHandler {
	return &StockHandler{stockService: ss}
}

// stockFiltersFromQuery builds the list filters shared by the stock list and
// the stock exports.
func stockFiltersFromQuery(c *gin.Context) models.StockFilters {
	var filters models.StockFilters

	if v := c.Query("type_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filters.GarmentTypeID = &id
		}
	}
	if v := c.Query("antenna_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filters.AntennaID = &id
		}
	}
	if v := c.Query("size"); v != "" {
		filters.Size = &v
	}
	if v := c.Query("q"); v != "" {
		filters.Query = &v
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	filters.Page = page
	filters.PageSize = pageSize
	return filters
}

// Restock handles POST /api/stock. The quantity is added to the matching
// (type, antenna, size) row, creating it when absent.
func (h *StockHandler) Restock(c *gin.Context) {
	var req services.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Données invalides: "+err.Error(), err.Error()))
		return
	}

	item, err := h.stockService.Restock(middleware.Actor(c), req)
	if err != nil {
		utils.LogError(err, "Restock: error from stockService.Restock")
		if errors.Is(err, services.ErrStockValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Données invalides: "+err.Error(), err.Error()))
		} else if errors.Is(err, services.ErrUnknownReference) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Type ou antenne inconnu.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec du réapprovisionnement.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "data": item})
}

// GetStockItems handles GET /api/stock with filters and pagination.
func (h *StockHandler) GetStockItems(c *gin.Context) {
	filters := stockFiltersFromQuery(c)

	items, total, err := h.stockService.GetStockItems(filters)
	if err != nil {
		utils.LogError(err, "GetStockItems: error from stockService.GetStockItems")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la lecture du stock.", "Internal error"))
		return
	}
	if items == nil {
		items = []models.StockItem{}
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"data":      items,
		"total":     total,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

// GetStockItemByID handles GET /api/stock/:id.
func (h *StockHandler) GetStockItemByID(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Identifiant d'article invalide.", err.Error()))
		return
	}

	item, err := h.stockService.GetStockItemByID(id)
	if err != nil {
		if errors.Is(err, services.ErrStockItemNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Article de stock introuvable.", err.Error()))
			return
		}
		utils.LogError(err, "GetStockItemByID: error from stockService.GetStockItemByID")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la lecture de l'article.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": item})
}

// UpdateStockItem handles PUT /api/stock/:id, a partial adjustment of the
// row. Tags sent here replace the stored set.
func (h *StockHandler) UpdateStockItem(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Identifiant d'article invalide.", err.Error()))
		return
	}

	var req services.UpdateStockItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Données invalides: "+err.Error(), err.Error()))
		return
	}

	item, err := h.stockService.UpdateStockItem(middleware.Actor(c), id, req)
	if err != nil {
		utils.LogError(err, "UpdateStockItem: error from stockService.UpdateStockItem")
		if errors.Is(err, services.ErrStockItemNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Article de stock introuvable.", err.Error()))
		} else if errors.Is(err, services.ErrStockValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Données invalides: "+err.Error(), err.Error()))
		} else if errors.Is(err, services.ErrUnknownReference) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Type ou antenne inconnu.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la mise à jour de l'article.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": item})
}

// DeleteStockItem handles DELETE /api/stock/:id.
func (h *StockHandler) DeleteStockItem(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Identifiant d'article invalide.", err.Error()))
		return
	}

	if err := h.stockService.DeleteStockItem(middleware.Actor(c), id); err != nil {
		utils.LogError(err, "DeleteStockItem: error from stockService.DeleteStockItem for ID "+utils.Int64ToStr(id))
		if errors.Is(err, services.ErrStockItemNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Article de stock introuvable.", err.Error()))
		} else if errors.Is(err, services.ErrStockItemInUse) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Article référencé par des prêts.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Échec de la suppression de l'article.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
