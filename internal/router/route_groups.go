package router

import (
	"vestiaire_backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupPublicRoutes sets up the unauthenticated kiosk routes.
func SetupPublicRoutes(apiGroup *gin.RouterGroup, publicHandler *handlers.PublicHandler) {
	publicRoutes := apiGroup.Group("/public")
	{
		publicRoutes.GET("/volunteer", publicHandler.FindVolunteer)
		publicRoutes.GET("/stock", publicHandler.GetStock)
		publicRoutes.POST("/loan", publicHandler.CreateLoan)
		publicRoutes.POST("/return/:id", publicHandler.ReturnLoan)
	}
}

// SetupAntennaRoutes sets up the antenna routes.
func SetupAntennaRoutes(authenticatedGroup *gin.RouterGroup, antennaHandler *handlers.AntennaHandler) {
	antennaRoutes := authenticatedGroup.Group("/antennas")
	{
		antennaRoutes.POST("", antennaHandler.CreateAntenna)
		antennaRoutes.GET("", antennaHandler.GetAntennas)
		antennaRoutes.GET("/:id", antennaHandler.GetAntennaByID)
		antennaRoutes.PUT("/:id", antennaHandler.UpdateAntenna)
		antennaRoutes.DELETE("/:id", antennaHandler.DeleteAntenna)
	}
}

// SetupGarmentTypeRoutes sets up the garment type routes.
func SetupGarmentTypeRoutes(authenticatedGroup *gin.RouterGroup, typeHandler *handlers.GarmentTypeHandler) {
	typeRoutes := authenticatedGroup.Group("/types")
	{
		typeRoutes.POST("", typeHandler.CreateGarmentType)
		typeRoutes.GET("", typeHandler.GetGarmentTypes)
		typeRoutes.GET("/:id", typeHandler.GetGarmentTypeByID)
		typeRoutes.PUT("/:id", typeHandler.UpdateGarmentType)
		typeRoutes.DELETE("/:id", typeHandler.DeleteGarmentType)
	}
}

// SetupStockRoutes sets up the stock ledger routes.
func SetupStockRoutes(authenticatedGroup *gin.RouterGroup, stockHandler *handlers.StockHandler) {
	stockRoutes := authenticatedGroup.Group("/stock")
	{
		stockRoutes.POST("", stockHandler.Restock)
		stockRoutes.GET("", stockHandler.GetStockItems)
		stockRoutes.GET("/:id", stockHandler.GetStockItemByID)
		stockRoutes.PUT("/:id", stockHandler.UpdateStockItem)
		stockRoutes.DELETE("/:id", stockHandler.DeleteStockItem)
	}
}

// SetupVolunteerRoutes sets up the volunteer routes, including the CSV
// import and template download.
func SetupVolunteerRoutes(authenticatedGroup *gin.RouterGroup, volunteerHandler *handlers.VolunteerHandler, exportHandler *handlers.ExportHandler) {
	volunteerRoutes := authenticatedGroup.Group("/volunteers")
	{
		volunteerRoutes.POST("", volunteerHandler.CreateVolunteer)
		volunteerRoutes.GET("", volunteerHandler.GetVolunteers)
		volunteerRoutes.GET("/template.csv", exportHandler.VolunteerTemplate)
		volunteerRoutes.POST("/import", volunteerHandler.ImportCSV)
		volunteerRoutes.GET("/:id", volunteerHandler.GetVolunteerByID)
		volunteerRoutes.PUT("/:id", volunteerHandler.UpdateVolunteer)
		volunteerRoutes.DELETE("/:id", volunteerHandler.DeleteVolunteer)
	}
}

// SetupLoanRoutes sets up the loan routes.
func SetupLoanRoutes(authenticatedGroup *gin.RouterGroup, loanHandler *handlers.LoanHandler) {
	loanRoutes := authenticatedGroup.Group("/loans")
	{
		loanRoutes.POST("", loanHandler.CreateLoan)
		loanRoutes.GET("/open", loanHandler.GetOpenLoans)
		loanRoutes.POST("/return/:id", loanHandler.ReturnLoan)
	}
}

// SetupInventoryRoutes sets up the inventory reconciliation routes.
func SetupInventoryRoutes(authenticatedGroup *gin.RouterGroup, inventoryHandler *handlers.InventoryHandler) {
	inventoryRoutes := authenticatedGroup.Group("/inventory")
	{
		inventoryRoutes.POST("/start", inventoryHandler.StartSession)
		inventoryRoutes.GET("/:id", inventoryHandler.GetSession)
		inventoryRoutes.GET("/:id/items", inventoryHandler.GetLines)
		inventoryRoutes.POST("/:id/count", inventoryHandler.RecordCount)
		inventoryRoutes.POST("/:id/close", inventoryHandler.CloseSession)
	}
}

// SetupExportRoutes sets up the stats and export routes.
func SetupExportRoutes(authenticatedGroup *gin.RouterGroup, exportHandler *handlers.ExportHandler) {
	authenticatedGroup.GET("/stats", exportHandler.Stats)

	exportRoutes := authenticatedGroup.Group("/export")
	{
		exportRoutes.GET("/stock.csv", exportHandler.ExportStockCSV)
		exportRoutes.GET("/loans.csv", exportHandler.ExportLoansCSV)
		exportRoutes.GET("/stock.xlsx", exportHandler.ExportStockXLSX)
	}
}

// SetupUserRoutes sets up the user account routes (admin only).
func SetupUserRoutes(adminGroup *gin.RouterGroup, userHandler *handlers.UserHandler) {
	userRoutes := adminGroup.Group("/users")
	{
		userRoutes.POST("", userHandler.CreateUser)
		userRoutes.GET("", userHandler.GetUsers)
		userRoutes.GET("/:id", userHandler.GetUserByID)
		userRoutes.PUT("/:id", userHandler.UpdateUser)
		userRoutes.DELETE("/:id", userHandler.DeleteUser)
	}
}
