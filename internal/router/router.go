package router

import (
	"database/sql"
	"net/http"

	"vestiaire_backend/internal/handlers"
	"vestiaire_backend/internal/middleware"
	"vestiaire_backend/internal/models"
	"vestiaire_backend/internal/repositories"
	"vestiaire_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Config carries the runtime knobs the router wiring needs.
type Config struct {
	// StockDeleteBlockHistoricLoans extends the stock-item deletion guard to
	// returned loans (STOCK_DELETE_BLOCK_HISTORIC_LOANS).
	StockDeleteBlockHistoricLoans bool
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, cfg Config) {
	// Repositories
	antennaRepo := repositories.NewAntennaRepository(db)
	typeRepo := repositories.NewGarmentTypeRepository(db)
	stockRepo := repositories.NewStockRepository(db)
	volunteerRepo := repositories.NewVolunteerRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	inventoryRepo := repositories.NewInventoryRepository(db)
	auditRepo := repositories.NewAuditRepository(db)
	userRepo := repositories.NewUserRepository(db)
	txRunner := repositories.NewTxRunner(db)

	// Services
	auditService := services.NewAuditService(auditRepo, db)
	catalogService := services.NewCatalogService(antennaRepo, typeRepo, auditService, db)
	stockService := services.NewStockService(stockRepo, auditService, txRunner, cfg.StockDeleteBlockHistoricLoans)
	volunteerService := services.NewVolunteerService(volunteerRepo, auditService, db)
	loanService := services.NewLoanService(loanRepo, stockRepo, volunteerRepo, auditService, txRunner)
	inventoryService := services.NewInventoryService(inventoryRepo, stockRepo, antennaRepo, auditService, txRunner, db)
	reportService := services.NewReportService(stockRepo, loanRepo, volunteerRepo)
	authService := services.NewAuthService(userRepo, auditService, db)
	userService := services.NewUserService(userRepo, auditService, db)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	antennaHandler := handlers.NewAntennaHandler(catalogService)
	typeHandler := handlers.NewGarmentTypeHandler(catalogService)
	stockHandler := handlers.NewStockHandler(stockService)
	volunteerHandler := handlers.NewVolunteerHandler(volunteerService)
	loanHandler := handlers.NewLoanHandler(loanService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService)
	exportHandler := handlers.NewExportHandler(reportService)
	userHandler := handlers.NewUserHandler(userService)
	auditHandler := handlers.NewAuditHandler(auditService)
	publicHandler := handlers.NewPublicHandler(volunteerService, stockService, loanService)

	engine.GET("/healthz", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "db": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api := engine.Group("/api")

	// Login is the only unauthenticated staff route; the kiosk group is
	// unauthenticated and CSRF-exempt by construction. The session check
	// answers {ok:false} for anonymous callers rather than rejecting them.
	api.POST("/login", authHandler.Login)
	api.GET("/me", middleware.OptionalAuthMiddleware(), authHandler.Me)
	SetupPublicRoutes(api, publicHandler)

	authenticated := api.Group("")
	authenticated.Use(middleware.AuthMiddleware(), middleware.CSRFMiddleware())
	{
		authenticated.POST("/logout", authHandler.Logout)

		SetupAntennaRoutes(authenticated, antennaHandler)
		SetupGarmentTypeRoutes(authenticated, typeHandler)
		SetupStockRoutes(authenticated, stockHandler)
		SetupVolunteerRoutes(authenticated, volunteerHandler, exportHandler)
		SetupLoanRoutes(authenticated, loanHandler)
		SetupInventoryRoutes(authenticated, inventoryHandler)
		SetupExportRoutes(authenticated, exportHandler)

		admin := authenticated.Group("")
		admin.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			SetupUserRoutes(admin, userHandler)
			admin.GET("/logs", auditHandler.GetEntries)
		}
	}
}
