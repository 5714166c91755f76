package main

import (
	"log"
	"os"
	"strconv"
	"strings"

	"vestiaire_backend/internal/database"
	"vestiaire_backend/internal/repositories"
	"vestiaire_backend/internal/router"
	"vestiaire_backend/internal/services"
	"vestiaire_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	utils.InitLogger()
	utils.SetJWTSecret(utils.Getenv("JWT_SECRET", "change-me-in-production"))

	dbHost := utils.Getenv("DB_HOST", "localhost")
	dbPort := utils.Getenv("DB_PORT", "5432")
	dbUser := utils.Getenv("DB_USER", "vestiaire_user")
	dbPassword := utils.Getenv("DB_PASSWORD", "vestiaire_password")
	dbName := utils.Getenv("DB_NAME", "vestiaire_db")
	dbSSLMode := utils.Getenv("DB_SSLMODE", "disable")
	dbSchemaPath := utils.Getenv("DB_SCHEMA_PATH", "db_schema.sql")

	database.InitDB(dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode, dbSchemaPath)
	dbConn := database.GetDB()
	utils.LogInfo("Database initialized", map[string]interface{}{"host": dbHost, "name": dbName})

	// Bootstrap the default admin account so a fresh install is usable.
	auditService := services.NewAuditService(repositories.NewAuditRepository(dbConn), dbConn)
	authService := services.NewAuthService(repositories.NewUserRepository(dbConn), auditService, dbConn)
	adminEmail := utils.Getenv("ADMIN_EMAIL", "admin@pc.fr")
	adminName := utils.Getenv("ADMIN_NAME", "Admin")
	adminPassword := utils.Getenv("ADMIN_PASSWORD", "admin123")
	if err := authService.EnsureDefaultAdmin(adminEmail, adminName, adminPassword); err != nil {
		utils.LogError(err, "Failed to ensure default admin account")
		log.Fatalf("Failed to ensure default admin account: %v", err)
	}

	blockHistoricLoans := true
	if v := os.Getenv("STOCK_DELETE_BLOCK_HISTORIC_LOANS"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			blockHistoricLoans = parsed
		}
	}

	engine := gin.Default()
	engine.Use(utils.GinLogger())

	// CORS configuration
	corsAllowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if corsAllowedOriginsEnv != "" {
		allowedOrigins = strings.Split(corsAllowedOriginsEnv, ",")
	} else {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-CSRF-Token"}
	config.AllowCredentials = true
	engine.Use(cors.New(config))

	router.Setup(engine, dbConn, router.Config{
		StockDeleteBlockHistoricLoans: blockHistoricLoans,
	})

	port := utils.Getenv("PORT", "8080")
	utils.LogInfo("Server starting", map[string]interface{}{"port": port})

	if err := engine.Run(":" + port); err != nil {
		utils.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}
