package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dmms090191-rgb/duerp-sub001/api"
	"github.com/dmms090191-rgb/duerp-sub001/catalog"
	"github.com/dmms090191-rgb/duerp-sub001/config"
	"github.com/dmms090191-rgb/duerp-sub001/database"
	"github.com/dmms090191-rgb/duerp-sub001/middleware"
	"github.com/dmms090191-rgb/duerp-sub001/models"
	"github.com/dmms090191-rgb/duerp-sub001/repository"
	"github.com/dmms090191-rgb/duerp-sub001/services"
)

func main() {
	// Load application configuration
	config.LoadConfig()

	// Initialize database connection
	db, err := database.Init()
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to initialize database: %v", err)
	}

	// Auto-migrate database schema
	runMigrations(db)

	// Load sector catalogs. A broken catalog file aborts startup: traversal
	// must never run against a catalog with duplicate ids or dangling gates.
	registry, err := catalog.NewRegistry(config.AppConfig.Catalog.Dir, config.AppConfig.Catalog.DefaultSector)
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to load sector catalogs: %v", err)
	}

	// Initialize persistence collaborator and session manager
	responseRepo := repository.NewResponseRepository(db)
	sessions := services.NewSessionManager(registry, responseRepo)
	log.Println("INFO: [Main] Repositories and services initialized.")

	// Initialize API handler with all dependencies
	apiHandler := api.NewAPIHandler(registry, sessions)
	log.Println("INFO: [Main] API Handler initialized.")

	// Create Gin engine
	r := gin.Default()
	r.SetTrustedProxies(nil)

	// Register middlewares
	r.Use(middleware.Logger())
	r.Use(middleware.Cors())
	log.Println("INFO: [Main] Middlewares registered.")

	// Register routes
	registerRoutes(r, apiHandler)
	log.Println("INFO: [Main] Routes registered.")

	// Start the server
	serverPort := ":" + config.AppConfig.Server.Port
	if config.AppConfig.Server.Port == "" {
		log.Println("WARN: [Main] Server port not configured, using default :8080.")
		serverPort = ":8080"
	}
	log.Printf("INFO: [Main] Starting server on port %s", serverPort)
	if err := r.Run(serverPort); err != nil {
		log.Fatalf("FATAL: [Main] Server failed to start: %v", err)
	}
}

func runMigrations(db *gorm.DB) {
	log.Println("INFO: [Main] Running database migrations...")
	err := db.AutoMigrate(
		&models.ResponseRecord{},
	)
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to auto-migrate database: %v", err)
	}
	log.Println("INFO: [Main] Database migration completed.")
}

func registerRoutes(r *gin.Engine, handler *api.APIHandler) {
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/sectors", handler.SectorsHandler)

		apiGroup.POST("/session", handler.OpenSessionHandler)
		apiGroup.DELETE("/session", handler.CloseSessionHandler)
		apiGroup.GET("/session/state", handler.StateHandler)

		navGroup := apiGroup.Group("/navigate")
		{
			navGroup.POST("/next", handler.GoNextHandler)
			navGroup.POST("/prev", handler.GoPrevHandler)
			navGroup.POST("/category", handler.SelectCategoryHandler)
			navGroup.POST("/question", handler.SelectQuestionHandler)
		}

		respGroup := apiGroup.Group("/response/:questionID")
		{
			respGroup.POST("/gate", handler.AnswerGateHandler)
			respGroup.POST("/status", handler.SetRiskStatusHandler)
			respGroup.POST("/priority", handler.SetRiskPriorityHandler)
			respGroup.POST("/measures/toggle", handler.ToggleMeasureHandler)
			respGroup.POST("/measures/custom", handler.AddCustomMeasureHandler)
			respGroup.DELETE("/measures/custom/:measureID", handler.RemoveCustomMeasureHandler)
			respGroup.POST("/actions", handler.AddActionItemHandler)
			respGroup.PUT("/actions/:itemID", handler.UpdateActionItemHandler)
			respGroup.DELETE("/actions/:itemID", handler.RemoveActionItemHandler)
			respGroup.POST("/remarks", handler.SetRemarksHandler)
		}

		apiGroup.POST("/reset/category/:categoryID", handler.ResetCategoryHandler)
		apiGroup.POST("/reset/all", handler.ResetAllHandler)

		apiGroup.GET("/progress", handler.ProgressHandler)
		apiGroup.GET("/report", handler.ReportHandler)
	}
}
