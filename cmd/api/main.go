package main

import (
	"context"
	"log"

	"journal-metrics-api/config"
	"journal-metrics-api/controllers"
	"journal-metrics-api/middleware"
	"journal-metrics-api/routes"
	"journal-metrics-api/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logWriter, closeLog := config.InitLogging()
	defer closeLog()

	cfg := config.Load()

	// The database only supplies stored Scopus keys
	if config.DatabaseConfigured() {
		if err := config.InitDB(); err != nil {
			log.Printf("Warning: %v; continuing with environment keys only", err)
		}
	}

	checker, err := services.NewPublicationCheckServiceFromConfig(context.Background(), cfg, config.DB)
	if err != nil {
		log.Fatalf("Failed to initialise publication check: %v", err)
	}
	controllers.SetPublicationChecker(checker)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logWriter
	gin.DefaultErrorWriter = logWriter

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORSMiddleware())

	routes.SetupRoutes(router, cfg.JWTSecret)

	log.Printf("Server starting on port %s", cfg.ServerPort)
	if cfg.JWTSecret == "" {
		log.Printf("JWT_SECRET not set; check routes are unauthenticated")
	}
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
