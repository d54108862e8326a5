package main

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"brokerage-app-server/internal/config"
	"brokerage-app-server/internal/engine"
	"brokerage-app-server/internal/models"
	"brokerage-app-server/internal/notify"
	"brokerage-app-server/internal/routes"
)

func main() {
	log := logrus.New()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Warn("No .env file loaded, relying on environment")
	}

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	// Initialize database connection
	db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN})
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	// Engine + pending-intake notification fan-out
	bus := &notify.Bus{}
	eng := engine.New(db, log, bus)
	monitor := notify.NewPendingMonitor(db, log)
	monitor.RecountEvery = time.Duration(cfg.PendingRecountSeconds) * time.Second
	if err := monitor.Start(bus); err != nil {
		log.Fatalf("Error starting pending monitor: %v", err)
	}
	defer monitor.Stop()

	// Initialize Gin router
	router := gin.Default()

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Set up routes
	routes.SetupRoutes(router, db, cfg, eng, monitor)

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	log.Infof("Server running on port %s", cfg.Port)
	if err := router.Run(serverAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
