package main

import (
	"fmt"
	"log"

	"github.com/hargun03/accidents-analysis/config"
	"github.com/hargun03/accidents-analysis/handlers"
	"github.com/hargun03/accidents-analysis/middleware"
	"github.com/hargun03/accidents-analysis/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found, using environment variables")
	}

	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// The dashboard cannot start without data
	loader := services.NewLoader(cfg.Data.Path)
	table, err := loader.Load(cfg.Data.RowLimit)
	if err != nil {
		log.Fatalf("Failed to load collisions: %v", err)
	}
	log.Printf("Collisions ready: %d records (row limit %d)", len(table.Records), cfg.Data.RowLimit)

	// Redis is optional
	cache, err := services.NewCacheService(cfg.Redis, cfg.Cache.TTL)
	if err != nil {
		log.Printf("Response cache disabled: %v", err)
	} else if cache.Available() {
		log.Printf("Response cache connected: %s", cfg.Redis.Addr())
	}
	defer cache.Close()

	dashboard := handlers.NewDashboardHandler(loader, cache, handlers.RowLimits{
		Default: cfg.Data.RowLimit,
		Allowed: cfg.Data.AllowedRowLimits,
	})

	router := gin.Default()
	router.Use(middleware.RequestID())
	router.Use(middleware.SetupCORS(cfg.CORS))
	handlers.RegisterRoutes(router, dashboard)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
