package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"merchantops/internal/handler"
	"merchantops/internal/repositories"
	"merchantops/internal/router"
	"merchantops/internal/service"
	"merchantops/pkg/database"
	"merchantops/pkg/envconfig"
	"merchantops/pkg/flags"
	"merchantops/pkg/logger"
	"merchantops/pkg/shutdownsetup"
)

func main() {
	// Parse command-line flags
	flagConfig := flags.Parse()

	// Validate flag configuration
	if err := flagConfig.Validate(); err != nil {
		fmt.Printf("Configuration error: %v\n", err)
		return
	}

	envErr := envconfig.LoadEnvFile(".env")

	loggerConfig := logger.Config{
		Level:        envconfig.GetLogLevel(),
		Format:       envconfig.GetEnv("LOG_FORMAT", "json"),
		Output:       envconfig.GetEnv("LOG_OUTPUT", "stdout"),
		EnableCaller: envconfig.GetEnv("LOG_ENABLE_CALLER", "true") == "true",
		Environment:  envconfig.GetEnv("ENVIRONMENT", "development"),
	}

	appLogger := logger.New(loggerConfig)

	if envErr != nil {
		appLogger.Warn("Failed to load .env file", "error", envErr)
	} else {
		appLogger.Debug(".env file loaded successfully")
	}

	appLogger.Info("Starting merchant operations backend",
		"environment", loggerConfig.Environment,
		"log_level", loggerConfig.Level)

	// Open the flat-file store; without its directories nothing below can run
	storage, err := database.Open(envconfig.LoadStorageConfig(), appLogger)
	if err != nil {
		appLogger.Fatal("Failed to open storage", "error", err)
	}

	// Initialize repositories with storage and logger
	categoryRepo := repositories.NewCategoryRepository(storage, appLogger)
	dishRepo := repositories.NewDishRepository(storage, appLogger)
	inventoryRepo := repositories.NewInventoryRepository(storage, appLogger)
	statsRepo := repositories.NewStatsRepository(storage, appLogger)

	if envconfig.GetEnvBool("SEED_SAMPLE_DATA", false) {
		if err := repositories.SeedSampleData(categoryRepo, dishRepo, inventoryRepo, statsRepo, appLogger); err != nil {
			appLogger.Error("Failed to seed sample data", "error", err)
		}
	}

	// Initialize services with logger
	menuService := service.NewMenuService(categoryRepo, dishRepo, inventoryRepo, appLogger)
	inventoryService := service.NewInventoryService(inventoryRepo, dishRepo, appLogger)
	analyticsService := service.NewAnalyticsService(statsRepo, dishRepo, inventoryRepo, appLogger)
	reportService := service.NewReportService(analyticsService, storage, appLogger)

	// Initialize handlers with logger
	menuHandler := handler.NewMenuHandler(menuService, appLogger)
	inventoryHandler := handler.NewInventoryHandler(inventoryService, appLogger)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, appLogger)
	reportHandler := handler.NewReportHandler(reportService, appLogger)
	healthHandler := handler.NewHealthHandler(appLogger)

	mux := router.NewRouter(menuHandler, inventoryHandler, analyticsHandler, reportHandler, healthHandler)

	handler := appLogger.HTTPMiddleware(mux)

	initialPort := flagConfig.Port
	if initialPort == "" {
		initialPort = envconfig.GetEnv("PORT", "8080")
	}
	host := envconfig.GetEnv("HOST", "localhost")

	port := initialPort

	server := &http.Server{
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	maxRetries := 3
	for i := 0; i < maxRetries; i++ {
		server.Addr = host + ":" + port

		go func() {
			appLogger.Info("Starting HTTP server",
				"host", host,
				"port", port,
				"address", server.Addr)

			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				appLogger.Error("Server error", "error", err)
				serverErrors <- err
			}
		}()

		select {
		case err := <-serverErrors:
			if strings.Contains(err.Error(), "address already in use") && i < maxRetries-1 {
				portNum := 8080 + i + 1
				port = fmt.Sprintf("%d", portNum)
				appLogger.Warn("Port already in use, trying alternative port",
					"current_port", server.Addr,
					"next_port", port)
				continue
			} else {
				appLogger.Error("Failed to start server after retries", "error", err)
				return
			}
		case <-time.After(200 * time.Millisecond):
			appLogger.Info("Server started successfully", "port", port)
		}

		break
	}

	select {
	case err := <-serverErrors:
		appLogger.Error("Could not start server", "error", err)
		return
	default:
		shutdownsetup.SetupGracefulShutdown(server, appLogger)
	}
}
