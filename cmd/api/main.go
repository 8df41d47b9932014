// GAF Insight Engine API
//
// REST API for syncing Garmin health data and running recovery analysis.
//
//	@title			GAF Insight Engine API
//	@version		1.0
//	@description	Sync Garmin wellness metrics, normalize them into daily snapshots, and evaluate pattern, framework and recommendation rules.
//
//	@BasePath	/v1
//
//	@tag.name			users
//	@tag.description	User and Garmin credential management endpoints
//
//	@tag.name			sync
//	@tag.description	Garmin data synchronization endpoints
//
//	@tag.name			analysis
//	@tag.description	Daily analysis, framework scoring and insights endpoints
package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/api"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/api/handler"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/config"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/domain"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/llm"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/repository"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/secrets"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/seed"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/service"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/telemetry"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize tracing (no-op when no OTLP endpoint is configured)
	shutdownTracer, err := telemetry.InitTracer(context.Background(), cfg, "gaf-insight-engine")
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			log.Printf("Tracer shutdown failed: %v", err)
		}
	}()

	// Connect to database
	db, err := config.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database schema
	if err := db.AutoMigrate(&domain.User{}, &domain.RawMetricRecord{}, &domain.SyncLog{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	if cfg.Seed {
		log.Println("Seeding database with sample data (SEED=true)...")
		if err := seed.Run(db); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
	}

	// Credential sealing (nil codec means credentials cannot be stored)
	codec, err := secrets.NewCodec(cfg.GarminCredKey)
	if err != nil {
		log.Fatalf("Invalid GARMIN_CRED_KEY: %v", err)
	}
	if !codec.Enabled() {
		log.Println("Warning: GARMIN_CRED_KEY not configured, credential storage will be unavailable")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	rawRepo := repository.NewRawMetricRepository(db)
	syncLogRepo := repository.NewSyncLogRepository(db)

	// Initialize services
	userService := service.NewUserService(userRepo, codec)
	syncService := service.NewSyncService(userRepo, rawRepo, syncLogRepo, codec, nil, service.SyncConfig{
		SSOBaseURL:       cfg.GarminSSOBaseURL,
		APIBaseURL:       cfg.GarminAPIBaseURL,
		RequestDelay:     cfg.SyncRequestDelay,
		MaxAttempts:      cfg.SyncMaxAttempts,
		FallbackEmail:    cfg.GarminEmail,
		FallbackPassword: cfg.GarminPassword,
	})
	analysisService := service.NewAnalysisService(rawRepo, userRepo)
	frameworkService := service.NewFrameworkService(rawRepo, userRepo)

	// Initialize OpenAI client (may be nil if not configured)
	openaiClient := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIInsightsModel)
	var insightsService service.InsightsService
	if openaiClient != nil {
		insightsService = service.NewInsightsService(analysisService, frameworkService, openaiClient, userRepo)
	} else {
		log.Println("Warning: OpenAI API key not configured, insights endpoint will be unavailable")
	}

	// Initialize handlers
	userHandler := handler.NewUserHandler(userService)
	syncHandler := handler.NewSyncHandler(syncService)
	analysisHandler := handler.NewAnalysisHandler(analysisService, frameworkService, insightsService)

	// Setup router
	router := api.NewRouter(userHandler, syncHandler, analysisHandler)
	routerHandler := router.Setup()

	// Scheduled auto-sync for connected users
	if cfg.AutoSyncEnabled {
		go runAutoSync(syncService, cfg.AutoSyncInterval)
	}

	// Start server
	addr := ":" + cfg.Port
	log.Printf("Starting server on %s", addr)
	if err := http.ListenAndServe(addr, routerHandler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func runAutoSync(syncService service.SyncService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("Auto-sync scheduler running every %s", interval)
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		summary, err := syncService.AutoSyncAll(ctx)
		cancel()
		if err != nil {
			log.Printf("Auto-sync pass failed: %v", err)
			continue
		}
		log.Printf("Auto-sync pass: %d users considered, %d synced, %d skipped, %d failed",
			summary.UsersConsidered, summary.UsersSynced, summary.UsersSkipped, summary.UsersFailed)
	}
}
