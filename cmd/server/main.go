package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studyquest/internal/config"
	"studyquest/internal/database"
	"studyquest/internal/genai"
	"studyquest/internal/handlers"
	"studyquest/internal/remote"
	"studyquest/internal/repository"
	"studyquest/internal/service"
	"studyquest/internal/sync"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize local database (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Local store ready (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	docRepo := repository.NewDocumentRepository(db)
	stateRepo := repository.NewStateRepository(docRepo)

	// Optional remote mirror
	var remoteStore remote.Store
	if cfg.RemoteConfigured() {
		pg, err := remote.NewPostgresStore(cfg.RemoteDatabaseURL, cfg.HouseholdID)
		if err != nil {
			log.Printf("Warning: remote mirror unavailable, running local-only: %v", err)
		} else {
			defer pg.Close()
			remoteStore = pg
			log.Printf("Remote mirror configured (household: %s)", cfg.HouseholdID)
		}
	}

	// Sync orchestrator and household state
	syncer := sync.New(stateRepo, remoteStore, cfg.SyncQuietWindow)
	household := service.NewHousehold(stateRepo, syncer)

	hydrateCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := household.Hydrate(hydrateCtx); err != nil {
		log.Fatalf("Failed to hydrate household state: %v", err)
	}
	cancel()
	log.Printf("Household state hydrated (sync: %s)", syncer.Status())

	// Question generation boundary
	generator := genai.NewClient(cfg.GenAIAPIURL, cfg.GenAIAPIKey)

	// Initialize services
	authService, err := service.NewAuthService(cfg.ParentPassword, []byte(cfg.SessionSecret), cfg.SessionDuration)
	if err != nil {
		log.Fatalf("Failed to initialize auth service: %v", err)
	}
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	rewardsService := service.NewRewardsService(household)
	worksheetService := service.NewWorksheetService(household, generator)
	sessionService := service.NewSessionService(stateRepo, rewardsService)
	backupService := service.NewBackupService(household, emailService)

	// Initialize handlers
	middleware := handlers.NewMiddleware(authService)
	authHandler := handlers.NewAuthHandler(authService, cfg.SessionDuration)
	sessionHandler := handlers.NewSessionHandler(sessionService, worksheetService)
	worksheetHandler := handlers.NewWorksheetHandler(worksheetService)
	prizeHandler := handlers.NewPrizeHandler(rewardsService, household)
	statsHandler := handlers.NewStatsHandler(household)
	backupHandler := handlers.NewBackupHandler(backupService, cfg.ParentEmail)

	// Setup routes
	mux := http.NewServeMux()

	// Parent gate
	mux.HandleFunc("POST /parent/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /parent/logout", authHandler.Logout)

	// Worksheet library
	mux.HandleFunc("GET /api/worksheets", worksheetHandler.List)
	mux.HandleFunc("POST /api/worksheets", middleware.RequireParent(worksheetHandler.Create))
	mux.HandleFunc("DELETE /api/worksheets/{id}", middleware.RequireParent(worksheetHandler.Delete))

	// Exercise session
	mux.HandleFunc("POST /api/worksheets/{id}/start", sessionHandler.StartFromWorksheet)
	mux.HandleFunc("GET /api/session", sessionHandler.Show)
	mux.HandleFunc("POST /api/session/resume", sessionHandler.Resume)
	mux.HandleFunc("POST /api/session/answer", sessionHandler.SubmitAnswer)
	mux.HandleFunc("POST /api/session/advance", sessionHandler.Advance)
	mux.HandleFunc("POST /api/session/token-toggle", sessionHandler.ToggleToken)
	mux.HandleFunc("POST /api/session/token-reset", sessionHandler.ResetPlacement)
	mux.HandleFunc("POST /api/session/exit", sessionHandler.Exit)

	// Stats and sync signal
	mux.HandleFunc("GET /api/stats", statsHandler.Show)
	mux.HandleFunc("GET /api/sync/status", statsHandler.SyncStatus)

	// Prize shop
	mux.HandleFunc("GET /api/prizes", prizeHandler.List)
	mux.HandleFunc("POST /api/prizes", middleware.RequireParent(prizeHandler.Create))
	mux.HandleFunc("DELETE /api/prizes/{id}", middleware.RequireParent(prizeHandler.Delete))
	mux.HandleFunc("POST /api/prizes/{id}/purchase", prizeHandler.Purchase)
	mux.HandleFunc("POST /api/settings/double-credit-days", middleware.RequireParent(prizeHandler.SetDoubleCreditDays))

	// Backup
	mux.HandleFunc("GET /api/export", middleware.RequireParent(backupHandler.Export))
	mux.HandleFunc("POST /api/import", middleware.RequireParent(backupHandler.Import))
	mux.HandleFunc("POST /api/backup/email", middleware.RequireParent(backupHandler.Email))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Flush any pending remote write before exit
	syncer.Shutdown(ctx)

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
