package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/podcast-studio/backend/internal/api"
	"github.com/podcast-studio/backend/internal/auth"
	"github.com/podcast-studio/backend/internal/config"
	"github.com/podcast-studio/backend/internal/db"
	"github.com/podcast-studio/backend/internal/drive"
	"github.com/podcast-studio/backend/internal/job"
	"github.com/podcast-studio/backend/internal/library"
	"github.com/podcast-studio/backend/internal/production"
)

func main() {
	cfg := config.Load()

	// Ensure data directory exists
	os.MkdirAll(cfg.DataPath, 0755)

	// Initialize database
	database, err := db.NewSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Ensure admin user exists
	if err := database.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}
	log.Printf("Admin user ensured: %s", cfg.AdminUsername)

	// Recording library with disk staging
	store, err := library.NewStore(cfg.RecordingsPath)
	if err != nil {
		log.Fatalf("Failed to initialize recording library: %v", err)
	}

	// Google Drive connection (optional at startup)
	driveManager := drive.NewManager(cfg.DriveRootFolder)
	if cfg.ServiceAccountFile != "" {
		if err := driveManager.ConnectFromFile(context.Background(), cfg.ServiceAccountFile); err != nil {
			log.Printf("[drive] startup connection failed, continuing offline: %v", err)
		} else {
			log.Printf("[drive] connected via %s", cfg.ServiceAccountFile)
		}
	}

	// Job queue with production handlers
	jobQueue := job.NewJobQueue(database.DB())
	defer jobQueue.Stop()
	production.NewService(database, driveManager, store, cfg.OpenAIKey, cfg.OpenAIBaseURL).Register(jobQueue)

	// Initialize JWT service
	jwtService := auth.NewJWTService(cfg.JWTSecret)

	// Create router
	router := api.NewRouter(database, jwtService, cfg, jobQueue, store, driveManager)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Starting server on %s", addr)
	log.Printf("Data path: %s", cfg.DataPath)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		jobQueue.Stop()
		database.Close()
		os.Exit(0)
	}()

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
