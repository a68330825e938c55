package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coachlens/adapters/llm"
	"coachlens/adapters/postgres"
	"coachlens/app"
	"coachlens/internal/config"
	"coachlens/internal/migration"
	"coachlens/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("[Main] No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Main] Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("[Main] Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		cancel()
		log.Fatalf("[Main] Failed to run migrations: %v", err)
	}
	cancel()
	log.Printf("[Main] Migrations complete (version %s)", runner.Version())

	generator := llm.NewGeminiClient(cfg.AI)
	analyses := postgres.NewAnalysisRepository(db)
	data := postgres.NewBusinessDataRepository(db)
	bcgItems := postgres.NewBCGItemRepository(db)

	service := app.NewAnalysisService(generator, analyses, data, bcgItems, cfg.Server.MaxConcurrentGenerations)
	server := ui.NewServer(ui.Config{Port: cfg.Server.Port}, service, data, bcgItems)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("[Main] Server failed: %v", err)
	case sig := <-stop:
		log.Printf("[Main] Received %s, shutting down", sig)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("[Main] Shutdown error: %v", err)
		}
	}
}
