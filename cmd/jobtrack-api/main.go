package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"jobtrack/internal/bootstrap"
	"jobtrack/internal/config"
	server "jobtrack/internal/http"
	"jobtrack/internal/jobs"
	"jobtrack/internal/migrate"
	"jobtrack/internal/store"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	role := flag.String("role", "all", "process role: api|worker|all")
	flag.Parse()

	cfg := config.Load(*configPath)

	// Run migrations on a short-lived connection
	if err := migrate.Run(cfg.Database.DSN, migrate.Dir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	// Create a shared *sql.DB with pooling for the Store
	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("open db failed: %v", err)
	}
	// Basic pool settings; adjust as needed
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	st := store.New(db)

	// Apply idempotent startup state: session secret + initial admin.
	if err := bootstrap.Run(context.Background(), cfg, st); err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}

	// Set up logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))

	rootCtx := context.Background()
	runner := jobs.NewRunner(cfg, st, logger)

	switch *role {
	case "api":
		// API-only: do not start the retention worker.
		s := server.NewServer(cfg, st, logger)
		if err := s.Listen(); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	case "worker":
		// Worker-only: run retention cleanup and block.
		runner.Start(rootCtx)
	case "all":
		// Default: run both API and worker in one process.
		go runner.Start(rootCtx)
		s := server.NewServer(cfg, st, logger)
		if err := s.Listen(); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	default:
		log.Fatalf("invalid role: %s (expected api|worker|all)", *role)
	}
}
