package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"zmean/adapters/postgres"
	"zmean/app"
	"zmean/internal/api"
	"zmean/internal/config"
	"zmean/internal/migration"
	"zmean/internal/testkit"
	"zmean/ports"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ledger, err := setupLedger(appConfig)
	if err != nil {
		log.Fatalf("Storage setup failed: %v", err)
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Str("component", "api").Logger()
	study := app.NewStudyService(ledger, logger)
	batch, err := app.NewBatchService(study, appConfig.Study.MaxConcurrent, logger)
	if err != nil {
		log.Fatalf("Batch service setup failed: %v", err)
	}

	server := api.NewServer(study, batch)

	addr := ":" + appConfig.Server.Port
	log.Printf("Starting API server on %s", addr)
	if err := http.ListenAndServe(addr, server.Handler()); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// setupLedger connects the postgres ledger when DATABASE_URL is set,
// otherwise falls back to in-memory storage.
func setupLedger(appConfig *config.Config) (ports.RunLedgerPort, error) {
	if appConfig.Database.URL == "" {
		log.Println("DATABASE_URL not set, using in-memory run ledger")
		return testkit.NewInMemoryRunLedger(), nil
	}

	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, err
	}

	if err := migration.NewRunner().Run(context.Background(), db); err != nil {
		return nil, err
	}

	log.Println("Connected to postgres run ledger")
	return postgres.NewRunRepository(db), nil
}
