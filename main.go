package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"zmean/adapters/postgres"
	"zmean/app"
	"zmean/internal/config"
	"zmean/internal/errors"
	"zmean/internal/migration"
	"zmean/internal/testkit"
	"zmean/ports"
	"zmean/ui"
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

	logger := zerolog.New(os.Stderr).With().Timestamp().Str("component", "ui").Logger()
	study := app.NewStudyService(ledger, logger)

	gin.SetMode(appConfig.Server.GinMode)
	server, err := ui.NewServer(study, ledger, appConfig.Study)
	if err != nil {
		log.Fatalf("UI setup failed: %v", err)
	}

	log.Printf("Starting web UI on :%s", appConfig.Server.Port)
	if err := server.Run(appConfig.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// setupLedger connects the postgres ledger when DATABASE_URL is set and
// runs the schema migrations; otherwise the in-memory ledger keeps the
// app usable for demos without a database.
func setupLedger(appConfig *config.Config) (ports.RunLedgerPort, error) {
	if appConfig.Database.URL == "" {
		log.Println("DATABASE_URL not set, using in-memory run ledger")
		return testkit.NewInMemoryRunLedger(), nil
	}

	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	if err := migration.NewRunner().Run(context.Background(), db); err != nil {
		return nil, errors.Wrap(err, "database migration failed")
	}

	log.Println("Connected to postgres run ledger")
	return postgres.NewRunRepository(db), nil
}
