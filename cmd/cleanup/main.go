package main

import (
	"context"
	"log"
	"os"
	"time"

	"storefront-api/internal/config"
	"storefront-api/internal/db"
	webhookeventrepo "storefront-api/internal/repository/webhookevent"

	"github.com/joho/godotenv"
)

// Deletes processed webhook events older than the retention window. Run from
// cron; the API process itself keeps no background workers.
func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[cleanup] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	repo := webhookeventrepo.NewPostgres(pool, logger)
	cutoff := time.Now().UTC().Add(-cfg.WebhookRetention)
	deleted, err := repo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		logger.Fatalf("cleanup webhook events: %v", err)
	}

	logger.Printf("deleted %d processed webhook events older than %s", deleted, cutoff.Format(time.RFC3339))
}
