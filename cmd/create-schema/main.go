package main

import (
	"flag"
	"log"

	"proposalforge-backend/config"
	"proposalforge-backend/db"
	"proposalforge-backend/logging"

	"go.uber.org/zap"
)

func main() {
	down := flag.Bool("down", false, "roll back every migration instead of applying them")
	flag.Parse()

	cfg, err := config.Load(".env", "../../.env")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if *down {
		if err := db.Rollback(cfg.DatabaseURL, logger); err != nil {
			logger.Fatal("rollback failed", zap.Error(err))
		}
		return
	}

	if err := db.Migrate(cfg.DatabaseURL, logger); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
}
