package main

import (
	"log"

	"github.com/joho/godotenv"

	"invoiceqc/cmd"
	"invoiceqc/internal/config"
	"invoiceqc/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		// Commands depend on a valid configuration, so report with the default logger and stop
		if setupErr := logger.Setup(logger.DefaultConfig()); setupErr != nil {
			log.Fatalf("Failed to initialize logger: %v", setupErr)
		}
		mainLog := logger.WithComponent("main")
		mainLog.Fatal().Err(err).Msg("Invalid configuration")
	}

	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	log := logger.WithComponent("main")
	log.Debug().Msg("Starting Invoice QC")

	cmd.Execute(cfg)
}
