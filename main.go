package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Black-And-White-Club/pic-perfect/app"
	"github.com/Black-And-White-Club/pic-perfect/config"
	"github.com/Black-And-White-Club/pic-perfect/db/bundb"
	"github.com/Black-And-White-Club/pic-perfect/pkg/observability"
	"github.com/joho/godotenv"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	migrate := flag.Bool("migrate", false, "Apply pending migrations before serving")
	flag.Parse()

	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	obs := observability.Init(config.ToObsConfig(cfg))
	logger := obs.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := &app.App{}
	if err := application.Initialize(ctx, cfg, obs); err != nil {
		logger.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}

	if *migrate {
		if err := bundb.MigrateAll(ctx, application.DB.GetDB(), logger); err != nil {
			logger.Error("Failed to run migrations", "error", err)
			application.Close()
			os.Exit(1)
		}
	}

	runErr := application.Run(ctx)
	if runErr != nil {
		logger.Error("Application stopped with error", "error", runErr)
	} else {
		logger.Info("Shutdown signal received")
	}

	application.Close()
	if runErr != nil {
		os.Exit(1)
	}
}
