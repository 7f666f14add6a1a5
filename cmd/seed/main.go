package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/timmy/memerator/internal/config"
	"github.com/timmy/memerator/internal/logger"
	"github.com/timmy/memerator/internal/repository"
	"github.com/timmy/memerator/internal/service"
	"github.com/timmy/memerator/internal/source"
	"github.com/timmy/memerator/internal/source/imgflip"
	"github.com/timmy/memerator/internal/source/manifest"
)

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "memerator-seed",
	})
	logger.SetDefault(appLogger)

	configPath := flag.String("config", "", "Path to config file")
	force := flag.Bool("force", false, "Fetch the catalog even when templates are already stored")
	manifestPath := flag.String("manifest", "", "Seed from a JSONL manifest instead of the imgflip API")
	batchSize := flag.Int("batch", 100, "Templates stored per batch")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	var src source.Source
	if *manifestPath != "" {
		src = manifest.NewAdapter(*manifestPath)
	} else {
		src = imgflip.NewAdapter(cfg.Imgflip.BaseURL, cfg.Imgflip.Timeout)
	}

	appLogger.WithFields(logger.Fields{
		"source": src.GetSourceID(),
		"force":  *force,
		"batch":  *batchSize,
	}).Infof("Starting template seed from %s", src.GetDisplayName())

	templateService := service.NewTemplateService(
		repository.NewTemplateRepository(db),
		src,
		appLogger,
		&service.TemplateConfig{BatchSize: *batchSize},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	result, err := templateService.Seed(ctx, *force)
	if err != nil {
		appLogger.WithError(err).Fatal("Template seed failed")
	}
	appLogger.WithFields(logger.Fields{
		"fetched": result.Fetched,
		"stored":  result.Stored,
		"total":   result.Total,
	}).Info("Template seed completed")
}
