package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"cataloger/internal/adapter/repo"
	"cataloger/internal/images"
	"cataloger/internal/infra"
	"cataloger/internal/jobs"
	"cataloger/internal/llm"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	catalogues := repo.NewCatalogueRepository(runner)
	jobRepo := repo.NewEnrichmentJobRepository(runner)

	completer, err := llm.NewClient(llm.Options{
		APIKey:  cfg.DeepSeekAPIKey,
		Model:   cfg.DeepSeekModel,
		BaseURL: cfg.DeepSeekBaseURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure completion client")
	}

	var searcher images.Searcher
	if cfg.UnsplashAccessKey != "" {
		unsplash, err := images.NewUnsplashClient(images.UnsplashOptions{
			AccessKey: cfg.UnsplashAccessKey,
			BaseURL:   cfg.UnsplashBaseURL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("worker: failed to configure unsplash client")
		}
		searcher = unsplash
	}

	enricher := images.NewEnricher(completer, searcher, cfg.PlaceholderImageURL, logger)
	processor := jobs.NewProcessor(enricher, catalogues, logger)
	worker := jobs.NewWorker(jobRepo, processor, jobs.WorkerOptions{Logger: logger})

	logger.Info().Msg("worker: polling for enrichment jobs")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: run loop failed")
	}
	logger.Info().Msg("worker stopped")
}
