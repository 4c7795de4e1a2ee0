package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cataloger/internal/adapter/repo"
	"cataloger/internal/generate"
	"cataloger/internal/http/handlers"
	"cataloger/internal/http/httpapi"
	"cataloger/internal/images"
	"cataloger/internal/infra"
	"cataloger/internal/infra/geoip"
	"cataloger/internal/jobs"
	"cataloger/internal/lifecycle"
	"cataloger/internal/llm"
	"cataloger/internal/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	catalogues := repo.NewCatalogueRepository(runner)
	usage := repo.NewUsageRepository(runner)
	jobRepo := repo.NewEnrichmentJobRepository(runner)

	completer, err := llm.NewClient(llm.Options{
		APIKey:  cfg.DeepSeekAPIKey,
		Model:   cfg.DeepSeekModel,
		BaseURL: cfg.DeepSeekBaseURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure completion client")
	}

	var searcher images.Searcher
	if cfg.UnsplashAccessKey != "" {
		unsplash, err := images.NewUnsplashClient(images.UnsplashOptions{
			AccessKey: cfg.UnsplashAccessKey,
			BaseURL:   cfg.UnsplashBaseURL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure unsplash client")
		}
		searcher = unsplash
	} else {
		logger.Warn().Msg("UNSPLASH_ACCESS_KEY missing, stock photo fallback disabled")
	}

	enricher := images.NewEnricher(completer, searcher, cfg.PlaceholderImageURL, logger)
	processor := jobs.NewProcessor(enricher, catalogues, logger)

	var queue jobs.Queue
	var dispatcher *jobs.Dispatcher
	switch cfg.EnrichMode {
	case infra.EnrichModeDeferred:
		dispatcher = jobs.NewDispatcher(processor, jobs.DispatcherOptions{Logger: logger})
		queue = dispatcher
	case infra.EnrichModeWorker:
		queue = jobs.NewPGQueue(jobRepo)
	}

	var revalidator lifecycle.Revalidator
	if cfg.AppURL != "" {
		revalidator = lifecycle.NewHTTPRevalidator(cfg.AppURL, &http.Client{Timeout: 10 * time.Second})
	}

	runs, err := lifecycle.NewRunner(lifecycle.Options{
		Catalogues:  catalogues,
		Usage:       usage,
		Generator:   generate.NewGenerator(completer, logger),
		Orderer:     generate.NewOrderer(completer, logger),
		Enricher:    enricher,
		Queue:       queue,
		EnrichMode:  cfg.EnrichMode,
		Revalidator: revalidator,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure generation runner")
	}

	var lookup middleware.CountryLookup
	if cfg.GeoIPDBPath != "" {
		resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
		if err != nil {
			logger.Warn().Err(err).Msg("geoip database unavailable, country lookups disabled")
		} else {
			lookup = resolver.CountryCode
		}
	}

	app := handlers.NewApp(runs, catalogues, logger)
	router := httpapi.NewRouter(app, httpapi.Options{
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		DefaultLocale:   cfg.DefaultLanguage,
		CountryLookup:   lookup,
		Logger:          logger,
	})

	server := infra.NewHTTPServer(cfg, router)
	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("API listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if dispatcher != nil {
		dispatcher.Stop()
	}
	logger.Info().Msg("server stopped")
}
