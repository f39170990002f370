package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/api"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/config"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/database"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/logging"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/repository"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/scheduler"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/service"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/sharelink"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/version"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/yahoo"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New(logging.Config{Level: "info"})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logging.New(logging.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logging.SetGlobalLogger(log)

	log.Info().Str("version", version.Version).Msg("Starting portfolio allocation engine")

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	log.Info().Str("path", cfg.Database.Path).Msg("Connected to database")

	// Create repositories
	allocationRepo := repository.NewAllocationRepository(db)
	shareLinkRepo := repository.NewShareLinkRepository(db)

	client := yahoo.NewFinanceClient(yahoo.Options{
		BaseURL:   cfg.Yahoo.BaseURL,
		SearchURL: cfg.Yahoo.SearchURL,
		Timeout:   cfg.Yahoo.Timeout,
	}, log)

	codec, err := newShareCodec(cfg, shareLinkRepo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure share links")
	}

	// Create services
	store := service.NewHoldingStore(allocationRepo, log)
	quoteService := service.NewQuoteService(store, client, cfg.Window, cfg.Refresh.Concurrency, log)
	services := api.Services{
		System:      service.NewSystemService(db),
		Quotes:      quoteService,
		Allocation:  service.NewAllocationService(store, log),
		Charts:      service.NewChartService(store, quoteService.Window),
		Suggestions: service.NewSuggestionService(store, client, log),
		Share:       service.NewShareService(store, quoteService, codec, log),
	}

	restore(allocationRepo, quoteService, log)

	var sched *scheduler.Scheduler
	if cfg.Refresh.Schedule != "" {
		sched = scheduler.New(log)
		job := scheduler.NewQuoteRefreshJob(quoteService, 2*time.Minute, log)
		if err := sched.AddJob(cfg.Refresh.Schedule, job); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.Refresh.Schedule).Msg("Invalid refresh schedule")
		}
		sched.Start()
	}

	// Create router
	router := api.NewRouter(services, cfg, log)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	if sched != nil {
		sched.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	log.Info().Msg("Server exited")
}

func newShareCodec(cfg *config.Config, store sharelink.Store) (sharelink.Codec, error) {
	if cfg.Share.Mode == config.ShareModeToken {
		return sharelink.NewTokenCodec(cfg.Share.Key, cfg.Share.TTL)
	}
	return sharelink.NewStoredCodec(store), nil
}

// restore reloads the saved allocations and refetches their quotes and history.
// Tickers that can no longer be quoted are dropped from the portfolio.
func restore(repo *repository.AllocationRepository, quotes *service.QuoteService, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	entries, err := repo.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load saved allocations")
		return
	}
	if len(entries) == 0 {
		return
	}

	result := quotes.RestoreAllocations(ctx, entries)
	for _, e := range result.Errors {
		log.Warn().Str("ticker", e.Ticker).Str("error", e.Error).Msg("Saved holding could not be restored")
	}
	log.Info().
		Int("restored", result.TotalUpdated).
		Int("unpriced", len(result.Skipped)).
		Msg("Portfolio restored")
}
