// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

// Command server runs the Watchwise engagement and recommendation service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/maxishida/watchwise/internal/api"
	"github.com/maxishida/watchwise/internal/catalog"
	"github.com/maxishida/watchwise/internal/config"
	"github.com/maxishida/watchwise/internal/events"
	"github.com/maxishida/watchwise/internal/logging"
	"github.com/maxishida/watchwise/internal/metrics"
	"github.com/maxishida/watchwise/internal/progress"
	"github.com/maxishida/watchwise/internal/recommend"
	"github.com/maxishida/watchwise/internal/store"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logger := logging.Logger()
	logger.Info().Str("listen_addr", cfg.Server.ListenAddr).Msg("starting watchwise")

	db, err := store.Open(cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	m := metrics.New()
	bus := events.NewBus(logger)
	defer bus.Close()

	historyStore := store.NewHistoryStore(db, logger)
	favoriteStore := store.NewFavoriteStore(db, logger)
	progressStore := store.NewProgressStore(db, logger)
	interactionStore := store.NewInteractionStore(db, logger)

	cat := catalog.NewClient(cfg.Catalog, logger)

	tracker := progress.NewTracker(progressStore, bus, cfg.Tracking.CompletionThreshold, logger)
	continueWatching := progress.NewContinueWatching(progressStore, cat, cfg.Catalog.Timeout, logger)
	promoter := progress.NewPromoter(favoriteStore, bus, m, cfg.Tracking.AutoFavoriteThreshold, logger)

	engine := recommend.NewEngine(cfg.Recommend, historyStore, favoriteStore, interactionStore, bus, m, logger)
	engine.Register(recommend.NewTrendingGenerator(historyStore, cfg.Recommend.TrendingWindowDays, cfg.Recommend.TrendingDivisor, logger), cfg.Recommend.TrendingShare)
	engine.Register(recommend.NewContentGenerator(historyStore, favoriteStore, cat, recommend.ContentConfig{
		HistoryLimit:      cfg.Recommend.ContentHistoryLimit,
		FavoritesLimit:    cfg.Recommend.ContentFavoritesLimit,
		TopCategories:     cfg.Recommend.TopCategories,
		TopInstructors:    cfg.Recommend.TopInstructors,
		PerCategory:       cfg.Recommend.PerCategory,
		PerInstructor:     cfg.Recommend.PerInstructor,
		CategoryDivisor:   cfg.Recommend.CategoryDivisor,
		InstructorDivisor: cfg.Recommend.InstructorDivisor,
	}, logger), cfg.Recommend.ContentShare)
	engine.Register(recommend.NewCovisitGenerator(historyStore, favoriteStore, cfg.Recommend.CollabLookupCap, cfg.Recommend.CollabDivisor, logger), cfg.Recommend.CollabShare)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := promoter.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("promoter stopped")
		}
	}()

	handler := api.NewHandler(cfg, historyStore, favoriteStore, interactionStore, tracker, continueWatching, engine, cat, bus, m)
	srv := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: api.NewRouter(cfg, handler, m),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
