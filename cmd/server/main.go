// Package main is the entry point for the foliodash dashboard server.
// It serves derived portfolio views (summary metrics, filtered position
// grids, paged transactions) computed from a portfolio data API, with an
// optional embedded fixture-backed data API for self-contained runs.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/castellan/foliodash/internal/clients/folioapi"
	"github.com/castellan/foliodash/internal/config"
	"github.com/castellan/foliodash/internal/database"
	"github.com/castellan/foliodash/internal/fixture"
	"github.com/castellan/foliodash/internal/mockapi"
	"github.com/castellan/foliodash/internal/scheduler"
	"github.com/castellan/foliodash/internal/server"
	"github.com/castellan/foliodash/internal/services"
	"github.com/castellan/foliodash/internal/snapshot"
	"github.com/castellan/foliodash/internal/state"
	"github.com/castellan/foliodash/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Int("port", cfg.Port).
		Bool("embedded_api", cfg.EmbeddedAPI).
		Str("data_dir", cfg.DataDir).
		Msg("Starting foliodash")

	// Embedded data API: a fixture database seeded deterministically,
	// served from this process under /api. Without it the dashboard
	// reads from an external data server at APIBaseURL.
	var (
		fixtureDB *database.DB
		dataAPI   *mockapi.Handler
	)
	apiBaseURL := cfg.APIBaseURL
	if cfg.EmbeddedAPI {
		fixtureDB, err = database.New(database.Config{
			Path:    cfg.FixtureDBPath(),
			Profile: database.ProfileCache,
			Name:    "fixture",
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open fixture database")
		}
		defer fixtureDB.Close()

		repo, err := fixture.NewRepository(fixtureDB, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize fixture repository")
		}

		if err := seedFixture(repo, cfg.FixtureSeed, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed fixture data")
		}

		dataAPI = mockapi.NewHandler(repo, log)
		apiBaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}

	// State layer: manager holds the data, effects run the loads.
	mgr := state.NewManager(log)
	api := folioapi.NewClient(apiBaseURL, log)
	effects := state.NewEffects(mgr, api, log)

	snapshots := snapshot.NewStore(cfg.SnapshotPath(), log)
	refresh := services.NewRefreshService(mgr, effects, snapshots, log)

	// Seed the state from the last-known-good snapshot so views answer
	// before the first refresh completes.
	if refresh.Restore() {
		log.Info().Msg("State restored from snapshot")
	}

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Manager:   mgr,
		Effects:   effects,
		Refresh:   refresh,
		DataAPI:   dataAPI,
		FixtureDB: fixtureDB,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Initial refresh runs after the server is listening because the
	// embedded data API is served from the same process.
	refreshJob := scheduler.NewRefreshJob(refresh)
	sched := scheduler.New(log)
	go func() {
		if err := sched.RunNow(refreshJob); err != nil {
			log.Warn().Err(err).Msg("Initial refresh failed, serving restored data until next refresh")
		}
	}()

	if cfg.RefreshCron != "" {
		if err := sched.AddJob(cfg.RefreshCron, refreshJob); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.RefreshCron).Msg("Invalid refresh schedule")
		}
		sched.Start()
	} else {
		log.Info().Msg("Scheduled refresh disabled, refresh via POST /api/refresh")
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	if cfg.RefreshCron != "" {
		sched.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// seedFixture fills an empty fixture database with the deterministic
// generated dataset. A populated database is left untouched so manual
// edits through the data API survive restarts.
func seedFixture(repo *fixture.Repository, seed int64, log zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	empty, err := repo.IsEmpty(ctx)
	if err != nil {
		return fmt.Errorf("failed to check fixture database: %w", err)
	}
	if !empty {
		log.Info().Msg("Fixture database already seeded")
		return nil
	}

	data := fixture.Generate(seed)
	if err := repo.Replace(ctx, data); err != nil {
		return fmt.Errorf("failed to seed fixture database: %w", err)
	}

	log.Info().
		Int64("seed", seed).
		Int("portfolios", len(data.Portfolios)).
		Int("positions", len(data.Positions)).
		Int("transactions", len(data.Transactions)).
		Msg("Fixture database seeded")
	return nil
}
