package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/actuallystonmai/course-recommender/internal/cache"
	"github.com/actuallystonmai/course-recommender/internal/catalog"
	"github.com/actuallystonmai/course-recommender/internal/collaborative"
	"github.com/actuallystonmai/course-recommender/internal/config"
	"github.com/actuallystonmai/course-recommender/internal/handler"
	"github.com/actuallystonmai/course-recommender/internal/logging"
	"github.com/actuallystonmai/course-recommender/internal/metrics"
	"github.com/actuallystonmai/course-recommender/internal/profile"
	"github.com/actuallystonmai/course-recommender/internal/repository"
	"github.com/actuallystonmai/course-recommender/internal/router"
	"github.com/actuallystonmai/course-recommender/internal/service"
	"github.com/actuallystonmai/course-recommender/seeds"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ------------ PostgreSQL ---------------
	pool, err := connectPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	repo := repository.New(pool)

	// ------------ Setup Seed Data ---------------
	if cfg.CatalogSource == config.CatalogSourcePostgres {
		if err := checkSeed(ctx, repo, pool); err != nil {
			return err
		}
	}

	// ------------ Catalog ---------------
	loader := catalog.NewLoader(catalogSource(cfg, repo), cfg.StoreTimeout)
	if snap, err := loader.Load(ctx); err != nil {
		metrics.RecordCatalogReload(0, err)
		logging.Warn().Err(err).Msg("initial catalog load failed, serving degraded until reload")
	} else {
		metrics.RecordCatalogReload(snap.Len(), nil)
		logging.Info().Int("courses", snap.Len()).Str("hash", snap.Hash()).Msg("catalog loaded")
	}

	// ------------ MongoDB ---------------
	var profiles service.ProfileStore
	if client, err := profile.Connect(ctx, cfg.MongoURI, cfg.StoreTimeout); err != nil {
		logging.Warn().Err(err).Msg("profile store unavailable, email-based requests will fail")
	} else {
		defer func() { _ = client.Disconnect(context.Background()) }()
		store := profile.NewStore(client.Database(cfg.MongoDatabase), cfg.StoreTimeout)
		if err := store.EnsureIndexes(ctx); err != nil {
			logging.Warn().Err(err).Msg("ensure profile indexes")
		}
		profiles = store
		logging.Info().Msg("connected to MongoDB")
	}

	// ------------ Redis ---------------
	var results service.ResultCache
	if client, err := cache.Connect(ctx, cfg.RedisURL); err != nil {
		logging.Warn().Err(err).Msg("redis unavailable, result caching disabled")
	} else {
		defer client.Close()
		results = cache.NewCache(client, cfg.CacheTTL)
		logging.Info().Msg("connected to Redis")
	}

	// ------------ Models ---------------
	models, err := collaborative.LoadModels(cfg.SVDModelPath, cfg.KNNModelPath)
	if err != nil {
		return err
	}

	svc := service.NewService(
		&service.RecommenderContext{Catalog: loader, Models: models},
		repo,
		profiles,
		results,
		service.Options{
			MaxPerSubject: cfg.MaxPerSubject,
			MinResults:    cfg.MinResults,
			StoreTimeout:  cfg.StoreTimeout,
		},
	)

	// ---------------- Server --------------------
	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.Setup(handler.NewHandler(svc), router.Options{
			CORSOrigins: cfg.CORSOrigins,
			RateLimit:   cfg.RateLimit,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func checkSeed(ctx context.Context, repo *repository.Repository, db seeds.Execer) error {
	count, err := repo.CountCourses(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		logging.Info().Int("courses", count).Msg("database already seeded, skipping")
		return nil
	}
	return seeds.Setup(ctx, db, repo, seeds.Options{})
}
