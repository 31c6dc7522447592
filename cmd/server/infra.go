package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/actuallystonmai/course-recommender/internal/catalog"
	"github.com/actuallystonmai/course-recommender/internal/config"
	"github.com/actuallystonmai/course-recommender/internal/logging"
	"github.com/actuallystonmai/course-recommender/internal/repository"
	"github.com/actuallystonmai/course-recommender/migrations"
)

// connectPostgres opens the pool and applies the schema.
func connectPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := repository.Connect(ctx, cfg.DatabaseURL, cfg.DBPoolSize)
	if err != nil {
		return nil, err
	}
	logging.Info().Msg("connected to PostgreSQL")

	if err := migrations.Up(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate up: %w", err)
	}
	return pool, nil
}

func catalogSource(cfg *config.Config, repo *repository.Repository) catalog.Source {
	if cfg.CatalogSource == config.CatalogSourceCSV {
		return &catalog.CSVSource{Path: cfg.CatalogCSVPath}
	}
	return repo
}
