// Package migrations embeds the database schema.
package migrations

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed *.sql
var files embed.FS

type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func Up(ctx context.Context, db Execer) error {
	return run(ctx, db, "create_tables.up.sql")
}

func Down(ctx context.Context, db Execer) error {
	return run(ctx, db, "create_tables.down.sql")
}

func run(ctx context.Context, db Execer, name string) error {
	sql, err := files.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := db.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration %s: %w", name, err)
	}
	return nil
}
