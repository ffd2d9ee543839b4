package pgstore

import (
	"context"
	"embed"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamarena/quotakit/pkg/pg"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate creates or upgrades the usage tables.
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg pg.Config, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	return pg.Migrate(ctx, pool, migrations, "migrations", cfg, log)
}
