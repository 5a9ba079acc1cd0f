package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/kursadbilgin/tcxc-automation/internal/config"
	"github.com/kursadbilgin/tcxc-automation/internal/dedup"
	"github.com/kursadbilgin/tcxc-automation/internal/handler"
	"github.com/kursadbilgin/tcxc-automation/internal/infra/postgresql"
	"github.com/kursadbilgin/tcxc-automation/internal/infra/postgresql/migrations"
	infraredis "github.com/kursadbilgin/tcxc-automation/internal/infra/redis"
)

const (
	DedupBackendFile     = "file"
	DedupBackendRedis    = "redis"
	DedupBackendPostgres = "postgres"
)

// OpenDedupStore builds the configured sent-notification store. Connections
// are closed by Runtime.Close. The returned checks cover the backing service
// for readiness probes.
func (r *Runtime) OpenDedupStore(ctx context.Context, cfg *config.DedupConfig) (dedup.Store, map[string]handler.ReadinessCheck, error) {
	checks := map[string]handler.ReadinessCheck{}

	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", DedupBackendFile:
		store, err := dedup.NewFileStore(cfg.FilePath)
		if err != nil {
			return nil, nil, err
		}
		return store, checks, nil

	case DedupBackendRedis:
		rdb, err := infraredis.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis initialization failed: %w", err)
		}
		r.OnClose(func() { _ = rdb.Close() })

		store, err := dedup.NewRedisStore(rdb, cfg.KeyPrefix)
		if err != nil {
			return nil, nil, err
		}
		checks["redis"] = handler.RedisCheck(rdb)
		return store, checks, nil

	case DedupBackendPostgres:
		db, err := postgresql.NewPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres initialization failed: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("postgres underlying db init failed: %w", err)
		}
		r.OnClose(func() { _ = sqlDB.Close() })

		if err := migrations.Migrate(db); err != nil {
			return nil, nil, fmt.Errorf("database migrations failed: %w", err)
		}

		store, err := dedup.NewGormStore(db)
		if err != nil {
			return nil, nil, err
		}
		checks["postgres"] = handler.SQLCheck(sqlDB)
		return store, checks, nil

	default:
		return nil, nil, fmt.Errorf("unsupported dedup backend %q", cfg.Backend)
	}
}
