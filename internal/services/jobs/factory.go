package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/phambaophuc/filekit-workers/internal/config"
	apperrors "github.com/phambaophuc/filekit-workers/internal/errors"
	"github.com/phambaophuc/filekit-workers/pkg/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New creates the job store selected by cfg.Jobs.Store.
func New(cfg *config.Config) (Store, error) {
	const op = "jobs.New"

	switch cfg.Jobs.Store {
	case "", config.JobStoreMemory:
		return NewMemory(), nil
	case config.JobStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			client.Close()
			return nil, apperrors.Wrap(apperrors.KindUnavailable, op, "redis ping failed", err)
		}
		return NewRedis(client, cfg.Jobs.TTL), nil
	case config.JobStoreSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Jobs.SQLitePath), utils.DefaultDirPermissions); err != nil {
			return nil, apperrors.Wrap(apperrors.KindStorage, op, "failed to create sqlite directory", err)
		}
		db, err := gorm.Open(sqlite.Open(cfg.Jobs.SQLitePath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindStorage, op, "failed to open sqlite", err)
		}
		return NewSQLite(db)
	default:
		return nil, apperrors.New(apperrors.KindConfig, op, fmt.Sprintf("unsupported job store: %s", cfg.Jobs.Store))
	}
}
