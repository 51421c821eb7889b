package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nadzzz/parley/internal/config"
)

// Open builds the store selected by cfg.
func Open(ctx context.Context, cfg config.FilesConfig, maxBytes int64) (Store, error) {
	opts := []StoreOption{WithMaxBytes(maxBytes)}

	switch StoreType(cfg.Backend) {
	case StoreTypeDisk:
		dir := cfg.Dir
		if dir == "" {
			dir = filepath.Join(os.TempDir(), "parley-uploads")
		}
		opts = append(opts, WithDir(dir))

	case StoreTypeRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
		}
		opts = append(opts, WithRedisClient(client), WithTTL(cfg.TTL))

	case StoreTypeSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = "parley.db"
		}
		db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return nil, fmt.Errorf("opening sqlite database %s: %w", path, err)
		}
		opts = append(opts, WithDB(db))
	}

	return NewStore(StoreType(cfg.Backend), opts...)
}
