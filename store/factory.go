package store

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"github.com/upb/quiz-client/config"
	"go.uber.org/zap"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the storage backend selected in cfg. The returned closer
// releases any connection the backend holds.
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (Storage, io.Closer, error) {
	switch cfg.Backend {
	case config.StorageMemory:
		return NewMemoryStorage(), nopCloser{}, nil

	case config.StorageFile:
		logger.Debug("using file storage", zap.String("path", cfg.FilePath))
		return NewFileStorage(cfg.FilePath), nopCloser{}, nil

	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		s := NewRedisStorage(client, cfg.Redis.KeyPrefix)
		return s, s, nil

	case config.StoragePostgres:
		db, err := OpenPostgres(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		s := NewSQLStorage(db, logger)
		if err := s.InitSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return s, s, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
