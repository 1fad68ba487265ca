package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimeboard/internal/config"
	"github.com/hamed0406/uptimeboard/internal/repo"
	"github.com/hamed0406/uptimeboard/internal/repo/file"
	"github.com/hamed0406/uptimeboard/internal/repo/postgres"
	"github.com/hamed0406/uptimeboard/internal/repo/redis"
)

// checkStore opens the configured backend and reads the history record.
func checkStore(ctx context.Context, cfg config.Config) error {
	var (
		kv  repo.KV
		err error
	)
	switch cfg.StorageBackend {
	case config.BackendFile:
		kv, err = file.New(cfg.DataDir, cfg.InstanceID)
	case config.BackendPostgres:
		kv, err = postgres.New(ctx, cfg.DatabaseURL, cfg.InstanceID, zap.NewNop())
	case config.BackendRedis:
		kv, err = redis.New(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.InstanceID, zap.NewNop())
	default:
		return nil
	}
	if err != nil {
		return err
	}
	if c, ok := kv.(repo.Closer); ok {
		defer c.Close()
	}
	_, _, err = kv.Get(ctx, repo.HistoryKey)
	return err
}
