package main

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimeboard/internal/config"
	"github.com/hamed0406/uptimeboard/internal/notify"
	"github.com/hamed0406/uptimeboard/internal/repo"
	"github.com/hamed0406/uptimeboard/internal/repo/file"
	"github.com/hamed0406/uptimeboard/internal/repo/memory"
	"github.com/hamed0406/uptimeboard/internal/repo/postgres"
	"github.com/hamed0406/uptimeboard/internal/repo/redis"
	"github.com/hamed0406/uptimeboard/internal/scheduler"
)

func noopClose() error { return nil }

// openStore picks the durable backend. Every record is namespaced by the
// instance id so several boards can share one database.
func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (repo.KV, func() error, error) {
	var (
		kv  repo.KV
		err error
	)
	switch cfg.StorageBackend {
	case config.BackendMemory:
		kv = memory.New()
	case config.BackendFile:
		kv, err = file.New(cfg.DataDir, cfg.InstanceID)
	case config.BackendPostgres:
		kv, err = postgres.New(ctx, cfg.DatabaseURL, cfg.InstanceID, log)
	case config.BackendRedis:
		kv, err = redis.New(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.InstanceID, log)
	default:
		err = fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.StorageBackend, err)
	}
	log.Info("store_open", zap.String("backend", cfg.StorageBackend), zap.String("instance", cfg.InstanceID))

	if c, ok := kv.(repo.Closer); ok {
		return kv, c.Close, nil
	}
	return kv, noopClose, nil
}

// openNotifier combines the configured alert channels. With none
// configured, alerts are still tracked but dropped.
func openNotifier(cfg config.Config, log *zap.Logger) (scheduler.Notifier, func() error, error) {
	var (
		multi   notify.Multi
		closers []func() error
	)
	if s := notify.NewSlack(cfg.SlackWebhookURL); s != nil {
		multi = append(multi, s)
	}
	n, err := notify.NewNATS(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, nil, err
	}
	if n != nil {
		multi = append(multi, n)
		closers = append(closers, n.Close)
	}
	log.Info("alerts_configured", zap.Int("channels", len(multi)))

	closeAll := func() error {
		var err error
		for _, c := range closers {
			err = multierr.Append(err, c())
		}
		return err
	}
	if len(multi) == 0 {
		return notify.Discard{}, closeAll, nil
	}
	return multi, closeAll, nil
}
