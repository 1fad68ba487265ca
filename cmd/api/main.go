package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimeboard/internal/config"
	"github.com/hamed0406/uptimeboard/internal/history"
	"github.com/hamed0406/uptimeboard/internal/httpapi"
	apimw "github.com/hamed0406/uptimeboard/internal/httpapi/middleware"
	"github.com/hamed0406/uptimeboard/internal/logging"
	"github.com/hamed0406/uptimeboard/internal/monitor"
	"github.com/hamed0406/uptimeboard/internal/probe"
	"github.com/hamed0406/uptimeboard/internal/registry"
	"github.com/hamed0406/uptimeboard/internal/scheduler"
	"github.com/hamed0406/uptimeboard/internal/selfmon"
	"github.com/hamed0406/uptimeboard/internal/timing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel, cfg.LogConsole)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("api_exit", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closeStore()) }()

	reg, err := registry.Load(cfg.TargetsFile)
	if err != nil {
		return err
	}

	var (
		src       timing.Source = timing.Unsupported{}
		transport http.RoundTripper
	)
	if cfg.TimingEnabled {
		buf := timing.NewBuffer(cfg.TimingBufferSize)
		src = buf
		transport = buf.Transport(nil)
	}

	var prober probe.Prober = probe.NewHTTPProber(cfg.ProbeTimeout, transport)
	if cfg.RetryAttempts > 1 {
		prober = &probe.RetryProber{Inner: prober, Attempts: cfg.RetryAttempts, Backoff: cfg.RetryBackoff}
	}

	hist := history.New(kv, logger, history.WithLimit(cfg.HistoryLimit))
	hist.Load(ctx)

	self := selfmon.New(selfmon.Config{
		URL:      cfg.SelfBaseURL(),
		Timeout:  cfg.ProbeTimeout,
		Interval: cfg.SelfCheckInterval,
		Client:   &http.Client{Transport: transport},
	}, kv, src, scheduler.RealClock{}, logger)
	self.Load(ctx)

	opts := []monitor.Option{monitor.WithDegradedThreshold(cfg.DegradedThreshold)}
	if cfg.DNSDiagnostics {
		opts = append(opts, monitor.WithDNSDiagnostics(nil))
	}
	svc := monitor.New(reg, prober, hist, self, src, logger, opts...)

	notifier, closeNotifier, err := openNotifier(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closeNotifier()) }()

	alerter := scheduler.NewAlerter(kv, notifier, scheduler.RealClock{}, logger, scheduler.AlerterConfig{
		AlertOnRecovery: cfg.AlertOnRecovery,
		Cooldown:        cfg.AlertCooldown,
	})
	rechecker := scheduler.NewRechecker(logger, svc, cfg.PollInterval, scheduler.RealClock{}, alerter)

	api := httpapi.NewServer(logger, svc, self)
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(keys, cfg.AllowedOrigins, cfg.PublicRPM, cfg.PublicBurst, cfg.AdminRPM, cfg.AdminBurst),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("api_listen",
			zap.String("addr", cfg.Addr),
			zap.String("storage", cfg.StorageBackend),
			zap.Int("targets", reg.Len()),
			zap.Bool("timing", src.Supported()),
		)
		serveErr <- srv.ListenAndServe()
	}()

	// The self monitor probes our own listener, so it starts after it.
	self.StartChecking(ctx)
	rechecker.Start(ctx)

	select {
	case serr := <-serveErr:
		if !errors.Is(serr, http.ErrServerClosed) {
			return serr
		}
	case <-ctx.Done():
		logger.Info("api_shutdown")
	}

	rechecker.Stop()
	self.StopChecking()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
