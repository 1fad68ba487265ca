// cmd/preflight/main.go
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hamed0406/uptimeboard/internal/config"
	"github.com/hamed0406/uptimeboard/internal/registry"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	admin := strings.TrimSpace(os.Getenv("ADMIN_API_KEYS"))
	pub := strings.TrimSpace(os.Getenv("PUBLIC_API_KEYS"))

	if admin == "" {
		fail("ADMIN_API_KEYS is empty (history reset would be open to anyone).")
	}
	if pub == "" {
		fail("PUBLIC_API_KEYS is empty (read routes will 401 for non-admin clients).")
	}

	// Normalize and sanity-check lists (no spaces around commas).
	for name, v := range map[string]string{"ADMIN_API_KEYS": admin, "PUBLIC_API_KEYS": pub} {
		if strings.Contains(v, " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fail(err.Error())
	}
	ok("API_ADDR=" + cfg.Addr)

	switch cfg.StorageBackend {
	case config.BackendMemory:
		warn("STORAGE_BACKEND=memory; history is lost on restart.")
	case config.BackendFile:
		ok("STORAGE_BACKEND=file DATA_DIR=" + cfg.DataDir)
	case config.BackendPostgres, config.BackendRedis:
		ok("STORAGE_BACKEND=" + cfg.StorageBackend)
	}

	reg, err := registry.Load(cfg.TargetsFile)
	if err != nil {
		fail(err.Error())
	}
	ok(fmt.Sprintf("%d targets registered", reg.Len()))

	if u, err := url.Parse(cfg.SelfBaseURL()); err != nil || u.Host == "" {
		fail("SELF_URL is not a valid absolute URL: " + cfg.SelfBaseURL())
	} else {
		ok("self check URL " + u.String())
	}

	if cfg.PollInterval == 0 {
		warn("POLL_INTERVAL_MS=0; targets are only checked on request.")
	}
	if cfg.SlackWebhookURL == "" && cfg.NATSURL == "" {
		warn("no alert channel configured (SLACK_WEBHOOK_URL, NATS_URL).")
	}

	if len(cfg.AllowedOrigins) == 0 {
		warn("ALLOWED_ORIGINS empty; every origin is allowed by CORS.")
	} else {
		ok("ALLOWED_ORIGINS=" + strings.Join(cfg.AllowedOrigins, ","))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := checkStore(ctx, cfg); err != nil {
		fail("storage unreachable: " + err.Error())
	}
	ok("storage reachable")

	ok("preflight passed")
}
