package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimeboard/internal/classify"
	"github.com/hamed0406/uptimeboard/internal/domain"
	"github.com/hamed0406/uptimeboard/internal/repo"
)

type AlerterConfig struct {
	AlertOnRecovery bool
	Cooldown        time.Duration
}

// Notifier is satisfied by notify.Slack, notify.NATS and notify.Multi.
type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// alertRecord is the last tier seen for a target and when we last notified.
type alertRecord struct {
	Tier       classify.Tier `json:"tier"`
	LastSentAt *time.Time    `json:"lastSentAt,omitempty"`
	// DownNotified is set while the current outage has been announced.
	DownNotified bool `json:"downNotified,omitempty"`
}

// Alerter turns tier transitions of each polling round into notifications.
// Its state survives restarts under repo.AlertStateKey.
type Alerter struct {
	kv       repo.KV
	notifier Notifier
	clock    Clock
	log      *zap.Logger
	cfg      AlerterConfig

	mu     sync.Mutex
	loaded bool
	state  map[string]alertRecord
}

func NewAlerter(kv repo.KV, notifier Notifier, clock Clock, log *zap.Logger, cfg AlerterConfig) *Alerter {
	if clock == nil {
		clock = RealClock{}
	}
	return &Alerter{
		kv:       kv,
		notifier: notifier,
		clock:    clock,
		log:      log,
		cfg:      cfg,
		state:    map[string]alertRecord{},
	}
}

func (a *Alerter) Observe(ctx context.Context, snaps []domain.StatusSnapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.loadLocked(ctx)
	now := a.clock.Now()
	dirty := false

	for _, s := range snaps {
		if s.State == domain.StateUnknown {
			continue
		}
		tier := classify.Classify(s)
		rec, seen := a.state[s.Target]

		// Cooldown only matters for DOWN alerts (suppresses flapping).
		cooled := true
		if seen && rec.LastSentAt != nil {
			cooled = now.Sub(*rec.LastSentAt) >= a.cfg.Cooldown
		}

		if seen && rec.Tier == tier {
			// A down alert held back by the cooldown goes out once it expires.
			pending := tier == classify.Critical && !rec.DownNotified
			if !pending || !cooled {
				continue
			}
		}
		dirty = true

		down := tier == classify.Critical && cooled
		recovered := seen && rec.DownNotified && tier != classify.Critical && a.cfg.AlertOnRecovery

		next := alertRecord{Tier: tier, LastSentAt: rec.LastSentAt, DownNotified: down}
		if down || recovered {
			title := "🔴 Target DOWN"
			if recovered {
				title = "🟢 Target RECOVERED"
			}
			if err := a.notifier.Send(ctx, title, alertText(s, tier)); err != nil {
				a.log.Warn("alert_send_error", zap.String("target", s.Target), zap.Error(err))
			} else {
				a.log.Info("alert_sent", zap.String("target", s.Target), zap.String("tier", string(tier)))
			}
			sent := now
			next.LastSentAt = &sent
		}
		a.state[s.Target] = next
	}

	if dirty {
		a.persistLocked(ctx)
	}
}

func alertText(s domain.StatusSnapshot, tier classify.Tier) string {
	name := s.Name
	if name == "" {
		name = s.Target
	}
	reason := s.Error
	if reason == "" {
		reason = "n/a"
	}
	return fmt.Sprintf(
		"Service: %s (%s)\nStatus: %s\nUptime: %.2f%%\nResponse: %d ms\nReason: %s\nChecked: %s",
		name, s.Target, classify.Label(tier), s.Uptime, s.ResponseTimeMS, reason,
		s.Timestamp.UTC().Format(time.RFC3339),
	)
}

func (a *Alerter) loadLocked(ctx context.Context) {
	if a.loaded || a.kv == nil {
		return
	}
	a.loaded = true
	raw, ok, err := a.kv.Get(ctx, repo.AlertStateKey)
	if err != nil {
		a.log.Warn("alert_state_load_error", zap.Error(err))
		return
	}
	if !ok {
		return
	}
	st := map[string]alertRecord{}
	if err := json.Unmarshal(raw, &st); err != nil {
		a.log.Warn("alert_state_corrupt", zap.Error(err))
		return
	}
	a.state = st
}

func (a *Alerter) persistLocked(ctx context.Context) {
	if a.kv == nil {
		return
	}
	raw, err := json.Marshal(a.state)
	if err != nil {
		a.log.Warn("alert_state_persist_error", zap.Error(err))
		return
	}
	if err := a.kv.Put(ctx, repo.AlertStateKey, raw); err != nil {
		a.log.Warn("alert_state_persist_error", zap.Error(err))
	}
}
