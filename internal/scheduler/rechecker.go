package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimeboard/internal/domain"
)

// RoundRunner checks every registered target once, in registry order.
type RoundRunner interface {
	CheckAllOrdered(ctx context.Context) []domain.StatusSnapshot
}

// RoundObserver receives the snapshots of each completed round.
type RoundObserver interface {
	Observe(ctx context.Context, snaps []domain.StatusSnapshot)
}

// Rechecker drives the aggregate polling loop.
type Rechecker struct {
	Logger    *zap.Logger
	Runner    RoundRunner
	Observers []RoundObserver
	Clock     Clock

	repeater *Repeater
}

func NewRechecker(
	logger *zap.Logger,
	runner RoundRunner,
	interval time.Duration,
	clock Clock,
	observers ...RoundObserver,
) *Rechecker {
	if interval < 0 {
		interval = 0
	}
	if clock == nil {
		clock = RealClock{}
	}
	r := &Rechecker{
		Logger:    logger,
		Runner:    runner,
		Observers: observers,
		Clock:     clock,
	}
	r.repeater = NewRepeater(interval, clock, r.runOnce)
	return r
}

// Start launches the polling loop. It returns false when the loop is
// already running or polling is disabled.
func (r *Rechecker) Start(ctx context.Context) bool {
	if r.repeater.Interval == 0 {
		r.Logger.Info("rechecker_disabled")
		return false
	}
	if !r.repeater.Start(ctx) {
		return false
	}
	r.Logger.Info("rechecker_started", zap.Duration("interval", r.repeater.Interval))
	return true
}

func (r *Rechecker) Stop() {
	if !r.repeater.Running() {
		return
	}
	r.repeater.Stop()
	r.Logger.Info("rechecker_stopped")
}

func (r *Rechecker) Running() bool { return r.repeater.Running() }

// Run blocks until ctx is cancelled.
func (r *Rechecker) Run(ctx context.Context) {
	if !r.Start(ctx) {
		return
	}
	<-ctx.Done()
	r.Stop()
}

func (r *Rechecker) runOnce(ctx context.Context) {
	began := r.Clock.Now()
	snaps := r.Runner.CheckAllOrdered(ctx)
	if ctx.Err() != nil {
		// round interrupted by shutdown
		return
	}

	counts := map[domain.State]int{}
	for _, s := range snaps {
		counts[s.State]++
		r.Logger.Debug("rechecker_checked",
			zap.String("target", s.Target),
			zap.String("state", string(s.State)),
			zap.Int64("response_ms", s.ResponseTimeMS),
			zap.Float64("uptime", s.Uptime),
			zap.String("reason", s.Error),
		)
	}
	r.Logger.Info("rechecker_round",
		zap.Int("targets", len(snaps)),
		zap.Int("online", counts[domain.StateOnline]),
		zap.Int("degraded", counts[domain.StateDegraded]),
		zap.Int("offline", counts[domain.StateOffline]),
		zap.Duration("took", r.Clock.Now().Sub(began)),
	)

	for _, o := range r.Observers {
		o.Observe(ctx, snaps)
	}
}
