// Package selfmon tracks the availability of the hosting service itself,
// with counters and a last-check record kept apart from per-target history.
package selfmon

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimeboard/internal/domain"
	"github.com/hamed0406/uptimeboard/internal/repo"
	"github.com/hamed0406/uptimeboard/internal/scheduler"
	"github.com/hamed0406/uptimeboard/internal/timing"
)

const (
	DefaultInterval = 60000 * time.Millisecond
	DefaultTimeout  = 5000 * time.Millisecond
	DisplayName     = "Self Uptime Monitor"
)

type Config struct {
	// URL is the base address of the hosting service. Any query is dropped.
	URL      string
	Timeout  time.Duration
	Interval time.Duration
	// Client should route through the timing buffer's transport so checks
	// can be profiled.
	Client *http.Client
}

// Status is the outward view of the self monitor.
type Status struct {
	Service        string            `json:"service"`
	Name           string            `json:"name"`
	Status         domain.State      `json:"status"`
	Uptime         float64           `json:"uptime"`
	Downtime       float64           `json:"downtime"`
	Checks         domain.SelfChecks `json:"checks"`
	LastCheck      *domain.SelfCheck `json:"lastCheck"`
	ResponseTimeMS *int64            `json:"responseTime"`
	Latency        *LatencyReport    `json:"latency,omitempty"`
}

type Monitor struct {
	cfg    Config
	kv     repo.KV
	timing timing.Source
	clock  scheduler.Clock
	log    *zap.Logger

	// persistMu orders durable writes the same as in-memory mutations.
	// Always taken before mu.
	persistMu sync.Mutex

	mu       sync.Mutex
	rec      domain.SelfRecord
	latency  *LatencyReport
	repeater *scheduler.Repeater
}

func New(cfg Config, kv repo.KV, src timing.Source, clock scheduler.Clock, log *zap.Logger) *Monitor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{}
	}
	cfg.URL = timing.BaseURL(cfg.URL)
	if src == nil {
		src = timing.Unsupported{}
	}
	if clock == nil {
		clock = scheduler.RealClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	m := &Monitor{cfg: cfg, kv: kv, timing: src, clock: clock, log: log}
	m.repeater = scheduler.NewRepeater(cfg.Interval, clock, func(ctx context.Context) { m.Check(ctx) })
	return m
}

// Check issues one cache-busted HEAD request against the hosting service
// and records the outcome. Total is incremented exactly once per call.
func (m *Monitor) Check(ctx context.Context) bool {
	url := m.cfg.URL + "?check=" + uuid.NewString()
	elapsed, err := m.head(ctx, url)
	now := m.clock.Now().UTC()

	m.persistMu.Lock()
	m.mu.Lock()
	var last domain.SelfCheck
	if err != nil {
		m.rec.Checks.Failed++
		last = domain.SelfCheck{
			Status:    domain.StateOffline,
			Timestamp: now,
			Success:   false,
			Error:     err.Error(),
		}
	} else {
		m.rec.Checks.Successful++
		last = domain.SelfCheck{
			Status:         domain.StateOnline,
			ResponseTimeMS: elapsed,
			Timestamp:      now,
			Success:        true,
		}
		if bd := timing.Profile(m.timing, url); bd != nil {
			last.ResponseTimeMS = bd.Total
			last.Timing = bd
		}
	}
	m.rec.Checks.Total++
	m.rec.LastCheck = &last
	payload, encErr := json.Marshal(m.rec)
	checks := m.rec.Checks
	m.mu.Unlock()

	if encErr != nil {
		m.log.Warn("self_encode_error", zap.Error(encErr))
	} else {
		m.persist(ctx, payload)
	}
	m.persistMu.Unlock()

	m.log.Info("self_check",
		zap.Bool("success", last.Success),
		zap.Int64("response_ms", last.ResponseTimeMS),
		zap.Int64("total", checks.Total),
		zap.String("reason", last.Error),
	)
	return last.Success
}

// head performs one HEAD request and returns its wall-clock duration in ms.
// Any HTTP response counts as reachable.
func (m *Monitor) head(ctx context.Context, url string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")

	resp, err := m.cfg.Client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return 0, fmt.Errorf("timeout after %s", m.cfg.Timeout)
		}
		return 0, err
	}
	_ = resp.Body.Close()
	return time.Since(start).Round(time.Millisecond).Milliseconds(), nil
}

// Uptime is optimistic: 100 until the first check.
func (m *Monitor) Uptime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return uptime(m.rec.Checks)
}

func (m *Monitor) Downtime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rec.Checks.Total == 0 {
		return 0
	}
	return round2(100 - uptime(m.rec.Checks))
}

func uptime(c domain.SelfChecks) float64 {
	if c.Total == 0 {
		return 100
	}
	u := round2(float64(c.Successful) / float64(c.Total) * 100)
	return math.Max(0, math.Min(100, u))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// Record returns a copy of the persisted shape.
func (m *Monitor) Record() domain.SelfRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyRecord(m.rec)
}

func copyRecord(r domain.SelfRecord) domain.SelfRecord {
	out := domain.SelfRecord{Checks: r.Checks}
	if r.LastCheck != nil {
		lc := *r.LastCheck
		if lc.Timing != nil {
			t := *lc.Timing
			lc.Timing = &t
		}
		out.LastCheck = &lc
	}
	return out
}

func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := copyRecord(m.rec)
	st := Status{
		Service:   domain.SelfKey,
		Name:      DisplayName,
		Status:    domain.StateUnknown,
		Uptime:    uptime(rec.Checks),
		Checks:    rec.Checks,
		LastCheck: rec.LastCheck,
	}
	if rec.Checks.Total > 0 {
		st.Downtime = round2(100 - st.Uptime)
	}
	if lc := rec.LastCheck; lc != nil {
		st.Status = lc.Status
		if lc.ResponseTimeMS > 0 {
			rt := lc.ResponseTimeMS
			st.ResponseTimeMS = &rt
		}
	}
	if m.latency != nil {
		l := *m.latency
		st.Latency = &l
	}
	return st
}

// Snapshot renders the self monitor as a regular status snapshot.
func (m *Monitor) Snapshot() domain.StatusSnapshot {
	st := m.Status()
	snap := domain.StatusSnapshot{
		Target:   domain.SelfKey,
		Name:     DisplayName,
		Category: "self",
		State:    st.Status,
		Uptime:   st.Uptime,
	}
	if lc := st.LastCheck; lc != nil {
		snap.ResponseTimeMS = lc.ResponseTimeMS
		snap.Timing = lc.Timing
		snap.Timestamp = lc.Timestamp
		snap.Error = lc.Error
	}
	return snap
}

// Reset zeroes the counters and persists the empty record.
func (m *Monitor) Reset(ctx context.Context) {
	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	m.mu.Lock()
	m.rec = domain.SelfRecord{}
	payload, err := json.Marshal(m.rec)
	m.mu.Unlock()
	if err == nil {
		m.persist(ctx, payload)
	}
	m.log.Info("self_reset")
}

// StartChecking checks immediately and then on every interval. It is a
// no-op while already running.
func (m *Monitor) StartChecking(ctx context.Context) bool {
	return m.repeater.Start(ctx)
}

func (m *Monitor) StopChecking() { m.repeater.Stop() }

func (m *Monitor) Checking() bool { return m.repeater.Running() }

func (m *Monitor) persist(ctx context.Context, payload []byte) {
	if m.kv == nil {
		return
	}
	if err := m.kv.Put(ctx, repo.SelfKey, payload); err != nil {
		m.log.Warn("self_persist_error", zap.Error(err))
	}
}
