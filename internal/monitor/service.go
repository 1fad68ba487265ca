// Package monitor is the outward interface of the dashboard core: it runs
// checks against registered targets and derives status snapshots.
package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimeboard/internal/domain"
	"github.com/hamed0406/uptimeboard/internal/history"
	"github.com/hamed0406/uptimeboard/internal/probe"
	"github.com/hamed0406/uptimeboard/internal/registry"
	"github.com/hamed0406/uptimeboard/internal/timing"
)

const (
	DefaultDegradedThreshold = 1000 * time.Millisecond
	// RecentSamples bounds the response times attached to a snapshot.
	RecentSamples = 10
)

// SelfMonitor is the part of selfmon.Monitor the service delegates to.
type SelfMonitor interface {
	Check(ctx context.Context) bool
	Snapshot() domain.StatusSnapshot
	Uptime() float64
	Reset(ctx context.Context)
}

type Option func(*Service)

func WithDegradedThreshold(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.degraded = d
		}
	}
}

// WithDNSDiagnostics classifies the host of targets failing with a network
// error. A nil resolver uses the OS resolver.
func WithDNSDiagnostics(r probe.Resolver) Option {
	return func(s *Service) {
		s.dnsDiag = true
		s.resolver = r
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

type Service struct {
	reg    *registry.Registry
	prober probe.Prober
	hist   *history.Store
	self   SelfMonitor
	timing timing.Source
	log    *zap.Logger

	degraded time.Duration
	dnsDiag  bool
	resolver probe.Resolver
	now      func() time.Time

	mu     sync.RWMutex
	latest map[string]domain.StatusSnapshot

	subMu  sync.Mutex
	subs   map[int]chan []domain.StatusSnapshot
	nextID int
}

func New(
	reg *registry.Registry,
	prober probe.Prober,
	hist *history.Store,
	self SelfMonitor,
	src timing.Source,
	log *zap.Logger,
	opts ...Option,
) *Service {
	if src == nil {
		src = timing.Unsupported{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		reg:      reg,
		prober:   prober,
		hist:     hist,
		self:     self,
		timing:   src,
		log:      log,
		degraded: DefaultDegradedThreshold,
		now:      time.Now,
		latest:   make(map[string]domain.StatusSnapshot),
		subs:     make(map[int]chan []domain.StatusSnapshot),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CheckTarget probes one target and records the outcome. Unknown keys
// yield an unknown snapshot and are never probed or recorded.
func (s *Service) CheckTarget(ctx context.Context, key string) domain.StatusSnapshot {
	t, ok := s.reg.Lookup(key)
	if !ok {
		return domain.StatusSnapshot{
			Target:    key,
			State:     domain.StateUnknown,
			Timestamp: s.now().UTC(),
			Error:     "target not found",
		}
	}

	var snap domain.StatusSnapshot
	if t.IsSelf() {
		snap = s.checkSelf(ctx, t)
	} else {
		var recorded bool
		snap, recorded = s.checkRemote(ctx, t)
		if !recorded {
			return snap
		}
	}

	s.mu.Lock()
	s.latest[key] = snap
	s.mu.Unlock()
	return snap
}

func (s *Service) checkSelf(ctx context.Context, t domain.Target) domain.StatusSnapshot {
	if s.self == nil {
		return domain.StatusSnapshot{
			Target:    t.Key,
			Name:      t.Name,
			Category:  t.Category,
			State:     domain.StateUnknown,
			Timestamp: s.now().UTC(),
			Error:     "self monitor not configured",
		}
	}
	s.self.Check(ctx)
	snap := s.self.Snapshot()
	snap.Target, snap.Name, snap.Category = t.Key, t.Name, t.Category
	if snap.State == domain.StateOnline && snap.ResponseTimeMS >= s.degraded.Milliseconds() {
		snap.State = domain.StateDegraded
	}
	snap.Uptime = s.self.Uptime()
	return snap
}

func (s *Service) checkRemote(ctx context.Context, t domain.Target) (domain.StatusSnapshot, bool) {
	res := s.prober.Probe(ctx, t.URL)
	snap := domain.StatusSnapshot{
		Target:         t.Key,
		Name:           t.Name,
		Category:       t.Category,
		ResponseTimeMS: res.LatencyMS,
		Timestamp:      s.now().UTC(),
	}

	if res.Kind == probe.KindCanceled && ctx.Err() != nil {
		// caller went away; not an observation of the target
		snap.State = domain.StateUnknown
		snap.Uptime = s.hist.Uptime(t.Key)
		snap.Error = res.Message()
		return snap, false
	}

	switch {
	case !res.Success:
		snap.State = domain.StateOffline
		snap.Error = res.Message()
		if res.Kind == probe.KindNetwork && s.dnsDiag {
			dns := probe.CheckDNS(ctx, s.resolver, probe.Host(t.URL))
			snap.Error += " dns=" + dns.Class
			s.log.Info("dns_check",
				zap.String("target", t.Key),
				zap.String("host", dns.Host),
				zap.String("class", dns.Class),
				zap.String("resolver_error", dns.ResolverError),
			)
		}
	case res.LatencyMS >= s.degraded.Milliseconds():
		snap.State = domain.StateDegraded
	default:
		snap.State = domain.StateOnline
	}
	// An ambiguous success produced no timing entry; any match would be
	// left over from an earlier round.
	if res.Success && res.Kind == probe.KindNone {
		snap.Timing = timing.Profile(s.timing, t.URL)
	}
	if res.Kind == probe.KindAmbiguous {
		s.log.Warn("probe_ambiguous_error",
			zap.String("target", t.Key),
			zap.String("url", t.URL),
			zap.Error(res.Err),
		)
	}

	rec := s.hist.Record(ctx, t.Key, res.Outcome())
	snap.Uptime = rec.Uptime
	snap.RecentResponseTimes = recent(rec.Checks, RecentSamples)

	s.log.Debug("target_checked",
		zap.String("target", t.Key),
		zap.String("state", string(snap.State)),
		zap.Int64("response_ms", snap.ResponseTimeMS),
		zap.String("kind", string(res.Kind)),
		zap.Float64("uptime", snap.Uptime),
	)
	return snap, true
}

func recent(checks []domain.ProbeOutcome, n int) []int64 {
	if len(checks) > n {
		checks = checks[len(checks)-n:]
	}
	out := make([]int64, 0, len(checks))
	for _, c := range checks {
		out = append(out, c.ResponseTimeMS)
	}
	return out
}

// CheckAllOrdered checks every target strictly one after another, in
// registry order, and publishes the round to subscribers.
func (s *Service) CheckAllOrdered(ctx context.Context) []domain.StatusSnapshot {
	keys := s.reg.Keys()
	out := make([]domain.StatusSnapshot, 0, len(keys))
	for _, k := range keys {
		if ctx.Err() != nil {
			return out
		}
		out = append(out, s.CheckTarget(ctx, k))
	}
	s.publish(out)
	return out
}

func (s *Service) CheckAll(ctx context.Context) map[string]domain.StatusSnapshot {
	snaps := s.CheckAllOrdered(ctx)
	out := make(map[string]domain.StatusSnapshot, len(snaps))
	for _, snap := range snaps {
		out[snap.Target] = snap
	}
	return out
}

func (s *Service) Uptime(key string) float64 {
	if t, ok := s.reg.Lookup(key); ok && t.IsSelf() && s.self != nil {
		return s.self.Uptime()
	}
	return s.hist.Uptime(key)
}

func (s *Service) History(key string) domain.HistoryRecord {
	return s.hist.History(key)
}

// ClearHistory wipes per-target history, self counters and the cached
// latest snapshots.
func (s *Service) ClearHistory(ctx context.Context) {
	s.hist.Clear(ctx)
	if s.self != nil {
		s.self.Reset(ctx)
	}
	s.mu.Lock()
	s.latest = make(map[string]domain.StatusSnapshot)
	s.mu.Unlock()
}

// Latest returns the most recent snapshot of every checked target, in
// registry order.
func (s *Service) Latest() []domain.StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.StatusSnapshot, 0, len(s.latest))
	for _, k := range s.reg.Keys() {
		if snap, ok := s.latest[k]; ok {
			out = append(out, snap)
		}
	}
	return out
}

func (s *Service) Targets() []domain.Target { return s.reg.Targets() }

// Subscribe delivers every completed round. Slow subscribers miss rounds
// rather than block checks.
func (s *Service) Subscribe() (<-chan []domain.StatusSnapshot, func()) {
	ch := make(chan []domain.StatusSnapshot, 1)
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Service) publish(snaps []domain.StatusSnapshot) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- snaps:
		default:
		}
	}
}
