package history

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimeboard/internal/domain"
	"github.com/hamed0406/uptimeboard/internal/repo"
	"github.com/hamed0406/uptimeboard/internal/repo/memory"
)

// failingKV simulates a full or unavailable storage backend.
type failingKV struct{ puts int }

func (f *failingKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, errors.New("storage unavailable")
}

func (f *failingKV) Put(ctx context.Context, key string, value []byte) error {
	f.puts++
	return errors.New("quota exceeded")
}

// gatedKV holds every Put until the gate is opened.
type gatedKV struct {
	*memory.Store
	entered chan struct{}
	gate    chan struct{}
}

func newGatedKV() *gatedKV {
	return &gatedKV{Store: memory.New(), entered: make(chan struct{}, 8), gate: make(chan struct{})}
}

func (g *gatedKV) Put(ctx context.Context, key string, value []byte) error {
	g.entered <- struct{}{}
	<-g.gate
	return g.Store.Put(ctx, key, value)
}

func outcome(ok bool, rt int64, ts int64) domain.ProbeOutcome {
	return domain.ProbeOutcome{Success: ok, ResponseTimeMS: rt, TimestampMS: ts}
}

func TestRecord_AggregatesSumTo100(t *testing.T) {
	ctx := context.Background()
	s := New(memory.New(), zap.NewNop())

	pattern := []bool{true, false, true, true, false, true, true}
	for i, ok := range pattern {
		rec := s.Record(ctx, "google", outcome(ok, 100, int64(i)))
		if rec.Uptime < 0 || rec.Uptime > 100 {
			t.Fatalf("uptime out of range: %v", rec.Uptime)
		}
		if math.Abs(rec.Uptime+rec.Downtime-100) > 0.011 {
			t.Fatalf("uptime+downtime=%v after %d records", rec.Uptime+rec.Downtime, i+1)
		}
	}
	// 5 of 7 -> 71.43
	if got := s.Uptime("google"); got != 71.43 {
		t.Fatalf("want 71.43, got %v", got)
	}
	if got := s.History("google").Downtime; got != 28.57 {
		t.Fatalf("want downtime 28.57, got %v", got)
	}
}

func TestRecord_RingBound(t *testing.T) {
	ctx := context.Background()
	s := New(memory.New(), zap.NewNop())
	for i := 0; i < 150; i++ {
		s.Record(ctx, "aws", outcome(i%2 == 0, int64(i), int64(i)))
	}
	rec := s.History("aws")
	if len(rec.Checks) != DefaultLimit {
		t.Fatalf("want %d checks, got %d", DefaultLimit, len(rec.Checks))
	}
	for i, c := range rec.Checks {
		if c.TimestampMS != int64(50+i) {
			t.Fatalf("check %d: want ts %d, got %d", i, 50+i, c.TimestampMS)
		}
	}
}

func TestRecord_CustomLimit(t *testing.T) {
	s := New(memory.New(), zap.NewNop(), WithLimit(3))
	for i := 0; i < 5; i++ {
		s.Record(context.Background(), "x", outcome(true, 1, int64(i)))
	}
	if n := len(s.History("x").Checks); n != 3 {
		t.Fatalf("want 3, got %d", n)
	}
}

func TestUptime_DefaultsTo100(t *testing.T) {
	s := New(memory.New(), zap.NewNop())
	if got := s.Uptime("never-checked"); got != 100 {
		t.Fatalf("want 100, got %v", got)
	}
	rec := s.History("never-checked")
	if rec.Uptime != 100 || len(rec.Checks) != 0 {
		t.Fatalf("unexpected default record %+v", rec)
	}
}

func TestUptime_ZeroIsReportedAsZero(t *testing.T) {
	s := New(memory.New(), zap.NewNop())
	s.Record(context.Background(), "down", outcome(false, 5000, 1))
	if got := s.Uptime("down"); got != 0 {
		t.Fatalf("want 0 for an always-failing target, got %v", got)
	}
}

func TestClear_ResetsAndPersists(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	s := New(kv, zap.NewNop())
	s.Record(ctx, "google", outcome(false, 10, 1))
	s.Clear(ctx)

	if got := s.Uptime("google"); got != 100 {
		t.Fatalf("want 100 after clear, got %v", got)
	}
	raw, ok, _ := kv.Get(ctx, repo.HistoryKey)
	if !ok || string(raw) != "{}" {
		t.Fatalf("want persisted empty map, got %q ok=%v", raw, ok)
	}
}

func TestClear_NotOverwrittenBySlowRecord(t *testing.T) {
	ctx := context.Background()
	kv := newGatedKV()
	s := New(kv, zap.NewNop())

	recorded := make(chan struct{})
	go func() {
		s.Record(ctx, "google", outcome(false, 10, 1))
		close(recorded)
	}()
	<-kv.entered // Record is inside Put

	cleared := make(chan struct{})
	go func() {
		s.Clear(ctx)
		close(cleared)
	}()
	select {
	case <-cleared:
		t.Fatal("Clear must wait for the pending write")
	case <-time.After(50 * time.Millisecond):
	}

	close(kv.gate)
	<-recorded
	<-cleared

	raw, _, _ := kv.Store.Get(ctx, repo.HistoryKey)
	if string(raw) != "{}" {
		t.Fatalf("last write should be the cleared state, got %s", raw)
	}
	reloaded := New(kv, zap.NewNop())
	reloaded.Load(ctx)
	if got := reloaded.Uptime("google"); got != 100 {
		t.Fatalf("cleared history came back from storage: uptime=%v", got)
	}
}

func TestPersistence_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	a := New(kv, zap.NewNop())
	a.Record(ctx, "google", outcome(true, 120, 1))
	a.Record(ctx, "google", outcome(false, 5000, 2))
	a.Record(ctx, "discord", outcome(true, 80, 3))

	b := New(kv, zap.NewNop())
	b.Load(ctx)

	want := a.Snapshot()
	got := b.Snapshot()
	if len(got) != len(want) {
		t.Fatalf("want %d targets, got %d", len(want), len(got))
	}
	for k, w := range want {
		g := got[k]
		if g.Uptime != w.Uptime || g.Downtime != w.Downtime || len(g.Checks) != len(w.Checks) {
			t.Fatalf("%s: want %+v got %+v", k, w, g)
		}
		for i := range w.Checks {
			if g.Checks[i] != w.Checks[i] {
				t.Fatalf("%s check %d: want %+v got %+v", k, i, w.Checks[i], g.Checks[i])
			}
		}
	}
}

func TestLoad_RepairsMalformedTargetsOnly(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	doc := `{
		"good":      {"checks":[{"success":true,"responseTime":10,"timestamp":1},{"success":false,"responseTime":20,"timestamp":2}],"uptime":12,"downtime":88},
		"nochecks":  {"uptime":50},
		"notarray":  {"checks":"oops"},
		"nullrec":   null,
		"badcheck":  {"checks":[{"success":"yes"}]},
		"scalar":    42
	}`
	_ = kv.Put(ctx, repo.HistoryKey, []byte(doc))

	s := New(kv, zap.NewNop())
	s.Load(ctx)

	good := s.History("good")
	if len(good.Checks) != 2 || good.Uptime != 50 || good.Downtime != 50 {
		t.Fatalf("good record should be kept and recomputed, got %+v", good)
	}
	for _, k := range []string{"nochecks", "notarray", "nullrec", "badcheck", "scalar"} {
		rec := s.History(k)
		if len(rec.Checks) != 0 || rec.Uptime != 100 || rec.Downtime != 0 {
			t.Fatalf("%s should reset to default, got %+v", k, rec)
		}
	}
	if n := len(s.Snapshot()); n != 6 {
		t.Fatalf("all targets should survive load, got %d", n)
	}
}

func TestLoad_TrimsOversizeRing(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	checks := make([]domain.ProbeOutcome, 0, 120)
	for i := 0; i < 120; i++ {
		checks = append(checks, outcome(true, 1, int64(i)))
	}
	raw, _ := json.Marshal(map[string]domain.HistoryRecord{"big": {Checks: checks}})
	_ = kv.Put(ctx, repo.HistoryKey, raw)

	s := New(kv, zap.NewNop())
	s.Load(ctx)
	rec := s.History("big")
	if len(rec.Checks) != DefaultLimit || rec.Checks[0].TimestampMS != 20 {
		t.Fatalf("want newest %d entries, got %d starting at %d", DefaultLimit, len(rec.Checks), rec.Checks[0].TimestampMS)
	}
}

func TestLoad_CorruptDocumentAndFirstRun(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()

	s := New(kv, zap.NewNop())
	s.Load(ctx) // first run: nothing stored
	if len(s.Snapshot()) != 0 {
		t.Fatal("first run should start empty")
	}

	_ = kv.Put(ctx, repo.HistoryKey, []byte(`not json`))
	s.Load(ctx)
	if len(s.Snapshot()) != 0 || s.Uptime("anything") != 100 {
		t.Fatal("corrupt document should fall back to empty state")
	}
}

func TestPersistenceFailure_IsNotFatal(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{}
	s := New(kv, zap.NewNop())
	s.Load(ctx)

	rec := s.Record(ctx, "google", outcome(true, 10, 1))
	if len(rec.Checks) != 1 || rec.Uptime != 100 {
		t.Fatalf("in-memory state should stay authoritative, got %+v", rec)
	}
	s.Clear(ctx)
	if kv.puts != 2 {
		t.Fatalf("expected both writes attempted, got %d", kv.puts)
	}
}

func TestHistory_ReturnsCopy(t *testing.T) {
	s := New(memory.New(), zap.NewNop())
	s.Record(context.Background(), "x", outcome(true, 1, 1))
	rec := s.History("x")
	rec.Checks[0].Success = false
	if !s.History("x").Checks[0].Success {
		t.Fatal("History must not expose internal state")
	}
	if rt := s.ResponseTimes("x"); len(rt) != 1 || rt[0] != 1 {
		t.Fatalf("unexpected response times %v", rt)
	}
}
