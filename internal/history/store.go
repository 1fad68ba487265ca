// Package history keeps the bounded per-target ring of probe outcomes and
// derives uptime/downtime from it.
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimeboard/internal/domain"
	"github.com/hamed0406/uptimeboard/internal/repo"
)

// DefaultLimit is the ring size per target.
const DefaultLimit = 100

type Option func(*Store)

func WithLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.limit = n
		}
	}
}

type Store struct {
	// persistMu orders durable writes the same as in-memory mutations.
	// Always taken before mu.
	persistMu sync.Mutex

	mu      sync.RWMutex
	records map[string]*domain.HistoryRecord
	limit   int
	kv      repo.KV
	log     *zap.Logger
}

func New(kv repo.KV, log *zap.Logger, opts ...Option) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		records: make(map[string]*domain.HistoryRecord),
		limit:   DefaultLimit,
		kv:      kv,
		log:     log,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Record appends the outcome to the target's ring, recomputes aggregates
// and persists the whole map. Persistence errors are logged, not returned.
func (s *Store) Record(ctx context.Context, key string, o domain.ProbeOutcome) domain.HistoryRecord {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	rec, ok := s.records[key]
	if !ok {
		empty := domain.EmptyHistory()
		rec = &empty
		s.records[key] = rec
	}
	rec.Checks = append(rec.Checks, o)
	if over := len(rec.Checks) - s.limit; over > 0 {
		rec.Checks = append([]domain.ProbeOutcome(nil), rec.Checks[over:]...)
	}
	recompute(rec)
	out := copyRecord(rec)
	payload, err := json.Marshal(s.records)
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("history_encode_error", zap.Error(err))
		return out
	}
	s.persist(ctx, payload)
	return out
}

// Uptime is optimistic: a target with no history reports 100.
func (s *Store) Uptime(key string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	if !ok || len(rec.Checks) == 0 {
		return 100
	}
	return rec.Uptime
}

// History returns a copy of the record, or the empty default.
func (s *Store) History(key string) domain.HistoryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	if !ok {
		return domain.EmptyHistory()
	}
	return copyRecord(rec)
}

// ResponseTimes returns the response times of the recorded checks, oldest first.
func (s *Store) ResponseTimes(key string) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	if !ok {
		return nil
	}
	out := make([]int64, 0, len(rec.Checks))
	for _, c := range rec.Checks {
		out = append(out, c.ResponseTimeMS)
	}
	return out
}

// Snapshot returns a deep copy of every record.
func (s *Store) Snapshot() map[string]domain.HistoryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.HistoryRecord, len(s.records))
	for k, rec := range s.records {
		out[k] = copyRecord(rec)
	}
	return out
}

// Load replaces in-memory state with the persisted map, repairing any
// malformed target entry instead of failing the whole load.
func (s *Store) Load(ctx context.Context) {
	raw, ok, err := s.kv.Get(ctx, repo.HistoryKey)
	if err != nil {
		s.log.Warn("history_load_error", zap.Error(err))
		return
	}
	records := make(map[string]*domain.HistoryRecord)
	if ok {
		records = s.decode(raw)
	}
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	s.log.Info("history_loaded", zap.Int("targets", len(records)))
}

// Clear wipes all history and persists the empty state.
func (s *Store) Clear(ctx context.Context) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	s.records = make(map[string]*domain.HistoryRecord)
	s.mu.Unlock()
	s.persist(ctx, []byte("{}"))
	s.log.Info("history_cleared")
}

func (s *Store) persist(ctx context.Context, payload []byte) {
	if err := s.kv.Put(ctx, repo.HistoryKey, payload); err != nil {
		s.log.Warn("history_persist_error", zap.Error(err))
	}
}

type storedRecord struct {
	Checks json.RawMessage `json:"checks"`
}

func (s *Store) decode(raw []byte) map[string]*domain.HistoryRecord {
	out := make(map[string]*domain.HistoryRecord)
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.log.Warn("history_corrupt", zap.Error(err))
		return out
	}
	for key, entry := range doc {
		rec, ok := s.decodeRecord(entry)
		if !ok {
			s.log.Warn("history_target_reset", zap.String("target", key))
			empty := domain.EmptyHistory()
			rec = &empty
		}
		out[key] = rec
	}
	return out
}

func (s *Store) decodeRecord(entry json.RawMessage) (*domain.HistoryRecord, bool) {
	trimmed := bytes.TrimSpace(entry)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var sr storedRecord
	if err := json.Unmarshal(trimmed, &sr); err != nil {
		return nil, false
	}
	checksRaw := bytes.TrimSpace(sr.Checks)
	if len(checksRaw) == 0 || checksRaw[0] != '[' {
		return nil, false
	}
	var checks []domain.ProbeOutcome
	if err := json.Unmarshal(checksRaw, &checks); err != nil {
		return nil, false
	}
	if over := len(checks) - s.limit; over > 0 {
		checks = checks[over:]
	}
	rec := &domain.HistoryRecord{Checks: append([]domain.ProbeOutcome{}, checks...)}
	recompute(rec)
	return rec, true
}

func recompute(rec *domain.HistoryRecord) {
	if len(rec.Checks) == 0 {
		rec.Uptime = 100
		rec.Downtime = 0
		return
	}
	successes := 0
	for _, c := range rec.Checks {
		if c.Success {
			successes++
		}
	}
	uptime := round2(float64(successes) / float64(len(rec.Checks)) * 100)
	rec.Uptime = math.Max(0, math.Min(100, uptime))
	rec.Downtime = round2(100 - rec.Uptime)
}

func copyRecord(rec *domain.HistoryRecord) domain.HistoryRecord {
	out := *rec
	out.Checks = append([]domain.ProbeOutcome{}, rec.Checks...)
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
