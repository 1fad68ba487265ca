package selfmon

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimeboard/internal/domain"
	"github.com/hamed0406/uptimeboard/internal/repo"
)

type storedRecord struct {
	Checks    json.RawMessage `json:"checks"`
	LastCheck json.RawMessage `json:"lastCheck"`
}

// Load restores counters from storage. Counters that are not non-negative
// numbers (numeric strings are accepted) become 0, and the stored total is
// ignored in favour of successful+failed.
func (m *Monitor) Load(ctx context.Context) {
	var rec domain.SelfRecord
	if m.kv != nil {
		raw, ok, err := m.kv.Get(ctx, repo.SelfKey)
		switch {
		case err != nil:
			m.log.Warn("self_load_error", zap.Error(err))
		case ok:
			rec = m.decode(raw)
		}
	}
	if rec.Checks.Successful > math.MaxInt64-rec.Checks.Failed {
		rec.Checks = domain.SelfChecks{}
	}
	rec.Checks.Total = rec.Checks.Successful + rec.Checks.Failed

	m.mu.Lock()
	m.rec = rec
	m.mu.Unlock()
	m.log.Info("self_loaded",
		zap.Int64("successful", rec.Checks.Successful),
		zap.Int64("failed", rec.Checks.Failed),
	)
}

func (m *Monitor) decode(raw []byte) domain.SelfRecord {
	var out domain.SelfRecord
	var doc storedRecord
	if err := json.Unmarshal(raw, &doc); err != nil {
		m.log.Warn("self_corrupt", zap.Error(err))
		return out
	}

	var counters map[string]json.RawMessage
	if err := json.Unmarshal(doc.Checks, &counters); err == nil {
		out.Checks.Successful = coerceCount(counters["successful"])
		out.Checks.Failed = coerceCount(counters["failed"])
	}

	if lc := bytes.TrimSpace(doc.LastCheck); len(lc) > 0 && lc[0] == '{' {
		var last domain.SelfCheck
		if err := json.Unmarshal(lc, &last); err == nil {
			out.LastCheck = &last
		}
	}
	return out
}

func coerceCount(raw json.RawMessage) int64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	var f float64
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		f = v
	default:
		if err := json.Unmarshal(raw, &f); err != nil {
			return 0
		}
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f >= math.MaxInt64 {
		return 0
	}
	return int64(f)
}
