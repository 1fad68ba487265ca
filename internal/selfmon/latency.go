package selfmon

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimeboard/internal/timing"
)

const (
	LatencySamples = 3
	LatencySettle  = 100 * time.Millisecond
)

// LatencyReport is the averaged connection latency to the hosting service.
type LatencyReport struct {
	LatencyMS  int64     `json:"latency"`
	Samples    int       `json:"samples"`
	MeasuredAt time.Time `json:"measuredAt"`
}

// MeasureLatency takes LatencySamples HEAD samples with a settle delay
// after each and averages the successful ones. Profiled durations are used
// when available, wall clock otherwise. The previous report is kept when
// every sample fails.
func (m *Monitor) MeasureLatency(ctx context.Context) (LatencyReport, error) {
	var sum int64
	n := 0
	batch := uuid.NewString()

	for i := 0; i < LatencySamples; i++ {
		url := fmt.Sprintf("%s?latency-check=%s-%d", m.cfg.URL, batch, i)
		elapsed, err := m.head(ctx, url)
		if err == nil {
			if bd := timing.Profile(m.timing, url); bd != nil {
				elapsed = bd.Total
			}
			sum += elapsed
			n++
		} else {
			m.log.Debug("latency_sample_failed", zap.Int("sample", i), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return m.lastLatency(), ctx.Err()
		case <-m.clock.After(LatencySettle):
		}
	}

	if n == 0 {
		return m.lastLatency(), fmt.Errorf("latency: all %d samples failed", LatencySamples)
	}
	report := LatencyReport{
		LatencyMS:  (sum + int64(n)/2) / int64(n),
		Samples:    n,
		MeasuredAt: m.clock.Now().UTC(),
	}
	m.mu.Lock()
	m.latency = &report
	m.mu.Unlock()
	m.log.Info("latency_measured", zap.Int64("latency_ms", report.LatencyMS), zap.Int("samples", n))
	return report, nil
}

func (m *Monitor) lastLatency() LatencyReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latency == nil {
		return LatencyReport{}
	}
	return *m.latency
}
