package probe

import (
	"context"
	"time"

	"github.com/hamed0406/uptimeboard/internal/domain"
)

// DefaultTimeout bounds every reachability check.
const DefaultTimeout = 5000 * time.Millisecond

// ErrorKind classifies why a check did or did not reach its target.
type ErrorKind string

const (
	KindNone     ErrorKind = ""
	KindTimeout  ErrorKind = "timeout"
	KindNetwork  ErrorKind = "network"
	KindCanceled ErrorKind = "canceled"
	// KindAmbiguous errors carry no reliable signal and are reported as
	// reachable.
	KindAmbiguous ErrorKind = "ambiguous"
)

// Result is the unified result of a single probe.
//
// Fields:
//   - Success: the request settled without a timeout or network failure.
//   - LatencyMS: monotonic time from request start to settle.
//   - Err: set for failures and for ambiguous successes.
type Result struct {
	Success   bool
	LatencyMS int64
	Kind      ErrorKind
	Err       error
	StartedAt time.Time
}

func (r Result) Outcome() domain.ProbeOutcome {
	return domain.ProbeOutcome{
		Success:        r.Success,
		ResponseTimeMS: r.LatencyMS,
		TimestampMS:    r.StartedAt.Add(time.Duration(r.LatencyMS) * time.Millisecond).UnixMilli(),
	}
}

func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Prober performs a single reachability check for a given target URL.
type Prober interface {
	Probe(ctx context.Context, target string) Result
}
