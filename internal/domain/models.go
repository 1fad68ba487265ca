package domain

import "time"

// SelfKey is the key of the hosting service in the default registry.
const SelfKey = "self"

// State is the coarse reachability state produced by a single check.
type State string

const (
	StateOnline   State = "online"
	StateOffline  State = "offline"
	StateDegraded State = "degraded"
	StateUnknown  State = "unknown"
	// StateCritical is accepted from callers; checks never produce it.
	StateCritical State = "critical"
)

type Target struct {
	Key      string `json:"key" yaml:"key"`
	URL      string `json:"url" yaml:"url"` // empty means the hosting service itself
	Name     string `json:"name" yaml:"name"`
	Category string `json:"category" yaml:"category"`
}

// IsSelf reports whether the target points back at the hosting service.
func (t Target) IsSelf() bool { return t.URL == "" }

// ProbeOutcome is one immutable check result as stored in history.
type ProbeOutcome struct {
	Success        bool  `json:"success"`
	ResponseTimeMS int64 `json:"responseTime"`
	TimestampMS    int64 `json:"timestamp"`
}

func (o ProbeOutcome) Time() time.Time { return time.UnixMilli(o.TimestampMS) }

type HistoryRecord struct {
	Checks   []ProbeOutcome `json:"checks"`
	Uptime   float64        `json:"uptime"`
	Downtime float64        `json:"downtime"`
}

// EmptyHistory is the default record for a never-checked target.
func EmptyHistory() HistoryRecord {
	return HistoryRecord{Checks: []ProbeOutcome{}, Uptime: 100, Downtime: 0}
}

// Timing is the per-phase latency breakdown of one request, in milliseconds.
type Timing struct {
	DNS      int64 `json:"dns"`
	TCP      int64 `json:"tcp"`
	TLS      int64 `json:"ssl"`
	TTFB     int64 `json:"ttfb"`
	Download int64 `json:"download"`
	Total    int64 `json:"total"`
}

// StatusSnapshot is derived per check and never persisted.
type StatusSnapshot struct {
	Target              string    `json:"service"`
	Name                string    `json:"name,omitempty"`
	Category            string    `json:"category,omitempty"`
	State               State     `json:"status"`
	ResponseTimeMS      int64     `json:"responseTime"`
	Uptime              float64   `json:"uptime"`
	RecentResponseTimes []int64   `json:"recentResponseTimes,omitempty"`
	Timing              *Timing   `json:"timing,omitempty"`
	Timestamp           time.Time `json:"timestamp"`
	Error               string    `json:"error,omitempty"`
}

type SelfChecks struct {
	Successful int64 `json:"successful"`
	Failed     int64 `json:"failed"`
	Total      int64 `json:"total"`
}

// SelfCheck is the detailed outcome of the most recent self check.
type SelfCheck struct {
	Status         State     `json:"status"`
	ResponseTimeMS int64     `json:"responseTime,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	Success        bool      `json:"success"`
	Error          string    `json:"error,omitempty"`
	Timing         *Timing   `json:"timing,omitempty"`
}

type SelfRecord struct {
	Checks    SelfChecks `json:"checks"`
	LastCheck *SelfCheck `json:"lastCheck"`
}
