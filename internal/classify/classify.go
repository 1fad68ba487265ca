// Package classify maps a status snapshot onto a display health tier.
package classify

import (
	"math"
	"strings"

	"github.com/hamed0406/uptimeboard/internal/domain"
)

type Tier string

const (
	Healthy  Tier = "healthy"
	Degraded Tier = "degraded"
	Critical Tier = "critical"
	Unknown  Tier = "unknown"
)

const (
	SlowResponseMS    = 1000
	FastResponseMS    = 500
	HealthyUptime     = 99.0
	MostlyUpUptime    = 95.0
	DegradedUptimeMin = 90.0
)

// Classify is total and deterministic; the first matching rule wins.
func Classify(s domain.StatusSnapshot) Tier {
	state := domain.State(strings.ToLower(string(s.State)))
	uptime := s.Uptime
	rt := s.ResponseTimeMS

	switch {
	case state == domain.StateOffline || state == domain.StateCritical:
		return Critical
	case state == domain.StateDegraded:
		return Degraded
	case rt >= SlowResponseMS:
		return Degraded
	case math.IsNaN(uptime):
		return Unknown
	case uptime >= HealthyUptime && rt < FastResponseMS:
		return Healthy
	case uptime >= MostlyUpUptime && rt < SlowResponseMS:
		return Degraded
	case uptime >= DegradedUptimeMin:
		return Degraded
	case uptime < DegradedUptimeMin:
		return Critical
	}
	return Unknown
}

type display struct {
	class string
	label string
	color string
}

var displays = map[Tier]display{
	Healthy:  {"status-healthy", "Operational", "#28a745"},
	Degraded: {"status-degraded", "Degraded", "#ffc107"},
	Critical: {"status-critical", "Down", "#dc3545"},
	Unknown:  {"status-unknown", "Unknown", "#6c757d"},
}

func lookup(t Tier) display {
	if d, ok := displays[t]; ok {
		return d
	}
	return displays[Unknown]
}

// Class returns the CSS class used for the tier's status dot.
func Class(t Tier) string { return lookup(t).class }

// Label returns the human readable status text.
func Label(t Tier) string { return lookup(t).label }

// Color returns the hex display color.
func Color(t Tier) string { return lookup(t).color }
