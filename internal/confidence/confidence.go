// Package confidence scores how far an uptime figure can be trusted.
package confidence

import (
	"math"

	"github.com/hamed0406/uptimeboard/internal/domain"
)

// NeutralScore is returned when there is not enough data to judge consistency.
const NeutralScore = 50

func UptimeConfidence(successes, total int) int {
	if total <= 0 {
		return 0
	}
	return clamp(int(math.Round(float64(successes)/float64(total)*100)), 0, 100)
}

// ConsistencyConfidence derives a [50,100] score from the coefficient of
// variation of the samples.
func ConsistencyConfidence(samples []int64) int {
	if len(samples) < 2 {
		return NeutralScore
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s)
	}
	mean := sum / float64(len(samples))
	if mean <= 0 {
		return NeutralScore
	}
	var variance float64
	for _, s := range samples {
		d := float64(s) - mean
		variance += d * d
	}
	variance /= float64(len(samples))
	cv := math.Sqrt(variance) / mean * 100

	score := math.Max(NeutralScore, math.Min(100, 100-cv))
	return int(math.Round(score))
}

func OverallConfidence(s domain.StatusSnapshot) int {
	uptime := s.Uptime
	if math.IsNaN(uptime) {
		uptime = 0
	}
	uptimeScore := math.Round(uptime)
	consistency := float64(ConsistencyConfidence(s.RecentResponseTimes))
	return clamp(int(math.Round((uptimeScore+consistency)/2)), 0, 100)
}

func Level(score int) string {
	switch {
	case score >= 95:
		return "Very High"
	case score >= 85:
		return "High"
	case score >= 70:
		return "Medium"
	case score >= 50:
		return "Low"
	default:
		return "Very Low"
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
