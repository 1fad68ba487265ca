package monitor

import (
	"math"

	"github.com/hamed0406/uptimeboard/internal/classify"
	"github.com/hamed0406/uptimeboard/internal/confidence"
	"github.com/hamed0406/uptimeboard/internal/domain"
)

// Evaluation is the display view of a snapshot.
type Evaluation struct {
	domain.StatusSnapshot
	Tier            classify.Tier `json:"tier"`
	Class           string        `json:"class"`
	StatusText      string        `json:"statusText"`
	Color           string        `json:"color"`
	Confidence      int           `json:"confidence"`
	ConfidenceLevel string        `json:"confidenceLevel"`
}

// Evaluate classifies s and scores its confidence. An unknown state carries
// no uptime observation, so it is rated as if uptime were missing.
func Evaluate(s domain.StatusSnapshot) Evaluation {
	rated := s
	if s.State == domain.StateUnknown {
		rated.Uptime = math.NaN()
	}
	tier := classify.Classify(rated)
	score := confidence.OverallConfidence(rated)
	return Evaluation{
		StatusSnapshot:  s,
		Tier:            tier,
		Class:           classify.Class(tier),
		StatusText:      classify.Label(tier),
		Color:           classify.Color(tier),
		Confidence:      score,
		ConfidenceLevel: confidence.Level(score),
	}
}

func EvaluateAll(snaps []domain.StatusSnapshot) []Evaluation {
	out := make([]Evaluation, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, Evaluate(s))
	}
	return out
}
