package classify

import (
	"math"
	"testing"

	"github.com/hamed0406/uptimeboard/internal/domain"
)

func snap(state domain.State, uptime float64, rt int64) domain.StatusSnapshot {
	return domain.StatusSnapshot{State: state, Uptime: uptime, ResponseTimeMS: rt}
}

func TestClassify_Precedence(t *testing.T) {
	cases := []struct {
		name string
		in   domain.StatusSnapshot
		want Tier
	}{
		{"offline wins", snap(domain.StateOffline, 100, 10), Critical},
		{"critical state", snap("critical", 100, 10), Critical},
		{"uppercase offline", snap("OFFLINE", 100, 10), Critical},
		{"degraded state beats metrics", snap(domain.StateDegraded, 100, 10), Degraded},
		{"slow response overrides healthy", snap(domain.StateOnline, 100, 1200), Degraded},
		{"exactly 1000ms", snap(domain.StateOnline, 100, 1000), Degraded},
		{"healthy", snap(domain.StateOnline, 99, 499), Healthy},
		{"healthy boundary latency", snap(domain.StateOnline, 100, 500), Degraded},
		{"mostly up", snap(domain.StateOnline, 96, 600), Degraded},
		{"ninety", snap(domain.StateOnline, 90, 100), Degraded},
		{"below ninety", snap(domain.StateOnline, 85, 100), Critical},
		{"zero uptime", snap(domain.StateOnline, 0, 100), Critical},
		{"unknown state, fine metrics", snap(domain.StateUnknown, 100, 100), Healthy},
		{"nan uptime", snap(domain.StateOnline, math.NaN(), 100), Unknown},
	}
	for _, c := range cases {
		if got := Classify(c.in); got != c.want {
			t.Fatalf("%s: Classify(%+v)=%q want %q", c.name, c.in, got, c.want)
		}
	}
}

func TestClassify_Deterministic(t *testing.T) {
	in := snap(domain.StateOnline, 97.5, 720)
	first := Classify(in)
	for i := 0; i < 50; i++ {
		if got := Classify(in); got != first {
			t.Fatalf("run %d: got %q want %q", i, got, first)
		}
	}
}

func TestLookupTables(t *testing.T) {
	if Class(Healthy) != "status-healthy" || Label(Healthy) != "Operational" || Color(Healthy) != "#28a745" {
		t.Fatalf("healthy entry wrong")
	}
	if Label(Critical) != "Down" || Color(Critical) != "#dc3545" {
		t.Fatalf("critical entry wrong")
	}
	bogus := Tier("sideways")
	if Class(bogus) != "status-unknown" || Label(bogus) != "Unknown" || Color(bogus) != "#6c757d" {
		t.Fatalf("unrecognized tier should fall back to unknown entry")
	}
}
