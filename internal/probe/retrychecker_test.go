package probe

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// fake prober you can control
type fakeProber struct {
	results []Result
	i       int
}

func (f *fakeProber) Probe(ctx context.Context, target string) Result {
	if f.i >= len(f.results) {
		return Result{Success: false, Kind: KindNetwork, Err: errors.New("no more")}
	}
	r := f.results[f.i]
	f.i++
	return r
}

func TestRetryProber_SucceedsAfterRetry(t *testing.T) {
	f := &fakeProber{
		results: []Result{
			{Success: false, Kind: KindNetwork, Err: errors.New("first fail")},
			{Success: true, LatencyMS: 12},
		},
	}
	rp := &RetryProber{Inner: f, Attempts: 3, Backoff: 10 * time.Millisecond}
	out := rp.Probe(context.Background(), "https://example.com")
	if !out.Success {
		t.Fatalf("expected success after retry, got %+v", out)
	}
	if f.i != 2 {
		t.Fatalf("expected 2 attempts, got %d", f.i)
	}
}

func TestRetryProber_AllFailAnnotates(t *testing.T) {
	f := &fakeProber{
		results: []Result{
			{Success: false, Kind: KindTimeout, Err: errors.New("fail1")},
			{Success: false, Kind: KindTimeout, Err: errors.New("fail2")},
		},
	}
	rp := &RetryProber{Inner: f, Attempts: 2}
	out := rp.Probe(context.Background(), "https://example.com")
	if out.Success {
		t.Fatalf("expected failure, got success")
	}
	if !strings.Contains(out.Message(), "after 2 attempts") || !strings.Contains(out.Message(), "fail2") {
		t.Fatalf("expected annotated message, got %q", out.Message())
	}
	if out.Kind != KindTimeout {
		t.Fatalf("kind should be preserved, got %q", out.Kind)
	}
}

func TestRetryProber_DefaultsToSingleAttempt(t *testing.T) {
	f := &fakeProber{results: []Result{{Success: false, Kind: KindNetwork, Err: errors.New("down")}}}
	rp := &RetryProber{Inner: f}
	out := rp.Probe(context.Background(), "https://example.com")
	if out.Success || f.i != 1 {
		t.Fatalf("want one failed attempt, got %+v after %d", out, f.i)
	}
	if out.Message() != "down" {
		t.Fatalf("single attempt must not be annotated, got %q", out.Message())
	}
}
