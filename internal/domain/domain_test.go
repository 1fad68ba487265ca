package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestHistoryRecord_JSONShape(t *testing.T) {
	rec := HistoryRecord{
		Checks:   []ProbeOutcome{{Success: true, ResponseTimeMS: 120, TimestampMS: 1700000000000}},
		Uptime:   100,
		Downtime: 0,
	}
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"checks":[{"success":true,"responseTime":120,"timestamp":1700000000000}],"uptime":100,"downtime":0}`
	if string(b) != want {
		t.Fatalf("unexpected json:\nwant=%s\ngot =%s", want, b)
	}
}

func TestEmptyHistory_Defaults(t *testing.T) {
	rec := EmptyHistory()
	if rec.Uptime != 100 || rec.Downtime != 0 {
		t.Fatalf("want 100/0, got %v/%v", rec.Uptime, rec.Downtime)
	}
	if rec.Checks == nil || len(rec.Checks) != 0 {
		t.Fatalf("want empty non-nil checks, got %#v", rec.Checks)
	}
}

func TestTarget_IsSelf(t *testing.T) {
	if !(Target{Key: SelfKey}).IsSelf() {
		t.Fatal("target without URL should be self")
	}
	if (Target{Key: "google", URL: "https://www.google.com"}).IsSelf() {
		t.Fatal("target with URL should not be self")
	}
}

func TestProbeOutcome_Time(t *testing.T) {
	at := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)
	o := ProbeOutcome{TimestampMS: at.UnixMilli()}
	if !o.Time().Equal(at) {
		t.Fatalf("want %v, got %v", at, o.Time())
	}
}
