package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hamed0406/uptimeboard/internal/domain"
	"github.com/hamed0406/uptimeboard/internal/export"
	"github.com/hamed0406/uptimeboard/internal/selfmon"
)

func TestStatus_EvaluatesLatest(t *testing.T) {
	h := setupRouter(t, newFakeMonitor(), &fakeSelf{})
	rec := do(t, h, http.MethodGet, "/api/status", "pub_test")
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	var body struct {
		Services []struct {
			Service    string `json:"service"`
			Class      string `json:"class"`
			StatusText string `json:"statusText"`
			Confidence int    `json:"confidence"`
		} `json:"services"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Services) != 2 {
		t.Fatalf("want 2 services, got %d", len(body.Services))
	}
	if body.Services[0].Service != "self" || body.Services[0].StatusText != "Unknown" {
		t.Fatalf("self should be unknown: %+v", body.Services[0])
	}
	if body.Services[1].Service != "github" || body.Services[1].StatusText != "Operational" {
		t.Fatalf("github should be operational: %+v", body.Services[1])
	}
}

func TestCheckTarget_KnownAndUnknown(t *testing.T) {
	mon := newFakeMonitor()
	h := setupRouter(t, mon, &fakeSelf{})

	rec := do(t, h, http.MethodPost, "/api/targets/github/check", "pub_test")
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	var ev struct {
		Service string `json:"service"`
		Status  string `json:"status"`
		Class   string `json:"class"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Service != "github" || ev.Status != "degraded" || ev.Class != "status-degraded" {
		t.Fatalf("unexpected evaluation: %+v", ev)
	}

	rec = do(t, h, http.MethodPost, "/api/targets/nope/check", "pub_test")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown key: want 404, got %d", rec.Code)
	}
	if len(mon.checked) != 1 {
		t.Fatalf("unknown key must not be probed, checked=%v", mon.checked)
	}
}

func TestCheckAll_ChecksEveryTarget(t *testing.T) {
	mon := newFakeMonitor()
	h := setupRouter(t, mon, &fakeSelf{})
	rec := do(t, h, http.MethodPost, "/api/check", "pub_test")
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if strings.Join(mon.checked, ",") != "self,github" {
		t.Fatalf("checked in wrong order: %v", mon.checked)
	}
}

func TestUptimeAndHistory(t *testing.T) {
	h := setupRouter(t, newFakeMonitor(), &fakeSelf{})

	rec := do(t, h, http.MethodGet, "/api/targets/github/uptime", "pub_test")
	var up struct {
		Service string  `json:"service"`
		Uptime  float64 `json:"uptime"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &up); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if up.Service != "github" || up.Uptime != 100 {
		t.Fatalf("unexpected uptime: %+v", up)
	}

	rec = do(t, h, http.MethodGet, "/api/targets/github/history", "pub_test")
	var hist struct {
		History domain.HistoryRecord `json:"history"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(hist.History.Checks) != 1 || hist.History.Checks[0].ResponseTimeMS != 120 {
		t.Fatalf("unexpected history: %+v", hist.History)
	}

	if rec := do(t, h, http.MethodGet, "/api/targets/missing/history", "pub_test"); rec.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", rec.Code)
	}
}

func TestSelfEndpoints(t *testing.T) {
	self := &fakeSelf{latency: selfmon.LatencyReport{LatencyMS: 42, Samples: 3}}
	h := setupRouter(t, newFakeMonitor(), self)

	rec := do(t, h, http.MethodPost, "/api/self/check", "pub_test")
	var st selfmon.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if self.checks != 1 || st.Checks.Total != 1 {
		t.Fatalf("self check not run: checks=%d status=%+v", self.checks, st)
	}

	rec = do(t, h, http.MethodPost, "/api/self/latency", "pub_test")
	var lr selfmon.LatencyReport
	if err := json.Unmarshal(rec.Body.Bytes(), &lr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if lr.LatencyMS != 42 || lr.Samples != 3 {
		t.Fatalf("unexpected latency: %+v", lr)
	}
}

func TestSelfLatency_AllSamplesFailed(t *testing.T) {
	self := &fakeSelf{err: errors.New("latency: all 3 samples failed")}
	h := setupRouter(t, newFakeMonitor(), self)
	if rec := do(t, h, http.MethodPost, "/api/self/latency", "pub_test"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("want 503 without any prior report, got %d", rec.Code)
	}

	self.latency = selfmon.LatencyReport{LatencyMS: 30, Samples: 2}
	if rec := do(t, h, http.MethodPost, "/api/self/latency", "pub_test"); rec.Code != http.StatusOK {
		t.Fatalf("previous report should be served, got %d", rec.Code)
	}
}

func TestExport_DocumentAndFilename(t *testing.T) {
	h := setupRouter(t, newFakeMonitor(), &fakeSelf{})
	rec := do(t, h, http.MethodGet, "/api/export", "pub_test")
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "uptime-export-2024-03-09.json") {
		t.Fatalf("unexpected Content-Disposition %q", cd)
	}

	var doc export.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Timestamp != "2024-03-09T08:30:00.000Z" {
		t.Fatalf("unexpected timestamp %q", doc.Timestamp)
	}
	if len(doc.Services) != 2 || doc.Services[0].Status != "unknown" || doc.Services[1].StatusText != "Operational" {
		t.Fatalf("unexpected services: %+v", doc.Services)
	}
	if !strings.Contains(rec.Body.String(), "\n  \"services\"") {
		t.Fatal("export should be indented by two spaces")
	}
}

func TestWebSocket_PushesInitialAndRounds(t *testing.T) {
	mon := newFakeMonitor()
	ts := httptest.NewServer(setupRouter(t, mon, &fakeSelf{}))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws?api_key=pub_test"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer resp.Body.Close()
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var frame statusFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("initial frame: %v", err)
	}
	if len(frame.Services) != 2 {
		t.Fatalf("initial frame should carry the board, got %d services", len(frame.Services))
	}

	mon.subs <- []domain.StatusSnapshot{{Target: "github", State: domain.StateOffline, Uptime: 50}}
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("round frame: %v", err)
	}
	if len(frame.Services) != 1 || frame.Services[0].StatusText != "Down" {
		t.Fatalf("unexpected round frame: %+v", frame.Services)
	}
}
