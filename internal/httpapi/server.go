package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimeboard/internal/domain"
	apimw "github.com/hamed0406/uptimeboard/internal/httpapi/middleware"
	"github.com/hamed0406/uptimeboard/internal/selfmon"
)

// Monitor is the part of monitor.Service the API serves.
type Monitor interface {
	Targets() []domain.Target
	Latest() []domain.StatusSnapshot
	CheckTarget(ctx context.Context, key string) domain.StatusSnapshot
	CheckAllOrdered(ctx context.Context) []domain.StatusSnapshot
	Uptime(key string) float64
	History(key string) domain.HistoryRecord
	ClearHistory(ctx context.Context)
	Subscribe() (<-chan []domain.StatusSnapshot, func())
}

// SelfMonitor is the part of selfmon.Monitor the API serves.
type SelfMonitor interface {
	Status() selfmon.Status
	Check(ctx context.Context) bool
	MeasureLatency(ctx context.Context) (selfmon.LatencyReport, error)
}

type Server struct {
	Logger  *zap.Logger
	Monitor Monitor
	Self    SelfMonitor
	Now     func() time.Time
}

func NewServer(l *zap.Logger, m Monitor, self SelfMonitor) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{Logger: l, Monitor: m, Self: self, Now: time.Now}
}

// Router builds the HTTP handler. Public routes take any configured key and
// share one rate limit; history reset needs an admin key. Empty origins
// allow every origin.
func (s *Server) Router(keys apimw.Keys, origins []string, publicRPM, publicBurst, adminRPM, adminBurst int) http.Handler {
	r := chi.NewRouter()
	if len(origins) == 0 {
		r.Use(cors.AllowAll().Handler)
	} else {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-API-Key"},
			ExposedHeaders: []string{"Content-Disposition"},
			MaxAge:         300,
		}))
	}

	// HEAD is what the self monitor sends.
	r.Get("/healthz", handleHealth)
	r.Head("/healthz", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(keys, publicRPM, publicBurst))
		r.Use(apimw.RequireAny(keys))

		r.Get("/api/targets", s.handleListTargets)
		r.Get("/api/status", s.handleStatus)
		r.Post("/api/check", s.handleCheckAll)
		r.Post("/api/targets/{key}/check", s.handleCheckTarget)
		r.Get("/api/targets/{key}/uptime", s.handleUptime)
		r.Get("/api/targets/{key}/history", s.handleHistory)
		r.Get("/api/self", s.handleSelf)
		r.Post("/api/self/check", s.handleSelfCheck)
		r.Post("/api/self/latency", s.handleSelfLatency)
		r.Get("/api/export", s.handleExport)
		r.Get("/api/ws", s.handleWS)
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(keys, adminRPM, adminBurst))
		r.Use(apimw.RequireAdmin(keys))

		r.Delete("/api/history", s.handleClearHistory)
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write([]byte("ok"))
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
