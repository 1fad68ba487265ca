package httpapi

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimeboard/internal/domain"
	"github.com/hamed0406/uptimeboard/internal/export"
	"github.com/hamed0406/uptimeboard/internal/monitor"
)

func (s *Server) handleListTargets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"targets": s.Monitor.Targets()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"services": monitor.EvaluateAll(s.Monitor.Latest()),
	})
}

func (s *Server) handleCheckAll(w http.ResponseWriter, r *http.Request) {
	snaps := s.Monitor.CheckAllOrdered(r.Context())
	if r.Context().Err() != nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": monitor.EvaluateAll(snaps)})
}

// lookup resolves the {key} route parameter, writing a 404 when the key is
// not registered.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (domain.Target, bool) {
	key := chi.URLParam(r, "key")
	for _, t := range s.Monitor.Targets() {
		if t.Key == key {
			return t, true
		}
	}
	writeError(w, http.StatusNotFound, "target not found")
	return domain.Target{}, false
}

func (s *Server) handleCheckTarget(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	snap := s.Monitor.CheckTarget(r.Context(), t.Key)
	s.Logger.Debug("api_check",
		zap.String("target", t.Key),
		zap.String("status", string(snap.State)),
		zap.Int64("response_ms", snap.ResponseTimeMS),
	)
	writeJSON(w, http.StatusOK, monitor.Evaluate(snap))
}

func (s *Server) handleUptime(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service": t.Key,
		"uptime":  s.Monitor.Uptime(t.Key),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service": t.Key,
		"history": s.Monitor.History(t.Key),
	})
}

func (s *Server) handleSelf(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Self.Status())
}

func (s *Server) handleSelfCheck(w http.ResponseWriter, r *http.Request) {
	s.Self.Check(r.Context())
	writeJSON(w, http.StatusOK, s.Self.Status())
}

func (s *Server) handleSelfLatency(w http.ResponseWriter, r *http.Request) {
	report, err := s.Self.MeasureLatency(r.Context())
	if err != nil {
		s.Logger.Warn("latency_measure_failed", zap.Error(err))
		if report.Samples == 0 {
			writeError(w, http.StatusServiceUnavailable, "latency measurement failed")
			return
		}
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	now := s.Now()
	doc := export.Build(now, s.Monitor.Latest())

	var buf bytes.Buffer
	if err := export.Write(&buf, doc); err != nil {
		s.Logger.Error("export_encode_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(now)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	s.Monitor.ClearHistory(r.Context())
	s.Logger.Info("history_cleared", zap.String("remote", r.RemoteAddr))
	w.WriteHeader(http.StatusNoContent)
}
