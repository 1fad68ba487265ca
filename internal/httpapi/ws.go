package httpapi

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimeboard/internal/domain"
	"github.com/hamed0406/uptimeboard/internal/monitor"
)

const wsWriteTimeout = 5 * time.Second

var statusUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		host := strings.ToLower(strings.TrimSpace(r.Host))
		originHost := strings.ToLower(strings.TrimSpace(u.Host))
		return host == originHost
	},
}

type statusFrame struct {
	GeneratedAt time.Time            `json:"generated_at"`
	Services    []monitor.Evaluation `json:"services"`
}

// handleWS pushes the current board on connect and again after every
// completed round.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := statusUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Debug("ws_upgrade_failed", zap.Error(err))
		return
	}
	defer conn.Close()

	rounds, unsubscribe := s.Monitor.Subscribe()
	defer unsubscribe()

	if err := s.writeFrame(conn, s.Monitor.Latest()); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snaps, ok := <-rounds:
			if !ok {
				return
			}
			if err := s.writeFrame(conn, snaps); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (s *Server) writeFrame(conn *websocket.Conn, snaps []domain.StatusSnapshot) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(statusFrame{
		GeneratedAt: s.Now().UTC(),
		Services:    monitor.EvaluateAll(snaps),
	})
}
