package api

import (
	"net/http"
	"time"
)

// HealthStatus is the top-level health payload.
type HealthStatus struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Configured    bool   `json:"configured"`
	Paused        bool   `json:"paused"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:        "ok",
		Version:       Version,
		UptimeSeconds: int64(time.Since(s.startTime) / time.Second),
	}

	conf, err := s.svc.Config()
	if err != nil {
		status.Status = "degraded"
	} else if conf != nil {
		status.Configured = true
		status.Paused = conf.Paused
	}

	s.writeJSON(w, http.StatusOK, status)
}

// handleLiveness only proves the process is serving requests.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// handleReadiness proves the store is reachable.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if _, err := s.svc.Config(); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, ErrTypeInternal, "store unavailable", map[string]any{
			"error": err.Error(),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
