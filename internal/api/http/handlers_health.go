package apihttp

import (
	"net/http"
	"strings"
	"time"
)

const recentFailureWindow = 3 * time.Minute

type playerHealthResponse struct {
	Status      string     `json:"status"`
	CheckedAt   time.Time  `json:"checkedAt"`
	Connected   bool       `json:"connected"`
	SocketPath  string     `json:"socketPath,omitempty"`
	Spawns      int64      `json:"spawns"`
	LastSpawnAt *time.Time `json:"lastSpawnAt,omitempty"`
	LastError   string     `json:"lastError,omitempty"`
	LastErrorAt *time.Time `json:"lastErrorAt,omitempty"`
	Issues      []string   `json:"issues,omitempty"`
}

// BuildPlayerHealth reports the control channel state. It never connects to
// or spawns the player.
func (s *Server) BuildPlayerHealth() playerHealthResponse {
	resp := playerHealthResponse{
		Status:    "ok",
		CheckedAt: time.Now().UTC(),
	}

	setDegraded := func(issue string) {
		if strings.TrimSpace(issue) == "" {
			return
		}
		resp.Status = "degraded"
		resp.Issues = append(resp.Issues, issue)
	}

	if s.health == nil {
		setDegraded("player manager is not configured")
		return resp
	}

	snap := s.health.Snapshot()
	resp.Connected = snap.Connected
	resp.SocketPath = snap.SocketPath
	resp.Spawns = snap.Spawns
	resp.LastSpawnAt = snap.LastSpawnAt
	resp.LastError = snap.LastError
	resp.LastErrorAt = snap.LastErrorAt

	if !snap.Connected && snap.LastErrorAt != nil && resp.CheckedAt.Sub(*snap.LastErrorAt) <= recentFailureWindow {
		setDegraded("recent player failure detected")
	}
	return resp
}

func (s *Server) handlePlayerHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.BuildPlayerHealth())
}
