package server

import (
	"log/slog"
	"net/http"
	"strconv"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		jsonError(w, "Usage log is disabled", http.StatusNotFound)
		return
	}

	stats, err := s.store.GetStats()
	if err != nil {
		slog.Error("Failed to get stats", "error", err)
		jsonError(w, "Failed to get stats", http.StatusInternalServerError)
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	recent, err := s.store.RecentExplains(limit)
	if err != nil {
		slog.Error("Failed to get recent usage", "error", err)
	}

	jsonResponse(w, map[string]any{
		"stats":  stats,
		"recent": recent,
	})
}
