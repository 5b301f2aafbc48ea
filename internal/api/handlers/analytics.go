package handlers

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/podcast-studio/backend/internal/db"
)

type AnalyticsHandler struct {
	db *db.Database
}

func NewAnalyticsHandler(db *db.Database) *AnalyticsHandler {
	return &AnalyticsHandler{db: db}
}

type eventRequest struct {
	EpisodeID int64  `json:"episode_id"`
	EventType string `json:"event_type"`
}

// RecordEvent logs a view or download. Client IPs are hashed before storage;
// raw addresses never hit the database.
func (h *AnalyticsHandler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.EpisodeID <= 0 {
		jsonError(w, "episode_id is required", http.StatusBadRequest)
		return
	}
	if _, err := h.db.GetEpisode(req.EpisodeID); err != nil {
		jsonError(w, "episode not found", http.StatusNotFound)
		return
	}

	if err := h.db.RecordEvent(req.EpisodeID, req.EventType, hashIP(r), r.UserAgent()); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	jsonResponse(w, map[string]string{"status": "recorded"}, http.StatusCreated)
}

// Summary returns the aggregate totals plus per-episode counters ordered by
// views.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	totals, err := h.db.Totals()
	if err != nil {
		jsonError(w, "failed to load totals", http.StatusInternalServerError)
		return
	}
	stats, err := h.db.EpisodeStats()
	if err != nil {
		jsonError(w, "failed to load episode stats", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, map[string]interface{}{
		"totals":   totals,
		"episodes": stats,
	}, http.StatusOK)
}

// Events lists recent raw events for one episode.
func (h *AnalyticsHandler) Events(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}
	events, err := h.db.EpisodeEvents(id, limit)
	if err != nil {
		jsonError(w, "failed to load events", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, events, http.StatusOK)
}

// ExportCSV streams the per-episode report as a CSV attachment.
func (h *AnalyticsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.EpisodeStats()
	if err != nil {
		jsonError(w, "failed to load episode stats", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("analytics_%s.csv", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	cw := csv.NewWriter(w)
	cw.Write([]string{"episode_id", "title", "series", "status", "views", "downloads"})
	for _, s := range stats {
		cw.Write([]string{
			strconv.FormatInt(s.EpisodeID, 10),
			s.Title,
			s.SeriesName,
			s.Status,
			strconv.FormatInt(s.Views, 10),
			strconv.FormatInt(s.Downloads, 10),
		})
	}
	cw.Flush()
}

func hashIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}
