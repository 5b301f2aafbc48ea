package handlers

import (
	"net/http"

	"github.com/podcast-studio/backend/internal/db"
	"github.com/podcast-studio/backend/internal/db/models"
	"github.com/podcast-studio/backend/internal/feed"
)

type FeedHandler struct {
	db *db.Database
}

func NewFeedHandler(db *db.Database) *FeedHandler {
	return &FeedHandler{db: db}
}

// Get serves the RSS feed for a series. Only published episodes appear.
func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "seriesID")
	if !ok {
		return
	}
	series, err := h.db.GetSeries(id)
	if err != nil {
		jsonError(w, "series not found", http.StatusNotFound)
		return
	}
	episodes, err := h.db.ListEpisodes(id, models.EpisodePublished)
	if err != nil {
		jsonError(w, "failed to load episodes", http.StatusInternalServerError)
		return
	}

	baseURL := h.db.GetSetting("feed_base_url", "")
	xml, err := feed.Generate(series, episodes, baseURL)
	if err != nil {
		jsonError(w, "failed to generate feed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write(xml)
}
