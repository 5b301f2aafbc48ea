package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/podcast-studio/backend/internal/db"
	"github.com/podcast-studio/backend/internal/db/models"
)

type SeriesHandler struct {
	db *db.Database
}

func NewSeriesHandler(db *db.Database) *SeriesHandler {
	return &SeriesHandler{db: db}
}

type seriesRequest struct {
	Name        string `json:"name"`
	Author      string `json:"author"`
	Category    string `json:"category"`
	Language    string `json:"language"`
	Description string `json:"description"`
	CoverURL    string `json:"cover_url"`
	Website     string `json:"website"`
	Email       string `json:"email"`
}

func (h *SeriesHandler) List(w http.ResponseWriter, r *http.Request) {
	series, err := h.db.ListSeries()
	if err != nil {
		jsonError(w, "failed to list series", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, series, http.StatusOK)
}

func (h *SeriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}
	series, err := h.db.GetSeries(id)
	if err != nil {
		jsonError(w, "series not found", http.StatusNotFound)
		return
	}
	jsonResponse(w, series, http.StatusOK)
}

func (h *SeriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req seriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Author == "" {
		jsonError(w, "name and author are required", http.StatusBadRequest)
		return
	}

	series := &models.Series{
		Name:        req.Name,
		Author:      req.Author,
		Category:    req.Category,
		Language:    req.Language,
		Description: req.Description,
		CoverURL:    req.CoverURL,
		Website:     req.Website,
		Email:       req.Email,
	}
	id, err := h.db.CreateSeries(series)
	if err != nil {
		jsonError(w, "failed to create series", http.StatusInternalServerError)
		return
	}

	created, err := h.db.GetSeries(id)
	if err != nil {
		jsonError(w, "failed to load created series", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, created, http.StatusCreated)
}

func (h *SeriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}
	series, err := h.db.GetSeries(id)
	if err != nil {
		jsonError(w, "series not found", http.StatusNotFound)
		return
	}

	var req seriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Author == "" {
		jsonError(w, "name and author are required", http.StatusBadRequest)
		return
	}

	series.Name = req.Name
	series.Author = req.Author
	series.Category = req.Category
	series.Language = req.Language
	series.Description = req.Description
	series.CoverURL = req.CoverURL
	series.Website = req.Website
	series.Email = req.Email

	if err := h.db.UpdateSeries(series); err != nil {
		jsonError(w, "failed to update series", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, series, http.StatusOK)
}

func (h *SeriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}
	if err := h.db.DeleteSeries(id); err != nil {
		jsonError(w, "failed to delete series", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEpisodes returns a series' episodes, optionally filtered by status.
func (h *SeriesHandler) ListEpisodes(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.db.GetSeries(id); err != nil {
		jsonError(w, "series not found", http.StatusNotFound)
		return
	}
	episodes, err := h.db.ListEpisodes(id, r.URL.Query().Get("status"))
	if err != nil {
		jsonError(w, "failed to list episodes", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, episodes, http.StatusOK)
}
