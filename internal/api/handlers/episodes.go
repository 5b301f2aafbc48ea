package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/podcast-studio/backend/internal/db"
	"github.com/podcast-studio/backend/internal/db/models"
	"github.com/podcast-studio/backend/internal/job"
)

type EpisodesHandler struct {
	db    *db.Database
	queue *job.JobQueue
}

func NewEpisodesHandler(db *db.Database, queue *job.JobQueue) *EpisodesHandler {
	return &EpisodesHandler{db: db, queue: queue}
}

type episodeRequest struct {
	SeriesID      int64    `json:"series_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	EpisodeNumber int      `json:"episode_number"`
	SeasonNumber  int      `json:"season_number"`
	Tags          []string `json:"tags"`
	Duration      float64  `json:"duration_seconds"`
	SizeBytes     int64    `json:"size_bytes"`
	SampleRate    int      `json:"sample_rate"`
}

func (h *EpisodesHandler) List(w http.ResponseWriter, r *http.Request) {
	var seriesID int64
	if v := r.URL.Query().Get("series_id"); v != "" {
		seriesID, _ = strconv.ParseInt(v, 10, 64)
	}
	episodes, err := h.db.ListEpisodes(seriesID, r.URL.Query().Get("status"))
	if err != nil {
		jsonError(w, "failed to list episodes", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, episodes, http.StatusOK)
}

func (h *EpisodesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}
	episode, err := h.db.GetEpisode(id)
	if err != nil {
		jsonError(w, "episode not found", http.StatusNotFound)
		return
	}
	jsonResponse(w, episode, http.StatusOK)
}

func (h *EpisodesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req episodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		jsonError(w, "title is required", http.StatusBadRequest)
		return
	}
	if _, err := h.db.GetSeries(req.SeriesID); err != nil {
		jsonError(w, "series not found", http.StatusBadRequest)
		return
	}

	episode := &models.Episode{
		SeriesID:      req.SeriesID,
		Title:         req.Title,
		Description:   req.Description,
		EpisodeNumber: req.EpisodeNumber,
		SeasonNumber:  req.SeasonNumber,
		Tags:          req.Tags,
		Duration:      req.Duration,
		SizeBytes:     req.SizeBytes,
		SampleRate:    req.SampleRate,
	}
	id, err := h.db.CreateEpisode(episode)
	if err != nil {
		jsonError(w, "failed to create episode", http.StatusInternalServerError)
		return
	}

	created, err := h.db.GetEpisode(id)
	if err != nil {
		jsonError(w, "failed to load created episode", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, created, http.StatusCreated)
}

func (h *EpisodesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}
	episode, err := h.db.GetEpisode(id)
	if err != nil {
		jsonError(w, "episode not found", http.StatusNotFound)
		return
	}

	var req episodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		jsonError(w, "title is required", http.StatusBadRequest)
		return
	}

	episode.Title = req.Title
	episode.Description = req.Description
	episode.EpisodeNumber = req.EpisodeNumber
	episode.SeasonNumber = req.SeasonNumber
	episode.Tags = req.Tags

	if err := h.db.UpdateEpisode(episode); err != nil {
		jsonError(w, "failed to update episode", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, episode, http.StatusOK)
}

type statusRequest struct {
	Status      string     `json:"status"`
	PublishDate *time.Time `json:"publish_date,omitempty"`
}

// UpdateStatus moves an episode through the pipeline (draft → scheduled → published).
func (h *EpisodesHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.db.GetEpisode(id); err != nil {
		jsonError(w, "episode not found", http.StatusNotFound)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.db.UpdateEpisodeStatus(id, req.Status, req.PublishDate); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	episode, err := h.db.GetEpisode(id)
	if err != nil {
		jsonError(w, "failed to load episode", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, episode, http.StatusOK)
}

type contentRequest struct {
	Transcription string `json:"transcription"`
	ShowNotes     string `json:"show_notes"`
	SocialKit     string `json:"social_kit"`
}

// UpdateContent saves manual edits to the production documents.
func (h *EpisodesHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.db.GetEpisode(id); err != nil {
		jsonError(w, "episode not found", http.StatusNotFound)
		return
	}

	var req contentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.db.UpdateEpisodeContent(id, req.Transcription, req.ShowNotes, req.SocialKit); err != nil {
		jsonError(w, "failed to save content", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, map[string]string{"status": "ok"}, http.StatusOK)
}

func (h *EpisodesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}
	if err := h.db.DeleteEpisode(id); err != nil {
		jsonError(w, "failed to delete episode", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transcribeRequest struct {
	RecordingID string `json:"recording_id"`
	Language    string `json:"language"`
}

// Transcribe enqueues a transcription job for the episode.
func (h *EpisodesHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.db.GetEpisode(id); err != nil {
		jsonError(w, "episode not found", http.StatusNotFound)
		return
	}

	var req transcribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.RecordingID == "" {
		jsonError(w, "recording_id is required", http.StatusBadRequest)
		return
	}

	j, err := h.queue.Enqueue(job.JobTranscribe, id, job.TranscribeParams{
		RecordingID: req.RecordingID,
		Language:    req.Language,
	})
	if err != nil {
		jsonError(w, "failed to enqueue job", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, j, http.StatusAccepted)
}

// ProductionKit enqueues show-notes/social-kit generation. Requires a
// transcript on the episode.
func (h *EpisodesHandler) ProductionKit(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}
	episode, err := h.db.GetEpisode(id)
	if err != nil {
		jsonError(w, "episode not found", http.StatusNotFound)
		return
	}
	if episode.Transcription == "" {
		jsonError(w, "episode has no transcript; run transcription first", http.StatusConflict)
		return
	}

	j, err := h.queue.Enqueue(job.JobProductionKit, id, job.ProductionKitParams{})
	if err != nil {
		jsonError(w, "failed to enqueue job", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, j, http.StatusAccepted)
}

type syncRequest struct {
	RecordingID string `json:"recording_id"`
}

// Sync enqueues a Drive upload of the episode's recording.
func (h *EpisodesHandler) Sync(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.db.GetEpisode(id); err != nil {
		jsonError(w, "episode not found", http.StatusNotFound)
		return
	}

	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.RecordingID == "" {
		jsonError(w, "recording_id is required", http.StatusBadRequest)
		return
	}

	j, err := h.queue.Enqueue(job.JobDriveSync, id, job.DriveSyncParams{RecordingID: req.RecordingID})
	if err != nil {
		jsonError(w, "failed to enqueue job", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, j, http.StatusAccepted)
}

type guestLinkRequest struct {
	GuestID int64 `json:"guest_id"`
}

// Guests lists the guests linked to an episode.
func (h *EpisodesHandler) Guests(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}
	guests, err := h.db.ListEpisodeGuests(id)
	if err != nil {
		jsonError(w, "failed to list guests", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, guests, http.StatusOK)
}

func (h *EpisodesHandler) LinkGuest(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.db.GetEpisode(id); err != nil {
		jsonError(w, "episode not found", http.StatusNotFound)
		return
	}

	var req guestLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GuestID <= 0 {
		jsonError(w, "guest_id is required", http.StatusBadRequest)
		return
	}
	if _, err := h.db.GetGuest(req.GuestID); err != nil {
		jsonError(w, "guest not found", http.StatusBadRequest)
		return
	}
	if err := h.db.LinkGuest(id, req.GuestID); err != nil {
		jsonError(w, "failed to link guest", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EpisodesHandler) UnlinkGuest(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}
	guestID, ok := urlParamID(w, r, "guestID")
	if !ok {
		return
	}
	if err := h.db.UnlinkGuest(id, guestID); err != nil {
		jsonError(w, "failed to unlink guest", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
