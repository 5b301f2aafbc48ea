package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/podcast-studio/backend/internal/job"
	"github.com/podcast-studio/backend/internal/library"
)

// maxRecordingUpload caps a single WAV upload at 500MB.
const maxRecordingUpload = 500 << 20

type RecordingsHandler struct {
	library *library.Store
	queue   *job.JobQueue
}

func NewRecordingsHandler(store *library.Store, queue *job.JobQueue) *RecordingsHandler {
	return &RecordingsHandler{library: store, queue: queue}
}

// Upload ingests a recording as multipart form data. The "audio" part carries
// the WAV bytes; metadata fields ride alongside it.
func (h *RecordingsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRecordingUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form or upload too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		jsonError(w, "audio file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, "failed to read audio", http.StatusInternalServerError)
		return
	}
	if len(audio) == 0 {
		jsonError(w, "audio file is empty", http.StatusBadRequest)
		return
	}

	title := r.FormValue("title")
	if title == "" {
		title = strings.TrimSuffix(header.Filename, ".wav")
	}
	sampleRate := 44100
	if v := r.FormValue("sample_rate"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			sampleRate = parsed
		}
	}

	var tags []string
	if v := r.FormValue("tags"); v != "" {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	rec := &library.Recording{
		Title:         title,
		EpisodeNumber: r.FormValue("episode_number"),
		Season:        r.FormValue("season"),
		Description:   r.FormValue("description"),
		Notes:         r.FormValue("notes"),
		Tags:          tags,
		SampleRate:    sampleRate,
		RecordedAt:    time.Now(),
	}

	created, err := h.library.Add(rec, audio)
	if err != nil {
		jsonError(w, "failed to save recording", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, created, http.StatusCreated)
}

func (h *RecordingsHandler) List(w http.ResponseWriter, r *http.Request) {
	recordings := h.library.List(r.URL.Query().Get("filter"), r.URL.Query().Get("q"))
	jsonResponse(w, recordings, http.StatusOK)
}

func (h *RecordingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.library.Get(urlParam(r, "id"))
	if err != nil {
		jsonError(w, "recording not found", http.StatusNotFound)
		return
	}
	jsonResponse(w, rec, http.StatusOK)
}

// Audio streams the WAV bytes for download or playback.
func (h *RecordingsHandler) Audio(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	rec, err := h.library.Get(id)
	if err != nil {
		jsonError(w, "recording not found", http.StatusNotFound)
		return
	}
	audio, err := h.library.Audio(id)
	if err != nil {
		jsonError(w, "audio not available", http.StatusNotFound)
		return
	}

	filename := fmt.Sprintf("%s_%s.wav", sanitizeFilename(rec.Title), rec.RecordedAt.Format("20060102_150405"))
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(audio)
}

func (h *RecordingsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.library.Delete(urlParam(r, "id")); err != nil {
		jsonError(w, "recording not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Sync enqueues a Drive upload for a standalone recording (no episode row).
func (h *RecordingsHandler) Sync(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	if _, err := h.library.Get(id); err != nil {
		jsonError(w, "recording not found", http.StatusNotFound)
		return
	}

	j, err := h.queue.Enqueue(job.JobDriveSync, 0, job.DriveSyncParams{RecordingID: id})
	if err != nil {
		jsonError(w, "failed to enqueue job", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, j, http.StatusAccepted)
}

func (h *RecordingsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, h.library.Stats(), http.StatusOK)
}

// Export returns the full library metadata as a JSON attachment.
func (h *RecordingsHandler) Export(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("recordings_export_%s.json", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	jsonResponse(w, h.library.ExportMetadata(), http.StatusOK)
}

func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "recording"
	}
	return b.String()
}
