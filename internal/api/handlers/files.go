package handlers

import (
	"net/http"

	"github.com/podcast-studio/backend/internal/storage"
)

// FilesHandler browses the local data directory, where staged recordings and
// exported documents live.
type FilesHandler struct {
	basePath string
}

func NewFilesHandler(basePath string) *FilesHandler {
	return &FilesHandler{basePath: basePath}
}

func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := storage.ListDirectory(h.basePath, r.URL.Query().Get("path"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	jsonResponse(w, entries, http.StatusOK)
}

func (h *FilesHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		jsonError(w, "query parameter q is required", http.StatusBadRequest)
		return
	}
	entries, err := storage.Search(h.basePath, query, 100)
	if err != nil {
		jsonError(w, "search failed", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, entries, http.StatusOK)
}
