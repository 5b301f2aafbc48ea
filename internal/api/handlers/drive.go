package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/podcast-studio/backend/internal/drive"
)

type DriveHandler struct {
	drive *drive.Manager
}

func NewDriveHandler(manager *drive.Manager) *DriveHandler {
	return &DriveHandler{drive: manager}
}

func (h *DriveHandler) Status(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, h.drive.Status(), http.StatusOK)
}

// Connect accepts raw service account JSON as the request body and
// establishes the Drive connection.
func (h *DriveHandler) Connect(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		jsonError(w, "service account JSON is required", http.StatusBadRequest)
		return
	}

	if err := h.drive.Connect(r.Context(), body); err != nil {
		jsonError(w, "failed to connect: "+err.Error(), http.StatusBadRequest)
		return
	}
	jsonResponse(w, h.drive.Status(), http.StatusOK)
}

func (h *DriveHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	h.drive.Disconnect()
	jsonResponse(w, h.drive.Status(), http.StatusOK)
}

// Setup creates the studio folder tree on Drive and returns the layout.
func (h *DriveHandler) Setup(w http.ResponseWriter, r *http.Request) {
	layout, err := h.drive.Setup(r.Context())
	if err != nil {
		if errors.Is(err, drive.ErrNotConnected) {
			jsonError(w, err.Error(), http.StatusConflict)
			return
		}
		jsonError(w, "failed to set up folders: "+err.Error(), http.StatusBadGateway)
		return
	}
	jsonResponse(w, layout, http.StatusOK)
}

// Files lists the contents of one studio folder. The folder query parameter
// takes a studio folder name; it defaults to the audio folder.
func (h *DriveHandler) Files(w http.ResponseWriter, r *http.Request) {
	client, err := h.drive.Client()
	if err != nil {
		jsonError(w, err.Error(), http.StatusConflict)
		return
	}

	layout, err := h.drive.Layout(r.Context())
	if err != nil {
		jsonError(w, "failed to resolve folders: "+err.Error(), http.StatusBadGateway)
		return
	}

	folder := r.URL.Query().Get("folder")
	if folder == "" {
		folder = drive.FolderAudio
	}
	folderID, ok := layout[folder]
	if !ok {
		jsonError(w, "unknown folder: "+folder, http.StatusBadRequest)
		return
	}

	files, err := client.ListFiles(r.Context(), folderID)
	if err != nil {
		jsonError(w, "failed to list files: "+err.Error(), http.StatusBadGateway)
		return
	}
	jsonResponse(w, files, http.StatusOK)
}
