package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/podcast-studio/backend/internal/db"
	"github.com/podcast-studio/backend/internal/db/models"
)

type GuestsHandler struct {
	db *db.Database
}

func NewGuestsHandler(db *db.Database) *GuestsHandler {
	return &GuestsHandler{db: db}
}

type guestRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Bio   string `json:"bio"`
}

func (h *GuestsHandler) List(w http.ResponseWriter, r *http.Request) {
	guests, err := h.db.ListGuests(r.URL.Query().Get("q"))
	if err != nil {
		jsonError(w, "failed to list guests", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, guests, http.StatusOK)
}

func (h *GuestsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}
	guest, err := h.db.GetGuest(id)
	if err != nil {
		jsonError(w, "guest not found", http.StatusNotFound)
		return
	}
	jsonResponse(w, guest, http.StatusOK)
}

func (h *GuestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req guestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		jsonError(w, "name is required", http.StatusBadRequest)
		return
	}

	guest := &models.Guest{Name: req.Name, Email: req.Email, Bio: req.Bio}
	id, err := h.db.CreateGuest(guest)
	if err != nil {
		jsonError(w, "failed to create guest", http.StatusInternalServerError)
		return
	}

	created, err := h.db.GetGuest(id)
	if err != nil {
		jsonError(w, "failed to load created guest", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, created, http.StatusCreated)
}

func (h *GuestsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}
	guest, err := h.db.GetGuest(id)
	if err != nil {
		jsonError(w, "guest not found", http.StatusNotFound)
		return
	}

	var req guestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		jsonError(w, "name is required", http.StatusBadRequest)
		return
	}

	guest.Name = req.Name
	guest.Email = req.Email
	guest.Bio = req.Bio
	if err := h.db.UpdateGuest(guest); err != nil {
		jsonError(w, "failed to update guest", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, guest, http.StatusOK)
}

func (h *GuestsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}
	if err := h.db.DeleteGuest(id); err != nil {
		jsonError(w, "failed to delete guest", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
