package handlers

import (
	"log"
	"net/http"

	"github.com/podcast-studio/backend/internal/api/middleware"
	"github.com/podcast-studio/backend/internal/db"
)

type AdminHandler struct {
	limiter *middleware.RateLimiter
	db      *db.Database
}

func NewAdminHandler(limiter *middleware.RateLimiter, database *db.Database) *AdminHandler {
	return &AdminHandler{limiter: limiter, db: database}
}

// RateLimitStatus reports the login limiter state per client IP.
func (h *AdminHandler) RateLimitStatus(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, h.limiter.Status(), http.StatusOK)
}

// RateLimitClear resets all rate limit buckets.
func (h *AdminHandler) RateLimitClear(w http.ResponseWriter, r *http.Request) {
	h.limiter.Clear()
	jsonResponse(w, map[string]string{"status": "cleared"}, http.StatusOK)
}

// ResetDatabase wipes all series, episodes, guests, analytics, settings and
// jobs. User accounts are kept.
func (h *AdminHandler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Reset(); err != nil {
		log.Printf("[admin] database reset failed: %v", err)
		jsonError(w, "failed to reset database", http.StatusInternalServerError)
		return
	}
	if claims := middleware.GetClaims(r); claims != nil {
		log.Printf("[admin] database reset by %s", claims.Username)
	}
	jsonResponse(w, map[string]string{"status": "reset"}, http.StatusOK)
}
