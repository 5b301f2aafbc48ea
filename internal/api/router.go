package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/podcast-studio/backend/internal/api/handlers"
	"github.com/podcast-studio/backend/internal/api/middleware"
	"github.com/podcast-studio/backend/internal/auth"
	"github.com/podcast-studio/backend/internal/config"
	"github.com/podcast-studio/backend/internal/db"
	"github.com/podcast-studio/backend/internal/drive"
	"github.com/podcast-studio/backend/internal/job"
	"github.com/podcast-studio/backend/internal/library"
)

// maxJSONBody caps JSON request bodies. Recording uploads bypass this via
// their own multipart limit.
const maxJSONBody = 10 << 20

func NewRouter(database *db.Database, jwtService *auth.JWTService, cfg *config.Config, jobQueue *job.JobQueue, store *library.Store, driveManager *drive.Manager) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(middleware.CORSHandler(cfg.CORSOrigins)))

	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Handlers
	authHandler := handlers.NewAuthHandler(database, jwtService)
	seriesHandler := handlers.NewSeriesHandler(database)
	episodesHandler := handlers.NewEpisodesHandler(database, jobQueue)
	guestsHandler := handlers.NewGuestsHandler(database)
	recordingsHandler := handlers.NewRecordingsHandler(store, jobQueue)
	driveHandler := handlers.NewDriveHandler(driveManager)
	jobsHandler := handlers.NewJobsHandler(jobQueue)
	analyticsHandler := handlers.NewAnalyticsHandler(database)
	feedHandler := handlers.NewFeedHandler(database)
	settingsHandler := handlers.NewSettingsHandler(database)
	adminHandler := handlers.NewAdminHandler(loginLimiter, database)
	filesHandler := handlers.NewFilesHandler(cfg.DataPath)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
		r.With(loginLimiter.Handler, middleware.MaxBodySize(maxJSONBody)).Post("/auth/login", authHandler.Login)
		r.Get("/feed/{seriesID}", feedHandler.Get)
		r.With(middleware.MaxBodySize(maxJSONBody)).Post("/analytics/events", analyticsHandler.RecordEvent)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(jwtService))

			r.Get("/auth/me", authHandler.Me)

			r.Group(func(r chi.Router) {
				r.Use(middleware.MaxBodySize(maxJSONBody))

				// Series
				r.Get("/series", seriesHandler.List)
				r.Post("/series", seriesHandler.Create)
				r.Get("/series/{id}", seriesHandler.Get)
				r.Put("/series/{id}", seriesHandler.Update)
				r.Delete("/series/{id}", seriesHandler.Delete)
				r.Get("/series/{id}/episodes", seriesHandler.ListEpisodes)

				// Episodes
				r.Get("/episodes", episodesHandler.List)
				r.Post("/episodes", episodesHandler.Create)
				r.Get("/episodes/{id}", episodesHandler.Get)
				r.Put("/episodes/{id}", episodesHandler.Update)
				r.Delete("/episodes/{id}", episodesHandler.Delete)
				r.Put("/episodes/{id}/status", episodesHandler.UpdateStatus)
				r.Put("/episodes/{id}/content", episodesHandler.UpdateContent)
				r.Post("/episodes/{id}/transcribe", episodesHandler.Transcribe)
				r.Post("/episodes/{id}/production-kit", episodesHandler.ProductionKit)
				r.Post("/episodes/{id}/sync", episodesHandler.Sync)
				r.Get("/episodes/{id}/guests", episodesHandler.Guests)
				r.Post("/episodes/{id}/guests", episodesHandler.LinkGuest)
				r.Delete("/episodes/{id}/guests/{guestID}", episodesHandler.UnlinkGuest)
				r.Get("/episodes/{id}/events", analyticsHandler.Events)

				// Guests
				r.Get("/guests", guestsHandler.List)
				r.Post("/guests", guestsHandler.Create)
				r.Get("/guests/{id}", guestsHandler.Get)
				r.Put("/guests/{id}", guestsHandler.Update)
				r.Delete("/guests/{id}", guestsHandler.Delete)

				// Drive
				r.Get("/drive/status", driveHandler.Status)
				r.Post("/drive/connect", driveHandler.Connect)
				r.Post("/drive/disconnect", driveHandler.Disconnect)
				r.Post("/drive/setup", driveHandler.Setup)
				r.Get("/drive/files", driveHandler.Files)

				// Jobs
				r.Get("/jobs", jobsHandler.List)
				r.Get("/jobs/{id}", jobsHandler.Get)
				r.Delete("/jobs/{id}", jobsHandler.Cancel)
				r.Post("/jobs/{id}/retry", jobsHandler.Retry)

				// Analytics
				r.Get("/analytics/summary", analyticsHandler.Summary)
				r.Get("/analytics/export.csv", analyticsHandler.ExportCSV)

				// Settings (admin only, keys can hold API secrets)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole("admin"))
					r.Get("/settings", settingsHandler.GetSettings)
					r.Put("/settings", settingsHandler.UpdateSettings)
				})

				// Local files
				r.Get("/files", filesHandler.List)
				r.Get("/files/search", filesHandler.Search)
			})

			// Recordings (multipart upload carries its own limit)
			r.Post("/recordings", recordingsHandler.Upload)
			r.Get("/recordings", recordingsHandler.List)
			r.Get("/recordings/stats", recordingsHandler.Stats)
			r.Get("/recordings/export", recordingsHandler.Export)
			r.Get("/recordings/{id}", recordingsHandler.Get)
			r.Get("/recordings/{id}/audio", recordingsHandler.Audio)
			r.Delete("/recordings/{id}", recordingsHandler.Delete)
			r.Post("/recordings/{id}/sync", recordingsHandler.Sync)

			// Admin
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("admin"))
				r.Get("/admin/rate-limit", adminHandler.RateLimitStatus)
				r.Post("/admin/rate-limit/clear", adminHandler.RateLimitClear)
				r.Post("/admin/reset", adminHandler.ResetDatabase)
			})
		})
	})

	return r
}
