package models

import "time"

// Series is a podcast brand: one show with many episodes.
type Series struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Author      string    `json:"author"`
	Category    string    `json:"category"`
	Language    string    `json:"language"`
	Description string    `json:"description"`
	CoverURL    string    `json:"cover_url"`
	Website     string    `json:"website"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
}

// Episode statuses move through the production pipeline in order.
const (
	EpisodeDraft     = "draft"
	EpisodeScheduled = "scheduled"
	EpisodePublished = "published"
)

type Episode struct {
	ID            int64      `json:"id"`
	SeriesID      int64      `json:"series_id"`
	SeriesName    string     `json:"series_name,omitempty"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	EpisodeNumber int        `json:"episode_number"`
	SeasonNumber  int        `json:"season_number"`
	PublishDate   *time.Time `json:"publish_date,omitempty"`
	Status        string     `json:"status"`
	Transcription string     `json:"transcription"`
	ShowNotes     string     `json:"show_notes"`
	SocialKit     string     `json:"social_kit"`
	Tags          []string   `json:"tags"`

	// Recording metadata captured in the studio.
	Duration   float64 `json:"duration_seconds"`
	SizeBytes  int64   `json:"size_bytes"`
	SampleRate int     `json:"sample_rate"`

	// Drive file IDs, empty until a drive_sync job succeeds.
	AudioFileID      string `json:"audio_file_id"`
	NotesFileID      string `json:"notes_file_id"`
	TranscriptFileID string `json:"transcript_file_id"`

	ViewCount     int64     `json:"view_count"`
	DownloadCount int64     `json:"download_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// Synced reports whether the episode audio has been uploaded to Drive.
func (e *Episode) Synced() bool {
	return e.AudioFileID != ""
}

type Guest struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Bio         string    `json:"bio"`
	Website     string    `json:"website"`
	SocialLinks string    `json:"social_links"`
	PhotoURL    string    `json:"photo_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// AnalyticsEvent is a single view/download log row. The client IP is stored
// only as a SHA-256 hash.
type AnalyticsEvent struct {
	ID        int64     `json:"id"`
	EpisodeID int64     `json:"episode_id"`
	EventType string    `json:"event_type"` // view, download
	Timestamp time.Time `json:"timestamp"`
	IPHash    string    `json:"ip_hash"`
	UserAgent string    `json:"user_agent"`
}

// EpisodeStats is one row of the per-episode analytics report.
type EpisodeStats struct {
	EpisodeID  int64  `json:"episode_id"`
	Title      string `json:"title"`
	SeriesName string `json:"series_name"`
	Status     string `json:"status"`
	Views      int64  `json:"views"`
	Downloads  int64  `json:"downloads"`
}

// Totals are the dashboard counters.
type Totals struct {
	Series    int64 `json:"series"`
	Episodes  int64 `json:"episodes"`
	Views     int64 `json:"views"`
	Downloads int64 `json:"downloads"`
}
