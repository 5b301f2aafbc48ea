package job

import (
	"context"
	"encoding/json"
	"time"
)

// JobType represents the kind of job
type JobType string

const (
	JobTranscribe    JobType = "transcribe"
	JobProductionKit JobType = "production_kit"
	JobDriveSync     JobType = "drive_sync"
)

// JobStatus represents the current state of a job
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// Job represents a queued production task.
type Job struct {
	ID          string          `json:"id"`
	Type        JobType         `json:"type"`
	Status      JobStatus       `json:"status"`
	EpisodeID   int64           `json:"episode_id"`
	Params      json.RawMessage `json:"params"`
	Progress    float64         `json:"progress"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// TranscribeParams are parameters for a transcription job.
type TranscribeParams struct {
	RecordingID string `json:"recording_id"`
	Language    string `json:"language"` // "auto", "en", "es", etc.
}

// ProductionKitParams are parameters for a production-kit job. The episode's
// stored transcript is the input, so there is nothing beyond the episode ID.
type ProductionKitParams struct{}

// DriveSyncParams are parameters for a Drive upload job. EpisodeID on the
// job may be 0 for standalone recording uploads.
type DriveSyncParams struct {
	RecordingID string `json:"recording_id"`
}

// TranscribeResult is the output of a successful transcription.
type TranscribeResult struct {
	Characters       int    `json:"characters"`
	TranscriptFileID string `json:"transcript_file_id,omitempty"`
}

// DriveSyncResult is the output of a successful Drive upload.
type DriveSyncResult struct {
	AudioFileID string `json:"audio_file_id"`
	NotesFileID string `json:"notes_file_id,omitempty"`
}

// JobHandler processes a job. Implementations live in the production package.
type JobHandler func(ctx context.Context, job *Job, updateProgress func(float64)) error
