package production

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/podcast-studio/backend/internal/ai"
	"github.com/podcast-studio/backend/internal/db"
	"github.com/podcast-studio/backend/internal/drive"
	"github.com/podcast-studio/backend/internal/job"
	"github.com/podcast-studio/backend/internal/library"
)

// Service runs the production pipeline jobs: transcription, production-kit
// generation and Drive sync.
type Service struct {
	database *db.Database
	drive    *drive.Manager
	library  *library.Store

	defaultKey     string
	defaultBaseURL string
}

func NewService(database *db.Database, driveMgr *drive.Manager, store *library.Store, openAIKey, openAIBaseURL string) *Service {
	return &Service{
		database:       database,
		drive:          driveMgr,
		library:        store,
		defaultKey:     openAIKey,
		defaultBaseURL: openAIBaseURL,
	}
}

// Register wires the service's handlers into the queue.
func (s *Service) Register(queue *job.JobQueue) {
	queue.RegisterHandler(job.JobTranscribe, s.HandleTranscribe)
	queue.RegisterHandler(job.JobProductionKit, s.HandleProductionKit)
	queue.RegisterHandler(job.JobDriveSync, s.HandleDriveSync)
}

// aiClient builds a client from runtime settings, falling back to the
// startup configuration. Settings win so keys can be rotated without a
// restart.
func (s *Service) aiClient() *ai.Client {
	key := s.database.GetSetting("openai_api_key", s.defaultKey)
	baseURL := s.database.GetSetting("openai_base_url", s.defaultBaseURL)
	client := ai.NewClient(key, baseURL)
	client.SetChatModel(s.database.GetSetting("openai_chat_model", ""))
	return client
}

// HandleTranscribe transcribes a staged recording, stores the text on the
// episode and uploads a copy to the Drive Transcripts folder when connected.
func (s *Service) HandleTranscribe(ctx context.Context, j *job.Job, updateProgress func(float64)) error {
	var params job.TranscribeParams
	if err := json.Unmarshal(j.Params, &params); err != nil {
		return fmt.Errorf("unmarshal params: %w", err)
	}

	rec, err := s.library.Get(params.RecordingID)
	if err != nil {
		return err
	}
	audio, err := s.library.Audio(params.RecordingID)
	if err != nil {
		return err
	}
	updateProgress(0.1)

	language := params.Language
	if language == "" {
		language = s.database.GetSetting("transcription_language", "")
	}

	transcript, err := s.aiClient().Transcribe(ctx, rec.Title+".wav", audio, language)
	if err != nil {
		return fmt.Errorf("transcribe: %w", err)
	}
	updateProgress(0.8)

	if j.EpisodeID > 0 {
		if err := s.database.SetEpisodeTranscription(j.EpisodeID, transcript); err != nil {
			return fmt.Errorf("save transcription: %w", err)
		}
	}

	result := job.TranscribeResult{Characters: len(transcript)}

	// Drive copy is best-effort: the transcript is already safe in the DB.
	if layout, err := s.drive.Layout(ctx); err == nil {
		client, err := s.drive.Client()
		if err == nil {
			name := fmt.Sprintf("%s_%s_transcript.txt", rec.Title, time.Now().Format("20060102_150405"))
			fileID, err := client.UploadFile(ctx, name, "text/plain", []byte(transcript), layout[drive.FolderTranscripts])
			if err != nil {
				log.Printf("[production] transcript upload failed: %v", err)
			} else {
				result.TranscriptFileID = fileID
				if j.EpisodeID > 0 {
					s.database.SetEpisodeTranscriptFile(j.EpisodeID, fileID)
				}
			}
		}
	}

	resultJSON, _ := json.Marshal(result)
	j.Result = resultJSON
	updateProgress(1.0)
	log.Printf("[production] transcription complete: recording=%s chars=%d", params.RecordingID, len(transcript))
	return nil
}

// HandleProductionKit generates show notes and a social kit from the
// episode's stored transcript.
func (s *Service) HandleProductionKit(ctx context.Context, j *job.Job, updateProgress func(float64)) error {
	episode, err := s.database.GetEpisode(j.EpisodeID)
	if err != nil {
		return fmt.Errorf("load episode: %w", err)
	}
	updateProgress(0.1)

	kit, err := s.aiClient().GenerateProductionKit(ctx, episode.Title, episode.Transcription)
	if err != nil {
		return fmt.Errorf("generate production kit: %w", err)
	}
	updateProgress(0.9)

	if err := s.database.SetEpisodeProductionKit(j.EpisodeID, kit.ShowNotes, kit.SocialKit); err != nil {
		return fmt.Errorf("save production kit: %w", err)
	}

	updateProgress(1.0)
	log.Printf("[production] production kit ready: episode=%d", j.EpisodeID)
	return nil
}

// HandleDriveSync uploads a recording's audio (and notes document, when
// notes exist) to the studio folders, then records the file IDs. On failure
// the recording stays local-only and the job can be retried.
func (s *Service) HandleDriveSync(ctx context.Context, j *job.Job, updateProgress func(float64)) error {
	var params job.DriveSyncParams
	if err := json.Unmarshal(j.Params, &params); err != nil {
		return fmt.Errorf("unmarshal params: %w", err)
	}

	rec, err := s.library.Get(params.RecordingID)
	if err != nil {
		return err
	}
	audio, err := s.library.Audio(params.RecordingID)
	if err != nil {
		return err
	}

	client, err := s.drive.Client()
	if err != nil {
		return err
	}
	layout, err := s.drive.Layout(ctx)
	if err != nil {
		return fmt.Errorf("folder layout: %w", err)
	}
	updateProgress(0.1)

	timestamp := rec.RecordedAt.Format("20060102_150405")
	audioName := fmt.Sprintf("%s_%s.wav", rec.Title, timestamp)

	audioFileID, err := client.UploadFile(ctx, audioName, "audio/wav", audio, layout[drive.FolderAudio])
	if err != nil {
		return fmt.Errorf("upload audio: %w", err)
	}
	updateProgress(0.7)

	notesFileID := ""
	if rec.Notes != "" {
		notesName := fmt.Sprintf("%s_%s_notes.txt", rec.Title, timestamp)
		notesFileID, err = client.UploadFile(ctx, notesName, "text/plain", []byte(library.NotesDocument(rec)), layout[drive.FolderNotes])
		if err != nil {
			return fmt.Errorf("upload notes: %w", err)
		}
	}
	updateProgress(0.9)

	if err := s.library.SetDriveFiles(rec.ID, audioFileID, notesFileID); err != nil {
		return err
	}
	if j.EpisodeID > 0 {
		if err := s.database.SetEpisodeDriveFiles(j.EpisodeID, audioFileID, notesFileID); err != nil {
			return fmt.Errorf("record file IDs: %w", err)
		}
	}

	resultJSON, _ := json.Marshal(job.DriveSyncResult{AudioFileID: audioFileID, NotesFileID: notesFileID})
	j.Result = resultJSON
	updateProgress(1.0)
	log.Printf("[production] drive sync complete: recording=%s audio=%s", rec.ID, audioFileID)
	return nil
}
