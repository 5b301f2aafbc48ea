package library

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sync filters for List.
const (
	FilterAll    = ""
	FilterSynced = "synced"
	FilterLocal  = "local"
)

// Recording is a captured studio session. Audio bytes are kept in memory for
// playback and staged to disk so jobs and downloads survive handler restarts.
type Recording struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	EpisodeNumber string    `json:"episode_number,omitempty"`
	Season        string    `json:"season,omitempty"`
	Description   string    `json:"description,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Tags          []string  `json:"tags"`
	SampleRate    int       `json:"sample_rate"`
	SizeBytes     int64     `json:"size_bytes"`
	Duration      float64   `json:"duration_seconds"`
	RecordedAt    time.Time `json:"recorded_at"`
	AudioFileID   string    `json:"audio_file_id,omitempty"`
	NotesFileID   string    `json:"notes_file_id,omitempty"`
}

// Synced reports whether the recording has been uploaded to Drive.
func (r *Recording) Synced() bool {
	return r.AudioFileID != ""
}

// Stats are the studio counters.
type Stats struct {
	Total      int   `json:"total"`
	Synced     int   `json:"synced"`
	LocalOnly  int   `json:"local_only"`
	TotalBytes int64 `json:"total_bytes"`
}

// Store holds recordings in memory keyed by ID, with WAV audio and metadata
// staged under stagePath. Staged recordings are reloaded at startup.
type Store struct {
	mu         sync.RWMutex
	recordings map[string]*Recording
	audio      map[string][]byte
	stagePath  string
}

func NewStore(stagePath string) (*Store, error) {
	if err := os.MkdirAll(stagePath, 0755); err != nil {
		return nil, fmt.Errorf("create recordings dir: %w", err)
	}
	s := &Store{
		recordings: make(map[string]*Recording),
		audio:      make(map[string][]byte),
		stagePath:  stagePath,
	}
	s.loadStaged()
	return s, nil
}

// loadStaged restores recording metadata from disk. Audio is loaded lazily.
func (s *Store) loadStaged() {
	entries, err := os.ReadDir(s.stagePath)
	if err != nil {
		return
	}
	count := 0
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.stagePath, entry.Name()))
		if err != nil {
			continue
		}
		var rec Recording
		if err := json.Unmarshal(data, &rec); err != nil || rec.ID == "" {
			continue
		}
		s.recordings[rec.ID] = &rec
		count++
	}
	if count > 0 {
		log.Printf("[library] restored %d staged recordings", count)
	}
}

// Add stores a new recording. Duration is estimated from the PCM byte count
// (16-bit mono WAV) when the sample rate is known.
func (s *Store) Add(rec *Recording, audio []byte) (*Recording, error) {
	if rec.Title == "" {
		return nil, fmt.Errorf("recording title is required")
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("recording has no audio data")
	}

	rec.ID = uuid.New().String()
	rec.SizeBytes = int64(len(audio))
	rec.RecordedAt = time.Now()
	if rec.SampleRate > 0 {
		rec.Duration = float64(len(audio)) / float64(rec.SampleRate*2)
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}

	if err := os.WriteFile(s.audioPath(rec.ID), audio, 0644); err != nil {
		return nil, fmt.Errorf("stage audio: %w", err)
	}
	if err := s.writeMeta(rec); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.recordings[rec.ID] = rec
	s.audio[rec.ID] = audio
	s.mu.Unlock()

	log.Printf("[library] recording %q added (%s, %.1fs, %d bytes)", rec.Title, rec.ID, rec.Duration, rec.SizeBytes)
	return rec, nil
}

func (s *Store) Get(id string) (*Recording, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recordings[id]
	if !ok {
		return nil, fmt.Errorf("recording not found: %s", id)
	}
	copied := *rec
	return &copied, nil
}

// Audio returns the recording's WAV bytes, reading the staged file when the
// in-memory copy is gone (process restart).
func (s *Store) Audio(id string) ([]byte, error) {
	s.mu.RLock()
	data, ok := s.audio[id]
	_, known := s.recordings[id]
	s.mu.RUnlock()
	if ok {
		return data, nil
	}
	if !known {
		return nil, fmt.Errorf("recording not found: %s", id)
	}

	data, err := os.ReadFile(s.audioPath(id))
	if err != nil {
		return nil, fmt.Errorf("read staged audio: %w", err)
	}
	s.mu.Lock()
	s.audio[id] = data
	s.mu.Unlock()
	return data, nil
}

// Delete removes the recording locally. Drive copies are never touched.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	_, ok := s.recordings[id]
	delete(s.recordings, id)
	delete(s.audio, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("recording not found: %s", id)
	}
	os.Remove(s.audioPath(id))
	os.Remove(s.metaPath(id))
	return nil
}

// SetDriveFiles records the Drive file IDs after a successful sync.
func (s *Store) SetDriveFiles(id, audioFileID, notesFileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recordings[id]
	if !ok {
		return fmt.Errorf("recording not found: %s", id)
	}
	rec.AudioFileID = audioFileID
	if notesFileID != "" {
		rec.NotesFileID = notesFileID
	}
	return s.writeMeta(rec)
}

// List returns recordings newest first, filtered by sync state and a
// case-insensitive search over title, description and tags.
func (s *Store) List(filter, query string) []*Recording {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query = strings.ToLower(query)
	result := []*Recording{}
	for _, rec := range s.recordings {
		switch filter {
		case FilterSynced:
			if !rec.Synced() {
				continue
			}
		case FilterLocal:
			if rec.Synced() {
				continue
			}
		}
		if query != "" && !matches(rec, query) {
			continue
		}
		copied := *rec
		result = append(result, &copied)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].RecordedAt.After(result[j].RecordedAt)
	})
	return result
}

func matches(rec *Recording, query string) bool {
	if strings.Contains(strings.ToLower(rec.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(rec.Description), query) {
		return true
	}
	for _, tag := range rec.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{}
	for _, rec := range s.recordings {
		stats.Total++
		if rec.Synced() {
			stats.Synced++
		} else {
			stats.LocalOnly++
		}
		stats.TotalBytes += rec.SizeBytes
	}
	return stats
}

// ExportMetadata returns all recording metadata (no audio), newest first.
func (s *Store) ExportMetadata() []*Recording {
	return s.List(FilterAll, "")
}

func (s *Store) audioPath(id string) string {
	return filepath.Join(s.stagePath, id+".wav")
}

func (s *Store) metaPath(id string) string {
	return filepath.Join(s.stagePath, id+".json")
}

// writeMeta persists recording metadata next to the staged audio. Callers
// hold the lock or own the recording exclusively.
func (s *Store) writeMeta(rec *Recording) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.metaPath(rec.ID), data, 0644); err != nil {
		return fmt.Errorf("stage metadata: %w", err)
	}
	return nil
}
