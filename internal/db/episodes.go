package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/podcast-studio/backend/internal/db/models"
)

const episodeColumns = `e.id, e.series_id, s.name, e.title, e.description, e.episode_number, e.season_number,
	e.publish_date, e.status, e.transcription, e.show_notes, e.social_kit, e.tags,
	e.duration_seconds, e.size_bytes, e.sample_rate,
	e.audio_file_id, e.notes_file_id, e.transcript_file_id,
	e.view_count, e.download_count, e.created_at`

func scanEpisode(row interface{ Scan(...interface{}) error }) (*models.Episode, error) {
	e := &models.Episode{}
	var tags string
	var publishDate sql.NullTime
	err := row.Scan(&e.ID, &e.SeriesID, &e.SeriesName, &e.Title, &e.Description, &e.EpisodeNumber, &e.SeasonNumber,
		&publishDate, &e.Status, &e.Transcription, &e.ShowNotes, &e.SocialKit, &tags,
		&e.Duration, &e.SizeBytes, &e.SampleRate,
		&e.AudioFileID, &e.NotesFileID, &e.TranscriptFileID,
		&e.ViewCount, &e.DownloadCount, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Tags = splitTags(tags)
	if publishDate.Valid {
		e.PublishDate = &publishDate.Time
	}
	return e, nil
}

func (d *Database) CreateEpisode(e *models.Episode) (int64, error) {
	if e.Status == "" {
		e.Status = models.EpisodeDraft
	}
	result, err := d.db.Exec(`
		INSERT INTO episodes (series_id, title, description, episode_number, season_number, publish_date, status,
			tags, duration_seconds, size_bytes, sample_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SeriesID, e.Title, e.Description, e.EpisodeNumber, e.SeasonNumber, nullableTime(e.PublishDate), e.Status,
		joinTags(e.Tags), e.Duration, e.SizeBytes, e.SampleRate,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (d *Database) GetEpisode(id int64) (*models.Episode, error) {
	row := d.db.QueryRow(`
		SELECT `+episodeColumns+`
		FROM episodes e JOIN series s ON e.series_id = s.id
		WHERE e.id = ?`, id)
	return scanEpisode(row)
}

// ListEpisodes returns episodes newest first, optionally filtered by series
// and/or pipeline status.
func (d *Database) ListEpisodes(seriesID int64, status string) ([]*models.Episode, error) {
	query := `SELECT ` + episodeColumns + ` FROM episodes e JOIN series s ON e.series_id = s.id`
	var args []interface{}
	var where []string
	if seriesID > 0 {
		where = append(where, "e.series_id = ?")
		args = append(args, seriesID)
	}
	if status != "" {
		where = append(where, "e.status = ?")
		args = append(args, status)
	}
	for i, w := range where {
		if i == 0 {
			query += " WHERE " + w
		} else {
			query += " AND " + w
		}
	}
	query += " ORDER BY e.created_at DESC"

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	episodes := []*models.Episode{}
	for rows.Next() {
		e, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, e)
	}
	return episodes, rows.Err()
}

func (d *Database) UpdateEpisode(e *models.Episode) error {
	_, err := d.db.Exec(`
		UPDATE episodes SET title=?, description=?, episode_number=?, season_number=?, tags=?
		WHERE id=?`,
		e.Title, e.Description, e.EpisodeNumber, e.SeasonNumber, joinTags(e.Tags), e.ID,
	)
	return err
}

// UpdateEpisodeStatus moves an episode through the pipeline. Only the three
// known statuses are accepted.
func (d *Database) UpdateEpisodeStatus(id int64, status string, publishDate *time.Time) error {
	switch status {
	case models.EpisodeDraft, models.EpisodeScheduled, models.EpisodePublished:
	default:
		return fmt.Errorf("invalid episode status: %s", status)
	}
	_, err := d.db.Exec("UPDATE episodes SET status=?, publish_date=? WHERE id=?",
		status, nullableTime(publishDate), id)
	return err
}

// UpdateEpisodeContent saves the three editable production documents at once.
func (d *Database) UpdateEpisodeContent(id int64, transcription, showNotes, socialKit string) error {
	_, err := d.db.Exec("UPDATE episodes SET transcription=?, show_notes=?, social_kit=? WHERE id=?",
		transcription, showNotes, socialKit, id)
	return err
}

func (d *Database) SetEpisodeTranscription(id int64, transcription string) error {
	_, err := d.db.Exec("UPDATE episodes SET transcription=? WHERE id=?", transcription, id)
	return err
}

func (d *Database) SetEpisodeProductionKit(id int64, showNotes, socialKit string) error {
	_, err := d.db.Exec("UPDATE episodes SET show_notes=?, social_kit=? WHERE id=?", showNotes, socialKit, id)
	return err
}

func (d *Database) SetEpisodeDriveFiles(id int64, audioFileID, notesFileID string) error {
	_, err := d.db.Exec("UPDATE episodes SET audio_file_id=?, notes_file_id=? WHERE id=?",
		audioFileID, notesFileID, id)
	return err
}

func (d *Database) SetEpisodeTranscriptFile(id int64, fileID string) error {
	_, err := d.db.Exec("UPDATE episodes SET transcript_file_id=? WHERE id=?", fileID, id)
	return err
}

func (d *Database) DeleteEpisode(id int64) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM episode_guests WHERE episode_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM analytics_logs WHERE episode_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM episodes WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}
