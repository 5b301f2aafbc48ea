package db

import (
	"fmt"

	"github.com/podcast-studio/backend/internal/db/models"
)

// RecordEvent logs a view/download event and bumps the matching episode
// counter in the same transaction.
func (d *Database) RecordEvent(episodeID int64, eventType, ipHash, userAgent string) error {
	var counter string
	switch eventType {
	case "view":
		counter = "view_count"
	case "download":
		counter = "download_count"
	default:
		return fmt.Errorf("invalid event type: %s", eventType)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT INTO analytics_logs (episode_id, event_type, ip_hash, user_agent) VALUES (?, ?, ?, ?)",
		episodeID, eventType, ipHash, userAgent,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"UPDATE episodes SET "+counter+" = "+counter+" + 1 WHERE id = ?", episodeID,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// Totals returns the dashboard counters.
func (d *Database) Totals() (*models.Totals, error) {
	t := &models.Totals{}
	if err := d.db.QueryRow("SELECT COUNT(*) FROM series").Scan(&t.Series); err != nil {
		return nil, err
	}
	err := d.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(view_count), 0), COALESCE(SUM(download_count), 0)
		FROM episodes`).Scan(&t.Episodes, &t.Views, &t.Downloads)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// EpisodeStats returns per-episode view/download counts, most viewed first.
func (d *Database) EpisodeStats() ([]models.EpisodeStats, error) {
	rows, err := d.db.Query(`
		SELECT e.id, e.title, s.name, e.status, e.view_count, e.download_count
		FROM episodes e JOIN series s ON s.id = e.series_id
		ORDER BY e.view_count DESC, e.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []models.EpisodeStats{}
	for rows.Next() {
		var s models.EpisodeStats
		if err := rows.Scan(&s.EpisodeID, &s.Title, &s.SeriesName, &s.Status, &s.Views, &s.Downloads); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// EpisodeEvents returns the raw event log for one episode, newest first.
func (d *Database) EpisodeEvents(episodeID int64, limit int) ([]models.AnalyticsEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := d.db.Query(`
		SELECT id, episode_id, event_type, timestamp, ip_hash, user_agent
		FROM analytics_logs WHERE episode_id = ?
		ORDER BY timestamp DESC LIMIT ?`, episodeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.AnalyticsEvent{}
	for rows.Next() {
		var e models.AnalyticsEvent
		if err := rows.Scan(&e.ID, &e.EpisodeID, &e.EventType, &e.Timestamp, &e.IPHash, &e.UserAgent); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
