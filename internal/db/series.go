package db

import (
	"github.com/podcast-studio/backend/internal/db/models"
)

func (d *Database) CreateSeries(s *models.Series) (int64, error) {
	result, err := d.db.Exec(`
		INSERT INTO series (name, author, category, language, description, cover_url, website, email)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Name, s.Author, s.Category, s.Language, s.Description, s.CoverURL, s.Website, s.Email,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (d *Database) GetSeries(id int64) (*models.Series, error) {
	s := &models.Series{}
	err := d.db.QueryRow(`
		SELECT id, name, author, category, language, description, cover_url, website, email, created_at
		FROM series WHERE id = ?`, id,
	).Scan(&s.ID, &s.Name, &s.Author, &s.Category, &s.Language, &s.Description, &s.CoverURL, &s.Website, &s.Email, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListSeries returns all series newest first
func (d *Database) ListSeries() ([]*models.Series, error) {
	rows, err := d.db.Query(`
		SELECT id, name, author, category, language, description, cover_url, website, email, created_at
		FROM series ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	series := []*models.Series{}
	for rows.Next() {
		s := &models.Series{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Author, &s.Category, &s.Language, &s.Description, &s.CoverURL, &s.Website, &s.Email, &s.CreatedAt); err != nil {
			return nil, err
		}
		series = append(series, s)
	}
	return series, rows.Err()
}

func (d *Database) UpdateSeries(s *models.Series) error {
	_, err := d.db.Exec(`
		UPDATE series SET name=?, author=?, category=?, language=?, description=?, cover_url=?, website=?, email=?
		WHERE id=?`,
		s.Name, s.Author, s.Category, s.Language, s.Description, s.CoverURL, s.Website, s.Email, s.ID,
	)
	return err
}

// DeleteSeries removes a series and its episodes.
func (d *Database) DeleteSeries(id int64) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM episode_guests WHERE episode_id IN (SELECT id FROM episodes WHERE series_id = ?)", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM analytics_logs WHERE episode_id IN (SELECT id FROM episodes WHERE series_id = ?)", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM episodes WHERE series_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM series WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}
