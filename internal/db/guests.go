package db

import (
	"github.com/podcast-studio/backend/internal/db/models"
)

func (d *Database) CreateGuest(g *models.Guest) (int64, error) {
	result, err := d.db.Exec(`
		INSERT INTO guests (name, email, bio, website, social_links, photo_url)
		VALUES (?, ?, ?, ?, ?, ?)`,
		g.Name, g.Email, g.Bio, g.Website, g.SocialLinks, g.PhotoURL,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (d *Database) GetGuest(id int64) (*models.Guest, error) {
	g := &models.Guest{}
	err := d.db.QueryRow(`
		SELECT id, name, email, bio, website, social_links, photo_url, created_at
		FROM guests WHERE id = ?`, id,
	).Scan(&g.ID, &g.Name, &g.Email, &g.Bio, &g.Website, &g.SocialLinks, &g.PhotoURL, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ListGuests returns the talent directory ordered by name. A non-empty query
// matches name or email, case-insensitive.
func (d *Database) ListGuests(query string) ([]*models.Guest, error) {
	sqlQuery := `
		SELECT id, name, email, bio, website, social_links, photo_url, created_at
		FROM guests`
	var args []interface{}
	if query != "" {
		sqlQuery += " WHERE name LIKE ? COLLATE NOCASE OR email LIKE ? COLLATE NOCASE"
		pattern := "%" + query + "%"
		args = append(args, pattern, pattern)
	}
	sqlQuery += " ORDER BY name ASC"

	rows, err := d.db.Query(sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	guests := []*models.Guest{}
	for rows.Next() {
		g := &models.Guest{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Email, &g.Bio, &g.Website, &g.SocialLinks, &g.PhotoURL, &g.CreatedAt); err != nil {
			return nil, err
		}
		guests = append(guests, g)
	}
	return guests, rows.Err()
}

func (d *Database) UpdateGuest(g *models.Guest) error {
	_, err := d.db.Exec(`
		UPDATE guests SET name=?, email=?, bio=?, website=?, social_links=?, photo_url=?
		WHERE id=?`,
		g.Name, g.Email, g.Bio, g.Website, g.SocialLinks, g.PhotoURL, g.ID,
	)
	return err
}

func (d *Database) DeleteGuest(id int64) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM episode_guests WHERE guest_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM guests WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// LinkGuest adds a guest to an episode. Linking twice is a no-op.
func (d *Database) LinkGuest(episodeID, guestID int64) error {
	_, err := d.db.Exec(
		"INSERT OR IGNORE INTO episode_guests (episode_id, guest_id) VALUES (?, ?)",
		episodeID, guestID,
	)
	return err
}

func (d *Database) UnlinkGuest(episodeID, guestID int64) error {
	_, err := d.db.Exec(
		"DELETE FROM episode_guests WHERE episode_id = ? AND guest_id = ?",
		episodeID, guestID,
	)
	return err
}

func (d *Database) ListEpisodeGuests(episodeID int64) ([]*models.Guest, error) {
	rows, err := d.db.Query(`
		SELECT g.id, g.name, g.email, g.bio, g.website, g.social_links, g.photo_url, g.created_at
		FROM guests g JOIN episode_guests eg ON g.id = eg.guest_id
		WHERE eg.episode_id = ?
		ORDER BY g.name ASC`, episodeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	guests := []*models.Guest{}
	for rows.Next() {
		g := &models.Guest{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Email, &g.Bio, &g.Website, &g.SocialLinks, &g.PhotoURL, &g.CreatedAt); err != nil {
			return nil, err
		}
		guests = append(guests, g)
	}
	return guests, rows.Err()
}
