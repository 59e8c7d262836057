package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"animemanager/pkg/models"
)

func LoadAnimesFromJSON(jsonPath string) ([]models.Anime, error) {
	b, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read anime json: %w", err)
	}

	var list []models.Anime
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("unmarshal anime json: %w", err)
	}

	return list, nil
}

// SeedAnimes inserts list in order. Records whose title already exists are skipped, so
// seeding twice is harmless; ids in the file are ignored because the table assigns them.
func SeedAnimes(db *sql.DB, list []models.Anime) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO animes (title, image_url, synopsis, genres, rating, season_count,
		                    episode_count, status, release_year, studio)
		SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM animes WHERE title = ?);
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert anime: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, a := range list {
		genresJSON, err := json.Marshal(a.Genres)
		if err != nil {
			return 0, fmt.Errorf("marshal genres for %q: %w", a.Title, err)
		}

		res, err := stmt.Exec(a.Title, a.ImageURL, a.Synopsis, string(genresJSON), a.Rating,
			a.SeasonCount, a.EpisodeCount, string(a.Status), a.ReleaseYear, a.Studio, a.Title)
		if err != nil {
			return 0, fmt.Errorf("insert anime %q: %w", a.Title, err)
		}

		aff, _ := res.RowsAffected()
		if aff > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return inserted, nil
}
