package anime

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"animemanager/pkg/models"
)

const columns = `id,title,image_url,synopsis,genres,rating,season_count,episode_count,status,release_year,studio`

type scanner interface {
	Scan(dest ...any) error
}

func scanAnime(s scanner) (models.Anime, error) {
	var (
		a      models.Anime
		id     int64
		genres sql.NullString
		status string
	)
	if err := s.Scan(&id, &a.Title, &a.ImageURL, &a.Synopsis, &genres, &a.Rating,
		&a.SeasonCount, &a.EpisodeCount, &status, &a.ReleaseYear, &a.Studio); err != nil {
		return models.Anime{}, err
	}
	a.ID = strconv.FormatInt(id, 10)
	a.Status = models.Status(status)
	a.Genres = []string{}
	if genres.Valid && genres.String != "" {
		if err := json.Unmarshal([]byte(genres.String), &a.Genres); err != nil {
			return models.Anime{}, fmt.Errorf("decode genres of %s: %w", a.ID, err)
		}
	}
	return a, nil
}

// parseID rejects ids that cannot exist in the table so lookups report sql.ErrNoRows.
func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, sql.ErrNoRows
	}
	return n, nil
}

// List returns every anime in insertion order.
func List(db *sql.DB) ([]models.Anime, error) {
	rows, err := db.Query(`SELECT ` + columns + ` FROM animes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []models.Anime{}
	for rows.Next() {
		a, err := scanAnime(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

func GetByID(db *sql.DB, id string) (models.Anime, error) {
	n, err := parseID(id)
	if err != nil {
		return models.Anime{}, err
	}
	return scanAnime(db.QueryRow(`SELECT `+columns+` FROM animes WHERE id = ?`, n))
}

// Create stores a and returns it with the assigned id. a.ID is ignored.
func Create(db *sql.DB, a models.Anime) (models.Anime, error) {
	genresJSON, err := encodeGenres(a.Genres)
	if err != nil {
		return models.Anime{}, err
	}
	res, err := db.Exec(`
		INSERT INTO animes (title, image_url, synopsis, genres, rating, season_count,
		                    episode_count, status, release_year, studio)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Title, a.ImageURL, a.Synopsis, genresJSON, a.Rating, a.SeasonCount,
		a.EpisodeCount, string(a.Status), a.ReleaseYear, a.Studio)
	if err != nil {
		return models.Anime{}, fmt.Errorf("insert anime: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Anime{}, fmt.Errorf("insert anime: %w", err)
	}
	return GetByID(db, strconv.FormatInt(id, 10))
}

// Update replaces every field of the anime with the given id.
func Update(db *sql.DB, id string, a models.Anime) (models.Anime, error) {
	n, err := parseID(id)
	if err != nil {
		return models.Anime{}, err
	}
	genresJSON, err := encodeGenres(a.Genres)
	if err != nil {
		return models.Anime{}, err
	}
	res, err := db.Exec(`
		UPDATE animes SET title=?, image_url=?, synopsis=?, genres=?, rating=?, season_count=?,
		                  episode_count=?, status=?, release_year=?, studio=?
		WHERE id = ?`,
		a.Title, a.ImageURL, a.Synopsis, genresJSON, a.Rating, a.SeasonCount,
		a.EpisodeCount, string(a.Status), a.ReleaseYear, a.Studio, n)
	if err != nil {
		return models.Anime{}, fmt.Errorf("update anime %s: %w", id, err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return models.Anime{}, sql.ErrNoRows
	}
	return GetByID(db, id)
}

// Delete removes the anime and returns what was stored.
func Delete(db *sql.DB, id string) (models.Anime, error) {
	a, err := GetByID(db, id)
	if err != nil {
		return models.Anime{}, err
	}
	n, _ := parseID(a.ID)
	if _, err := db.Exec(`DELETE FROM animes WHERE id = ?`, n); err != nil {
		return models.Anime{}, fmt.Errorf("delete anime %s: %w", id, err)
	}
	return a, nil
}

func encodeGenres(genres []string) (string, error) {
	if genres == nil {
		genres = []string{}
	}
	b, err := json.Marshal(genres)
	if err != nil {
		return "", fmt.Errorf("encode genres: %w", err)
	}
	return string(b), nil
}
