package database

import (
	"database/sql"
	"fmt"
)

func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS animes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			image_url TEXT,
			synopsis TEXT,
			genres TEXT, -- JSON array as text
			rating REAL,
			season_count INTEGER,
			episode_count INTEGER,
			status TEXT,
			release_year INTEGER,
			studio TEXT
		);`,
	}

	for i, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("migrate stmt %d: %w", i, err)
		}
	}
	return nil
}
