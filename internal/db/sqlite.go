package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/justestif/moodtunes/internal/catalog"
	"github.com/justestif/moodtunes/internal/emotion"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS songs (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		artist TEXT NOT NULL,
		emotion TEXT NOT NULL,
		cover_url TEXT NOT NULL DEFAULT '',
		duration TEXT NOT NULL DEFAULT '',
		audio_url TEXT NOT NULL DEFAULT '',
		itunes_url TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS songs_emotion_idx ON songs (emotion);

	CREATE TABLE IF NOT EXISTS song_tags (
		song_id TEXT NOT NULL,
		tag_name TEXT NOT NULL,
		tag_count INTEGER NOT NULL,
		source TEXT NOT NULL,
		fetched_at TEXT NOT NULL,
		PRIMARY KEY (song_id, tag_name),
		FOREIGN KEY (song_id) REFERENCES songs(id) ON DELETE CASCADE
	);
`

// SQLite stores songs in a local database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// UpsertBatch inserts or updates songs in one transaction.
func (s *SQLite) UpsertBatch(ctx context.Context, songs []catalog.Song) error {
	if len(songs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO songs (`+songColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			emotion = excluded.emotion,
			cover_url = excluded.cover_url,
			duration = excluded.duration,
			audio_url = excluded.audio_url,
			itunes_url = excluded.itunes_url
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, song := range songs {
		if _, err := stmt.ExecContext(ctx,
			song.ID,
			song.Title,
			song.Artist,
			song.Emotion.String(),
			song.CoverURL,
			song.Duration,
			song.AudioURL,
			song.ITunesURL,
		); err != nil {
			return fmt.Errorf("upserting song %s: %w", song.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit songs: %w", err)
	}
	return nil
}

// Get retrieves a song by ID.
func (s *SQLite) Get(ctx context.Context, id string) (*catalog.Song, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+songColumns+` FROM songs WHERE id = ?`, id)
	song, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying song: %w", err)
	}
	return &song, nil
}

// ListByEmotion implements catalog.Store.
func (s *SQLite) ListByEmotion(ctx context.Context, e emotion.Emotion) ([]catalog.Song, error) {
	return s.query(ctx, `SELECT `+songColumns+` FROM songs WHERE emotion = ? ORDER BY rowid`, e.String())
}

// List implements catalog.Store.
func (s *SQLite) List(ctx context.Context) ([]catalog.Song, error) {
	return s.query(ctx, `SELECT `+songColumns+` FROM songs ORDER BY rowid`)
}

func (s *SQLite) query(ctx context.Context, query string, args ...any) ([]catalog.Song, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying songs: %w", err)
	}
	defer rows.Close()

	var songs []catalog.Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning song: %w", err)
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

// UpsertTags inserts or updates song tags in one transaction.
func (s *SQLite) UpsertTags(ctx context.Context, tags []SongTag) error {
	if len(tags) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range tags {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO song_tags (song_id, tag_name, tag_count, source, fetched_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (song_id, tag_name) DO UPDATE SET
				tag_count = excluded.tag_count,
				source = excluded.source,
				fetched_at = excluded.fetched_at
		`, t.SongID, t.TagName, t.TagCount, t.Source, t.FetchedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("upserting tag %s/%s: %w", t.SongID, t.TagName, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tags: %w", err)
	}
	return nil
}

// TagsForSong retrieves all tags for a song, most used first.
func (s *SQLite) TagsForSong(ctx context.Context, songID string) ([]SongTag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT song_id, tag_name, tag_count, source, fetched_at
		FROM song_tags
		WHERE song_id = ?
		ORDER BY tag_count DESC
	`, songID)
	if err != nil {
		return nil, fmt.Errorf("querying song tags: %w", err)
	}
	defer rows.Close()

	var tags []SongTag
	for rows.Next() {
		var tag SongTag
		var fetched string
		if err := rows.Scan(&tag.SongID, &tag.TagName, &tag.TagCount, &tag.Source, &fetched); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		if tag.FetchedAt, err = time.Parse(time.RFC3339Nano, fetched); err != nil {
			return nil, fmt.Errorf("parsing fetched_at: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

var _ catalog.Store = (*SQLite)(nil)
