// Package db provides song storage for the recommendation catalog, backed by
// PostgreSQL or SQLite.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/moodtunes/internal/catalog"
	"github.com/justestif/moodtunes/internal/emotion"
)

// Common errors.
var (
	ErrNotFound = errors.New("not found")
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS songs (
		seq BIGSERIAL,
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		artist TEXT NOT NULL,
		emotion TEXT NOT NULL,
		cover_url TEXT NOT NULL DEFAULT '',
		duration TEXT NOT NULL DEFAULT '',
		audio_url TEXT NOT NULL DEFAULT '',
		itunes_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS songs_emotion_idx ON songs (emotion);

	CREATE TABLE IF NOT EXISTS song_tags (
		song_id TEXT NOT NULL REFERENCES songs(id) ON DELETE CASCADE,
		tag_name TEXT NOT NULL,
		tag_count INTEGER NOT NULL,
		source TEXT NOT NULL,
		fetched_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (song_id, tag_name)
	);
`

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// New creates a new database connection pool.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Migrate creates the schema if it does not exist.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// Close closes the database connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Pool returns the underlying connection pool for advanced operations.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Songs returns a SongRepository.
func (db *DB) Songs() *SongRepository {
	return &SongRepository{pool: db.pool}
}

// Tags returns a TagRepository.
func (db *DB) Tags() *TagRepository {
	return &TagRepository{pool: db.pool}
}

// ListByEmotion implements catalog.Store.
func (db *DB) ListByEmotion(ctx context.Context, e emotion.Emotion) ([]catalog.Song, error) {
	return db.Songs().ListByEmotion(ctx, e)
}

// List implements catalog.Store.
func (db *DB) List(ctx context.Context) ([]catalog.Song, error) {
	return db.Songs().List(ctx)
}

// UpsertBatch implements catalog.Store.
func (db *DB) UpsertBatch(ctx context.Context, songs []catalog.Song) error {
	return db.Songs().UpsertBatch(ctx, songs)
}

// UpsertTags stores Last.fm tags for imported songs.
func (db *DB) UpsertTags(ctx context.Context, tags []SongTag) error {
	return db.Tags().UpsertBatch(ctx, tags)
}

var (
	_ catalog.Store = (*SongRepository)(nil)
	_ catalog.Store = (*DB)(nil)
)
