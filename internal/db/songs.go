package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/moodtunes/internal/catalog"
	"github.com/justestif/moodtunes/internal/emotion"
)

// SongRepository handles song database operations.
type SongRepository struct {
	pool *pgxpool.Pool
}

const songColumns = `id, title, artist, emotion, cover_url, duration, audio_url, itunes_url`

// UpsertBatch inserts or updates multiple songs efficiently.
func (r *SongRepository) UpsertBatch(ctx context.Context, songs []catalog.Song) error {
	if len(songs) == 0 {
		return nil
	}

	query := `
		INSERT INTO songs (` + songColumns + `)
		SELECT * FROM unnest($1::text[], $2::text[], $3::text[], $4::text[], $5::text[], $6::text[], $7::text[], $8::text[])
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			artist = EXCLUDED.artist,
			emotion = EXCLUDED.emotion,
			cover_url = EXCLUDED.cover_url,
			duration = EXCLUDED.duration,
			audio_url = EXCLUDED.audio_url,
			itunes_url = EXCLUDED.itunes_url
	`

	ids := make([]string, len(songs))
	titles := make([]string, len(songs))
	artists := make([]string, len(songs))
	emotions := make([]string, len(songs))
	covers := make([]string, len(songs))
	durations := make([]string, len(songs))
	audioURLs := make([]string, len(songs))
	itunesURLs := make([]string, len(songs))

	for i, s := range songs {
		ids[i] = s.ID
		titles[i] = s.Title
		artists[i] = s.Artist
		emotions[i] = s.Emotion.String()
		covers[i] = s.CoverURL
		durations[i] = s.Duration
		audioURLs[i] = s.AudioURL
		itunesURLs[i] = s.ITunesURL
	}

	_, err := r.pool.Exec(ctx, query, ids, titles, artists, emotions, covers, durations, audioURLs, itunesURLs)
	if err != nil {
		return fmt.Errorf("batch upserting songs: %w", err)
	}
	return nil
}

// Get retrieves a song by ID.
func (r *SongRepository) Get(ctx context.Context, id string) (*catalog.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE id = $1`
	s, err := scanSong(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying song: %w", err)
	}
	return &s, nil
}

// ListByEmotion returns the songs tagged e in insertion order.
func (r *SongRepository) ListByEmotion(ctx context.Context, e emotion.Emotion) ([]catalog.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE emotion = $1 ORDER BY seq`
	return r.query(ctx, query, e.String())
}

// List returns every song in insertion order.
func (r *SongRepository) List(ctx context.Context) ([]catalog.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs ORDER BY seq`
	return r.query(ctx, query)
}

func (r *SongRepository) query(ctx context.Context, query string, args ...any) ([]catalog.Song, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying songs: %w", err)
	}
	defer rows.Close()

	var songs []catalog.Song
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning song: %w", err)
		}
		songs = append(songs, s)
	}
	return songs, rows.Err()
}

// scanner is satisfied by pgx.Row, pgx.Rows and *sql.Row(s).
type scanner interface {
	Scan(dest ...any) error
}

func scanSong(row scanner) (catalog.Song, error) {
	var s catalog.Song
	var e string
	err := row.Scan(
		&s.ID,
		&s.Title,
		&s.Artist,
		&e,
		&s.CoverURL,
		&s.Duration,
		&s.AudioURL,
		&s.ITunesURL,
	)
	s.Emotion = emotion.Normalize(e)
	return s, err
}
