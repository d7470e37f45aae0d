package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SongTag is a Last.fm tag recorded for a song.
type SongTag struct {
	SongID    string
	TagName   string
	TagCount  int
	Source    string // "track" or "artist"
	FetchedAt time.Time
}

// TagRepository handles song tag database operations.
type TagRepository struct {
	pool *pgxpool.Pool
}

// UpsertBatch inserts or updates multiple tags efficiently.
func (r *TagRepository) UpsertBatch(ctx context.Context, tags []SongTag) error {
	if len(tags) == 0 {
		return nil
	}

	query := `
		INSERT INTO song_tags (song_id, tag_name, tag_count, source, fetched_at)
		SELECT * FROM unnest($1::text[], $2::text[], $3::int[], $4::text[], $5::timestamptz[])
		ON CONFLICT (song_id, tag_name) DO UPDATE SET
			tag_count = EXCLUDED.tag_count,
			source = EXCLUDED.source,
			fetched_at = EXCLUDED.fetched_at
	`

	songIDs := make([]string, len(tags))
	tagNames := make([]string, len(tags))
	tagCounts := make([]int, len(tags))
	sources := make([]string, len(tags))
	fetchedAts := make([]time.Time, len(tags))

	for i, t := range tags {
		songIDs[i] = t.SongID
		tagNames[i] = t.TagName
		tagCounts[i] = t.TagCount
		sources[i] = t.Source
		fetchedAts[i] = t.FetchedAt
	}

	_, err := r.pool.Exec(ctx, query, songIDs, tagNames, tagCounts, sources, fetchedAts)
	if err != nil {
		return fmt.Errorf("batch upserting tags: %w", err)
	}
	return nil
}

// GetForSong retrieves all tags for a song, most used first.
func (r *TagRepository) GetForSong(ctx context.Context, songID string) ([]SongTag, error) {
	query := `
		SELECT song_id, tag_name, tag_count, source, fetched_at
		FROM song_tags
		WHERE song_id = $1
		ORDER BY tag_count DESC
	`
	rows, err := r.pool.Query(ctx, query, songID)
	if err != nil {
		return nil, fmt.Errorf("querying song tags: %w", err)
	}
	defer rows.Close()

	var tags []SongTag
	for rows.Next() {
		var tag SongTag
		if err := rows.Scan(
			&tag.SongID,
			&tag.TagName,
			&tag.TagCount,
			&tag.Source,
			&tag.FetchedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}
