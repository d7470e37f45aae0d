// Package library imports a user's Spotify liked songs into the song
// catalog, labelling each with an emotion.
//
// Labels come from audio-feature clusters first, then from Last.fm tags
// scored as text, and finally default to neutral.
package library

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/justestif/moodtunes/internal/catalog"
	"github.com/justestif/moodtunes/internal/clustering"
	"github.com/justestif/moodtunes/internal/db"
	"github.com/justestif/moodtunes/internal/emotion"
	"github.com/justestif/moodtunes/internal/lastfm"
	"github.com/justestif/moodtunes/internal/spotify"
	"github.com/justestif/moodtunes/internal/tags"
)

// Label sources reported in Result.
const (
	FromClusters = "clusters"
	FromTags     = "tags"
	FromDefault  = "default"
)

// Source provides liked songs and their audio features.
type Source interface {
	FetchLikedSongs(ctx context.Context, limit int) ([]spotify.LikedTrack, error)
	FetchAudioFeatures(ctx context.Context, tracks []clustering.Track) error
}

// Tagger fetches tags for tracks that could not be clustered.
type Tagger interface {
	FetchTagsForTracks(ctx context.Context, tracks []tags.Track) ([]tags.TrackTags, error)
}

// TagWriter is implemented by stores that keep fetched tags.
type TagWriter interface {
	UpsertTags(ctx context.Context, tags []db.SongTag) error
}

// Result summarizes an import.
type Result struct {
	Total      int
	ByEmotion  map[emotion.Emotion]int
	BySource   map[string]int
	Groups     []clustering.Group
	ImportedAt time.Time
}

// Importer runs library imports.
type Importer struct {
	source Source
	tagger Tagger
	store  catalog.Store
	cfg    clustering.MoodConfig
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Importer.
type Option func(*Importer)

// WithTagger enables the Last.fm fallback for tracks without audio features.
func WithTagger(t Tagger) Option {
	return func(i *Importer) { i.tagger = t }
}

// WithMoodConfig overrides clustering.DefaultMoodConfig.
func WithMoodConfig(cfg clustering.MoodConfig) Option {
	return func(i *Importer) { i.cfg = cfg }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Importer) {
		if l != nil {
			i.logger = l
		}
	}
}

// New creates an Importer writing to store.
func New(source Source, store catalog.Store, opts ...Option) *Importer {
	i := &Importer{
		source: source,
		store:  store,
		cfg:    clustering.DefaultMoodConfig(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Import fetches up to limit liked songs (all when limit <= 0), labels
// them and upserts them into the store.
func (i *Importer) Import(ctx context.Context, limit int) (*Result, error) {
	liked, err := i.source.FetchLikedSongs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching liked songs: %w", err)
	}

	result := &Result{
		ByEmotion:  make(map[emotion.Emotion]int),
		BySource:   make(map[string]int),
		ImportedAt: i.now(),
	}
	if len(liked) == 0 {
		return result, nil
	}

	tracks := make([]clustering.Track, len(liked))
	for n, t := range liked {
		tracks[n] = t.ClusterTrack()
	}

	// Audio features are unavailable to many API clients; tags still work.
	if err := i.source.FetchAudioFeatures(ctx, tracks); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		i.logger.Warn("audio features unavailable, labelling from tags", "error", err)
	}

	groups, unassigned, err := clustering.GroupByEmotion(tracks, i.cfg)
	if err != nil {
		return nil, fmt.Errorf("clustering tracks: %w", err)
	}
	result.Groups = groups

	labels := make(map[string]emotion.Emotion, len(liked))
	sources := make(map[string]string, len(liked))
	for _, g := range groups {
		for _, t := range g.Tracks {
			labels[t.ID] = g.Emotion
			sources[t.ID] = FromClusters
		}
	}

	songTags, err := i.labelFromTags(ctx, unassigned, labels, sources)
	if err != nil {
		return nil, err
	}

	songs := make([]catalog.Song, len(liked))
	for n, t := range liked {
		e, ok := labels[t.ID]
		if !ok {
			e = emotion.Neutral
			sources[t.ID] = FromDefault
		}
		songs[n] = t.Song(e)
		result.ByEmotion[e]++
		result.BySource[sources[t.ID]]++
	}

	if err := i.store.UpsertBatch(ctx, songs); err != nil {
		return nil, fmt.Errorf("storing songs: %w", err)
	}

	if w, ok := i.store.(TagWriter); ok && len(songTags) > 0 {
		if err := w.UpsertTags(ctx, songTags); err != nil {
			return nil, fmt.Errorf("storing tags: %w", err)
		}
	}

	result.Total = len(songs)
	i.logger.Info("library imported",
		"songs", result.Total,
		"clustered", result.BySource[FromClusters],
		"tagged", result.BySource[FromTags],
		"defaulted", result.BySource[FromDefault],
	)
	return result, nil
}

// labelFromTags fills labels for tracks whose tags carry a mood and returns
// the tags to persist.
func (i *Importer) labelFromTags(ctx context.Context, tracks []clustering.Track, labels map[string]emotion.Emotion, sources map[string]string) ([]db.SongTag, error) {
	if i.tagger == nil || len(tracks) == 0 {
		return nil, nil
	}

	lookups := make([]tags.Track, len(tracks))
	for n, t := range tracks {
		lookups[n] = tags.Track{ID: t.ID, Name: t.Name, Artist: t.Artist}
	}

	results, err := i.tagger.FetchTagsForTracks(ctx, lookups)
	if err != nil {
		return nil, fmt.Errorf("fetching tags: %w", err)
	}

	fetchedAt := i.now()
	var songTags []db.SongTag
	for _, r := range results {
		if r.Error != nil {
			i.logger.Debug("tag lookup failed", "track", r.TrackID, "error", r.Error)
			continue
		}
		if r.Source == tags.SourceNone {
			continue
		}
		songTags = append(songTags, toSongTags(spotify.IDPrefix+r.TrackID, r.Source, r.Tags, fetchedAt)...)
		if r.Emotion == emotion.Neutral {
			continue
		}
		labels[r.TrackID] = r.Emotion
		sources[r.TrackID] = FromTags
	}
	return songTags, nil
}

func toSongTags(songID, source string, in []lastfm.Tag, fetchedAt time.Time) []db.SongTag {
	out := make([]db.SongTag, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, t := range in {
		if t.Name == "" || seen[t.Name] {
			continue
		}
		seen[t.Name] = true
		out = append(out, db.SongTag{
			SongID:    songID,
			TagName:   t.Name,
			TagCount:  t.Count,
			Source:    source,
			FetchedAt: fetchedAt,
		})
	}
	return out
}
