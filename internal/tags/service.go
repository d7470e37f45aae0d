// Package tags fetches Last.fm tags for songs and reads an emotion out of
// them.
package tags

import (
	"context"
	"strings"
	"sync"

	"github.com/justestif/moodtunes/internal/emotion"
	"github.com/justestif/moodtunes/internal/lastfm"
)

// SourceNone means no tags were found.
const SourceNone = "none"

// Default concurrency for batch processing.
const DefaultConcurrency = 5

// scoredTags is how many of the most used tags feed the emotion score.
const scoredTags = 10

// Track represents the minimal track info needed for tag lookup.
type Track struct {
	ID     string
	Name   string
	Artist string
}

// TrackTags holds the tags fetched for a track and the emotion they imply.
type TrackTags struct {
	TrackID string
	Tags    []lastfm.Tag
	Source  string          // lastfm.SourceTrack, lastfm.SourceArtist or SourceNone
	Emotion emotion.Emotion // Neutral when the tags carry no mood
	Error   error           // Non-nil if fetching failed
}

// TagFetcher abstracts the Last.fm client for testing.
type TagFetcher interface {
	GetTags(ctx context.Context, artist, track string) ([]lastfm.Tag, string, error)
}

// Service fetches tags with a bounded worker pool.
type Service struct {
	fetcher     TagFetcher
	concurrency int
}

// Option configures a Service.
type Option func(*Service)

// WithConcurrency sets the number of concurrent tag fetch operations.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewService creates a new tag service.
func NewService(fetcher TagFetcher, opts ...Option) *Service {
	s := &Service{
		fetcher:     fetcher,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EmotionFromTags scores the names of the most used tags with the text
// lexicons. Tags are assumed ordered by count, as Last.fm returns them.
func EmotionFromTags(tags []lastfm.Tag) emotion.Emotion {
	return emotion.ScoreText(strings.Join(lastfm.Names(tags, scoredTags), " "))
}

// FetchTagsForTracks fetches tags for multiple tracks concurrently.
// Results are returned in the same order as input tracks.
// Individual fetch errors are captured in TrackTags.Error rather than failing the batch.
func (s *Service) FetchTagsForTracks(ctx context.Context, tracks []Track) ([]TrackTags, error) {
	if len(tracks) == 0 {
		return []TrackTags{}, nil
	}

	results := make([]TrackTags, len(tracks))

	type workItem struct {
		index int
		track Track
	}
	workCh := make(chan workItem, len(tracks))
	for i, t := range tracks {
		workCh <- workItem{index: i, track: t}
	}
	close(workCh)

	var wg sync.WaitGroup
	for i := 0; i < s.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for work := range workCh {
				results[work.index] = s.fetchOne(ctx, work.track)
			}
		}()
	}

	wg.Wait()

	if ctx.Err() != nil {
		return results, ctx.Err()
	}

	return results, nil
}

func (s *Service) fetchOne(ctx context.Context, t Track) TrackTags {
	result := TrackTags{
		TrackID: t.ID,
		Tags:    []lastfm.Tag{},
		Source:  SourceNone,
		Emotion: emotion.Neutral,
	}
	if err := ctx.Err(); err != nil {
		result.Error = err
		return result
	}

	tags, source, err := s.fetcher.GetTags(ctx, t.Artist, t.Name)
	if err != nil {
		result.Error = err
		return result
	}
	if len(tags) == 0 {
		return result
	}

	result.Tags = tags
	result.Source = source
	result.Emotion = EmotionFromTags(tags)
	return result
}
