package library

import (
	"context"
	"errors"
	"testing"

	"github.com/justestif/moodtunes/internal/catalog"
	"github.com/justestif/moodtunes/internal/clustering"
	"github.com/justestif/moodtunes/internal/db"
	"github.com/justestif/moodtunes/internal/emotion"
	"github.com/justestif/moodtunes/internal/lastfm"
	"github.com/justestif/moodtunes/internal/spotify"
	"github.com/justestif/moodtunes/internal/tags"
)

type fakeSource struct {
	liked       []spotify.LikedTrack
	features    map[string][2]float32 // energy, valence
	likedErr    error
	featuresErr error
}

func (f *fakeSource) FetchLikedSongs(_ context.Context, limit int) ([]spotify.LikedTrack, error) {
	if f.likedErr != nil {
		return nil, f.likedErr
	}
	if limit > 0 && limit < len(f.liked) {
		return f.liked[:limit], nil
	}
	return f.liked, nil
}

func (f *fakeSource) FetchAudioFeatures(_ context.Context, tracks []clustering.Track) error {
	if f.featuresErr != nil {
		return f.featuresErr
	}
	for i := range tracks {
		ev, ok := f.features[tracks[i].ID]
		if !ok {
			continue
		}
		energy, valence, zero := ev[0], ev[1], float32(0.2)
		tracks[i].Energy = &energy
		tracks[i].Valence = &valence
		tracks[i].Acousticness = &zero
		tracks[i].Danceability = &zero
	}
	return nil
}

type fakeFetcher struct {
	byTrack map[string][]lastfm.Tag
}

func (f *fakeFetcher) GetTags(_ context.Context, _, track string) ([]lastfm.Tag, string, error) {
	t, ok := f.byTrack[track]
	if !ok {
		return nil, tags.SourceNone, nil
	}
	return t, lastfm.SourceTrack, nil
}

// taggedStore is a memory store that also keeps tags.
type taggedStore struct {
	*catalog.Memory
	tags []db.SongTag
}

func (s *taggedStore) UpsertTags(_ context.Context, t []db.SongTag) error {
	s.tags = append(s.tags, t...)
	return nil
}

func likedLibrary() *fakeSource {
	return &fakeSource{
		liked: []spotify.LikedTrack{
			{ID: "a", Name: "Anthem", Artist: "Loud", DurationMs: 200000},
			{ID: "b", Name: "Tears", Artist: "Blue", DurationMs: 180000},
			{ID: "c", Name: "Nothing", Artist: "Plain", DurationMs: 150000},
		},
		features: map[string][2]float32{"a": {0.95, 0.9}},
	}
}

func tagService() *tags.Service {
	return tags.NewService(&fakeFetcher{byTrack: map[string][]lastfm.Tag{
		"Tears":   {{Name: "sad", Count: 100}, {Name: "sad", Count: 90}, {Name: "indie", Count: 40}},
		"Nothing": {{Name: "rock", Count: 10}},
	}})
}

func TestImport_LabelsFromClustersThenTagsThenDefault(t *testing.T) {
	store := &taggedStore{Memory: catalog.NewMemory()}
	imp := New(likedLibrary(), store, WithTagger(tagService()))

	result, err := imp.Import(context.Background(), 0)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Total != 3 {
		t.Errorf("Total = %d, want 3", result.Total)
	}

	want := map[string]emotion.Emotion{
		"spotify:a": emotion.Excited,
		"spotify:b": emotion.Sad,
		"spotify:c": emotion.Neutral,
	}
	songs, _ := store.List(context.Background())
	if len(songs) != 3 {
		t.Fatalf("stored %d songs, want 3", len(songs))
	}
	for _, s := range songs {
		if s.Emotion != want[s.ID] {
			t.Errorf("%s emotion = %q, want %q", s.ID, s.Emotion, want[s.ID])
		}
	}

	if result.BySource[FromClusters] != 1 || result.BySource[FromTags] != 1 || result.BySource[FromDefault] != 1 {
		t.Errorf("BySource = %v, want one of each", result.BySource)
	}

	// Tags for both tagged tracks are kept, duplicates dropped.
	if len(store.tags) != 3 {
		t.Fatalf("stored %d tags, want 3", len(store.tags))
	}
	for _, tag := range store.tags {
		if tag.SongID != "spotify:b" && tag.SongID != "spotify:c" {
			t.Errorf("tag for unexpected song %q", tag.SongID)
		}
		if tag.FetchedAt.IsZero() {
			t.Error("tag without FetchedAt")
		}
	}
}

func TestImport_FeaturesUnavailable(t *testing.T) {
	src := likedLibrary()
	src.featuresErr = errors.New("403 forbidden")
	store := catalog.NewMemory()

	result, err := New(src, store, WithTagger(tagService())).Import(context.Background(), 0)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.BySource[FromClusters] != 0 {
		t.Errorf("clustered %d tracks without features", result.BySource[FromClusters])
	}
	if result.ByEmotion[emotion.Sad] != 1 || result.ByEmotion[emotion.Neutral] != 2 {
		t.Errorf("ByEmotion = %v, want 1 sad and 2 neutral", result.ByEmotion)
	}
}

func TestImport_NoTagger(t *testing.T) {
	store := catalog.NewMemory()
	result, err := New(likedLibrary(), store).Import(context.Background(), 0)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.ByEmotion[emotion.Neutral] != 2 {
		t.Errorf("neutral = %d, want 2", result.ByEmotion[emotion.Neutral])
	}
}

func TestImport_Limit(t *testing.T) {
	store := catalog.NewMemory()
	result, err := New(likedLibrary(), store).Import(context.Background(), 1)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Total != 1 {
		t.Errorf("Total = %d, want 1", result.Total)
	}
}

func TestImport_EmptyLibrary(t *testing.T) {
	store := catalog.NewMemory()
	result, err := New(&fakeSource{}, store).Import(context.Background(), 0)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Total != 0 {
		t.Errorf("Total = %d, want 0", result.Total)
	}
}

func TestImport_FetchError(t *testing.T) {
	src := &fakeSource{likedErr: errors.New("unauthorized")}
	_, err := New(src, catalog.NewMemory()).Import(context.Background(), 0)
	if err == nil {
		t.Fatal("Import() succeeded despite fetch error")
	}
}
