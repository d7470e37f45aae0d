package clustering

import (
	"fmt"
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/justestif/moodtunes/internal/emotion"
)

// MoodConfig holds clustering parameters.
type MoodConfig struct {
	NumClusters    int // Number of clusters to create (default: 6)
	MinClusterSize int // Clusters smaller than this are labelled per track
}

// DefaultMoodConfig returns the recommended default configuration.
func DefaultMoodConfig() MoodConfig {
	return MoodConfig{
		NumClusters:    len(emotion.All),
		MinClusterSize: 2,
	}
}

// Group is the set of tracks assigned one emotion.
type Group struct {
	Emotion  emotion.Emotion
	Tracks   []Track            // Ordered by AddedAt
	Centroid map[string]float32 // Average feature values of the group
}

// trackObservation wraps a Track to implement clusters.Observation interface.
type trackObservation struct {
	track  *Track
	coords clusters.Coordinates
}

func (o trackObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o trackObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// featureNames defines the audio features used for clustering.
var featureNames = []string{"energy", "valence", "danceability", "acousticness"}

// GroupByEmotion clusters tracks by audio feature similarity with k-means
// and labels each cluster with the emotion of its centroid. Tracks in
// clusters below MinClusterSize are labelled from their own features.
// Tracks missing features are returned as unassigned.
//
// Groups come back in emotion.All order, at most one per emotion.
func GroupByEmotion(tracks []Track, cfg MoodConfig) ([]Group, []Track, error) {
	if len(tracks) == 0 {
		return nil, nil, nil
	}

	if cfg.NumClusters <= 0 {
		cfg.NumClusters = DefaultMoodConfig().NumClusters
	}

	var valid []*Track
	var unassigned []Track
	for i := range tracks {
		t := &tracks[i]
		if t.HasFeatures() {
			valid = append(valid, t)
		} else {
			unassigned = append(unassigned, *t)
		}
	}

	byEmotion := make(map[emotion.Emotion][]Track)

	// Too few tracks to partition: label each on its own.
	if len(valid) < cfg.NumClusters {
		for _, t := range valid {
			e := EmotionFor(extractCentroid(extractFeatures(t)))
			byEmotion[e] = append(byEmotion[e], *t)
		}
		return buildGroups(byEmotion), unassigned, nil
	}

	var obs clusters.Observations
	for _, t := range valid {
		obs = append(obs, trackObservation{track: t, coords: extractFeatures(t)})
	}

	km := kmeans.New()
	result, err := km.Partition(obs, cfg.NumClusters)
	if err != nil {
		return nil, nil, fmt.Errorf("k-means clustering: %w", err)
	}

	for _, cluster := range result {
		var members []Track
		for _, o := range cluster.Observations {
			if to, ok := o.(trackObservation); ok {
				members = append(members, *to.track)
			}
		}

		if len(members) < cfg.MinClusterSize {
			for _, t := range members {
				e := EmotionFor(extractCentroid(extractFeatures(&t)))
				byEmotion[e] = append(byEmotion[e], t)
			}
			continue
		}

		e := EmotionFor(extractCentroid(cluster.Center))
		byEmotion[e] = append(byEmotion[e], members...)
	}

	return buildGroups(byEmotion), unassigned, nil
}

func buildGroups(byEmotion map[emotion.Emotion][]Track) []Group {
	var groups []Group
	for _, e := range emotion.All {
		members := byEmotion[e]
		if len(members) == 0 {
			continue
		}
		slices.SortFunc(members, func(a, b Track) int {
			return a.AddedAt.Compare(b.AddedAt)
		})
		groups = append(groups, Group{
			Emotion:  e,
			Tracks:   members,
			Centroid: meanCentroid(members),
		})
	}
	return groups
}

// meanCentroid averages the features of tracks that have them.
func meanCentroid(tracks []Track) map[string]float32 {
	sum := make(clusters.Coordinates, len(featureNames))
	n := 0
	for i := range tracks {
		if !tracks[i].HasFeatures() {
			continue
		}
		for j, v := range extractFeatures(&tracks[i]) {
			sum[j] += v
		}
		n++
	}
	if n == 0 {
		return nil
	}
	for j := range sum {
		sum[j] /= float64(n)
	}
	return extractCentroid(sum)
}

// extractFeatures extracts the audio features used for clustering as a coordinate vector.
func extractFeatures(t *Track) clusters.Coordinates {
	return clusters.Coordinates{
		float64(*t.Energy),
		float64(*t.Valence),
		float64(*t.Danceability),
		float64(*t.Acousticness),
	}
}

func extractCentroid(c clusters.Coordinates) map[string]float32 {
	centroid := make(map[string]float32, len(featureNames))
	for i, name := range featureNames {
		if i < len(c) {
			centroid[name] = float32(c[i])
		}
	}
	return centroid
}
