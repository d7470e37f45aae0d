package clustering

import "github.com/justestif/moodtunes/internal/emotion"

const (
	highEnergy    = 0.6
	highValence   = 0.5
	excitedEnergy = 0.8
	neutralRadius = 0.1
)

// EmotionFor maps an audio feature centroid to an emotion.
// Uses a 2x2 energy/valence quadrant system with two refinements.
//
// Quadrants:
//   - High Energy + High Valence = happy, or excited above 0.8 energy
//   - High Energy + Low Valence  = angry
//   - Low Energy  + High Valence = calm
//   - Low Energy  + Low Valence  = sad
//
// Centroids within 0.1 of the middle on both axes are neutral.
func EmotionFor(centroid map[string]float32) emotion.Emotion {
	energy := centroid["energy"]
	valence := centroid["valence"]

	if abs(energy-0.5) < neutralRadius && abs(valence-0.5) < neutralRadius {
		return emotion.Neutral
	}

	switch {
	case energy > highEnergy && valence > highValence:
		if energy > excitedEnergy {
			return emotion.Excited
		}
		return emotion.Happy
	case energy > highEnergy:
		return emotion.Angry
	case valence > highValence:
		return emotion.Calm
	default:
		return emotion.Sad
	}
}

// Describe returns a short description of a group's sound.
func Describe(e emotion.Emotion, centroid map[string]float32) string {
	var base string
	switch e {
	case emotion.Happy:
		base = "Bright and upbeat"
	case emotion.Excited:
		base = "High-energy, positive vibes"
	case emotion.Angry:
		base = "Intense, driving energy with darker tones"
	case emotion.Calm:
		base = "Relaxed and uplifting"
	case emotion.Sad:
		base = "Contemplative and introspective"
	default:
		base = "Balanced and even"
	}
	if centroid["acousticness"] > 0.6 {
		return base + " (acoustic)"
	}
	return base
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
