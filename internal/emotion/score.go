package emotion

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// scoringOrder is the tie-break order: the first emotion reaching the
// maximum score wins. Neutral has no lexicon.
var scoringOrder = []Emotion{Happy, Sad, Angry, Calm, Excited}

// lexicons hold the keyword/emoji entries per emotion. Entries match as
// substrings of the lower-cased text.
var lexicons = map[Emotion][]string{
	Happy:   {"happy", "joy", "excited", "great", "wonderful", "amazing", "love", "😊", "😄", "🥳", "❤️", "💕", "😁", "🎉", "✨"},
	Sad:     {"sad", "crying", "depressed", "lonely", "heartbroken", "miss", "hurt", "😢", "😭", "💔", "😔", "😞"},
	Angry:   {"angry", "mad", "furious", "hate", "annoyed", "frustrated", "😠", "😡", "🤬", "💢"},
	Calm:    {"calm", "peaceful", "relaxed", "serene", "quiet", "zen", "😌", "🧘", "☮️", "🌿"},
	Excited: {"excited", "pumped", "hyped", "energized", "thrilled", "party", "🔥", "⚡", "💪", "🚀"},
}

// Lexicon returns a copy of the entries scored for e. Neutral returns nil.
func Lexicon(e Emotion) []string {
	entries := lexicons[e]
	if entries == nil {
		return nil
	}
	out := make([]string, len(entries))
	copy(out, entries)
	return out
}

// ScoreVector counts matched lexicon entries per emotion.
type ScoreVector map[Emotion]int

// Best returns the winning emotion: the first in tie-break order with the
// strictly highest score, or Neutral when nothing matched.
func (v ScoreVector) Best() Emotion {
	best, bestScore := Neutral, 0
	for _, e := range scoringOrder {
		if v[e] > bestScore {
			best, bestScore = e, v[e]
		}
	}
	return best
}

// Score builds the ScoreVector for text. Each lexicon entry contributes at
// most 1, however often it occurs.
func Score(text string) ScoreVector {
	lowered := strings.ToLower(norm.NFC.String(text))

	scores := make(ScoreVector, len(All))
	for _, e := range All {
		scores[e] = 0
	}
	for _, e := range scoringOrder {
		for _, entry := range lexicons[e] {
			if strings.Contains(lowered, entry) {
				scores[e]++
			}
		}
	}
	return scores
}

// ScoreText maps free-form text to an emotion. It is pure and total: empty
// or unmatched text yields Neutral.
func ScoreText(text string) Emotion {
	return Score(text).Best()
}
