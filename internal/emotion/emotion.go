// Package emotion defines the closed emotion taxonomy and the pure functions
// that map text and external classifier labels onto it.
package emotion

import (
	"fmt"
	"strings"
)

// Emotion is one of the six canonical mood labels.
type Emotion string

// The taxonomy. Neutral is the fallback for anything unrecognized.
const (
	Happy   Emotion = "happy"
	Sad     Emotion = "sad"
	Angry   Emotion = "angry"
	Calm    Emotion = "calm"
	Excited Emotion = "excited"
	Neutral Emotion = "neutral"
)

// All lists every emotion in declaration order.
var All = []Emotion{Happy, Sad, Angry, Calm, Excited, Neutral}

// Metadata is the display data for one emotion.
type Metadata struct {
	Label string // "Happy"
	Glyph string // "😊"
	Color string // CSS/theme token, e.g. "emotion-happy"
}

var metadata = map[Emotion]Metadata{
	Happy:   {Label: "Happy", Glyph: "😊", Color: "emotion-happy"},
	Sad:     {Label: "Sad", Glyph: "😢", Color: "emotion-sad"},
	Angry:   {Label: "Angry", Glyph: "😠", Color: "emotion-angry"},
	Calm:    {Label: "Calm", Glyph: "😌", Color: "emotion-calm"},
	Excited: {Label: "Excited", Glyph: "🎉", Color: "emotion-excited"},
	Neutral: {Label: "Neutral", Glyph: "😐", Color: "emotion-neutral"},
}

// QuickGlyphs are the emoji offered as one-tap additions to a text message.
var QuickGlyphs = []string{"😊", "😢", "😠", "😌", "🎉", "😐", "❤️", "💔", "🔥", "🧘"}

// String returns the canonical lower-case name.
func (e Emotion) String() string {
	return string(e)
}

// Valid reports whether e belongs to the taxonomy.
func (e Emotion) Valid() bool {
	_, ok := metadata[e]
	return ok
}

// Meta returns the display metadata for e. Invalid values get Neutral's.
func (e Emotion) Meta() Metadata {
	if m, ok := metadata[e]; ok {
		return m
	}
	return metadata[Neutral]
}

// Label returns the display label, e.g. "Happy".
func (e Emotion) Label() string {
	return e.Meta().Label
}

// Glyph returns the display emoji.
func (e Emotion) Glyph() string {
	return e.Meta().Glyph
}

// Heading returns the recommendation heading, e.g. "Happy Vibes".
func Heading(e Emotion) string {
	return e.Label() + " Vibes"
}

// Parse converts a canonical name into an Emotion. Unlike Normalize it
// rejects anything outside the taxonomy, which makes it suitable for
// validating request parameters.
func Parse(s string) (Emotion, error) {
	e := Emotion(strings.ToLower(strings.TrimSpace(s)))
	if !e.Valid() {
		return "", fmt.Errorf("unknown emotion %q", s)
	}
	return e, nil
}
