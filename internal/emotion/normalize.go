package emotion

import "strings"

// classifierLabels maps external classifier vocabularies onto the taxonomy.
// Every canonical name maps to itself so Normalize is idempotent.
var classifierLabels = map[string]Emotion{
	"calm":     Calm,
	"excited":  Excited,
	"joy":      Happy,
	"happy":    Happy,
	"sadness":  Sad,
	"sad":      Sad,
	"anger":    Angry,
	"angry":    Angry,
	"fear":     Calm,
	"disgust":  Sad,
	"shame":    Sad,
	"surprise": Excited,
	"neutral":  Neutral,
}

// Normalize maps a raw classifier label onto the taxonomy. Lookup is
// case-insensitive and unmapped labels become Neutral, so the result is
// always valid.
func Normalize(raw string) Emotion {
	if e, ok := classifierLabels[strings.ToLower(raw)]; ok {
		return e
	}
	return Neutral
}
