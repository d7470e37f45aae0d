package emotion

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want Emotion
	}{
		{"joy", Happy},
		{"JOY", Happy},
		{"Sadness", Sad},
		{"anger", Angry},
		{"fear", Calm},
		{"disgust", Sad},
		{"shame", Sad},
		{"surprise", Excited},
		{"neutral", Neutral},
		{"happy", Happy},
		{"calm", Calm},
		{"excited", Excited},
		{"contempt", Neutral},
		{"", Neutral},
		{" joy ", Neutral},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"joy", "sadness", "anger", "fear", "disgust", "shame", "surprise", "neutral",
		"calm", "excited", "Happy", "unknown", "", "😊", "ANGRY"}
	for _, e := range All {
		inputs = append(inputs, string(e), strings.ToUpper(string(e)))
	}

	for _, in := range inputs {
		first := Normalize(in)
		if !first.Valid() {
			t.Fatalf("Normalize(%q) = %q, not in taxonomy", in, first)
		}
		if again := Normalize(first.String()); again != first {
			t.Errorf("Normalize(Normalize(%q)) = %q, want %q", in, again, first)
		}
	}
}

func TestParse(t *testing.T) {
	for _, e := range All {
		got, err := Parse(strings.ToUpper(string(e)))
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", e, err)
		}
		if got != e {
			t.Errorf("Parse(%q) = %q", e, got)
		}
	}

	if _, err := Parse("joy"); err == nil {
		t.Error("Parse(joy) should fail: not a canonical name")
	}
}

func TestMetadata(t *testing.T) {
	for _, e := range All {
		m := e.Meta()
		if m.Label == "" || m.Glyph == "" || m.Color == "" {
			t.Errorf("%s has incomplete metadata: %+v", e, m)
		}
	}

	if got := Emotion("bogus").Label(); got != "Neutral" {
		t.Errorf("invalid emotion label = %q, want Neutral", got)
	}
	if got := Heading(Happy); got != "Happy Vibes" {
		t.Errorf("Heading(Happy) = %q", got)
	}
}

func TestScoreText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Emotion
	}{
		{name: "empty", text: "", want: Neutral},
		{name: "whitespace", text: "   ", want: Neutral},
		{name: "no keyword", text: "the train leaves at noon", want: Neutral},
		{name: "happy and excited", text: "I am so happy and excited", want: Happy},
		{name: "tie prefers happy over excited", text: "great party", want: Happy},
		{name: "tie prefers sad over angry", text: "sad and mad", want: Sad},
		{name: "tie prefers calm over excited", text: "zen 🚀", want: Calm},
		{name: "sad dominates", text: "I feel so sad and heartbroken 💔", want: Sad},
		{name: "uppercase", text: "FURIOUS and ANNOYED", want: Angry},
		{name: "emoji only", text: "🧘 🌿", want: Calm},
		{name: "excited wins outright", text: "pumped, hyped and thrilled 🔥", want: Excited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreText(tt.text); got != tt.want {
				t.Errorf("ScoreText(%q) = %q, want %q (scores %v)", tt.text, got, tt.want, Score(tt.text))
			}
		})
	}
}

func TestScore_PresenceNotFrequency(t *testing.T) {
	scores := Score("sad sad sad sad")
	if scores[Sad] != 1 {
		t.Errorf("repeated entry scored %d, want 1", scores[Sad])
	}

	scores = Score("I am so happy and excited")
	if scores[Happy] != 2 {
		t.Errorf("happy score = %d, want 2", scores[Happy])
	}
	if scores[Excited] != 1 {
		t.Errorf("excited score = %d, want 1", scores[Excited])
	}
	if scores[Neutral] != 0 {
		t.Errorf("neutral score = %d, want 0", scores[Neutral])
	}
}

func TestScore_FreshVectorPerCall(t *testing.T) {
	_ = Score("furious")
	if got := Score("")[Angry]; got != 0 {
		t.Errorf("score leaked across calls: %d", got)
	}
}

func TestLexicon(t *testing.T) {
	if Lexicon(Neutral) != nil {
		t.Error("neutral should have no lexicon")
	}
	entries := Lexicon(Happy)
	entries[0] = "mutated"
	if Lexicon(Happy)[0] == "mutated" {
		t.Error("Lexicon returned shared slice")
	}
}
