package catalog

import "github.com/justestif/moodtunes/internal/emotion"

const (
	coverHappy   = "https://images.unsplash.com/photo-1514525253161-7a46d19cd819?w=300&h=300&fit=crop"
	coverSad     = "https://images.unsplash.com/photo-1515694346937-94d85e41e6f0?w=300&h=300&fit=crop"
	coverEnergy  = "https://images.unsplash.com/photo-1470225620780-dba8ba36b745?w=300&h=300&fit=crop"
	coverCalm    = "https://images.unsplash.com/photo-1506157786151-b8491531f063?w=300&h=300&fit=crop"
	coverNeutral = "https://images.unsplash.com/photo-1511379938547-c1f69419868d?w=300&h=300&fit=crop"
)

// builtin is the bundled music database. Audio URLs are relative to the
// configured media root.
var builtin = []Song{
	{ID: "happy-1", Title: "The Beast in My Head", Artist: "Brightest Avenue", Emotion: emotion.Happy,
		CoverURL: coverHappy, Duration: "3:00", AudioURL: "/musicData/happy/brightestavenue-the-beast-in-my-head-155364.mp3"},

	{ID: "sad-1", Title: "Cold War", Artist: "R33lm0bstr", Emotion: emotion.Sad,
		CoverURL: coverSad, Duration: "3:30", AudioURL: "/musicData/sad/r33lm0bstr-coldwar-offical-audio-112451.mp3"},
	{ID: "sad-2", Title: "The Beast in My Head", Artist: "Brightest Avenue", Emotion: emotion.Sad,
		CoverURL: coverSad, Duration: "3:00", AudioURL: "/musicData/sad/brightestavenue-the-beast-in-my-head-155364 (1).mp3"},

	{ID: "angry-1", Title: "Cold War", Artist: "R33lm0bstr", Emotion: emotion.Angry,
		CoverURL: coverEnergy, Duration: "3:30", AudioURL: "/musicData/angry/r33lm0bstr-coldwar-offical-audio-112451.mp3"},
	{ID: "angry-2", Title: "The Beast in My Head", Artist: "Brightest Avenue", Emotion: emotion.Angry,
		CoverURL: coverEnergy, Duration: "3:00", AudioURL: "/musicData/angry/brightestavenue-the-beast-in-my-head-155364.mp3"},

	{ID: "calm-1", Title: "Sad Instrumental Music", Artist: "Andriig", Emotion: emotion.Calm,
		CoverURL: coverCalm, Duration: "4:00", AudioURL: "/musicData/calm/andriig-sad-sad-instrumental-music-471913.mp3"},

	{ID: "excited-1", Title: "Excited Event Music", Artist: "HitsLab", Emotion: emotion.Excited,
		CoverURL: coverEnergy, Duration: "3:15", AudioURL: "/musicData/excited/hitslab-exciting-excited-event-music-460586.mp3"},
	{ID: "excited-2", Title: "Excited Event Music", Artist: "TataMusic", Emotion: emotion.Excited,
		CoverURL: coverEnergy, Duration: "3:20", AudioURL: "/musicData/excited/tatamusic-exciting-excited-event-music-478209.mp3"},

	{ID: "neutral-1", Title: "Science Documentary", Artist: "Lexin Music", Emotion: emotion.Neutral,
		CoverURL: coverNeutral, Duration: "4:00", AudioURL: "/musicData/neutral/lexin_music-science-documentary-169621.mp3"},
	{ID: "neutral-2", Title: "Ambient Neutral V21", Artist: "SenorMusica81", Emotion: emotion.Neutral,
		CoverURL: coverNeutral, Duration: "3:45", AudioURL: "/musicData/neutral/senormusica81-ambient-neutral-v21-456869 (1).mp3"},
}

// Builtin returns a copy of the bundled songs.
func Builtin() []Song {
	out := make([]Song, len(builtin))
	copy(out, builtin)
	return out
}

// BuiltinFor returns the bundled songs tagged with e.
func BuiltinFor(e emotion.Emotion) []Song {
	var out []Song
	for _, s := range builtin {
		if s.Emotion == e {
			out = append(out, s)
		}
	}
	return out
}
