package web

import (
	"github.com/justestif/moodtunes/internal/capture"
	"github.com/justestif/moodtunes/internal/catalog"
	"github.com/justestif/moodtunes/internal/emotion"
)

type emotionView struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Glyph   string `json:"glyph"`
	Color   string `json:"color"`
	Heading string `json:"heading"`
}

func newEmotionView(e emotion.Emotion) emotionView {
	m := e.Meta()
	return emotionView{
		Name:    e.String(),
		Label:   m.Label,
		Glyph:   m.Glyph,
		Color:   m.Color,
		Heading: emotion.Heading(e),
	}
}

type screenView struct {
	ID         string       `json:"id"`
	Session    string       `json:"session"`
	Modality   string       `json:"modality"`
	State      string       `json:"state"`
	Text       string       `json:"text"`
	HasFrame   bool         `json:"hasFrame"`
	CameraLive bool         `json:"cameraLive"`
	Emotion    *emotionView `json:"emotion"`
	Error      string       `json:"error,omitempty"`
}

func newScreenView(sc *screen, s capture.Session) screenView {
	v := screenView{
		ID:       sc.id,
		Session:  s.ID.String(),
		Modality: string(s.Modality),
		State:    s.State.String(),
		Text:     s.Text(),
		Error:    s.Error,
	}
	if p, ok := s.Input.(*capture.PhotoInput); ok {
		v.HasFrame = len(p.Payload()) > 0
		v.CameraLive = p.Live()
	}
	if e, ok := s.Result(); ok {
		ev := newEmotionView(e)
		v.Emotion = &ev
	}
	return v
}

type songView struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Emotion   string `json:"emotion"`
	CoverURL  string `json:"coverUrl"`
	Duration  string `json:"duration"`
	AudioURL  string `json:"audioUrl"`
	ITunesURL string `json:"itunesUrl,omitempty"`
}

func newSongViews(songs []catalog.Song) []songView {
	out := make([]songView, len(songs))
	for i, s := range songs {
		out[i] = songView{
			ID:        s.ID,
			Title:     s.Title,
			Artist:    s.Artist,
			Emotion:   s.Emotion.String(),
			CoverURL:  s.CoverURL,
			Duration:  s.Duration,
			AudioURL:  s.AudioURL,
			ITunesURL: s.ITunesURL,
		}
	}
	return out
}
