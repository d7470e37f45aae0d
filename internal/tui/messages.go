package tui

import (
	"github.com/google/uuid"

	"github.com/justestif/moodtunes/internal/catalog"
)

// StartedMsg carries the result of leaving Idle.
type StartedMsg struct {
	Err error
}

// SubmittedMsg is sent once a submission moved the session to Analyzing,
// or failed to.
type SubmittedMsg struct {
	Session uuid.UUID
	Done    <-chan struct{}
	Err  error
}

// AnalysisDoneMsg is sent when the analysis started by a submission settled.
type AnalysisDoneMsg struct {
	Session uuid.UUID
}

// SongsMsg carries the recommendations for the detected emotion.
type SongsMsg struct {
	Songs []catalog.Song
	Err   error
}

// DeckReadyMsg is sent once every listed song has a playback handle.
type DeckReadyMsg struct {
	Err error
}

// TrackEndedMsg is sent when a song finished playing on its own.
type TrackEndedMsg struct{}
