// Package capture implements the capture/analysis flow shared by the text
// and photo input paths: Idle -> Acquiring -> Analyzing -> Result, with
// reset back to Idle from anywhere.
//
// A Session is a plain value. Every transition takes the current session
// and returns the next one, so the flow can be driven and tested without a
// UI. Screen wraps one live session for front-ends that need asynchronous
// analysis.
package capture

import (
	"errors"
	"fmt"
	"strings"
)

// State is a position in the capture flow.
type State int

const (
	StateIdle State = iota
	StateAcquiring
	StateAnalyzing
	StateResult
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiring:
		return "acquiring"
	case StateAnalyzing:
		return "analyzing"
	case StateResult:
		return "result"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Modality is the kind of input a session collects.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityPhoto Modality = "photo"
)

// ParseModality validates a modality name.
func ParseModality(s string) (Modality, error) {
	m := Modality(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := acquirers[m]; !ok {
		return "", fmt.Errorf("unknown modality %q", s)
	}
	return m, nil
}

// Sentinel errors. All of them leave the session in a retryable state.
var (
	// ErrInputRejected is returned when a submission has nothing to analyze.
	ErrInputRejected = errors.New("input rejected")

	// ErrResourceUnavailable is returned when the camera cannot be opened.
	ErrResourceUnavailable = errors.New("resource unavailable")

	// ErrClassificationFailed is returned when analysis errors or times out.
	ErrClassificationFailed = errors.New("classification failed")

	// ErrAnalysisPending is returned when a second submission arrives while
	// the first one is still being analyzed.
	ErrAnalysisPending = errors.New("analysis already in progress")

	// ErrInvalidTransition is returned when an action does not apply to the
	// current state or modality.
	ErrInvalidTransition = errors.New("invalid transition")
)

func transitionError(action string, s State) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, action, s)
}
