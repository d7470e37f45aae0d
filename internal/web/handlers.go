package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/justestif/moodtunes/internal/camera"
	"github.com/justestif/moodtunes/internal/capture"
	"github.com/justestif/moodtunes/internal/catalog"
	"github.com/justestif/moodtunes/internal/emotion"
)

// maxBodySize bounds JSON request bodies.
const maxBodySize = 1 << 20

// errBadRequest marks malformed requests.
var errBadRequest = errors.New("bad request")

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	catalog *catalog.Service
	screens *ScreenStore
	logger  *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cat *catalog.Service, screens *ScreenStore, logger *slog.Logger) *Handlers {
	return &Handlers{
		catalog: cat,
		screens: screens,
		logger:  logger,
	}
}

// Health reports liveness (GET /healthz).
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "screens": h.screens.Len()})
}

// Emotions lists the taxonomy with display metadata (GET /api/emotions).
func (h *Handlers) Emotions(w http.ResponseWriter, _ *http.Request) {
	out := make([]emotionView, len(emotion.All))
	for i, e := range emotion.All {
		out[i] = newEmotionView(e)
	}
	writeJSON(w, http.StatusOK, out)
}

// Score maps free text to an emotion (POST /api/score).
func (h *Handlers) Score(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	scores := emotion.Score(req.Text)
	out := make(map[string]int, len(scores))
	for e, n := range scores {
		out[e.String()] = n
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"emotion": newEmotionView(scores.Best()),
		"scores":  out,
	})
}

// Normalize maps a raw classifier label into the taxonomy (POST /api/normalize).
func (h *Handlers) Normalize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label string `json:"label"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"emotion": newEmotionView(emotion.Normalize(req.Label))})
}

// Recommendations returns the playlist for an emotion
// (GET /api/music/recommendations?emotion=happy).
func (h *Handlers) Recommendations(w http.ResponseWriter, r *http.Request) {
	e, err := emotion.Parse(r.URL.Query().Get("emotion"))
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	songs, err := h.catalog.Recommend(r.Context(), e)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSongViews(songs))
}

// Songs returns every song, or those of one emotion when ?emotion= is set
// (GET /api/music/songs).
func (h *Handlers) Songs(w http.ResponseWriter, r *http.Request) {
	if q := r.URL.Query().Get("emotion"); q != "" {
		h.Recommendations(w, r)
		return
	}

	songs, err := h.catalog.All(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSongViews(songs))
}

// CreateScreen opens a screen with an Idle session (POST /api/screens).
func (h *Handlers) CreateScreen(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Modality string `json:"modality"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	m, err := capture.ParseModality(req.Modality)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	sc := h.screens.create(m)
	writeJSON(w, http.StatusCreated, newScreenView(sc, sc.capture.Session()))
}

// GetScreen returns the session snapshot (GET /api/screens/{id}).
func (h *Handlers) GetScreen(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.screen(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newScreenView(sc, sc.capture.Session()))
}

// DeleteScreen discards the session and releases the camera
// (DELETE /api/screens/{id}).
func (h *Handlers) DeleteScreen(w http.ResponseWriter, r *http.Request) {
	if err := h.screens.remove(chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Start leaves Idle (POST /api/screens/{id}/start).
func (h *Handlers) Start(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.screen(w, r)
	if !ok {
		return
	}
	s, err := sc.capture.Start(r.Context())
	h.respond(w, r, sc, s, err)
}

// EditText replaces the text buffer (PUT /api/screens/{id}/text).
func (h *Handlers) EditText(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.screen(w, r)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	s, err := sc.capture.Edit(req.Text)
	h.respond(w, r, sc, s, err)
}

// AppendGlyph adds a quick-pick glyph (POST /api/screens/{id}/glyph).
func (h *Handlers) AppendGlyph(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.screen(w, r)
	if !ok {
		return
	}
	var req struct {
		Glyph string `json:"glyph"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Glyph == "" {
		h.writeError(w, r, fmt.Errorf("%w: glyph is required", errBadRequest))
		return
	}
	s, err := sc.capture.AppendGlyph(req.Glyph)
	h.respond(w, r, sc, s, err)
}

// PushFrame stores a preview frame from the client's camera
// (POST /api/screens/{id}/frame, raw image body).
func (h *Handlers) PushFrame(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.screen(w, r)
	if !ok {
		return
	}
	if sc.upload == nil {
		h.writeError(w, r, fmt.Errorf("%w: screen does not accept uploaded frames", capture.ErrInvalidTransition))
		return
	}

	frame, err := io.ReadAll(io.LimitReader(r.Body, camera.MaxFrameSize+1))
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: reading frame: %w", errBadRequest, err))
		return
	}
	if len(frame) == 0 {
		h.writeError(w, r, fmt.Errorf("%w: empty frame", errBadRequest))
		return
	}
	if len(frame) > camera.MaxFrameSize {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "frame too large"})
		return
	}
	if err := sc.upload.Put(frame); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Submit starts analysis (POST /api/screens/{id}/submit). It answers 202
// immediately; with ?wait=true it answers once the analysis settled.
func (h *Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.screen(w, r)
	if !ok {
		return
	}
	done, err := sc.capture.Submit(r.Context())
	if err != nil {
		h.respond(w, r, sc, sc.capture.Session(), err)
		return
	}

	if r.URL.Query().Get("wait") == "true" {
		select {
		case <-done:
			writeJSON(w, http.StatusOK, newScreenView(sc, sc.capture.Session()))
		case <-r.Context().Done():
		}
		return
	}
	writeJSON(w, http.StatusAccepted, newScreenView(sc, sc.capture.Session()))
}

// Reset discards the session for a fresh Idle one (POST /api/screens/{id}/reset).
func (h *Handlers) Reset(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.screen(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newScreenView(sc, sc.capture.Reset()))
}

// Proceed returns the songs for the detected emotion
// (POST /api/screens/{id}/proceed).
func (h *Handlers) Proceed(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.screen(w, r)
	if !ok {
		return
	}
	s := sc.capture.Session()
	songs, err := sc.capture.Proceed(r.Context(), h.catalog)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"emotion": newEmotionView(s.Emotion),
		"heading": emotion.Heading(s.Emotion),
		"songs":   newSongViews(songs),
	})
}

func (h *Handlers) screen(w http.ResponseWriter, r *http.Request) (*screen, bool) {
	sc, err := h.screens.get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	return sc, true
}

// respond writes the session after a transition. Failures that leave the
// session in a new state (a camera error recorded on Idle) still carry
// the error status.
func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, sc *screen, s capture.Session, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newScreenView(sc, s))
}

type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrScreenNotFound):
		return http.StatusNotFound
	case errors.Is(err, capture.ErrInputRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, capture.ErrResourceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, capture.ErrClassificationFailed):
		return http.StatusBadGateway
	case errors.Is(err, capture.ErrAnalysisPending),
		errors.Is(err, capture.ErrInvalidTransition),
		errors.Is(err, camera.ErrClosed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decoding body: %w", errBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
