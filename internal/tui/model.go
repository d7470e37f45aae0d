// Package tui is the terminal front-end: pick an input mode, describe or
// show how you feel, and play the songs recommended for the result.
package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/justestif/moodtunes/internal/capture"
	"github.com/justestif/moodtunes/internal/catalog"
	"github.com/justestif/moodtunes/internal/emotion"
	"github.com/justestif/moodtunes/internal/playback"

	tea "github.com/charmbracelet/bubbletea"
)

// View is the screen currently shown.
type View int

const (
	ViewMenu View = iota
	ViewCapture
	ViewSongs
)

var menuModalities = []capture.Modality{capture.ModalityText, capture.ModalityPhoto}

// Config holds the collaborators of the TUI.
type Config struct {
	Devices     capture.Devices
	Analyzer    capture.Analyzer
	Recommender capture.Recommender
	Backend     playback.Backend
	Logger      *slog.Logger
}

// Model is the root bubbletea model.
type Model struct {
	ctx      context.Context
	devices  capture.Devices
	analyzer capture.Analyzer
	rec      capture.Recommender
	logger   *slog.Logger

	view      View
	menuIndex int

	// Capture flow
	screen     *capture.Screen
	session    capture.Session
	glyphIndex int
	err        string

	// Recommendations
	deck     *playback.Deck
	ended    chan struct{}
	songs    []catalog.Song
	emotion  emotion.Emotion
	selected int
	loading  bool

	width    int
	height   int
	quitting bool
}

// New creates the model.
func New(ctx context.Context, cfg Config) Model {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ended := make(chan struct{}, 1)
	notify := func() {
		select {
		case ended <- struct{}{}:
		default:
		}
	}
	return Model{
		ctx:      ctx,
		devices:  cfg.Devices,
		analyzer: cfg.Analyzer,
		rec:      cfg.Recommender,
		logger:   logger,
		deck:     playback.NewDeck(cfg.Backend, playback.WithDeckLogger(logger), playback.WithDeckNotify(notify)),
		ended:    ended,
	}
}

// Init starts listening for tracks that finish on their own.
func (m Model) Init() tea.Cmd {
	return waitEndedCmd(m.ended)
}

func waitEndedCmd(ended <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ended
		return TrackEndedMsg{}
	}
}

func startCmd(ctx context.Context, sc *capture.Screen) tea.Cmd {
	return func() tea.Msg {
		_, err := sc.Start(ctx)
		return StartedMsg{Err: err}
	}
}

// submitCmd runs off the update loop since a photo submission grabs a frame.
func submitCmd(ctx context.Context, sc *capture.Screen) tea.Cmd {
	return func() tea.Msg {
		done, err := sc.Submit(ctx)
		return SubmittedMsg{Session: sc.Session().ID, Done: done, Err: err}
	}
}

func waitAnalysisCmd(id uuid.UUID, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return AnalysisDoneMsg{Session: id}
	}
}

func proceedCmd(ctx context.Context, sc *capture.Screen, rec capture.Recommender) tea.Cmd {
	return func() tea.Msg {
		songs, err := sc.Proceed(ctx, rec)
		return SongsMsg{Songs: songs, Err: err}
	}
}

// showCmd loads the deck. The update loop does not toggle or render play
// state until DeckReadyMsg arrives.
func showCmd(deck *playback.Deck, songs []catalog.Song) tea.Cmd {
	return func() tea.Msg {
		return DeckReadyMsg{Err: deck.Show(songs)}
	}
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StartedMsg:
		m.syncSession()
		if msg.Err != nil {
			m.err = msg.Err.Error()
		}
		return m, nil

	case SubmittedMsg:
		m.syncSession()
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		m.err = ""
		return m, waitAnalysisCmd(msg.Session, msg.Done)

	case AnalysisDoneMsg:
		if m.screen == nil || m.screen.Session().ID != msg.Session {
			return m, nil
		}
		m.syncSession()
		if m.session.State == capture.StateIdle && m.session.Modality == capture.ModalityText {
			// Failed text analysis: go straight back to typing.
			return m, startCmd(m.ctx, m.screen)
		}
		return m, nil

	case SongsMsg:
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		m.emotion = m.session.Emotion
		m.songs = msg.Songs
		m.selected = 0
		m.loading = true
		m.view = ViewSongs
		return m, showCmd(m.deck, msg.Songs)

	case DeckReadyMsg:
		m.loading = false
		if msg.Err != nil {
			m.logger.Warn("some songs cannot be played", "error", msg.Err)
		}
		return m, nil

	case TrackEndedMsg:
		return m, waitEndedCmd(m.ended)
	}

	return m, nil
}

// syncSession refreshes the snapshot of the live session.
func (m *Model) syncSession() {
	if m.screen == nil {
		return
	}
	m.session = m.screen.Session()
	if m.session.Error != "" {
		m.err = m.session.Error
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == KeyCtrlC {
		m.teardown()
		m.quitting = true
		return m, tea.Quit
	}

	switch m.view {
	case ViewMenu:
		return m.handleMenuKey(msg)
	case ViewCapture:
		return m.handleCaptureKey(msg)
	case ViewSongs:
		return m.handleSongsKey(msg)
	}
	return m, nil
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyQuit, KeyEsc:
		m.teardown()
		m.quitting = true
		return m, tea.Quit

	case KeyUp, KeyK:
		if m.menuIndex > 0 {
			m.menuIndex--
		}

	case KeyDown, KeyJ:
		if m.menuIndex < len(menuModalities)-1 {
			m.menuIndex++
		}

	case KeyEnter:
		mod := menuModalities[m.menuIndex]
		m.screen = capture.NewScreen(mod, m.devices, m.analyzer, capture.WithLogger(m.logger))
		m.session = m.screen.Session()
		m.err = ""
		m.glyphIndex = 0
		m.view = ViewCapture
		if mod == capture.ModalityText {
			return m, startCmd(m.ctx, m.screen)
		}
	}
	return m, nil
}

func (m Model) handleCaptureKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch m.session.State {
	case capture.StateIdle:
		switch key {
		case KeyEsc:
			m.leaveCapture()
		case KeyOpen:
			if m.session.Modality == capture.ModalityPhoto {
				m.err = ""
				return m, startCmd(m.ctx, m.screen)
			}
		}
		return m, nil

	case capture.StateAcquiring:
		if key == KeyEsc {
			return m.reset()
		}
		if m.session.Modality == capture.ModalityPhoto {
			if key == KeySpace {
				return m, submitCmd(m.ctx, m.screen)
			}
			return m, nil
		}
		return m.handleTextKey(msg)

	case capture.StateAnalyzing:
		// Only cancelling is allowed while the result is pending.
		if key == KeyEsc {
			return m.reset()
		}
		return m, nil

	case capture.StateResult:
		switch key {
		case KeyReset, KeyEsc:
			return m.reset()
		case KeyEnter:
			return m, proceedCmd(m.ctx, m.screen, m.rec)
		}
	}
	return m, nil
}

func (m Model) handleTextKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	text := m.session.Text()
	var err error

	switch msg.Type {
	case tea.KeyEnter:
		return m, submitCmd(m.ctx, m.screen)
	case tea.KeyTab:
		glyph := emotion.QuickGlyphs[m.glyphIndex%len(emotion.QuickGlyphs)]
		m.glyphIndex++
		m.session, err = m.screen.AppendGlyph(glyph)
	case tea.KeyBackspace:
		if r := []rune(text); len(r) > 0 {
			m.session, err = m.screen.Edit(string(r[:len(r)-1]))
		}
	case tea.KeySpace:
		m.session, err = m.screen.Edit(text + " ")
	case tea.KeyRunes:
		m.session, err = m.screen.Edit(text + string(msg.Runes))
	default:
		return m, nil
	}

	if err != nil {
		m.err = err.Error()
	} else {
		m.err = ""
	}
	return m, nil
}

// reset discards the session. Text screens go straight back to typing.
func (m Model) reset() (tea.Model, tea.Cmd) {
	m.session = m.screen.Reset()
	m.err = ""
	m.glyphIndex = 0
	if m.session.Modality == capture.ModalityText {
		return m, startCmd(m.ctx, m.screen)
	}
	return m, nil
}

func (m *Model) leaveCapture() {
	if m.screen != nil {
		m.screen.Close()
		m.screen = nil
	}
	m.session = capture.Session{}
	m.err = ""
	m.view = ViewMenu
}

func (m Model) handleSongsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyUp, KeyK:
		if m.selected > 0 {
			m.selected--
		}

	case KeyDown, KeyJ:
		if m.selected < len(m.songs)-1 {
			m.selected++
		}

	case KeySpace, KeyEnter:
		if m.loading || len(m.songs) == 0 {
			return m, nil
		}
		if _, err := m.deck.Toggle(m.songs[m.selected].ID); err != nil {
			m.err = err.Error()
		}

	case KeyEsc, KeyBackspace, KeyQuit:
		if m.loading {
			return m, nil
		}
		if err := m.deck.Close(); err != nil {
			m.logger.Warn("releasing audio", "error", err)
		}
		m.songs = nil
		m.selected = 0
		m.err = ""
		m.leaveCapture()
	}
	return m, nil
}

// teardown releases the camera and every audio handle.
func (m *Model) teardown() {
	if m.screen != nil {
		m.screen.Close()
	}
	// A Show still loading disposes what it built once it sees the Close.
	_ = m.deck.Close()
}

// CurrentView returns the screen being shown.
func (m Model) CurrentView() View {
	return m.view
}

// Session returns the last seen snapshot of the capture session.
func (m Model) Session() capture.Session {
	return m.session
}

// View renders the model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.view {
	case ViewMenu:
		body = m.renderMenu()
	case ViewCapture:
		body = m.renderCapture()
	case ViewSongs:
		body = m.renderSongs()
	}

	sections := []string{TitleStyle.Render("moodtunes"), "", body}
	if m.err != "" {
		sections = append(sections, "", ErrorStyle.Render(m.err))
	}
	sections = append(sections, "", m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderMenu() string {
	var b strings.Builder
	b.WriteString("How do you want to share your mood?\n\n")
	labels := map[capture.Modality]string{
		capture.ModalityText:  "Describe it",
		capture.ModalityPhoto: "Show your face",
	}
	for i, mod := range menuModalities {
		line := "  " + labels[mod]
		if i == m.menuIndex {
			line = SelectedStyle.Render("> " + labels[mod])
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) renderCapture() string {
	s := m.session
	switch s.State {
	case capture.StateIdle:
		if s.Modality == capture.ModalityPhoto {
			return DimStyle.Render("Camera is off.")
		}
		return DimStyle.Render("Getting ready...")

	case capture.StateAcquiring:
		if s.Modality == capture.ModalityPhoto {
			return PlayingStyle.Render("● Camera on") + "\n" + DimStyle.Render("Look at the camera and press space.")
		}
		next := emotion.QuickGlyphs[m.glyphIndex%len(emotion.QuickGlyphs)]
		return "How are you feeling?\n" + InputStyle.Render(s.Text()+"▏") +
			"\n" + DimStyle.Render("tab adds "+next)

	case capture.StateAnalyzing:
		return DimStyle.Render("Reading your mood...")

	case capture.StateResult:
		e := s.Emotion
		return fmt.Sprintf("%s  %s", e.Glyph(), EmotionStyle(e).Render(e.Label()))
	}
	return ""
}

func (m Model) renderSongs() string {
	var b strings.Builder
	b.WriteString(EmotionStyle(m.emotion).Render(emotion.Heading(m.emotion)) + "\n\n")
	if m.loading {
		b.WriteString(DimStyle.Render("Loading songs...") + "\n")
	}
	for i, s := range m.songs {
		marker := "  "
		if !m.loading {
			if h, ok := m.deck.Handle(s.ID); ok && h.Playing() {
				marker = PlayingStyle.Render("▶ ")
			}
		}
		line := fmt.Sprintf("%s - %s", s.Title, s.Artist)
		if s.Duration != "" {
			line += DimStyle.Render("  " + s.Duration)
		}
		if i == m.selected {
			line = SelectedStyle.Render(line)
		}
		b.WriteString(marker + line + "\n")
	}
	if len(m.songs) == 0 && !m.loading {
		b.WriteString(DimStyle.Render("No songs for this mood yet.") + "\n")
	}
	return b.String()
}

func (m Model) renderFooter() string {
	var help string
	switch m.view {
	case ViewMenu:
		help = "↑/↓ choose · enter select · q quit"
	case ViewCapture:
		switch m.session.State {
		case capture.StateIdle:
			help = "esc back"
			if m.session.Modality == capture.ModalityPhoto {
				help = "o open camera · esc back"
			}
		case capture.StateAcquiring:
			help = "enter analyze · tab emoji · esc reset"
			if m.session.Modality == capture.ModalityPhoto {
				help = "space capture · esc reset"
			}
		case capture.StateAnalyzing:
			help = "esc cancel"
		case capture.StateResult:
			help = "enter songs · r try again"
		}
	case ViewSongs:
		help = "↑/↓ choose · space play/pause · esc back"
	}
	return FooterStyle.Render(help)
}
