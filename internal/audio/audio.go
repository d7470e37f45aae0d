// Package audio plays MP3 sources on the local sound device. It is the
// playback.Backend used by the terminal front-end.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/go-mp3"

	"github.com/justestif/moodtunes/internal/playback"
)

// SampleRate is the device rate. Sources at other rates are rejected.
const SampleRate = 44100

const pollInterval = 100 * time.Millisecond

// ErrUnsupportedRate is returned for MP3s not sampled at SampleRate.
var ErrUnsupportedRate = errors.New("unsupported sample rate")

// Backend decodes MP3 files from a media root or over http(s).
type Backend struct {
	mediaRoot  string
	httpClient *http.Client
	logger     *slog.Logger

	once   sync.Once
	ctx    *oto.Context
	ctxErr error
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the backend logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithHTTPClient sets the client used for remote sources.
func WithHTTPClient(c *http.Client) Option {
	return func(b *Backend) {
		if c != nil {
			b.httpClient = c
		}
	}
}

// New creates a Backend. Relative and root-anchored URLs such as
// "/musicData/song.mp3" resolve under mediaRoot.
func New(mediaRoot string, opts ...Option) *Backend {
	b := &Backend{
		mediaRoot:  mediaRoot,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// device opens the sound device once per process.
func (b *Backend) device() (*oto.Context, error) {
	b.once.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   SampleRate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			b.ctxErr = fmt.Errorf("opening audio device: %w", err)
			return
		}
		<-ready
		b.ctx = ctx
	})
	return b.ctx, b.ctxErr
}

// Load implements playback.Backend.
func (b *Backend) Load(url string, onEnd func()) (playback.Player, error) {
	data, err := b.fetch(context.Background(), url)
	if err != nil {
		return nil, err
	}

	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", url, err)
	}
	if dec.SampleRate() != SampleRate {
		return nil, fmt.Errorf("%w: %s is %d Hz", ErrUnsupportedRate, url, dec.SampleRate())
	}

	dev, err := b.device()
	if err != nil {
		return nil, err
	}

	src := &eofReader{r: dec}
	p := newPlayer(dev.NewPlayer(src), src, onEnd, b.logger)
	b.logger.Debug("audio loaded", "url", url, "bytes", len(data))
	return p, nil
}

// fetch reads the whole source into memory so the decoder can seek.
func (b *Backend) fetch(ctx context.Context, url string) ([]byte, error) {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := b.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", url, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}

	path, err := b.Resolve(url)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// Resolve maps a local source URL to a file under the media root. Paths
// that climb out with ".." are confined to the root.
func (b *Backend) Resolve(url string) (string, error) {
	if b.mediaRoot == "" {
		return "", fmt.Errorf("no media root configured for %s", url)
	}
	clean := filepath.Clean("/" + filepath.FromSlash(url))
	return filepath.Join(b.mediaRoot, clean), nil
}

// eofReader records when the decoder runs dry. Seeking clears the mark,
// and the device player rewinds through it.
type eofReader struct {
	r   io.ReadSeeker
	eof atomic.Bool
}

func (e *eofReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if errors.Is(err, io.EOF) {
		e.eof.Store(true)
	}
	return n, err
}

func (e *eofReader) Seek(offset int64, whence int) (int64, error) {
	n, err := e.r.Seek(offset, whence)
	if err == nil {
		e.eof.Store(false)
	}
	return n, err
}

// output is the part of *oto.Player a player drives.
type output interface {
	Play()
	Pause()
	IsPlaying() bool
	Seek(offset int64, whence int) (int64, error)
	Close() error
}

type player struct {
	out      output
	src      *eofReader
	onEnd    func()
	logger   *slog.Logger
	interval time.Duration
	started  atomic.Bool

	mu       sync.Mutex
	watching bool
	closed   bool
	done     chan struct{}
}

func newPlayer(out output, src *eofReader, onEnd func(), logger *slog.Logger) *player {
	return &player{
		out:      out,
		src:      src,
		onEnd:    onEnd,
		logger:   logger,
		interval: pollInterval,
		done:     make(chan struct{}),
	}
}

// Play starts the device and a watcher for the end of the track, unless
// one is already running.
func (p *player) Play() error {
	p.started.Store(true)
	p.out.Play()

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.watching && !p.closed {
		p.watching = true
		go p.watch()
	}
	return nil
}

func (p *player) Pause() error {
	p.started.Store(false)
	p.out.Pause()
	return nil
}

// Close stops the watcher without waiting for it.
func (p *player) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.done)
	}
	p.mu.Unlock()
	return p.out.Close()
}

// watch reports the natural end of the track: the decoder hit EOF and the
// device drained its buffer while the track was meant to be playing. The
// track is rewound so the next Play starts over.
func (p *player) watch() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			if !p.started.Load() || !p.src.eof.Load() || p.out.IsPlaying() {
				continue
			}
			p.started.Store(false)
			if _, err := p.out.Seek(0, io.SeekStart); err != nil {
				p.logger.Warn("rewinding audio failed", "error", err)
			}

			p.mu.Lock()
			p.watching = false
			p.mu.Unlock()

			if p.onEnd != nil {
				p.onEnd()
			}
			return
		}
	}
}

var _ playback.Backend = (*Backend)(nil)
