// SPDX-License-Identifier: EPL-2.0

package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/ik5/karamix/audio"
	"github.com/ik5/karamix/loader"
	"github.com/ik5/karamix/mixer"
	"go.uber.org/zap"
)

// BufferLoader loads the backing track and vocal take together, returning
// both or neither.
type BufferLoader interface {
	LoadPair(ctx context.Context, backing, vocal string, sampleRate int) (*audio.Buffer, *audio.Buffer, error)
}

// Session coordinates one mixing session: loading both sources, previewing
// and exporting the mix, and releasing everything on close. Opening new
// sources discards the previous session entirely.
type Session struct {
	mu         sync.Mutex
	log        *zap.Logger
	loader     BufferLoader
	sampleRate int
	opener     mixer.DeviceOpener
	mixerOpts  []mixer.Option

	id     string
	gen    uint64
	state  State
	err    error
	cancel context.CancelFunc
	done   chan struct{}
	render context.CancelFunc
	ctx    *mixer.Context
	mixer  *mixer.Mixer
}

type Option func(*Session)

func WithLogger(log *zap.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithSampleRate sets the rate both sources are decoded to.
func WithSampleRate(rate int) Option {
	return func(s *Session) {
		if rate > 0 {
			s.sampleRate = rate
		}
	}
}

// WithDeviceOpener sets how preview reaches an output device. Without one
// the session is headless: it can export but not preview.
func WithDeviceOpener(opener mixer.DeviceOpener) Option {
	return func(s *Session) { s.opener = opener }
}

// WithMixerOptions passes options to every mixer the session creates.
func WithMixerOptions(opts ...mixer.Option) Option {
	return func(s *Session) { s.mixerOpts = append(s.mixerOpts, opts...) }
}

// New returns an unloaded session. A nil loader uses loader.New.
func New(l BufferLoader, opts ...Option) *Session {
	s := &Session{
		log:        zap.NewNop(),
		loader:     l,
		sampleRate: 44100,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.loader == nil {
		s.loader = loader.New(loader.WithLogger(s.log))
	}

	return s
}

// Open tears down whatever the session holds and starts loading a new
// backing track and vocal take in the background. Use Wait to block until
// the load settles.
func (s *Session) Open(backing, vocal string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teardownLocked()

	s.gen++
	s.id = uuid.NewString()
	s.state = Loading
	s.err = nil

	log := s.log.With(zap.String("session", s.id))
	s.ctx = mixer.NewContext(s.sampleRate, s.opener)
	s.mixer = mixer.New(s.ctx, append([]mixer.Option{mixer.WithLogger(log)}, s.mixerOpts...)...)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	log.Info("session opened", zap.String("backing", backing), zap.String("vocal", vocal))

	go s.load(ctx, s.gen, s.mixer, s.done, backing, vocal, log)
}

func (s *Session) load(ctx context.Context, gen uint64, m *mixer.Mixer, done chan struct{}, backing, vocal string, log *zap.Logger) {
	defer close(done)

	b, v, err := s.loader.LoadPair(ctx, backing, vocal, s.sampleRate)

	s.mu.Lock()
	defer s.mu.Unlock()

	// A replaced or closed session must not see this result, even when
	// the fetch completed after the cancellation.
	if gen != s.gen || ctx.Err() != nil {
		log.Debug("stale load dropped")
		return
	}

	if err != nil {
		s.state = Unloaded
		if loader.IsCanceled(err) {
			log.Debug("load canceled")
			return
		}

		s.err = err
		log.Warn("load failed", zap.Error(err))
		return
	}

	if err := m.SetBuffers(b, v); err != nil {
		s.state = Unloaded
		s.err = fmt.Errorf("%w: %w", loader.ErrLoad, err)
		log.Warn("load failed", zap.Error(s.err))
		return
	}

	s.state = Ready
	log.Info("session ready",
		zap.Float64("backing_seconds", b.Duration()),
		zap.Float64("vocal_seconds", v.Duration()),
	)
}

// Wait blocks until the current load settles and returns its error. It
// returns ErrClosed when the session was closed meanwhile.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Closed {
		return ErrClosed
	}

	return s.err
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	// auto-stop happens inside the mixer, so previewing is read from it
	if s.state == Ready && s.mixer.IsPlaying() {
		return Previewing
	}

	return s.state
}

// Err is the error of the last failed load, or nil.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

// ID identifies the current session. Empty until the first Open.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.id
}

func (s *Session) checkLocked() error {
	switch st := s.stateLocked(); st {
	case Ready, Previewing:
		return nil
	case Closed:
		return ErrClosed
	case Exporting:
		return mixer.ErrExportInProgress
	default:
		return fmt.Errorf("%w: %s", ErrNotReady, st)
	}
}

// Preview starts, or restarts, the live preview.
func (s *Session) Preview(a mixer.Alignment, backingGain, vocalGain float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkLocked(); err != nil {
		return err
	}

	return s.mixer.PlayPreview(a, backingGain, vocalGain)
}

// StopPreview stops the live preview. It does nothing when idle.
func (s *Session) StopPreview() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mixer != nil {
		s.mixer.StopPreview()
	}
}

// Export renders and encodes the mix. The session returns to Ready
// whether or not the export succeeds, so a failed export can be retried
// without loading again.
func (s *Session) Export(ctx context.Context, a mixer.Alignment, backingGain, vocalGain float64) (*mixer.EncodedFile, error) {
	s.mu.Lock()
	if err := s.checkLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.state = Exporting
	gen, m, id := s.gen, s.mixer, s.id
	ctx, cancel := context.WithCancel(ctx)
	s.render = cancel
	s.mu.Unlock()

	file, err := m.Export(ctx, a, backingGain, vocalGain)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen || s.state != Exporting {
		return nil, ErrClosed
	}
	s.state = Ready
	s.render = nil

	log := s.log.With(zap.String("session", id))
	if err != nil {
		log.Warn("export failed", zap.Error(err))
		return nil, err
	}

	log.Info("export finished",
		zap.Duration("duration", file.Duration()),
		zap.Int("bytes", len(file.Data)),
	)

	return file, nil
}

// Peaks returns bins waveform peaks for each source, for a dual waveform
// display. Both are nil until the session is ready.
func (s *Session) Peaks(bins int) (backing, vocal []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mixer == nil {
		return nil, nil
	}

	b, v := s.mixer.Buffers()
	if b == nil || v == nil {
		return nil, nil
	}

	return audio.Peaks(b, bins), audio.Peaks(v, bins)
}

// Buffers exposes the loaded sources, or nils.
func (s *Session) Buffers() (backing, vocal *audio.Buffer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mixer == nil {
		return nil, nil
	}

	return s.mixer.Buffers()
}

// Close stops everything the session holds, including an export in
// flight. It can be called in any state and more than once; Open starts
// over afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Closed && s.id != "" {
		s.log.Info("session closed", zap.String("session", s.id), zap.Stringer("state", s.stateLocked()))
	}

	s.teardownLocked()
	s.state = Closed

	return nil
}

func (s *Session) teardownLocked() {
	if s.render != nil {
		s.render()
		s.render = nil
	}

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	if s.mixer != nil {
		s.mixer.Close()
		s.mixer = nil
	}

	if s.ctx != nil {
		s.ctx.Close()
		s.ctx = nil
	}
}
