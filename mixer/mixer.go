// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/ik5/karamix/audio"
	"github.com/ik5/karamix/formats/wav"
	"go.uber.org/zap"
)

// DefaultRenderChunk is how many frames the offline render pulls through
// the graph between cancellation checks.
const DefaultRenderChunk = 8192

// Mixer owns the two buffers of a mixing session and drives either a live
// preview on the context's device or an offline render. At most one
// preview is live at a time, and preview and export never overlap.
type Mixer struct {
	mu          sync.Mutex
	ctx         *Context
	log         *zap.Logger
	afterFunc   AfterFunc
	renderChunk int
	encodeChunk int
	progress    func(done, total int)

	backing   *audio.Buffer
	vocal     *audio.Buffer
	playback  *Playback
	lastID    uint64
	exporting bool
}

type Option func(*Mixer)

func WithLogger(log *zap.Logger) Option {
	return func(m *Mixer) {
		if log != nil {
			m.log = log
		}
	}
}

// WithAfterFunc replaces the wall clock used for auto-stop.
func WithAfterFunc(f AfterFunc) Option {
	return func(m *Mixer) {
		if f != nil {
			m.afterFunc = f
		}
	}
}

func WithRenderChunk(frames int) Option {
	return func(m *Mixer) {
		if frames > 0 {
			m.renderChunk = frames
		}
	}
}

// WithEncodeChunk sets the frames converted between encoder yields.
func WithEncodeChunk(frames int) Option {
	return func(m *Mixer) {
		if frames > 0 {
			m.encodeChunk = frames
		}
	}
}

// WithProgress registers a callback that receives the rendered frame count
// after every render chunk. It runs on the exporting goroutine.
func WithProgress(f func(done, total int)) Option {
	return func(m *Mixer) { m.progress = f }
}

func New(ctx *Context, opts ...Option) *Mixer {
	m := &Mixer{
		ctx:         ctx,
		log:         zap.NewNop(),
		afterFunc:   systemAfterFunc,
		renderChunk: DefaultRenderChunk,
		encodeChunk: wav.DefaultChunkFrames,
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *Mixer) Context() *Context { return m.ctx }

// SetBuffers replaces both buffers and stops any preview. Passing nil for
// both clears the session. Buffers must share a sample rate.
func (m *Mixer) SetBuffers(backing, vocal *audio.Buffer) error {
	if backing != nil && vocal != nil && backing.SampleRate() != vocal.SampleRate() {
		return fmt.Errorf("%w: backing %d Hz, vocal %d Hz",
			audio.ErrSampleRateMismatch, backing.SampleRate(), vocal.SampleRate())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked()
	m.backing, m.vocal = backing, vocal

	return nil
}

func (m *Mixer) Buffers() (backing, vocal *audio.Buffer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.backing, m.vocal
}

// Ready reports whether both buffers are loaded and non-empty.
func (m *Mixer) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.readyLocked() == nil
}

func (m *Mixer) readyLocked() error {
	if m.backing == nil || m.vocal == nil {
		return ErrNotReady
	}
	if m.backing.Length() == 0 {
		return fmt.Errorf("%w: backing: %w", ErrNotReady, ErrEmptyBuffer)
	}
	if m.vocal.Length() == 0 {
		return fmt.Errorf("%w: vocal: %w", ErrNotReady, ErrEmptyBuffer)
	}

	return nil
}

// PlayPreview starts an audible preview of the mix, replacing any preview
// already playing. It returns once both nodes are started; playback stops
// by itself after the timeline's total duration.
func (m *Mixer) PlayPreview(a Alignment, backingGain, vocalGain float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.readyLocked(); err != nil {
		return err
	}
	if m.exporting {
		return ErrExportInProgress
	}

	m.stopLocked()

	dev, err := m.ctx.Device()
	if err != nil {
		return err
	}
	if dev.Suspended() {
		if err := dev.Resume(); err != nil {
			return fmt.Errorf("resume device: %w", err)
		}
	}

	tl := a.Timeline(m.backing.Duration(), m.vocal.Duration())
	backing, vocal, err := startNodes(m.backing, m.vocal, tl, backingGain, vocalGain)
	if err != nil {
		return err
	}

	m.lastID++
	pb := &Playback{
		id:       m.lastID,
		timeline: tl,
		nodes:    []*SourceNode{backing, vocal},
	}

	for _, n := range pb.nodes {
		var src audio.Source = n
		if n.SampleRate() != m.ctx.SampleRate() {
			src = audio.NewResampler(n, m.ctx.SampleRate())
		}
		pb.players = append(pb.players, dev.NewPlayer(newPCMReader(src)))
	}

	id := pb.id
	pb.timer = m.afterFunc(seconds(tl.Total()), func() { m.finish(id) })
	m.playback = pb

	for _, p := range pb.players {
		p.Play()
	}

	m.log.Debug("preview started",
		zap.Uint64("playback", id),
		zap.Float64("lead_in", tl.LeadIn()),
		zap.Duration("total", seconds(tl.Total())),
		zap.Float64("backing_gain", backing.Gain()),
		zap.Float64("vocal_gain", vocal.Gain()),
	)

	return nil
}

// finish is the auto-stop callback. A timer belonging to a playback that
// was already replaced does nothing.
func (m *Mixer) finish(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.playback == nil || m.playback.id != id {
		return
	}

	m.stopLocked()
	m.log.Debug("preview finished", zap.Uint64("playback", id))
}

// StopPreview stops the live preview. It is safe to call when idle.
func (m *Mixer) StopPreview() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked()
}

func (m *Mixer) stopLocked() {
	if m.playback == nil {
		return
	}

	m.playback.stop(m.log)
	m.playback = nil
}

func (m *Mixer) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.playback != nil
}

func (m *Mixer) IsExporting() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.exporting
}

// ActiveNodes is the number of live source nodes; zero when idle.
func (m *Mixer) ActiveNodes() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.playback == nil {
		return 0
	}

	return len(m.playback.nodes)
}

// Playback returns the current live preview, or nil.
func (m *Mixer) Playback() *Playback {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.playback
}

func (m *Mixer) beginExport() (backing, vocal *audio.Buffer, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.readyLocked(); err != nil {
		return nil, nil, err
	}
	if m.exporting {
		return nil, nil, ErrExportInProgress
	}

	m.stopLocked()
	m.exporting = true

	return m.backing, m.vocal, nil
}

func (m *Mixer) endExport() {
	m.mu.Lock()
	m.exporting = false
	m.mu.Unlock()
}

// Render mixes both buffers offline into a stereo buffer at the backing
// track's sample rate. Nothing is played.
func (m *Mixer) Render(ctx context.Context, a Alignment, backingGain, vocalGain float64) (*audio.Buffer, error) {
	backing, vocal, err := m.beginExport()
	if err != nil {
		return nil, err
	}
	defer m.endExport()

	return render(ctx, backing, vocal, a, backingGain, vocalGain, m.renderChunk, m.progress)
}

// Export renders the mix and encodes it as a 16-bit PCM WAV file.
func (m *Mixer) Export(ctx context.Context, a Alignment, backingGain, vocalGain float64) (*EncodedFile, error) {
	backing, vocal, err := m.beginExport()
	if err != nil {
		return nil, err
	}
	defer m.endExport()

	mixed, err := render(ctx, backing, vocal, a, backingGain, vocalGain, m.renderChunk, m.progress)
	if err != nil {
		return nil, err
	}

	data, err := wav.EncodeBytes(ctx, mixed, m.encodeChunk)
	if err != nil {
		return nil, &RenderError{Op: "encode", Err: err}
	}

	m.log.Debug("export encoded",
		zap.Int("frames", mixed.Length()),
		zap.Int("bytes", len(data)),
	)

	return &EncodedFile{
		Data:        data,
		SampleRate:  mixed.SampleRate(),
		Channels:    mixed.NumberOfChannels(),
		Frames:      mixed.Length(),
		ContentType: ContentType,
	}, nil
}

// Close stops any preview and drops the buffers. The Context is left to
// its owner.
func (m *Mixer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked()
	m.backing, m.vocal = nil, nil

	return nil
}

func startNodes(backingBuf, vocalBuf *audio.Buffer, tl Timeline, backingGain, vocalGain float64) (backing, vocal *SourceNode, err error) {
	backing = NewSourceNode(backingBuf, backingGain, OutputChannels)
	if err := backing.Start(tl.BackingStart, tl.BackingOffset, tl.BackingDuration); err != nil {
		return nil, nil, err
	}

	vocal = NewSourceNode(vocalBuf, vocalGain, OutputChannels)
	if err := vocal.Start(tl.VocalStart, 0, tl.VocalDuration); err != nil {
		return nil, nil, err
	}

	return backing, vocal, nil
}

// renderFrames sizes the render to the longer source. Each node rounds its
// start and its duration separately, so the length is summed the same way.
func renderFrames(tl Timeline, rate int) int {
	backing := Frames(tl.BackingStart, rate) + Frames(tl.BackingDuration, rate)
	vocal := Frames(tl.VocalStart, rate) + Frames(tl.VocalDuration, rate)

	return max(backing, vocal)
}

func render(ctx context.Context, backingBuf, vocalBuf *audio.Buffer, a Alignment, backingGain, vocalGain float64, chunk int, progress func(done, total int)) (*audio.Buffer, error) {
	rate := backingBuf.SampleRate()
	tl := a.Timeline(backingBuf.Duration(), vocalBuf.Duration())

	frames := renderFrames(tl, rate)
	if frames <= 0 {
		return nil, &RenderError{Op: "size", Err: audio.ErrInvalidLength}
	}

	backing, vocal, err := startNodes(backingBuf, vocalBuf, tl, backingGain, vocalGain)
	if err != nil {
		return nil, &RenderError{Op: "schedule", Err: err}
	}

	bus, err := audio.NewBus(backing, vocal)
	if err != nil {
		return nil, &RenderError{Op: "graph", Err: err}
	}

	out, err := audio.NewBuffer(rate, OutputChannels, frames)
	if err != nil {
		return nil, &RenderError{Op: "allocate", Err: err}
	}

	left, right := out.Channel(0), out.Channel(1)
	tmp := make([]float32, chunk*OutputChannels)

	pos := 0
	for pos < frames {
		if err := ctx.Err(); err != nil {
			return nil, &RenderError{Op: "render", Err: err}
		}

		want := min(chunk, frames-pos)
		n, err := bus.ReadSamples(tmp[:want*OutputChannels])
		got := n / OutputChannels
		for f := range got {
			left[pos+f] = tmp[f*OutputChannels]
			right[pos+f] = tmp[f*OutputChannels+1]
		}
		pos += got

		if progress != nil && got > 0 {
			progress(pos, frames)
		}

		if err != nil && !errors.Is(err, io.EOF) {
			return nil, &RenderError{Op: "render", Err: err}
		}
		// Whatever is left past the last source stays silent.
		if err != nil || got == 0 {
			break
		}

		runtime.Gosched()
	}

	if progress != nil && pos < frames {
		progress(frames, frames)
	}

	return out, nil
}
