// SPDX-License-Identifier: EPL-2.0

package karamix

import (
	"context"

	"github.com/ik5/karamix/audio"
	"github.com/ik5/karamix/loader"
	"github.com/ik5/karamix/mixer"
	"github.com/ik5/karamix/session"
	"go.uber.org/zap"
)

// DefaultSampleRate is the rate sources are decoded to when no other rate
// is requested.
const DefaultSampleRate = 44100

type options struct {
	sampleRate int
	loader     session.BufferLoader
	log        *zap.Logger
	mixerOpts  []mixer.Option
}

type Option func(*options)

func WithSampleRate(rate int) Option {
	return func(o *options) {
		if rate > 0 {
			o.sampleRate = rate
		}
	}
}

// WithLoader replaces the default loader, which fetches over HTTP or from
// local files.
func WithLoader(l session.BufferLoader) Option {
	return func(o *options) { o.loader = l }
}

func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithMixerOptions passes options to the mixer that renders the export.
func WithMixerOptions(opts ...mixer.Option) Option {
	return func(o *options) { o.mixerOpts = append(o.mixerOpts, opts...) }
}

func newOptions(opts []Option) *options {
	o := &options{sampleRate: DefaultSampleRate, log: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	if o.loader == nil {
		o.loader = loader.New(loader.WithLogger(o.log))
	}

	return o
}

// MixToWAV is a high-level convenience function that loads a backing track
// and a vocal take, aligns them, and returns the mix as a WAV file.
//
// No output device is opened. Locators are URLs or local paths; see
// loader.Load for the accepted forms.
func MixToWAV(ctx context.Context, backing, vocal string, a mixer.Alignment, backingGain, vocalGain float64, opts ...Option) (*mixer.EncodedFile, error) {
	o := newOptions(opts)

	b, v, err := o.loader.LoadPair(ctx, backing, vocal, o.sampleRate)
	if err != nil {
		return nil, err
	}

	return mix(ctx, b, v, a, backingGain, vocalGain, o)
}

// MixBuffers is MixToWAV for sources that are already decoded. Both
// buffers must share a sample rate.
func MixBuffers(ctx context.Context, backing, vocal *audio.Buffer, a mixer.Alignment, backingGain, vocalGain float64, opts ...Option) (*mixer.EncodedFile, error) {
	return mix(ctx, backing, vocal, a, backingGain, vocalGain, newOptions(opts))
}

func mix(ctx context.Context, backing, vocal *audio.Buffer, a mixer.Alignment, backingGain, vocalGain float64, o *options) (*mixer.EncodedFile, error) {
	rate := o.sampleRate
	if backing != nil {
		rate = backing.SampleRate()
	}

	mctx := mixer.NewContext(rate, nil)
	defer mctx.Close()

	m := mixer.New(mctx, append([]mixer.Option{mixer.WithLogger(o.log)}, o.mixerOpts...)...)
	defer m.Close()

	if err := m.SetBuffers(backing, vocal); err != nil {
		return nil, err
	}

	return m.Export(ctx, a, backingGain, vocalGain)
}
