// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

// Gain scales every sample of src by a linear factor.
type Gain struct {
	src  Source
	gain float32
}

func NewGain(src Source, gain float32) *Gain {
	return &Gain{src: src, gain: gain}
}

func (g *Gain) SampleRate() int { return g.src.SampleRate() }
func (g *Gain) Channels() int   { return g.src.Channels() }
func (g *Gain) BufSize() int    { return g.src.BufSize() }
func (g *Gain) Close() error    { return g.src.Close() }

// Value is the linear factor applied to the source.
func (g *Gain) Value() float32 { return g.gain }

func (g *Gain) ReadSamples(dst []float32) (int, error) {
	n, err := g.src.ReadSamples(dst)
	if g.gain != 1 {
		for i := range n {
			dst[i] *= g.gain
		}
	}

	return n, err
}

// Delay emits frames of silence before passing src through.
type Delay struct {
	src     Source
	pending int // silent frames still to emit
}

func NewDelay(src Source, frames int) *Delay {
	return &Delay{src: src, pending: max(frames, 0)}
}

func (d *Delay) SampleRate() int { return d.src.SampleRate() }
func (d *Delay) Channels() int   { return d.src.Channels() }
func (d *Delay) BufSize() int    { return d.src.BufSize() }
func (d *Delay) Close() error    { return d.src.Close() }

func (d *Delay) ReadSamples(dst []float32) (int, error) {
	channels := d.src.Channels()
	if len(dst)%channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if d.pending == 0 {
		return d.src.ReadSamples(dst)
	}

	frames := min(len(dst)/channels, d.pending)
	clear(dst[:frames*channels])
	d.pending -= frames

	return frames * channels, nil
}

// Bus sums several sources that share a sample rate and channel layout.
// It ends when the longest input ends.
type Bus struct {
	inputs     []Source
	done       []bool
	sampleRate int
	channels   int
	tmp        []float32
}

func NewBus(inputs ...Source) (*Bus, error) {
	if len(inputs) == 0 {
		return nil, ErrInvalidChannels
	}

	rate, channels := inputs[0].SampleRate(), inputs[0].Channels()
	for _, in := range inputs[1:] {
		if in.SampleRate() != rate {
			return nil, ErrSampleRateMismatch
		}
		if in.Channels() != channels {
			return nil, ErrChannelMismatch
		}
	}

	return &Bus{
		inputs:     inputs,
		done:       make([]bool, len(inputs)),
		sampleRate: rate,
		channels:   channels,
		tmp:        make([]float32, 4096),
	}, nil
}

func (b *Bus) SampleRate() int { return b.sampleRate }
func (b *Bus) Channels() int   { return b.channels }
func (b *Bus) BufSize() int    { return 4096 }

func (b *Bus) Close() error {
	var errs []error
	for _, in := range b.inputs {
		if err := in.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (b *Bus) ReadSamples(dst []float32) (int, error) {
	if len(dst)%b.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if cap(b.tmp) < len(dst) {
		b.tmp = make([]float32, len(dst))
	}
	tmp := b.tmp[:len(dst)]

	clear(dst)
	written := 0
	active := 0

	for i, in := range b.inputs {
		if b.done[i] {
			continue
		}

		// Each input is read to a full dst so all inputs stay frame aligned.
		n, err := readFull(in, tmp)
		for j := range n {
			dst[j] += tmp[j]
		}
		written = max(written, n)

		switch {
		case errors.Is(err, io.EOF):
			b.done[i] = true
		case err != nil:
			return written, fmt.Errorf("bus input %d: %w", i, err)
		default:
			active++
		}
	}

	if active == 0 {
		return written, io.EOF
	}

	return written, nil
}
