// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

// Resampler converts src to another sample rate using Catmull-Rom cubic
// interpolation. It works on interleaved samples and keeps the channel
// count. A one-pole low-pass runs on the input when downsampling.
//
// Decoders hand out sources at their native rate; the loader puts a
// Resampler in front of any source whose rate differs from the session
// context so both mix inputs share one timeline.
type Resampler struct {
	src      Source
	dstRate  int
	step     float64 // source frames advanced per output frame
	channels int

	// window[0..3] hold frames t-1, t0, t+1, t+2
	window [4][]float32
	filled [4]bool
	primed bool

	// fractional position between window[1] and window[2]
	pos float64

	in  []float32
	eof bool

	lowpass bool
	alpha   float32
	state   []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	step := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		step:     step,
		channels: channels,
		in:       make([]float32, channels),
		lowpass:  step > 1.0,
		alpha:    0.5,
		state:    make([]float32, channels),
	}

	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	err := r.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// readFrame reads one input frame into f. ok is false when nothing was read.
func (r *Resampler) readFrame(f []float32) (ok bool, err error) {
	if r.eof {
		return false, io.EOF
	}

	n, err := readFull(r.src, r.in)
	if n == r.channels {
		copy(f, r.in)
		if r.lowpass {
			for c := range r.channels {
				f[c] = r.alpha*f[c] + (1-r.alpha)*r.state[c]
				r.state[c] = f[c]
			}
		}
		ok = true
	}

	if errors.Is(err, io.EOF) {
		r.eof = true
		if ok {
			return true, nil
		}
		return false, io.EOF
	}
	if err != nil {
		return false, fmt.Errorf("%w", err)
	}

	return ok, nil
}

// prime loads the first input frame into window[0] and window[1] and the
// next two frames after it, so the first output frame is the first input
// frame.
func (r *Resampler) prime() error {
	r.primed = true

	n, err := readFull(r.src, r.in)
	if errors.Is(err, io.EOF) {
		r.eof = true
	} else if err != nil {
		return fmt.Errorf("%w", err)
	}
	if n < r.channels {
		return io.EOF
	}

	// seed the filter from the first frame to avoid a fade-in
	copy(r.state, r.in)
	copy(r.window[0], r.in)
	copy(r.window[1], r.in)
	r.filled[0], r.filled[1] = true, true

	for i := 2; i < len(r.window); i++ {
		ok, err := r.readFrame(r.window[i])
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		r.filled[i] = ok
	}

	return nil
}

// advance shifts the window by one input frame. It returns io.EOF once the
// current frame has run past the end of the input.
func (r *Resampler) advance() error {
	first := r.window[0]
	copy(r.window[:], r.window[1:])
	copy(r.filled[:], r.filled[1:])
	r.window[3] = first
	r.filled[3] = false

	if !r.eof {
		ok, err := r.readFrame(r.window[3])
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		r.filled[3] = ok
	}

	if !r.filled[1] {
		return io.EOF
	}

	return nil
}

// ReadSamples produces dst samples at the target rate.
// dst length should be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	want := len(dst) / r.channels

	for written < want {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}

		if !r.filled[1] {
			return written * r.channels, io.EOF
		}

		x := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]

		for c := range r.channels {
			y1 := r.window[1][c]
			y0, y2 := y1, y1
			if r.filled[0] {
				y0 = r.window[0][c]
			}
			if r.filled[2] {
				y2 = r.window[2][c]
			}
			y3 := y2
			if r.filled[3] {
				y3 = r.window[3][c]
			}

			out[c] = cubic(y0, y1, y2, y3, x)
		}

		written++
		r.pos += r.step
	}

	return written * r.channels, nil
}

// cubic evaluates the Catmull-Rom spline through y0..y3 at x in [0,1]
// between y1 and y2.
func cubic(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return a0*x*x*x + a1*x*x + a2*x + a3
}
