// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"time"

	"github.com/ik5/karamix/audio"
	"go.uber.org/zap"
)

// Timer is the part of *time.Timer the mixer uses for auto-stop.
type Timer interface {
	Stop() bool
}

// AfterFunc runs f once d has elapsed, like time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

func systemAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Playback is one live preview: the nodes it started, the device players
// carrying them and the auto-stop timer. Only the Mixer that created it
// may stop it.
type Playback struct {
	id       uint64
	timeline Timeline
	nodes    []*SourceNode
	players  []Player
	timer    Timer
}

func (p *Playback) Timeline() Timeline { return p.timeline }

func (p *Playback) stop(log *zap.Logger) {
	if p.timer != nil {
		p.timer.Stop()
	}

	for _, n := range p.nodes {
		err := n.Stop()
		if err != nil && !errors.Is(err, ErrNodeStopped) && !errors.Is(err, ErrNodeNotStarted) {
			log.Debug("stop node", zap.Error(err))
		}
	}

	for _, pl := range p.players {
		pl.Pause()
		if err := pl.Close(); err != nil {
			log.Debug("close player", zap.Error(err))
		}
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// pcmReader turns a source into the float32 little-endian byte stream a
// device player consumes.
type pcmReader struct {
	src     audio.Source
	samples []float32
	raw     []byte
	pending []byte
	eof     bool
}

func newPCMReader(src audio.Source) *pcmReader {
	return &pcmReader{src: src}
}

func (r *pcmReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if len(r.pending) == 0 {
		if r.eof {
			return 0, io.EOF
		}
		if err := r.fill(len(p)); err != nil {
			return 0, err
		}
		if len(r.pending) == 0 {
			if r.eof {
				return 0, io.EOF
			}
			return 0, nil
		}
	}

	n := copy(p, r.pending)
	r.pending = r.pending[n:]

	return n, nil
}

func (r *pcmReader) fill(size int) error {
	channels := r.src.Channels()
	want := max(size/4/channels, 1) * channels

	if cap(r.samples) < want {
		r.samples = make([]float32, want)
		r.raw = make([]byte, want*4)
	}

	n, err := r.src.ReadSamples(r.samples[:want])
	switch {
	case errors.Is(err, io.EOF):
		r.eof = true
	case err != nil:
		return err
	}

	for i, v := range r.samples[:n] {
		binary.LittleEndian.PutUint32(r.raw[i*4:], math.Float32bits(v))
	}
	r.pending = r.raw[:n*4]

	return nil
}
