// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"io"
	"sync"

	"github.com/ik5/karamix/audio"
)

// SourceNode plays a region of a buffer through a gain stage into a graph.
// Like a platform buffer source it can be started once; replaying needs a
// fresh node.
//
// The signal path is BufferSource -> ChannelMixer -> Gain -> Delay.
type SourceNode struct {
	mu       sync.Mutex
	buf      *audio.Buffer
	gain     float64
	channels int
	started  bool
	stopped  bool
	src      audio.Source
}

// NewSourceNode builds a node over buf. gain is clamped with ClampGain and
// the output is mixed to channels.
func NewSourceNode(buf *audio.Buffer, gain float64, channels int) *SourceNode {
	return &SourceNode{buf: buf, gain: ClampGain(gain), channels: channels}
}

// Start schedules playback: silence until when, then frames from offset
// into the buffer for duration. A negative duration plays to the end of
// the buffer. All values are seconds at the buffer's rate.
func (n *SourceNode) Start(when, offset, duration float64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.started {
		return ErrNodeStarted
	}

	rate := n.buf.SampleRate()
	frames := -1
	if duration >= 0 {
		frames = Frames(duration, rate)
	}

	region := audio.NewBufferSource(n.buf, Frames(offset, rate), frames)
	var src audio.Source = audio.NewChannelMixer(region, n.channels)
	src = audio.NewGain(src, float32(n.gain))
	n.src = audio.NewDelay(src, Frames(when, rate))
	n.started = true

	return nil
}

// Stop ends playback. The node reports EOF from then on.
func (n *SourceNode) Stop() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch {
	case !n.started:
		return ErrNodeNotStarted
	case n.stopped:
		return ErrNodeStopped
	}
	n.stopped = true

	return nil
}

func (n *SourceNode) Stopped() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.stopped
}

func (n *SourceNode) Gain() float64 { return n.gain }

func (n *SourceNode) SampleRate() int { return n.buf.SampleRate() }
func (n *SourceNode) Channels() int   { return n.channels }
func (n *SourceNode) BufSize() int    { return 4096 }
func (n *SourceNode) Close() error    { return nil }

func (n *SourceNode) ReadSamples(dst []float32) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.started {
		return 0, ErrNodeNotStarted
	}
	if n.stopped {
		return 0, io.EOF
	}

	return n.src.ReadSamples(dst)
}
