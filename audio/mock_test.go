// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"math"
)

// mockSource generates audio from a waveform function.
type mockSource struct {
	sampleRate int
	channels   int
	frames     int // total frames to generate
	generated  int
	maxFrames  int // cap per read, 0 means unlimited
	closed     bool
	waveform   func(frame int, channel int) float32
}

func newMockSource(sampleRate, channels, frames int, waveform func(frame int, channel int) float32) *mockSource {
	return &mockSource{
		sampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
		waveform:   waveform,
	}
}

func newSilentSource(sampleRate, channels, frames int) *mockSource {
	return newConstantSource(sampleRate, channels, frames, 0)
}

func newSineSource(sampleRate, channels, frames int, frequency float64) *mockSource {
	return newMockSource(sampleRate, channels, frames, func(frame int, channel int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

func newConstantSource(sampleRate, channels, frames int, value float32) *mockSource {
	return newMockSource(sampleRate, channels, frames, func(int, int) float32 {
		return value
	})
}

// newRampSource yields frame index + channel/10 so positions are easy to check.
func newRampSource(sampleRate, channels, frames int) *mockSource {
	return newMockSource(sampleRate, channels, frames, func(frame int, channel int) float32 {
		return float32(frame) + float32(channel)/10
	})
}

func (m *mockSource) SampleRate() int { return m.sampleRate }
func (m *mockSource) Channels() int   { return m.channels }
func (m *mockSource) BufSize() int    { return 4096 }

func (m *mockSource) Close() error {
	m.closed = true
	return nil
}

func (m *mockSource) ReadSamples(dst []float32) (int, error) {
	if m.generated >= m.frames {
		return 0, io.EOF
	}

	frames := min(len(dst)/m.channels, m.frames-m.generated)
	if m.maxFrames > 0 {
		frames = min(frames, m.maxFrames)
	}

	for f := range frames {
		for c := range m.channels {
			dst[f*m.channels+c] = m.waveform(m.generated+f, c)
		}
	}
	m.generated += frames

	if m.generated >= m.frames {
		return frames * m.channels, io.EOF
	}

	return frames * m.channels, nil
}
