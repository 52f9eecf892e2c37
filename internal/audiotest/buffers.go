// SPDX-License-Identifier: EPL-2.0

package audiotest

import "github.com/ik5/karamix/audio"

// NewBuffer fills a buffer from a waveform. It panics on an invalid shape,
// which in a test is a bug in the test.
func NewBuffer(sampleRate, channels, frames int, waveform func(frame, channel int) float32) *audio.Buffer {
	buf, err := audio.NewBuffer(sampleRate, channels, frames)
	if err != nil {
		panic(err)
	}

	for c := range channels {
		ch := buf.Channel(c)
		for f := range ch {
			ch[f] = waveform(f, c)
		}
	}

	return buf
}

func ConstantBuffer(sampleRate, channels, frames int, value float32) *audio.Buffer {
	return NewBuffer(sampleRate, channels, frames, func(int, int) float32 { return value })
}

func SineBuffer(sampleRate, channels, frames int, frequency float64) *audio.Buffer {
	return NewBuffer(sampleRate, channels, frames, Sine(sampleRate, frequency))
}

// RampBuffer holds frame/frames on every channel, so the value at any
// point tells which frame ended up there.
func RampBuffer(sampleRate, channels, frames int) *audio.Buffer {
	return NewBuffer(sampleRate, channels, frames, func(f, _ int) float32 {
		return float32(f) / float32(frames)
	})
}

// Seconds builds a constant buffer lasting the given number of seconds.
func Seconds(sampleRate, channels int, seconds float64, value float32) *audio.Buffer {
	return ConstantBuffer(sampleRate, channels, int(seconds*float64(sampleRate)), value)
}
