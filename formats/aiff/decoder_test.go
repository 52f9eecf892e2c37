// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/ik5/karamix/audio"
)

// mockAiffReader simulates the aiff.Decoder for testing
type mockAiffReader struct {
	sampleRate int
	channels   int
	samples    []int
	offset     int
	err        error
}

func (m *mockAiffReader) Format() *goaudio.Format {
	return &goaudio.Format{SampleRate: m.sampleRate, NumChannels: m.channels}
}

func (m *mockAiffReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	n := copy(buf.Data, m.samples[m.offset:])
	m.offset += n
	return n, nil
}

func newMockSource(channels, bitDepth int, samples []int) *source {
	return &source{
		dec:        &mockAiffReader{sampleRate: 44100, channels: channels, samples: samples},
		sampleRate: 44100,
		channels:   channels,
		bitDepth:   bitDepth,
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"text", []byte("This is not AIFF data")},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, ErrNotAiffFile) {
				t.Errorf("Decode() error = %v, want %v", err, ErrNotAiffFile)
			}
		})
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bitDepth int
		in       []int
		want     []float32
	}{
		{"8-bit", 8, []int{-128, 64}, []float32{-1, 0.5}},
		{"16-bit", 16, []int{0, 16384, -16384, -32768}, []float32{0, 0.5, -0.5, -1}},
		{"24-bit", 24, []int{4194304, -8388608}, []float32{0.5, -1}},
		{"32-bit", 32, []int{1073741824, -2147483648}, []float32{0.5, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := newMockSource(1, tt.bitDepth, tt.in)
			dst := make([]float32, 8)

			n, err := src.ReadSamples(dst)
			if !errors.Is(err, io.EOF) {
				t.Errorf("ReadSamples() error = %v, want EOF on short read", err)
			}
			if n != len(tt.want) {
				t.Fatalf("ReadSamples() n = %d, want %d", n, len(tt.want))
			}

			for i, w := range tt.want {
				if math.Abs(float64(dst[i]-w)) > 1e-6 {
					t.Errorf("dst[%d] = %v, want %v", i, dst[i], w)
				}
			}
		})
	}
}

func TestSource_ReadAll(t *testing.T) {
	t.Parallel()

	samples := make([]int, 10000)
	for i := range samples {
		samples[i] = i % 100
	}

	buf, err := audio.ReadAll(t.Context(), newMockSource(2, 16, samples))
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if buf.Length() != 5000 {
		t.Errorf("Length() = %d, want 5000", buf.Length())
	}
}

func TestSource_Errors(t *testing.T) {
	t.Parallel()

	src := newMockSource(2, 16, nil)
	src.dec.(*mockAiffReader).err = io.ErrUnexpectedEOF

	if _, err := src.ReadSamples(make([]float32, 4)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSamples() error = %v, want %v", err, io.ErrUnexpectedEOF)
	}
	if _, err := src.ReadSamples(make([]float32, 3)); !errors.Is(err, audio.ErrInvalidDstSize) {
		t.Errorf("ReadSamples(odd) error = %v, want %v", err, audio.ErrInvalidDstSize)
	}

	empty := newMockSource(1, 16, nil)
	if n, err := empty.ReadSamples(make([]float32, 4)); n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("ReadSamples() on empty = (%d, %v), want (0, EOF)", n, err)
	}
}

func TestMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header []byte
		want   bool
	}{
		{"aiff", []byte("FORM\x00\x00\x00\x00AIFF"), true},
		{"aifc", []byte("FORM\x00\x00\x00\x00AIFC"), true},
		{"other form", []byte("FORM\x00\x00\x00\x00ILBM"), false},
		{"short", []byte("FORM"), false},
	}

	for _, tt := range tests {
		if got := Match(tt.header); got != tt.want {
			t.Errorf("Match(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
