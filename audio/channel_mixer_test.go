// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"testing"
)

func TestChannelMixer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      int
		out     int
		waveval func(frame, channel int) float32
		want    []float32 // first output frame
	}{
		{
			name:    "mono to stereo",
			in:      1,
			out:     2,
			waveval: func(int, int) float32 { return 0.3 },
			want:    []float32{0.3, 0.3},
		},
		{
			name:    "stereo to mono",
			in:      2,
			out:     1,
			waveval: func(_, c int) float32 { return []float32{0.2, 0.6}[c] },
			want:    []float32{0.4},
		},
		{
			name:    "quad to mono",
			in:      4,
			out:     1,
			waveval: func(_, c int) float32 { return float32(c) },
			want:    []float32{1.5},
		},
		{
			name:    "quad to stereo folds even and odd",
			in:      4,
			out:     2,
			waveval: func(_, c int) float32 { return float32(c) },
			want:    []float32{1, 2},
		},
		{
			name:    "five to stereo",
			in:      5,
			out:     2,
			waveval: func(_, c int) float32 { return float32(c) },
			want:    []float32{2, 2},
		},
		{
			name:    "stereo to quad",
			in:      2,
			out:     4,
			waveval: func(_, c int) float32 { return float32(c + 1) },
			want:    []float32{1, 2, 0, 0},
		},
		{
			name:    "mono to quad",
			in:      1,
			out:     4,
			waveval: func(int, int) float32 { return 0.5 },
			want:    []float32{0.5, 0.5, 0, 0},
		},
		{
			name:    "passthrough",
			in:      2,
			out:     2,
			waveval: func(_, c int) float32 { return float32(c) },
			want:    []float32{0, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := NewChannelMixer(newMockSource(8000, tt.in, 10, tt.waveval), tt.out)
			if m.Channels() != tt.out {
				t.Errorf("Channels() = %d, want %d", m.Channels(), tt.out)
			}

			out := drain(t, m, tt.out*4)
			if len(out) != 10*tt.out {
				t.Fatalf("len(out) = %d, want %d", len(out), 10*tt.out)
			}

			for c, want := range tt.want {
				if out[c] != want {
					t.Errorf("out[%d] = %v, want %v", c, out[c], want)
				}
			}
		})
	}
}

func TestChannelMixer_InvalidDstSize(t *testing.T) {
	t.Parallel()

	m := NewChannelMixer(newSilentSource(8000, 1, 10), 2)
	if _, err := m.ReadSamples(make([]float32, 3)); !errors.Is(err, ErrInvalidDstSize) {
		t.Errorf("ReadSamples() error = %v, want %v", err, ErrInvalidDstSize)
	}
}

func TestChannelMixer_Close(t *testing.T) {
	t.Parallel()

	src := newSilentSource(8000, 1, 10)
	if err := NewChannelMixer(src, 2).Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !src.closed {
		t.Error("Close() did not close the source")
	}
}

func BenchmarkChannelMixer_MonoToStereo(b *testing.B) {
	buf := make([]float32, 4096)

	b.ReportAllocs()

	for range b.N {
		m := NewChannelMixer(newSineSource(44100, 1, 44100, 440), 2)
		for {
			_, err := m.ReadSamples(buf)
			if err != nil {
				break
			}
		}
	}
}
