// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// maxEmptyReads bounds how many consecutive (0, nil) reads are tolerated
// before a source is considered stuck.
const maxEmptyReads = 64

// Buffer is decoded, planar sample data held in memory.
//
// A Buffer is not modified after it has been handed out by its producer,
// so it can be read from several goroutines at once.
type Buffer struct {
	sampleRate int
	data       [][]float32
}

// NewBuffer allocates a silent buffer of the given shape.
func NewBuffer(sampleRate, channels, frames int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}
	if frames < 0 {
		return nil, ErrInvalidLength
	}

	data := make([][]float32, channels)
	for c := range data {
		data[c] = make([]float32, frames)
	}

	return &Buffer{sampleRate: sampleRate, data: data}, nil
}

// NewBufferFromChannels wraps existing planar data without copying.
func NewBufferFromChannels(sampleRate int, data [][]float32) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if len(data) == 0 {
		return nil, ErrInvalidChannels
	}
	for _, ch := range data[1:] {
		if len(ch) != len(data[0]) {
			return nil, ErrChannelLengthMismatch
		}
	}

	return &Buffer{sampleRate: sampleRate, data: data}, nil
}

func (b *Buffer) SampleRate() int       { return b.sampleRate }
func (b *Buffer) NumberOfChannels() int { return len(b.data) }

// Length is the number of frames per channel.
func (b *Buffer) Length() int {
	if len(b.data) == 0 {
		return 0
	}
	return len(b.data[0])
}

// Duration in seconds.
func (b *Buffer) Duration() float64 {
	return float64(b.Length()) / float64(b.sampleRate)
}

// Channel returns the samples of channel c. Callers must not modify them
// unless they allocated the buffer themselves.
func (b *Buffer) Channel(c int) []float32 { return b.data[c] }

// ReadAll drains src into a Buffer. ctx is checked between reads so a
// long decode can be abandoned.
func ReadAll(ctx context.Context, src Source) (*Buffer, error) {
	channels := src.Channels()
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}

	size := src.BufSize()
	size -= size % channels
	if size < channels*256 {
		size = channels * 256
	}
	tmp := make([]float32, size)

	data := make([][]float32, channels)
	empty := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w", err)
		}

		n, err := src.ReadSamples(tmp)
		frames := n / channels
		for f := range frames {
			base := f * channels
			for c := range channels {
				data[c] = append(data[c], tmp[base+c])
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read samples: %w", err)
		}

		if n == 0 {
			empty++
			if empty > maxEmptyReads {
				return nil, ErrNoProgress
			}
		} else {
			empty = 0
		}
	}

	for c := range data {
		if data[c] == nil {
			data[c] = []float32{}
		}
	}

	return NewBufferFromChannels(src.SampleRate(), data)
}

// BufferSource streams a frame region of a Buffer as interleaved samples.
type BufferSource struct {
	buf *Buffer
	pos int
	end int
}

// NewBufferSource plays frames [offset, offset+frames) of buf. The region
// is clipped to the buffer; a negative frames value means "to the end".
func NewBufferSource(buf *Buffer, offset, frames int) *BufferSource {
	length := buf.Length()
	offset = min(max(offset, 0), length)

	end := length
	if frames >= 0 {
		end = min(offset+frames, length)
	}

	return &BufferSource{buf: buf, pos: offset, end: end}
}

func (s *BufferSource) SampleRate() int { return s.buf.SampleRate() }
func (s *BufferSource) Channels() int   { return s.buf.NumberOfChannels() }
func (s *BufferSource) BufSize() int    { return 4096 }
func (s *BufferSource) Close() error    { return nil }

// Remaining is the number of frames not yet read.
func (s *BufferSource) Remaining() int { return s.end - s.pos }

func (s *BufferSource) ReadSamples(dst []float32) (int, error) {
	channels := s.buf.NumberOfChannels()
	if len(dst)%channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if s.pos >= s.end {
		return 0, io.EOF
	}

	frames := min(len(dst)/channels, s.end-s.pos)
	for c := range channels {
		src := s.buf.data[c][s.pos : s.pos+frames]
		for f, v := range src {
			dst[f*channels+c] = v
		}
	}
	s.pos += frames

	if s.pos >= s.end {
		return frames * channels, io.EOF
	}

	return frames * channels, nil
}

// readFull reads from src until dst is full, the source ends or it fails.
// The returned error is io.EOF only when the source is exhausted.
func readFull(src Source, dst []float32) (int, error) {
	total := 0
	empty := 0

	for total < len(dst) {
		n, err := src.ReadSamples(dst[total:])
		total += n

		if err != nil {
			return total, err
		}

		if n == 0 {
			empty++
			if empty > maxEmptyReads {
				return total, ErrNoProgress
			}
		} else {
			empty = 0
		}
	}

	return total, nil
}
