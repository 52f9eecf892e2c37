// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"context"
	"fmt"
	"io"
	"runtime"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/karamix/audio"
	"github.com/ik5/karamix/utils"
)

const (
	// DefaultChunkFrames is how many frames are converted between yields.
	DefaultChunkFrames = 50000

	// HeaderSize is the size of the canonical PCM WAV header.
	HeaderSize = 44

	bitDepth = 16
)

// Encode writes buf to w as a 16-bit signed PCM WAV file with one channel
// per buffer channel.
//
// Frames are converted chunkFrames at a time; between chunks the encoder
// yields the processor and checks ctx. The bytes written do not depend on
// chunkFrames. A chunkFrames of zero or less uses DefaultChunkFrames.
//
// The RIFF and data chunk sizes are back-filled once all samples are
// written, which is why w must be seekable.
func Encode(ctx context.Context, buf *audio.Buffer, w io.WriteSeeker, chunkFrames int) error {
	if buf == nil || buf.Length() == 0 {
		return ErrEmptyBuffer
	}
	if chunkFrames <= 0 {
		chunkFrames = DefaultChunkFrames
	}

	channels := buf.NumberOfChannels()
	length := buf.Length()

	enc := gowav.NewEncoder(w, buf.SampleRate(), bitDepth, channels, pcmFormat)
	scratch := make([]int, min(chunkFrames, length)*channels)
	ib := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: buf.SampleRate()},
		SourceBitDepth: bitDepth,
	}

	for start := 0; start < length; start += chunkFrames {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w", err)
		}

		end := min(start+chunkFrames, length)
		ib.Data = scratch[:(end-start)*channels]

		for c := range channels {
			for f, v := range buf.Channel(c)[start:end] {
				ib.Data[f*channels+c] = int(utils.Float32ToPCM16(v))
			}
		}

		if err := enc.Write(ib); err != nil {
			return fmt.Errorf("write pcm: %w", err)
		}

		runtime.Gosched()
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize header: %w", err)
	}

	return nil
}

// EncodeBytes encodes buf into memory. See Encode.
func EncodeBytes(ctx context.Context, buf *audio.Buffer, chunkFrames int) ([]byte, error) {
	if buf == nil || buf.Length() == 0 {
		return nil, ErrEmptyBuffer
	}

	f := &memFile{
		data: make([]byte, 0, HeaderSize+buf.Length()*buf.NumberOfChannels()*2),
	}
	if err := Encode(ctx, buf, f, chunkFrames); err != nil {
		return nil, err
	}

	return f.data, nil
}

// memFile is an in-memory io.WriteSeeker.
type memFile struct {
	data []byte
	pos  int64
}

func (m *memFile) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.data)) {
		if end > int64(cap(m.data)) {
			grown := make([]byte, len(m.data), max(end, 2*int64(cap(m.data))))
			copy(grown, m.data)
			m.data = grown
		}
		m.data = m.data[:end]
	}

	copy(m.data[m.pos:end], p)
	m.pos = end

	return len(p), nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var pos int64

	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = m.pos + offset
	case io.SeekEnd:
		pos = int64(len(m.data)) + offset
	default:
		return 0, fmt.Errorf("%w: whence %d", ErrInvalidSeek, whence)
	}

	if pos < 0 {
		return 0, fmt.Errorf("%w: negative position", ErrInvalidSeek)
	}

	m.pos = pos
	return pos, nil
}
