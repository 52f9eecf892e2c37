// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"bytes"
	"fmt"
	"io"
	"time"
)

const ContentType = "audio/wav"

// EncodedFile is the result of an export: a complete 16-bit PCM WAV file
// and the format it was written in.
type EncodedFile struct {
	Data        []byte
	SampleRate  int
	Channels    int
	Frames      int
	ContentType string
}

// Duration is the playing time of the encoded audio.
func (f *EncodedFile) Duration() time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}

	return time.Duration(f.Frames) * time.Second / time.Duration(f.SampleRate)
}

// Reader returns a fresh reader over the file bytes.
func (f *EncodedFile) Reader() io.Reader {
	return bytes.NewReader(f.Data)
}

// Filename names the file "<prefix>-mixed.wav".
func (f *EncodedFile) Filename(prefix string) string {
	if prefix == "" {
		prefix = "karaoke"
	}

	return fmt.Sprintf("%s-mixed.wav", prefix)
}
