// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ik5/karamix/audio"
)

func silentBuffer(t *testing.T, channels, frames int) *audio.Buffer {
	t.Helper()

	buf, err := audio.NewBuffer(1000, channels, frames)
	if err != nil {
		t.Fatalf("NewBuffer() error = %v", err)
	}
	return buf
}

func TestMixer_ExportInProgress(t *testing.T) {
	t.Parallel()

	m := New(NewContext(1000, nil))
	m.SetBuffers(silentBuffer(t, 2, 100), silentBuffer(t, 1, 100))

	// hold the export slot the way a running export does
	if _, _, err := m.beginExport(); err != nil {
		t.Fatalf("beginExport() error = %v", err)
	}

	if _, err := m.Export(context.Background(), RelativeOffset{}, 1, 1); !errors.Is(err, ErrExportInProgress) {
		t.Errorf("Export() error = %v, want %v", err, ErrExportInProgress)
	}
	if err := m.PlayPreview(RelativeOffset{}, 1, 1); !errors.Is(err, ErrExportInProgress) {
		t.Errorf("PlayPreview() error = %v, want %v", err, ErrExportInProgress)
	}
	if !m.IsExporting() || m.IsPlaying() {
		t.Errorf("exporting=%v playing=%v, want true/false", m.IsExporting(), m.IsPlaying())
	}

	m.endExport()
	if _, err := m.Export(context.Background(), RelativeOffset{}, 1, 1); err != nil {
		t.Errorf("Export() after endExport error = %v", err)
	}
}

func TestRender_ZeroLength(t *testing.T) {
	t.Parallel()

	// empty buffers give a zero-frame mix, which cannot be encoded
	_, err := render(context.Background(), silentBuffer(t, 2, 0), silentBuffer(t, 1, 0),
		RelativeOffset{}, 1, 1, DefaultRenderChunk, nil)

	var re *RenderError
	if !errors.As(err, &re) || re.Op != "size" {
		t.Errorf("render() error = %v, want *RenderError{Op: size}", err)
	}
}

type failingSource struct{ err error }

func (f failingSource) SampleRate() int                    { return 1000 }
func (f failingSource) Channels() int                      { return 2 }
func (f failingSource) BufSize() int                       { return 16 }
func (f failingSource) Close() error                       { return nil }
func (f failingSource) ReadSamples([]float32) (int, error) { return 0, f.err }

func TestPCMReader(t *testing.T) {
	t.Parallel()

	buf, _ := audio.NewBufferFromChannels(1000, [][]float32{{0.5, -1, 0.25}, {1, 0, -0.5}})
	r := newPCMReader(audio.NewBufferSource(buf, 0, -1))

	raw, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	want := []float32{0.5, 1, -1, 0, 0.25, -0.5}
	if len(raw) != len(want)*4 {
		t.Fatalf("len(raw) = %d, want %d", len(raw), len(want)*4)
	}
	for i, w := range want {
		if got := math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])); got != w {
			t.Errorf("sample %d = %v, want %v", i, got, w)
		}
	}
}

func TestPCMReader_SmallReads(t *testing.T) {
	t.Parallel()

	buf, _ := audio.NewBufferFromChannels(1000, [][]float32{{0.5, 0.25}, {1, -1}})
	r := newPCMReader(audio.NewBufferSource(buf, 0, -1))

	var raw []byte
	p := make([]byte, 3) // smaller than a frame
	for {
		n, err := r.Read(p)
		raw = append(raw, p[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
	}

	if len(raw) != 16 {
		t.Fatalf("len(raw) = %d, want 16", len(raw))
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(raw[12:])); got != -1 {
		t.Errorf("last sample = %v, want -1", got)
	}
}

func TestPCMReader_SourceError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	r := newPCMReader(failingSource{err: boom})

	if _, err := r.Read(make([]byte, 64)); !errors.Is(err, boom) {
		t.Errorf("Read() error = %v, want %v", err, boom)
	}
}
