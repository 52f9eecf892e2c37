// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"slices"
	"sync"
)

// HeaderSize is the number of leading bytes Registry.Detect needs to
// recognise every registered format.
const HeaderSize = 12

type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). A source may
	// return n > 0 together with io.EOF.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// MatchFunc reports whether header (at most HeaderSize bytes) starts a
// stream of a given format.
type MatchFunc func(header []byte) bool

type format struct {
	decoder Decoder
	match   MatchFunc
}

// Registry of decoders by format key (e.g., "wav", "mp3", "ogg").
type Registry struct {
	formats map[string]format
	order   []string

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		formats: make(map[string]format),
		mtx:     &sync.Mutex{},
	}
}

// Register adds or replaces the decoder for name. match may be nil, in
// which case the format can only be selected by name.
func (r *Registry) Register(name string, d Decoder, match MatchFunc) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if _, ok := r.formats[name]; !ok {
		r.order = append(r.order, name)
	}
	r.formats[name] = format{decoder: d, match: match}
}

func (r *Registry) Get(name string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	f, ok := r.formats[name]
	return f.decoder, ok
}

// Detect returns the first registered format whose MatchFunc accepts
// header. Formats are tried in registration order.
func (r *Registry) Detect(header []byte) (string, Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, name := range r.order {
		f := r.formats[name]
		if f.match != nil && f.match(header) {
			return name, f.decoder, true
		}
	}

	return "", nil, false
}

// Formats lists registered format names in registration order.
func (r *Registry) Formats() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return slices.Clone(r.order)
}
