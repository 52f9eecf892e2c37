// SPDX-License-Identifier: EPL-2.0

// Package audio provides the sample-level building blocks of the mix
// engine.
//
// This package contains:
//   - Source interface for streaming interleaved float32 audio
//   - Buffer, the in-memory decoded form of a track
//   - Graph nodes: BufferSource, ChannelMixer, Gain, Delay and Bus
//   - Resampler for normalising decoded audio to the context rate
//   - Registry for decoder registration and format detection
//   - Peaks for waveform overviews
//
// # Source Interface
//
// The Source interface is the foundation of audio processing:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Decoders and graph nodes all implement it, so a signal path is a chain
// of constructors:
//
//	src := audio.NewBufferSource(buf, 0, -1)      // whole buffer
//	st := audio.NewChannelMixer(src, 2)           // to stereo
//	g := audio.NewGain(st, 0.7)                   // linear gain
//	d := audio.NewDelay(g, 4410)                  // start 100ms late @44.1kHz
//
// # Buffers
//
// ReadAll drains a Source into a Buffer. Buffers are planar and are not
// modified after they are produced, so the live preview and an offline
// render can read the same Buffer at once.
//
//	buf, err := audio.ReadAll(ctx, src)
//	fmt.Println(buf.Duration())
//
// # Mixing
//
// A Bus sums sources with the same rate and channel layout, keeping them
// frame aligned; it ends with its longest input:
//
//	bus, err := audio.NewBus(backing, vocal)
//
// # Format Registry
//
// Decoders register under a name together with a magic-byte matcher:
//
//	reg := audio.NewRegistry()
//	reg.Register("wav", wav.Decoder{}, wav.Match)
//	name, dec, ok := reg.Detect(header)
//
// # Error Handling
//
// Sentinel errors live in errors.go. ErrInvalidDstSize is returned when a
// destination slice is not a whole number of frames.
package audio
