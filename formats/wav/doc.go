// SPDX-License-Identifier: EPL-2.0

// Package wav decodes PCM WAV streams and encodes audio buffers as 16-bit
// PCM WAV files.
//
// Both directions go through github.com/go-audio/wav, which handles the
// RIFF chunk walk on the way in and back-fills the header sizes on the way
// out.
//
// # Decoding
//
//	src, err := wav.Decoder{}.Decode(file)
//	if err != nil {
//	    return err
//	}
//	buf, err := audio.ReadAll(ctx, src)
//
// Integer PCM of 8, 16, 24 and 32 bits is accepted, with any channel count
// and sample rate. Samples are scaled into [-1, 1].
//
// # Encoding
//
//	data, err := wav.EncodeBytes(ctx, buf, wav.DefaultChunkFrames)
//
// The output is always 16-bit little-endian PCM with a 44-byte header.
// Samples are clamped to [-1, 1]; negative values are scaled by 32768 and
// positive values by 32767, then truncated toward zero.
//
// Conversion happens in chunks so a long export can be cancelled through
// its context and does not monopolize the scheduler. The chunk size never
// changes the bytes produced.
package wav
