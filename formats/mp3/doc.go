// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III audio through
// github.com/hajimehoshi/go-mp3.
//
// go-mp3 always emits interleaved stereo 16-bit PCM, so the resulting
// source reports two channels even for mono files. Samples are scaled by
// 1/32768 into [-1, 1).
//
//	src, err := mp3.Decoder{}.Decode(file)
//
// Match recognises a leading ID3v2 tag or a bare MPEG frame sync and is
// meant for content sniffing in an audio.Registry.
package mp3
