// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis audio through
// github.com/jfreymuth/oggvorbis.
//
// The decoder produces float samples natively, so ReadSamples hands the
// destination slice straight to the library. Any channel count and sample
// rate the stream declares is passed through unchanged.
package vorbis
