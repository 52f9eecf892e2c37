// SPDX-License-Identifier: EPL-2.0

// Package loader fetches audio from a locator and decodes it into an
// audio.Buffer at the session's sample rate.
//
// A locator is an http or https URL, a file:// URL or a plain path. The
// format is sniffed from the first bytes (RIFF/WAVE, FORM/AIFF, OggS, ID3
// or an MPEG frame sync) and, failing that, taken from the extension.
//
// Cancellation is not an error: when the context ends during any stage,
// Load returns an error matching ErrCanceled, which callers drop silently.
// Every real failure matches ErrLoad.
//
//	l := loader.New(loader.WithLogger(log))
//	backing, vocal, err := l.LoadPair(ctx, backingURL, vocalURL, 44100)
//	switch {
//	case loader.IsCanceled(err):
//	    return
//	case err != nil:
//	    // "failed to load audio files"
//	}
package loader
