// SPDX-License-Identifier: EPL-2.0

// Package karamix mixes a karaoke backing track with a recorded vocal take
// and exports the result as a 16-bit PCM WAV file.
//
// The work is split across subpackages:
//   - loader fetches and decodes both sources (WAV, AIFF, Ogg Vorbis, MP3)
//     to a common sample rate
//   - mixer schedules the two sources on a shared timeline for live
//     preview, and renders the same timeline offline for export
//   - session coordinates loading, preview and export for one pair of
//     sources, and drops loads that belong to a replaced session
//   - upload delivers the exported file to an HTTP endpoint or a directory
//   - output plays preview audio on the system device
//
// # Quick Start
//
// The simplest way to produce a mix is MixToWAV, which loads both sources,
// renders them offline and encodes the result:
//
//	file, err := karamix.MixToWAV(ctx, "backing.mp3", "vocal.wav",
//	    mixer.RelativeOffset{Millis: 250}, 0.7, 1.0)
//	if err != nil {
//	    return err
//	}
//	os.WriteFile(file.Filename("my-song"), file.Data, 0o644)
//
// # Alignment
//
// Two ways of placing the vocal against the backing track are supported.
// RelativeOffset shifts the vocal by a number of milliseconds, positive
// values delaying it and negative values delaying the backing track.
// RecordingStart says where in the backing track the recording began, so
// the mix starts there and lasts as long as the vocal.
//
// # Sessions and Preview
//
// For interactive use, a session.Session keeps both sources loaded so the
// user can preview with different offsets and gains before exporting:
//
//	s := session.New(nil, session.WithDeviceOpener(output.Opener()))
//	s.Open(backingURL, vocalURL)
//	if err := s.Wait(ctx); err != nil {
//	    return err
//	}
//	s.Preview(mixer.RecordingStart{Seconds: 12.5}, 0.7, 1.0)
//
// Gains are clamped to [0, 2] and NaN gains are treated as silence.
//
// See the individual subpackages for more detailed documentation.
package karamix
