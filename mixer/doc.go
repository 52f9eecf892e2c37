// SPDX-License-Identifier: EPL-2.0

// Package mixer schedules a backing track and a vocal take against each
// other and either plays the blend live or renders it offline.
//
// Both paths build the same graph per source:
//
//	BufferSource(region) -> ChannelMixer(2) -> Gain -> Delay(start)
//
// A live preview hands each path to a player on the Context's Device; an
// offline render sums both paths with audio.Bus into a stereo buffer at
// the backing track's sample rate, which Export then encodes as WAV.
//
// # Alignment
//
// Two alignment models are supported and both reduce to a Timeline:
//
//   - RecordingStart{Seconds}: the vocal was recorded Seconds into the
//     backing. The backing plays from that point for the vocal's length,
//     the vocal from its start, together.
//   - RelativeOffset{Millis}: a positive offset delays the vocal, a
//     negative one delays the backing. Both play from their start.
//
// The mix lasts Timeline.Total seconds, rounded to whole frames.
//
// # Preview lifecycle
//
// PlayPreview stops any playing preview before starting a new one, so at
// most two nodes are ever live. A wall-clock timer returns the mixer to
// idle after the total duration; a timer left over from a replaced preview
// does nothing. StopPreview is safe to call at any time.
//
// # Errors
//
// Preview and export refuse to run on missing or empty buffers
// (ErrNotReady). Render and encode failures are *RenderError values that
// match ErrRender, so they can be told apart from load failures and
// retried on their own.
package mixer
