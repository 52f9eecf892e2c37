// SPDX-License-Identifier: EPL-2.0

package mixer

import "math"

const (
	MinGain = 0.0
	MaxGain = 2.0
)

// Timeline places both sources on the mix clock. All values are seconds.
type Timeline struct {
	BackingStart    float64 // when the backing enters the mix
	BackingOffset   float64 // position in the backing buffer it enters at
	BackingDuration float64 // how much of the backing is played
	VocalStart      float64
	VocalDuration   float64
}

// Total is the length of the mix: whichever source ends last.
func (t Timeline) Total() float64 {
	return max(t.BackingStart+t.BackingDuration, t.VocalStart+t.VocalDuration)
}

// LeadIn is how far the vocal enters after the backing. Negative when the
// backing is the one held back.
func (t Timeline) LeadIn() float64 {
	return t.VocalStart - t.BackingStart
}

// Alignment decides how the vocal take lines up against the backing track.
type Alignment interface {
	Timeline(backingDuration, vocalDuration float64) Timeline
}

// RelativeOffset shifts one source against the other. A positive offset
// delays the vocal, a negative one delays the backing. Both sources play
// from their own start.
type RelativeOffset struct {
	Millis float64
}

func (a RelativeOffset) Timeline(backingDuration, vocalDuration float64) Timeline {
	offset := a.Millis / 1000
	if math.IsNaN(offset) || math.IsInf(offset, 0) {
		offset = 0
	}

	t := Timeline{BackingDuration: backingDuration, VocalDuration: vocalDuration}
	if offset >= 0 {
		t.VocalStart = offset
	} else {
		t.BackingStart = -offset
	}

	return t
}

// RecordingStart says the vocal was recorded starting Seconds into the
// backing track. The backing plays from there for the length of the vocal,
// so both end together.
type RecordingStart struct {
	Seconds float64
}

func (a RecordingStart) Timeline(backingDuration, vocalDuration float64) Timeline {
	start := a.Seconds
	if math.IsNaN(start) {
		start = 0
	}
	start = min(max(start, 0), backingDuration)

	return Timeline{
		BackingOffset:   start,
		BackingDuration: min(vocalDuration, backingDuration-start),
		VocalDuration:   vocalDuration,
	}
}

// ClampGain limits g to [MinGain, MaxGain]. NaN is treated as silence.
func ClampGain(g float64) float64 {
	if math.IsNaN(g) {
		return MinGain
	}

	return min(max(g, MinGain), MaxGain)
}

// Frames converts seconds to a whole frame count at rate.
func Frames(seconds float64, rate int) int {
	return int(math.Round(seconds * float64(rate)))
}
