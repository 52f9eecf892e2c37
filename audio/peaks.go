// SPDX-License-Identifier: EPL-2.0

package audio

// Peaks reduces buf to bins absolute peak values across all channels, for
// drawing a waveform overview. Bins that cover no frames are zero.
func Peaks(buf *Buffer, bins int) []float32 {
	if bins <= 0 || buf == nil {
		return nil
	}

	peaks := make([]float32, bins)
	length := buf.Length()
	if length == 0 {
		return peaks
	}

	for c := range buf.NumberOfChannels() {
		samples := buf.Channel(c)

		for i := range bins {
			start := i * length / bins
			end := (i + 1) * length / bins

			p := peaks[i]
			for _, v := range samples[start:end] {
				if v < 0 {
					v = -v
				}
				if v > p {
					p = v
				}
			}
			peaks[i] = p
		}
	}

	return peaks
}
