// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToPCM16 converts a float sample to signed 16-bit PCM.
// The input is clamped to [-1, 1]; negative values scale by 32768 and
// positive values by 32767 so both ends of the int16 range are reachable.
func Float32ToPCM16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	if x < 0 {
		return int16(x * 32768.0)
	}

	return int16(x * 32767.0)
}

// PCMToFloat32 normalizes an integer PCM sample of the given bit depth to
// [-1, 1). Unknown depths are treated as 16-bit.
func PCMToFloat32(v int, bitDepth int) float32 {
	var scale float32

	switch bitDepth {
	case 8:
		scale = 128.0
	case 24:
		scale = 8388608.0
	case 32:
		scale = 2147483648.0
	default:
		scale = 32768.0
	}

	return float32(v) / scale
}
