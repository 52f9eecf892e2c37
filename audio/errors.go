// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize        = errors.New("dst size must be multiple of channels")
	ErrInvalidSampleRate     = errors.New("sample rate must be positive")
	ErrInvalidChannels       = errors.New("channel count must be positive")
	ErrInvalidLength         = errors.New("buffer length must not be negative")
	ErrChannelLengthMismatch = errors.New("channels have different lengths")
	ErrChannelMismatch       = errors.New("sources have different channel counts")
	ErrSampleRateMismatch    = errors.New("sources have different sample rates")
	ErrNoProgress            = errors.New("source stopped producing samples")
)
