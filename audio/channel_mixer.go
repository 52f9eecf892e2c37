// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelMixer converts a source to a different channel count.
//
// Down-mixing averages input channel i into output channel i%out, so
// anything to mono is a plain average and quad to stereo folds even and
// odd channels. Up-mixing copies channels across; a mono input feeds both
// left and right, extra outputs stay silent.
type ChannelMixer struct {
	src      Source
	channels int
	tmp      []float32
}

func NewChannelMixer(src Source, channels int) *ChannelMixer {
	return &ChannelMixer{
		src:      src,
		channels: channels,
		tmp:      make([]float32, 4096),
	}
}

func (m *ChannelMixer) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMixer) Channels() int   { return m.channels }
func (m *ChannelMixer) BufSize() int    { return m.src.BufSize() }
func (m *ChannelMixer) Close() error {
	err := m.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (m *ChannelMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if len(dst)%m.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	in := m.src.Channels()
	if in == m.channels {
		return m.src.ReadSamples(dst)
	}

	frames := len(dst) / m.channels
	needed := frames * in

	// Grow tmp buffer if needed (but don't shrink to avoid thrashing)
	if cap(m.tmp) < needed {
		m.tmp = make([]float32, max(needed, 8192))
	}
	m.tmp = m.tmp[:needed]

	n, err := m.src.ReadSamples(m.tmp)
	if n == 0 {
		return 0, err
	}
	frames = n / in

	switch {
	case in == 1 && m.channels == 2:
		for f := range frames {
			v := m.tmp[f]
			dst[f<<1] = v
			dst[f<<1+1] = v
		}
	case in == 2 && m.channels == 1:
		for f := range frames {
			dst[f] = (m.tmp[f<<1] + m.tmp[f<<1+1]) * 0.5
		}
	case in > m.channels:
		m.fold(dst, frames, in)
	default:
		m.spread(dst, frames, in)
	}

	return frames * m.channels, err
}

// fold down-mixes by averaging input channel i into output i%channels.
func (m *ChannelMixer) fold(dst []float32, frames, in int) {
	out := m.channels

	for f := range frames {
		row := dst[f*out : (f+1)*out]
		clear(row)

		for c := range in {
			row[c%out] += m.tmp[f*in+c]
		}
		for c := range out {
			// channels c, c+out, c+2*out, ... contributed to row[c]
			row[c] /= float32((in - c + out - 1) / out)
		}
	}
}

// spread up-mixes by copying inputs to matching outputs.
func (m *ChannelMixer) spread(dst []float32, frames, in int) {
	out := m.channels

	for f := range frames {
		row := dst[f*out : (f+1)*out]
		clear(row)
		copy(row, m.tmp[f*in:(f+1)*in])

		if in == 1 {
			row[1] = row[0]
		}
	}
}
