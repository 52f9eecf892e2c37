// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/binary"
	"io"
	"math"
	"sync"

	"github.com/ik5/karamix/mixer"
)

// FakeDevice records the players created on it instead of playing them.
type FakeDevice struct {
	mu        sync.Mutex
	suspended bool
	resumes   int
	resumeErr error
	players   []*FakePlayer
}

// NewFakeDevice returns a device that starts suspended when suspended is
// true, like a browser context before user interaction.
func NewFakeDevice(suspended bool) *FakeDevice {
	return &FakeDevice{suspended: suspended}
}

// Opener returns a mixer.DeviceOpener that always hands out d.
func (d *FakeDevice) Opener() mixer.DeviceOpener {
	return func(int, int) (mixer.Device, error) { return d, nil }
}

// FailResume makes the next Resume calls fail with err.
func (d *FakeDevice) FailResume(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.resumeErr = err
}

func (d *FakeDevice) NewPlayer(r io.Reader) mixer.Player {
	d.mu.Lock()
	defer d.mu.Unlock()

	p := &FakePlayer{r: r}
	d.players = append(d.players, p)

	return p
}

func (d *FakeDevice) Suspended() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.suspended
}

func (d *FakeDevice) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.resumes++
	if d.resumeErr != nil {
		return d.resumeErr
	}
	d.suspended = false

	return nil
}

func (d *FakeDevice) Resumes() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.resumes
}

// Players returns every player created so far, oldest first.
func (d *FakeDevice) Players() []*FakePlayer {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]*FakePlayer(nil), d.players...)
}

// Playing counts players that were started and not yet paused or closed.
func (d *FakeDevice) Playing() int {
	n := 0
	for _, p := range d.Players() {
		if p.Playing() {
			n++
		}
	}

	return n
}

type FakePlayer struct {
	mu      sync.Mutex
	r       io.Reader
	playing bool
	plays   int
	closed  bool
}

func (p *FakePlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.plays++
	p.playing = !p.closed
}

func (p *FakePlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.playing = false
}

func (p *FakePlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.playing = false
	p.closed = true

	return nil
}

func (p *FakePlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.playing
}

func (p *FakePlayer) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.closed
}

// Drain reads the player's stream to the end and decodes it back into
// interleaved float samples.
func (p *FakePlayer) Drain() ([]float32, error) {
	raw, err := io.ReadAll(p.r)
	if err != nil {
		return nil, err
	}

	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}

	return out, nil
}
