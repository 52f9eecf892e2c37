// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
	"io"
	"sync"
)

// OutputChannels is the channel count of every graph the mixer builds.
const OutputChannels = 2

// Player plays one stream of interleaved little-endian float32 samples.
type Player interface {
	Play()
	Pause()
	Close() error
}

// Device is an audible output that can host several players at once.
type Device interface {
	NewPlayer(r io.Reader) Player
	Suspended() bool
	Resume() error
}

// DeviceOpener opens an output device at the given format.
type DeviceOpener func(sampleRate, channels int) (Device, error)

// Context is the audio context shared by loading, preview and export for
// one session. The output device is opened the first time preview needs
// it; a Context without an opener is headless and can only render.
type Context struct {
	mu         sync.Mutex
	sampleRate int
	opener     DeviceOpener
	device     Device
	closed     bool
}

func NewContext(sampleRate int, opener DeviceOpener) *Context {
	return &Context{sampleRate: sampleRate, opener: opener}
}

// SampleRate is the rate decoded buffers are normalised to.
func (c *Context) SampleRate() int { return c.sampleRate }

// Device returns the output device, opening it on first use.
func (c *Context) Device() (Device, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrContextClosed
	}
	if c.device != nil {
		return c.device, nil
	}
	if c.opener == nil {
		return nil, ErrNoDevice
	}

	dev, err := c.opener(c.sampleRate, OutputChannels)
	if err != nil {
		return nil, fmt.Errorf("open device: %w", err)
	}
	c.device = dev

	return dev, nil
}

// Close releases the context. Closing twice is a no-op.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.device = nil

	return nil
}

func (c *Context) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}
