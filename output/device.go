// SPDX-License-Identifier: EPL-2.0

// Package output plays mixer graphs on the system's audio device through
// github.com/ebitengine/oto/v3.
//
// oto allows a single context per process, so the device is opened once
// and shared by every session. Opening it again with the same format
// returns the same device; asking for another format is an error.
package output

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/ik5/karamix/mixer"
)

var ErrFormatMismatch = errors.New("output device already open with another format")

// backend is the part of *oto.Context the device uses.
type backend interface {
	NewPlayer(r io.Reader) mixer.Player
	Suspend() error
	Resume() error
	Err() error
}

type otoBackend struct {
	ctx *oto.Context
}

func (b otoBackend) NewPlayer(r io.Reader) mixer.Player { return b.ctx.NewPlayer(r) }
func (b otoBackend) Suspend() error                     { return b.ctx.Suspend() }
func (b otoBackend) Resume() error                      { return b.ctx.Resume() }
func (b otoBackend) Err() error                         { return b.ctx.Err() }

func openOto(sampleRate, channels int, buffer time.Duration) (backend, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   buffer,
	})
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	<-ready

	return otoBackend{ctx: ctx}, nil
}

// Device is the shared output. It satisfies mixer.Device.
type Device struct {
	mu         sync.Mutex
	backend    backend
	sampleRate int
	channels   int
	suspended  bool
}

var (
	sharedMu sync.Mutex
	shared   *Device
	open     = openOto
)

// BufferSize is the device latency requested when the device is first
// opened. Zero lets oto pick.
var BufferSize time.Duration

// Open returns the process-wide device, opening it on first use.
func Open(sampleRate, channels int) (*Device, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared != nil {
		if shared.sampleRate != sampleRate || shared.channels != channels {
			return nil, fmt.Errorf("%w: open at %d Hz x %d, want %d Hz x %d", ErrFormatMismatch,
				shared.sampleRate, shared.channels, sampleRate, channels)
		}
		return shared, nil
	}

	b, err := open(sampleRate, channels, BufferSize)
	if err != nil {
		return nil, err
	}

	shared = &Device{backend: b, sampleRate: sampleRate, channels: channels}

	return shared, nil
}

// Opener adapts Open to mixer.DeviceOpener.
func Opener() mixer.DeviceOpener {
	return func(sampleRate, channels int) (mixer.Device, error) {
		return Open(sampleRate, channels)
	}
}

func (d *Device) SampleRate() int { return d.sampleRate }
func (d *Device) Channels() int   { return d.channels }

func (d *Device) NewPlayer(r io.Reader) mixer.Player {
	return d.backend.NewPlayer(r)
}

// Suspend pauses the whole device, e.g. while the application is in the
// background. Players keep their position.
func (d *Device) Suspend() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.backend.Suspend(); err != nil {
		return fmt.Errorf("suspend: %w", err)
	}
	d.suspended = true

	return nil
}

func (d *Device) Suspended() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.suspended
}

func (d *Device) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.backend.Resume(); err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	d.suspended = false

	return nil
}

// Err reports an asynchronous device failure, if any.
func (d *Device) Err() error {
	return d.backend.Err()
}
