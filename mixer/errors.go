// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"errors"
	"fmt"
)

var (
	ErrNotReady         = errors.New("backing and vocal buffers are not loaded")
	ErrEmptyBuffer      = errors.New("buffer has no frames")
	ErrExportInProgress = errors.New("an export is already running")
	ErrRender           = errors.New("failed to render mix")
	ErrContextClosed    = errors.New("audio context is closed")
	ErrNoDevice         = errors.New("audio context has no output device")
	ErrNodeStarted      = errors.New("source node already started")
	ErrNodeNotStarted   = errors.New("source node not started")
	ErrNodeStopped      = errors.New("source node already stopped")
)

// RenderError reports a failed offline render or encode. It matches
// ErrRender with errors.Is so callers can retry the export alone.
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrRender, e.Op, e.Err)
}

func (e *RenderError) Unwrap() []error { return []error{ErrRender, e.Err} }
