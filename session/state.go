// SPDX-License-Identifier: EPL-2.0

package session

import "errors"

// State is where a session is in its lifecycle.
type State int

const (
	Unloaded State = iota
	Loading
	Ready
	Previewing
	Exporting
	Closed
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Previewing:
		return "previewing"
	case Exporting:
		return "exporting"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

var (
	ErrNotReady = errors.New("session is not ready")
	ErrClosed   = errors.New("session is closed")
)
