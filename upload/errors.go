// SPDX-License-Identifier: EPL-2.0

package upload

import (
	"errors"
	"fmt"
)

var (
	ErrUpload   = errors.New("failed to upload mix")
	ErrNoFile   = errors.New("no encoded file to deliver")
	ErrNoSongID = errors.New("song id is required")
	ErrNoURL    = errors.New("upload url is required")
	ErrSaveMix  = errors.New("failed to save mix")
)

// Error reports a failed upload. It always matches ErrUpload.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s: status %d", ErrUpload, e.URL, e.StatusCode)
	}

	return fmt.Sprintf("%s: %s: %v", ErrUpload, e.URL, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpload}
	}

	return []error{ErrUpload, e.Err}
}
