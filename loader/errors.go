// SPDX-License-Identifier: EPL-2.0

package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrLoad marks every genuine load failure: network, file, format or
	// decode. Its text is what a user is shown.
	ErrLoad = errors.New("failed to load audio files")

	// ErrCanceled marks a load stopped by its context. It is not a failure
	// and must not be reported as one.
	ErrCanceled = errors.New("load canceled")

	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrUnsupportedScheme = errors.New("unsupported locator scheme")
	ErrEmptyAudio        = errors.New("decoded audio has no frames")
	ErrHTTPStatus        = errors.New("unexpected HTTP status")
)

func canceled(cause error) error {
	return fmt.Errorf("%w: %w", ErrCanceled, cause)
}

// IsCanceled reports whether err is a cancellation rather than a failure.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}
