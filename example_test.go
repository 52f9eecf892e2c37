// SPDX-License-Identifier: EPL-2.0

package karamix_test

import (
	"context"
	"fmt"

	"github.com/ik5/karamix"
	"github.com/ik5/karamix/internal/audiotest"
	"github.com/ik5/karamix/mixer"
)

// Example shows an offline mix of two decoded sources: a one second stereo
// backing track and a half second mono vocal that starts 250ms in.
func Example() {
	backing := audiotest.Seconds(8000, 2, 1, 0.5)
	vocal := audiotest.Seconds(8000, 1, 0.5, 0.25)

	file, err := karamix.MixBuffers(context.Background(), backing, vocal,
		mixer.RelativeOffset{Millis: 250}, 0.7, 1.0)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(file.Duration(), file.Channels, file.ContentType, file.Filename("demo"))
	// Output: 1s 2 audio/wav demo-mixed.wav
}
