// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes uncompressed AIFF and AIFF-C audio through
// github.com/go-audio/aiff.
//
// Signed PCM of 8, 16, 24 and 32 bits is supported. go-audio walks chunks
// with Seek, so readers that cannot seek are buffered in memory first.
//
// # Errors
//
//   - ErrNotAiffFile: the stream has no valid FORM/AIFF header
//   - ErrUnsupportedBitDepth: the sample size is not one of the above
//   - ErrUnsupportedAiffLayout: the COMM chunk describes no channels
package aiff
