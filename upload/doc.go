// SPDX-License-Identifier: EPL-2.0

// Package upload delivers exported mixes: to a recordings endpoint over
// HTTP, or into a local directory.
package upload
