// SPDX-License-Identifier: EPL-2.0

// Package session ties loading, preview and export together for one pair
// of sources.
//
// A Session moves through Unloaded, Loading, Ready, Previewing and
// Exporting until it is closed. Every Open starts a new generation with a
// fresh mixer and audio context; loads that belong to an older generation
// are dropped when they finish, so a slow fetch can never leak buffers into
// a session that has moved on.
package session
