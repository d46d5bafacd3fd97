// Package mcp provides an MCP (Model Context Protocol) server adapter for compassx.
// It lets AI assistants read the current heading, evaluate magnetic
// declination and inspect which heading sources the device offers.
package mcp

import "errors"

var (
	// ErrMissingCompassService is returned when the compass service is not provided.
	ErrMissingCompassService = errors.New("mcp: compass service is required")

	// ErrNoReading is returned when no reading arrives before the timeout.
	ErrNoReading = errors.New("mcp: no heading reading before timeout")

	// ErrStreamEnded is returned when a stream ends without a reading or error.
	ErrStreamEnded = errors.New("mcp: heading stream ended")
)
