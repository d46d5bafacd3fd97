package mcp

import (
	"github.com/custodia-labs/compassx/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Compass opens heading streams and evaluates declination.
	Compass driving.CompassService

	// Settings exposes the active configuration as a resource.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Compass == nil {
		return ErrMissingCompassService
	}
	// Settings is optional
	return nil
}
