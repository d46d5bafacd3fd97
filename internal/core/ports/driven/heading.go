package driven

import "github.com/custodia-labs/compassx/internal/core/domain"

// ReadingHandler receives accepted readings from a provider.
type ReadingHandler func(reading domain.HeadingReading)

// HeadingProvider normalises one heading source into HeadingReadings.
// Each variant (fused service, rotation vector, heading sensor) implements
// this interface. Instances are owned by a single subscription.
type HeadingProvider interface {
	// Kind returns which source backs the provider.
	Kind() domain.ProviderKind

	// Start registers with the underlying subsystem.
	// Returns a *domain.SourceUnavailableError if the source is absent.
	// Callers must serialise Start and Stop.
	Start() error

	// CurrentReading returns the last accepted reading, or domain.NoReading.
	CurrentReading() domain.HeadingReading

	// OnReading sets the single handler. The last registration wins;
	// nil clears it.
	OnReading(handler ReadingHandler)

	// Stop unregisters from the subsystem and releases any location
	// subscription. Safe to call more than once or before Start.
	// A stopped provider never delivers again.
	Stop()
}

// ProviderOptions carries what a provider needs beyond its subsystem.
type ProviderOptions struct {
	// Heading is the channel the provider serves.
	Heading domain.HeadingKind

	// Settings are the active compass settings.
	Settings domain.CompassSettings
}
