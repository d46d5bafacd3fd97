package driving

import (
	"time"

	"github.com/custodia-labs/compassx/internal/core/domain"
	"github.com/custodia-labs/compassx/internal/core/ports/driven"
)

// Subscription is one live heading stream.
type Subscription interface {
	// ID uniquely identifies the subscription.
	ID() string

	// Heading returns the channel the subscription listens on.
	Heading() domain.HeadingKind

	// State returns the current lifecycle state.
	State() domain.SubscriptionState

	// Provider returns the kind of source backing the stream.
	// ProviderUnavailable until Start succeeds.
	Provider() domain.ProviderKind

	// CurrentReading returns the provider's last accepted reading.
	CurrentReading() domain.HeadingReading

	// Cancel stops the provider. Idempotent.
	Cancel()
}

// Selection reports which provider each channel would use right now.
type Selection struct {
	Capabilities domain.Capabilities
	True         domain.ProviderKind
	Magnetic     domain.ProviderKind
}

// CompassService is the entry point for heading consumers.
type CompassService interface {
	// SubscribeTrueHeading opens a stream on the true-heading channel.
	// If no source exists the sink receives a terminal error, the stream
	// ends and the returned subscription is already disposed.
	SubscribeTrueHeading(sink driven.EventSink) Subscription

	// SubscribeMagneticHeading opens a stream on the magnetic channel.
	SubscribeMagneticHeading(sink driven.EventSink) Subscription

	// Subscribe dispatches on kind.
	Subscribe(kind domain.HeadingKind, sink driven.EventSink) (Subscription, error)

	// Capabilities probes the platform.
	Capabilities() domain.Capabilities

	// Selection probes the platform and reports the selected providers.
	Selection() Selection

	// Declination evaluates the geomagnetic model.
	Declination(latitude, longitude, altitudeMeters float64, at time.Time) (float64, error)

	// Active returns the number of live subscriptions.
	Active() int

	// Detach cancels every live subscription, as on owner teardown.
	Detach()
}
