package services

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/custodia-labs/compassx/internal/core/domain"
	"github.com/custodia-labs/compassx/internal/core/ports/driven"
	"github.com/custodia-labs/compassx/internal/core/ports/driving"
	"github.com/custodia-labs/compassx/internal/logger"
)

// Ensure CompassService implements the interface.
var _ driving.CompassService = (*CompassService)(nil)

// CompassService opens heading streams over a platform and tracks the
// live ones so their owner can tear them all down at once.
type CompassService struct {
	platform Platform
	settings domain.CompassSettings
	selector *ProviderSelector
	factory  driven.ProviderFactory

	mu   sync.Mutex
	live map[string]*HeadingStream

	log *logger.Logger
}

// NewCompassService creates a compass service.
func NewCompassService(platform Platform, settings domain.CompassSettings) *CompassService {
	return &CompassService{
		platform: platform,
		settings: settings,
		selector: NewProviderSelector(),
		factory:  NewProviderFactory(platform),
		live:     make(map[string]*HeadingStream),
		log:      logger.Named("compass"),
	}
}

// SubscribeTrueHeading opens a stream on the true-heading channel.
func (c *CompassService) SubscribeTrueHeading(sink driven.EventSink) driving.Subscription {
	return c.open(domain.HeadingTrue, sink)
}

// SubscribeMagneticHeading opens a stream on the magnetic channel.
func (c *CompassService) SubscribeMagneticHeading(sink driven.EventSink) driving.Subscription {
	return c.open(domain.HeadingMagnetic, sink)
}

// Subscribe dispatches on kind.
func (c *CompassService) Subscribe(kind domain.HeadingKind, sink driven.EventSink) (driving.Subscription, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: heading %q", domain.ErrUnsupportedKind, kind)
	}
	if sink == nil {
		return nil, fmt.Errorf("%w: nil sink", domain.ErrInvalidInput)
	}
	return c.open(kind, sink), nil
}

func (c *CompassService) open(heading domain.HeadingKind, sink driven.EventSink) *HeadingStream {
	stream := NewHeadingStream(StreamConfig{
		Heading:   heading,
		Sink:      sink,
		Probe:     c.Capabilities,
		Selector:  c.selector,
		Factory:   c.factory,
		Settings:  c.settings,
		OnDispose: c.forget,
	})

	c.mu.Lock()
	c.live[stream.ID()] = stream
	c.mu.Unlock()

	// Unavailability is reported through the sink.
	if err := stream.Start(); err != nil {
		c.log.Debug("subscription %s did not start: %v", stream.ID(), err)
	}
	return stream
}

func (c *CompassService) forget(stream *HeadingStream) {
	c.mu.Lock()
	delete(c.live, stream.ID())
	c.mu.Unlock()
}

// Capabilities probes the platform.
func (c *CompassService) Capabilities() domain.Capabilities {
	return c.platform.Capabilities()
}

// Selection reports which provider each channel would use right now.
func (c *CompassService) Selection() driving.Selection {
	caps := c.Capabilities()
	return driving.Selection{
		Capabilities: caps,
		True:         c.selector.SelectTrueHeading(caps),
		Magnetic:     c.selector.SelectMagneticHeading(caps),
	}
}

// Declination evaluates the geomagnetic model at a position and time.
func (c *CompassService) Declination(latitude, longitude, altitudeMeters float64, at time.Time) (float64, error) {
	if c.platform.Model == nil {
		return 0, domain.ErrModelUnavailable
	}
	if math.IsNaN(latitude) || latitude < -90 || latitude > 90 {
		return 0, fmt.Errorf("%w: latitude %v", domain.ErrInvalidInput, latitude)
	}
	if math.IsNaN(longitude) || longitude < -180 || longitude > 180 {
		return 0, fmt.Errorf("%w: longitude %v", domain.ErrInvalidInput, longitude)
	}

	decl, err := c.platform.Model.Declination(latitude, longitude, altitudeMeters, at)
	if err != nil {
		return 0, fmt.Errorf("evaluate %s: %w", c.platform.Model.Name(), err)
	}
	return decl, nil
}

// Active returns the number of live subscriptions.
func (c *CompassService) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.live)
}

// Detach cancels every live subscription.
func (c *CompassService) Detach() {
	c.mu.Lock()
	streams := make([]*HeadingStream, 0, len(c.live))
	for _, s := range c.live {
		streams = append(streams, s)
	}
	c.mu.Unlock()

	for _, s := range streams {
		s.Cancel()
	}
	if len(streams) > 0 {
		c.log.Debug("detached %d subscription(s)", len(streams))
	}
}
