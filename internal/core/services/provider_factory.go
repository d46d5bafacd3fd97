package services

import (
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/compassx/internal/core/domain"
	"github.com/custodia-labs/compassx/internal/core/ports/driven"
	"github.com/custodia-labs/compassx/internal/providers/fused"
	"github.com/custodia-labs/compassx/internal/providers/rawsensor"
	"github.com/custodia-labs/compassx/internal/providers/rotation"
)

// Ensure ProviderFactory implements the interface.
var _ driven.ProviderFactory = (*ProviderFactory)(nil)

// ProviderFactory builds heading providers over a platform.
type ProviderFactory struct {
	mu       sync.RWMutex
	builders map[domain.ProviderKind]driven.ProviderBuilder
}

// NewProviderFactory creates a factory with the built-in providers
// registered against platform.
func NewProviderFactory(platform Platform) *ProviderFactory {
	f := &ProviderFactory{
		builders: make(map[domain.ProviderKind]driven.ProviderBuilder),
	}
	f.registerBuiltinProviders(platform)
	return f
}

func (f *ProviderFactory) registerBuiltinProviders(platform Platform) {
	f.Register(domain.ProviderFusedService, func(opts driven.ProviderOptions) (driven.HeadingProvider, error) {
		return fused.New(platform.Fused, opts.Settings.Fused.Period), nil
	})

	f.Register(domain.ProviderRotationVector, func(opts driven.ProviderOptions) (driven.HeadingProvider, error) {
		cfg := rotation.ConfigFromSettings(opts.Settings)
		cfg.Sensors = platform.Sensors
		// Magnetic heading keeps declination at zero, so it never binds
		// to location.
		if opts.Heading == domain.HeadingTrue && opts.Settings.Location.Enabled {
			cfg.Location = platform.Location
			cfg.Model = platform.Model
		}
		return rotation.New(cfg), nil
	})

	f.Register(domain.ProviderRawSensor, func(opts driven.ProviderOptions) (driven.HeadingProvider, error) {
		return rawsensor.New(platform.Sensors, opts.Settings.Sensor.SamplingRate), nil
	})
}

// Create returns an unstarted provider of the given kind.
func (f *ProviderFactory) Create(kind domain.ProviderKind, opts driven.ProviderOptions) (driven.HeadingProvider, error) {
	if kind == domain.ProviderUnavailable {
		return nil, unavailableError(opts.Heading)
	}

	f.mu.RLock()
	builder, ok := f.builders[kind]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedKind, kind)
	}

	return builder(opts)
}

// Register adds a builder for the given kind.
func (f *ProviderFactory) Register(kind domain.ProviderKind, builder driven.ProviderBuilder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[kind] = builder
}

// SupportedKinds returns all registered kinds, highest priority first.
func (f *ProviderFactory) SupportedKinds() []domain.ProviderKind {
	f.mu.RLock()
	defer f.mu.RUnlock()

	kinds := make([]domain.ProviderKind, 0, len(f.builders))
	for k := range f.builders {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		return kinds[i].Priority() > kinds[j].Priority()
	})
	return kinds
}
