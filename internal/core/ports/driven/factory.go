package driven

import "github.com/custodia-labs/compassx/internal/core/domain"

// ProviderBuilder creates a HeadingProvider for one provider kind.
type ProviderBuilder func(opts ProviderOptions) (HeadingProvider, error)

// ProviderFactory creates heading providers for a selected kind.
// It maintains a registry of provider kinds and their builders.
type ProviderFactory interface {
	// Create returns an unstarted provider of the given kind.
	// Returns ErrUnsupportedKind if no builder is registered and
	// a *domain.SourceUnavailableError for ProviderUnavailable.
	Create(kind domain.ProviderKind, opts ProviderOptions) (HeadingProvider, error)

	// Register adds a builder for the given kind, replacing any existing one.
	Register(kind domain.ProviderKind, builder ProviderBuilder)

	// SupportedKinds returns all registered kinds, highest priority first.
	SupportedKinds() []domain.ProviderKind
}
