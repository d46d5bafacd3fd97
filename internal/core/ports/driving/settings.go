package driving

import (
	"time"

	"github.com/custodia-labs/compassx/internal/core/domain"
)

// SettingsService manages compass settings.
type SettingsService interface {
	// Get retrieves current settings, falling back to defaults for
	// missing or invalid values.
	Get() (*domain.CompassSettings, error)

	// Save persists settings.
	Save(settings *domain.CompassSettings) error

	// SetSamplingRate updates the sensor sampling hint.
	SetSamplingRate(rate domain.SamplingRate) error

	// SetNoiseThreshold updates the minimum forwarded heading change.
	SetNoiseThreshold(degrees float64) error

	// SetLocation updates the declination refresh policy.
	SetLocation(enabled bool, minInterval time.Duration, minDistanceMeters float64) error

	// GetDefaults returns default settings.
	GetDefaults() domain.CompassSettings
}
