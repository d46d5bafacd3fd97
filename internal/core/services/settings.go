package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/compassx/internal/core/domain"
	"github.com/custodia-labs/compassx/internal/core/ports/driven"
	"github.com/custodia-labs/compassx/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keySamplingRate     = "sensor.sampling_rate"
	keyNoiseThreshold   = "noise.threshold_degrees"
	keyLocationEnabled  = "location.enabled"
	keyLocationInterval = "location.min_interval"
	keyLocationDistance = "location.min_distance_meters"
	keyFusedPeriod      = "fused.period"
	keyCoefficientsFile = "geomag.coefficients_file"
)

// SettingsService manages compass settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get retrieves current settings. Missing or invalid values fall back to
// defaults one field at a time.
func (s *SettingsService) Get() (*domain.CompassSettings, error) {
	defaults := domain.DefaultCompassSettings()

	settings := &domain.CompassSettings{
		Sensor: domain.SensorSettings{
			SamplingRate: s.getSamplingRate(defaults.Sensor.SamplingRate),
		},
		Noise: domain.NoiseSettings{
			ThresholdDegrees: s.getThreshold(defaults.Noise.ThresholdDegrees),
		},
		Location: domain.LocationSettings{
			Enabled:           s.getBool(keyLocationEnabled, defaults.Location.Enabled),
			MinInterval:       s.getDuration(keyLocationInterval, defaults.Location.MinInterval),
			MinDistanceMeters: s.getNonNegative(keyLocationDistance, defaults.Location.MinDistanceMeters),
		},
		Fused: domain.FusedSettings{
			Period: s.getDuration(keyFusedPeriod, defaults.Fused.Period),
		},
		Geomag: domain.GeomagSettings{
			CoefficientsFile: s.configStore.GetString(keyCoefficientsFile), // Empty selects the embedded model
		},
	}

	return settings, nil
}

// Save persists settings.
func (s *SettingsService) Save(settings *domain.CompassSettings) error {
	if settings == nil {
		return fmt.Errorf("%w: nil settings", domain.ErrInvalidInput)
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	if err := s.configStore.Set(keySamplingRate, settings.Sensor.SamplingRate.String()); err != nil {
		return fmt.Errorf("save sampling rate: %w", err)
	}
	if err := s.configStore.Set(keyNoiseThreshold, settings.Noise.ThresholdDegrees); err != nil {
		return fmt.Errorf("save noise threshold: %w", err)
	}

	if err := s.configStore.Set(keyLocationEnabled, settings.Location.Enabled); err != nil {
		return fmt.Errorf("save location enabled: %w", err)
	}
	if err := s.configStore.Set(keyLocationInterval, settings.Location.MinInterval.String()); err != nil {
		return fmt.Errorf("save location min_interval: %w", err)
	}
	if err := s.configStore.Set(keyLocationDistance, settings.Location.MinDistanceMeters); err != nil {
		return fmt.Errorf("save location min_distance_meters: %w", err)
	}

	if err := s.configStore.Set(keyFusedPeriod, settings.Fused.Period.String()); err != nil {
		return fmt.Errorf("save fused period: %w", err)
	}

	if settings.Geomag.CoefficientsFile != "" {
		if err := s.configStore.Set(keyCoefficientsFile, settings.Geomag.CoefficientsFile); err != nil {
			return fmt.Errorf("save coefficients file: %w", err)
		}
	}

	return nil
}

// SetSamplingRate updates the sensor sampling hint.
func (s *SettingsService) SetSamplingRate(rate domain.SamplingRate) error {
	if !rate.IsValid() {
		return fmt.Errorf("invalid sampling rate: %s", rate)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Sensor.SamplingRate = rate
	return s.Save(settings)
}

// SetNoiseThreshold updates the minimum forwarded heading change.
func (s *SettingsService) SetNoiseThreshold(degrees float64) error {
	if degrees < 0 || degrees >= 360 {
		return fmt.Errorf("invalid noise threshold: %v", degrees)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Noise.ThresholdDegrees = degrees
	return s.Save(settings)
}

// SetLocation updates the declination refresh policy.
func (s *SettingsService) SetLocation(enabled bool, minInterval time.Duration, minDistanceMeters float64) error {
	if minInterval < 0 {
		return fmt.Errorf("invalid min interval: %s", minInterval)
	}
	if minDistanceMeters < 0 {
		return fmt.Errorf("invalid min distance: %v", minDistanceMeters)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Location.Enabled = enabled
	settings.Location.MinInterval = minInterval
	settings.Location.MinDistanceMeters = minDistanceMeters
	return s.Save(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.CompassSettings {
	return domain.DefaultCompassSettings()
}

func (s *SettingsService) getSamplingRate(defaultVal domain.SamplingRate) domain.SamplingRate {
	rate := domain.SamplingRate(s.configStore.GetString(keySamplingRate))
	if !rate.IsValid() {
		return defaultVal
	}
	return rate
}

func (s *SettingsService) getThreshold(defaultVal float64) float64 {
	if _, ok := s.configStore.Get(keyNoiseThreshold); !ok {
		return defaultVal
	}
	v := s.configStore.GetFloat(keyNoiseThreshold)
	if v < 0 || v >= 360 {
		return defaultVal
	}
	return v
}

func (s *SettingsService) getNonNegative(key string, defaultVal float64) float64 {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	v := s.configStore.GetFloat(key)
	if v < 0 {
		return defaultVal
	}
	return v
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	val, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	b, ok := val.(bool)
	if !ok {
		return defaultVal
	}
	return b
}

// getDuration accepts "0s"; only missing, unparsable or negative values
// fall back.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	if str, isStr := val.(string); isStr {
		d, err := time.ParseDuration(str)
		if err != nil || d < 0 {
			return defaultVal
		}
		return d
	}
	d := s.configStore.GetDuration(key)
	if d <= 0 {
		return defaultVal
	}
	return d
}
