package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/compassx/internal/adapters/driven/geomag"
	"github.com/custodia-labs/compassx/internal/adapters/driven/simulated"
	"github.com/custodia-labs/compassx/internal/core/domain"
	"github.com/custodia-labs/compassx/internal/core/services"
)

// deviceFlags describe the simulated hardware.
type deviceFlags struct {
	sensors   string
	fused     bool
	location  bool
	latitude  float64
	longitude float64
	altitude  float64
}

var devFlags deviceFlags

func addDeviceFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&devFlags.sensors, "sensors", "rotation_vector,heading",
		"comma-separated sensors present on the device (rotation_vector, heading, none)")
	flags.BoolVar(&devFlags.fused, "fused", true, "device offers a fused orientation service")
	flags.BoolVar(&devFlags.location, "location", true, "device offers location fixes")
	flags.Float64Var(&devFlags.latitude, "lat", 40.015, "simulated latitude in degrees")
	flags.Float64Var(&devFlags.longitude, "lon", -105.27, "simulated longitude in degrees")
	flags.Float64Var(&devFlags.altitude, "alt", 1655, "simulated altitude in meters")
}

// deviceRuntime is a compass service bound to a simulated device.
type deviceRuntime struct {
	device   *simulated.Device
	compass  *services.CompassService
	settings domain.CompassSettings
}

// fix returns the simulated location, or nil when location is disabled.
func (f deviceFlags) fix() *domain.LocationFix {
	if !f.location {
		return nil
	}
	return &domain.LocationFix{Latitude: f.latitude, Longitude: f.longitude, Altitude: f.altitude}
}

func (f deviceFlags) sensorTypes() ([]domain.SensorType, error) {
	var types []domain.SensorType
	for _, s := range strings.Split(f.sensors, ",") {
		s = strings.TrimSpace(s)
		if s == "" || s == "none" {
			continue
		}
		t := domain.SensorType(s)
		if !t.IsValid() {
			return nil, fmt.Errorf("unknown sensor %q (want rotation_vector or heading)", s)
		}
		types = append(types, t)
	}
	return types, nil
}

// newRuntime builds the simulated device and a compass service over it.
func newRuntime() (*deviceRuntime, error) {
	if err := requireSettings(); err != nil {
		return nil, err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	sensors, err := devFlags.sensorTypes()
	if err != nil {
		return nil, err
	}

	model, err := geomag.Open(settings.Geomag.CoefficientsFile)
	if err != nil {
		return nil, fmt.Errorf("load geomagnetic model: %w", err)
	}

	dev := simulated.NewDevice(simulated.Config{
		Sensors:        sensors,
		FusedAvailable: devFlags.fused,
	})

	platform := services.Platform{
		Sensors: dev,
		Fused:   dev,
		Model:   model,
	}
	if devFlags.location {
		platform.Location = dev
	}

	return &deviceRuntime{
		device:   dev,
		compass:  services.NewCompassService(platform, *settings),
		settings: *settings,
	}, nil
}
