package driven

import "github.com/custodia-labs/compassx/internal/core/domain"

// SensorListener receives callbacks from the sensor subsystem.
// Callbacks arrive on a subsystem-owned goroutine, in arrival order.
type SensorListener interface {
	// OnSensorChanged delivers a new sample.
	OnSensorChanged(event domain.SensorEvent)

	// OnAccuracyChanged delivers a new confidence level for a sensor.
	OnAccuracyChanged(sensor domain.SensorType, accuracy domain.SensorAccuracy)
}

// SensorSubsystem is the platform sensor manager.
type SensorSubsystem interface {
	// HasSensor reports whether a default sensor of the given type exists.
	HasSensor(sensor domain.SensorType) bool

	// RegisterListener starts delivery of events for sensor to listener.
	// Returns domain.ErrSensorNotPresent if the sensor does not exist.
	RegisterListener(listener SensorListener, sensor domain.SensorType, rate domain.SamplingRate) error

	// UnregisterListener stops all deliveries to listener.
	// Unknown listeners are ignored.
	UnregisterListener(listener SensorListener)
}
