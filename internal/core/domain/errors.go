package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent heading pipeline failures.
// These are distinct from infrastructure errors.
var (
	// ErrSourceUnavailable indicates no matching hardware or service exists.
	// It is permanent for the session and reported once to the sink.
	ErrSourceUnavailable = errors.New("heading source unavailable")

	// ErrProviderStarted indicates Start was called on a running provider.
	ErrProviderStarted = errors.New("provider already started")

	// ErrProviderDisposed indicates the provider has been stopped for good.
	ErrProviderDisposed = errors.New("provider disposed")

	// ErrSubscriptionStarted indicates Start was called twice on a subscription.
	ErrSubscriptionStarted = errors.New("subscription already started")

	// ErrSubscriptionDisposed indicates the subscription reached its terminal state.
	ErrSubscriptionDisposed = errors.New("subscription disposed")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedKind indicates an unknown provider or heading kind.
	ErrUnsupportedKind = errors.New("unsupported kind")

	// ErrSensorNotPresent is returned by a sensor subsystem asked to
	// register a listener for a sensor it does not have.
	ErrSensorNotPresent = errors.New("sensor not present")

	// ErrServiceNotAvailable is returned by a fused orientation service
	// that cannot deliver updates.
	ErrServiceNotAvailable = errors.New("orientation service not available")

	// ErrLocationUnavailable is returned when location updates cannot be requested.
	ErrLocationUnavailable = errors.New("location unavailable")

	// ErrModelUnavailable indicates no geomagnetic model is configured.
	ErrModelUnavailable = errors.New("geomagnetic model not available")
)

// Stable error codes delivered to event sinks.
const (
	CodeNoRotationSensor = "NO_ROTATION_SENSOR"
	CodeNoHeadingSensor  = "NO_HEADING_SENSOR"
	CodeNoPlayServices   = "NO_PLAY_SERVICES"
	CodeSensorNotFound   = "SENSOR_NOT_FOUND"
)

// SourceUnavailableError carries a stable code so callers can decide on
// fallback, and a reason suitable for display.
type SourceUnavailableError struct {
	Code   string
	Reason string
	Err    error
}

// NewSourceUnavailable builds a SourceUnavailableError.
func NewSourceUnavailable(code, reason string) *SourceUnavailableError {
	return &SourceUnavailableError{Code: code, Reason: reason}
}

// Error implements the error interface.
func (e *SourceUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

// Unwrap returns the underlying cause.
func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}

// Is makes every SourceUnavailableError match ErrSourceUnavailable.
func (e *SourceUnavailableError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

// AsSourceUnavailable extracts a SourceUnavailableError from err.
func AsSourceUnavailable(err error) (*SourceUnavailableError, bool) {
	var su *SourceUnavailableError
	if errors.As(err, &su) {
		return su, true
	}
	return nil, false
}

// Reasons attached to the canonical unavailability errors.
const (
	errNoRotationReason = "No rotation vector sensor found."
	errNoHeadingReason  = "No heading sensor found."
	errNoFusedReason    = "Fused orientation service is not available."
	errNotFoundReason   = "No compass sensor found."
)

// ErrNoRotationSensor returns the error for a missing rotation-vector sensor.
func ErrNoRotationSensor() *SourceUnavailableError {
	return NewSourceUnavailable(CodeNoRotationSensor, errNoRotationReason)
}

// ErrNoHeadingSensor returns the error for a missing heading sensor.
func ErrNoHeadingSensor() *SourceUnavailableError {
	return NewSourceUnavailable(CodeNoHeadingSensor, errNoHeadingReason)
}

// ErrNoFusedService returns the error for a missing fused orientation service.
func ErrNoFusedService() *SourceUnavailableError {
	return NewSourceUnavailable(CodeNoPlayServices, errNoFusedReason)
}

// ErrSensorNotFound returns the error used when no source exists at all.
func ErrSensorNotFound() *SourceUnavailableError {
	return NewSourceUnavailable(CodeSensorNotFound, errNotFoundReason)
}
