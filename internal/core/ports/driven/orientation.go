package driven

import "github.com/custodia-labs/compassx/internal/core/domain"

// OrientationListener receives fused orientation updates.
type OrientationListener interface {
	OnDeviceOrientationChanged(orientation domain.DeviceOrientation)
}

// FusedOrientationService is a vendor-level fused orientation provider.
type FusedOrientationService interface {
	// IsAvailable reports whether the service can deliver updates.
	IsAvailable() bool

	// RequestOrientationUpdates starts delivery to listener.
	// Returns domain.ErrServiceNotAvailable if the service is missing.
	RequestOrientationUpdates(request domain.OrientationRequest, listener OrientationListener) error

	// RemoveOrientationUpdates stops delivery to listener.
	RemoveOrientationUpdates(listener OrientationListener)
}
