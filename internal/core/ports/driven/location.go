package driven

import (
	"time"

	"github.com/custodia-labs/compassx/internal/core/domain"
)

// LocationListener receives position fixes.
type LocationListener interface {
	OnLocationChanged(fix domain.LocationFix)
}

// LocationSubsystem delivers sparse position fixes.
type LocationSubsystem interface {
	// RequestUpdates starts delivery of fixes at most every minInterval and
	// only after moving at least minDistanceMeters since the last delivery.
	RequestUpdates(minInterval time.Duration, minDistanceMeters float64, listener LocationListener) error

	// RemoveUpdates stops delivery to listener.
	RemoveUpdates(listener LocationListener)
}
