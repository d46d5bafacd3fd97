package simulated

import (
	"sync"

	"github.com/custodia-labs/compassx/internal/core/domain"
)

type recordingListener struct {
	mu          sync.Mutex
	events      []domain.SensorEvent
	accuracies  []domain.SensorAccuracy
	orientation []domain.DeviceOrientation
	fixes       []domain.LocationFix
}

func (r *recordingListener) OnSensorChanged(event domain.SensorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingListener) OnAccuracyChanged(_ domain.SensorType, accuracy domain.SensorAccuracy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accuracies = append(r.accuracies, accuracy)
}

func (r *recordingListener) OnDeviceOrientationChanged(o domain.DeviceOrientation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orientation = append(r.orientation, o)
}

func (r *recordingListener) OnLocationChanged(fix domain.LocationFix) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fixes = append(r.fixes, fix)
}

func (r *recordingListener) sensorEvents() []domain.SensorEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.SensorEvent(nil), r.events...)
}

func (r *recordingListener) orientations() []domain.DeviceOrientation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.DeviceOrientation(nil), r.orientation...)
}

func (r *recordingListener) locations() []domain.LocationFix {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.LocationFix(nil), r.fixes...)
}
