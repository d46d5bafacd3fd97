package simulated

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/compassx/internal/core/domain"
	"github.com/custodia-labs/compassx/internal/providers/rotation"
)

func TestMotion_AzimuthAt(t *testing.T) {
	tests := []struct {
		name    string
		cfg     MotionConfig
		elapsed time.Duration
		want    float64
	}{
		{"start", MotionConfig{StartAzimuth: 10, TurnRate: 90}, 0, 10},
		{"one second", MotionConfig{StartAzimuth: 10, TurnRate: 90}, time.Second, 100},
		{"wraps past north", MotionConfig{StartAzimuth: 350, TurnRate: 20}, time.Second, 10},
		{"counter clockwise", MotionConfig{StartAzimuth: 5, TurnRate: -10}, time.Second, 355},
		{"wobble at quarter period", MotionConfig{StartAzimuth: 100, Wobble: 2}, wobblePeriod / 4, 102},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMotion(NewDevice(Config{}), tt.cfg)
			assert.InDelta(t, tt.want, m.AzimuthAt(tt.elapsed), 1e-9)
		})
	}
}

func TestNewMotion_DefaultPeriod(t *testing.T) {
	m := NewMotion(NewDevice(Config{}), MotionConfig{})
	assert.Equal(t, domain.SamplingGame.Period(), m.cfg.Period)
}

func TestMotion_Step_PublishesEverySource(t *testing.T) {
	dev, mock := newTestDevice()
	rv := &recordingListener{}
	hd := &recordingListener{}
	fu := &recordingListener{}
	require.NoError(t, dev.RegisterListener(rv, domain.SensorRotationVector, domain.SamplingGame))
	require.NoError(t, dev.RegisterListener(hd, domain.SensorHeading, domain.SamplingGame))
	require.NoError(t, dev.RequestOrientationUpdates(domain.OrientationRequest{}, fu))

	m := NewMotion(dev, MotionConfig{StartAzimuth: 45, TurnRate: 10, HeadingErrorDegrees: 3})
	m.Step(mock.Now())
	m.Step(mock.Now().Add(time.Second))

	rvEvents := rv.sensorEvents()
	require.Len(t, rvEvents, 2)
	require.Len(t, rvEvents[1].Values, 5)
	assert.InDelta(t, 55, rotation.AzimuthDegrees(rvEvents[1].Values), 1e-6)
	assert.InDelta(t, 3*math.Pi/180, rvEvents[1].Values[domain.RotationVectorAccuracyIndex], 1e-12)

	hdEvents := hd.sensorEvents()
	require.Len(t, hdEvents, 2)
	assert.InDelta(t, 55, hdEvents[1].Values[domain.HeadingValueIndex], 1e-9)
	assert.InDelta(t, 3, hdEvents[1].Values[domain.HeadingAccuracyIndex], 1e-9)

	orientations := fu.orientations()
	require.Len(t, orientations, 2)
	assert.InDelta(t, 45, orientations[0].HeadingDegrees, 1e-9)
	assert.InDelta(t, 3, orientations[0].HeadingErrorDegrees, 1e-9)
}

func TestMotion_Run_TicksOnDeviceClock(t *testing.T) {
	dev, mock := newTestDevice()
	hd := &recordingListener{}
	loc := &recordingListener{}
	require.NoError(t, dev.RegisterListener(hd, domain.SensorHeading, domain.SamplingGame))
	require.NoError(t, dev.RequestUpdates(0, 0, loc))

	fix := domain.LocationFix{Latitude: 47.6, Longitude: -122.3}
	m := NewMotion(dev, MotionConfig{StartAzimuth: 0, TurnRate: 50, Period: 100 * time.Millisecond, Location: &fix})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	require.Eventually(t, func() bool { return len(hd.sensorEvents()) == 1 }, time.Second, time.Millisecond)
	assert.Len(t, loc.locations(), 1)

	mock.Add(100 * time.Millisecond)
	require.Eventually(t, func() bool { return len(hd.sensorEvents()) == 2 }, time.Second, time.Millisecond)
	assert.InDelta(t, 5, hd.sensorEvents()[1].Values[0], 1e-9)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
