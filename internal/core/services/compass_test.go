package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/compassx/internal/core/domain"
	"github.com/custodia-labs/compassx/internal/providers/rotation"
)

func rotationSample(azimuth float64) domain.SensorEvent {
	return domain.SensorEvent{
		Sensor: domain.SensorRotationVector,
		Values: append(rotation.VectorForAzimuth(azimuth), -1),
	}
}

func TestCompassService_Selection(t *testing.T) {
	c := NewCompassService(Platform{
		Sensors: newMockSensors(domain.SensorRotationVector, domain.SensorHeading),
		Fused:   &mockFused{available: true},
	}, domain.DefaultCompassSettings())

	sel := c.Selection()

	assert.Equal(t, domain.ProviderFusedService, sel.True)
	assert.Equal(t, domain.ProviderRotationVector, sel.Magnetic)
	assert.True(t, sel.Capabilities.RawHeading)
	assert.False(t, sel.Capabilities.Location)
}

func TestCompassService_TrueHeadingWithDeclination(t *testing.T) {
	sensors := newMockSensors(domain.SensorRotationVector)
	location := &mockLocation{}
	c := NewCompassService(Platform{Sensors: sensors, Location: location, Model: mockModel{}}, domain.DefaultCompassSettings())
	sink := &recordingSink{}

	sub := c.SubscribeTrueHeading(sink)
	defer sub.Cancel()

	require.Equal(t, domain.SubscriptionActive, sub.State())
	assert.Equal(t, domain.ProviderRotationVector, sub.Provider())
	assert.Equal(t, 1, location.count())

	sensors.publish(rotationSample(90))
	location.deliver(domain.LocationFix{Latitude: 50, Time: time.Unix(1_700_000_000, 0)})
	sensors.publish(rotationSample(90))

	got := sink.Readings()
	require.Len(t, got, 2)
	assert.InDelta(t, 90, got[0].Heading, 1e-6)
	assert.InDelta(t, 95, got[1].Heading, 1e-6)
	assert.Equal(t, -1.0, got[0].Accuracy)
}

func TestCompassService_MagneticIgnoresDeclination(t *testing.T) {
	sensors := newMockSensors(domain.SensorRotationVector)
	location := &mockLocation{}
	c := NewCompassService(Platform{Sensors: sensors, Location: location, Model: mockModel{}}, domain.DefaultCompassSettings())
	sink := &recordingSink{}

	sub := c.SubscribeMagneticHeading(sink)
	defer sub.Cancel()

	location.deliver(domain.LocationFix{Latitude: 50})
	sensors.publish(rotationSample(90))

	assert.Equal(t, 0, location.count())
	require.Len(t, sink.Readings(), 1)
	assert.InDelta(t, 90, sink.Readings()[0].Heading, 1e-6)
}

func TestCompassService_MagneticWithoutRotationSensor(t *testing.T) {
	c := NewCompassService(Platform{
		Sensors: newMockSensors(domain.SensorHeading),
		Fused:   &mockFused{available: true},
	}, domain.DefaultCompassSettings())
	sink := &recordingSink{}

	sub := c.SubscribeMagneticHeading(sink)

	assert.Equal(t, domain.SubscriptionDisposed, sub.State())
	assert.Equal(t, []string{domain.CodeNoRotationSensor}, sink.codes)
	assert.Equal(t, 1, sink.ended)
	assert.Equal(t, 0, c.Active())
}

func TestCompassService_TrueHeadingNothingAvailable(t *testing.T) {
	c := NewCompassService(Platform{}, domain.DefaultCompassSettings())
	sink := &recordingSink{}

	sub := c.SubscribeTrueHeading(sink)

	assert.Equal(t, domain.SubscriptionDisposed, sub.State())
	assert.Equal(t, []string{domain.CodeSensorNotFound}, sink.codes)
	assert.Equal(t, []string{"No compass sensor found."}, sink.messages)
	assert.Equal(t, 1, sink.ended)
}

func TestCompassService_RawSensorFallback(t *testing.T) {
	sensors := newMockSensors(domain.SensorHeading)
	c := NewCompassService(Platform{Sensors: sensors}, domain.DefaultCompassSettings())
	sink := &recordingSink{}

	sub := c.SubscribeTrueHeading(sink)
	defer sub.Cancel()

	sensors.publish(domain.SensorEvent{Sensor: domain.SensorHeading, Values: []float64{181, 4}})

	assert.Equal(t, domain.ProviderRawSensor, sub.Provider())
	require.Len(t, sink.Readings(), 1)
	assert.Equal(t, domain.HeadingReading{Heading: 181, Accuracy: 4, NeedsCalibration: false}, sink.Readings()[0])
}

func TestCompassService_FusedPreferred(t *testing.T) {
	fused := &mockFused{available: true}
	c := NewCompassService(Platform{
		Sensors: newMockSensors(domain.SensorRotationVector),
		Fused:   fused,
	}, domain.DefaultCompassSettings())
	sink := &recordingSink{}

	sub := c.SubscribeTrueHeading(sink)
	defer sub.Cancel()
	require.NotNil(t, fused.listener)

	fused.listener.OnDeviceOrientationChanged(domain.DeviceOrientation{HeadingDegrees: 12, HeadingErrorDegrees: 190})

	assert.Equal(t, domain.ProviderFusedService, sub.Provider())
	require.Len(t, sink.Readings(), 1)
	assert.True(t, sink.Readings()[0].NeedsCalibration)
}

func TestCompassService_Subscribe(t *testing.T) {
	c := NewCompassService(Platform{Sensors: newMockSensors(domain.SensorRotationVector)}, domain.DefaultCompassSettings())

	sub, err := c.Subscribe(domain.HeadingMagnetic, &recordingSink{})
	require.NoError(t, err)
	assert.Equal(t, domain.HeadingMagnetic, sub.Heading())
	sub.Cancel()

	_, err = c.Subscribe("grid", &recordingSink{})
	assert.ErrorIs(t, err, domain.ErrUnsupportedKind)

	_, err = c.Subscribe(domain.HeadingTrue, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCompassService_ActiveAndDetach(t *testing.T) {
	sensors := newMockSensors(domain.SensorRotationVector)
	location := &mockLocation{}
	c := NewCompassService(Platform{Sensors: sensors, Location: location, Model: mockModel{}}, domain.DefaultCompassSettings())
	trueSink, magSink := &recordingSink{}, &recordingSink{}

	trueSub := c.SubscribeTrueHeading(trueSink)
	magSub := c.SubscribeMagneticHeading(magSink)
	require.Equal(t, 2, c.Active())
	require.Equal(t, 2, sensors.count())

	c.Detach()

	assert.Equal(t, 0, c.Active())
	assert.Equal(t, 0, sensors.count())
	assert.Equal(t, 0, location.count())
	assert.Equal(t, domain.SubscriptionDisposed, trueSub.State())
	assert.Equal(t, domain.SubscriptionDisposed, magSub.State())

	sensors.publish(rotationSample(10))
	assert.Empty(t, trueSink.Readings())
	assert.Empty(t, magSink.Readings())

	c.Detach()
}

func TestCompassService_CancelRemovesFromActive(t *testing.T) {
	c := NewCompassService(Platform{Sensors: newMockSensors(domain.SensorRotationVector)}, domain.DefaultCompassSettings())

	sub := c.SubscribeMagneticHeading(&recordingSink{})
	require.Equal(t, 1, c.Active())

	sub.Cancel()

	assert.Equal(t, 0, c.Active())
}

func TestCompassService_Declination(t *testing.T) {
	c := NewCompassService(Platform{Model: mockModel{}}, domain.DefaultCompassSettings())

	decl, err := c.Declination(45, 10, 0, time.Now())
	require.NoError(t, err)
	assert.InDelta(t, 4.5, decl, 1e-9)

	_, err = c.Declination(91, 0, 0, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = c.Declination(0, -181, 0, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = c.Declination(89.5, 0, 0, time.Now())
	assert.ErrorIs(t, err, errModel)
}

func TestCompassService_DeclinationWithoutModel(t *testing.T) {
	c := NewCompassService(Platform{}, domain.DefaultCompassSettings())

	_, err := c.Declination(0, 0, 0, time.Now())

	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}
