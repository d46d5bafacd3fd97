package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/compassx/internal/core/domain"
)

func newTestStream(heading domain.HeadingKind, caps domain.Capabilities, factory *fakeFactory, sink *recordingSink) *HeadingStream {
	return NewHeadingStream(StreamConfig{
		Heading:  heading,
		Sink:     sink,
		Probe:    func() domain.Capabilities { return caps },
		Factory:  factory,
		Settings: domain.DefaultCompassSettings(),
	})
}

func TestHeadingStream_InitialState(t *testing.T) {
	s := newTestStream(domain.HeadingTrue, domain.Capabilities{}, &fakeFactory{}, &recordingSink{})

	_, err := uuid.Parse(s.ID())
	assert.NoError(t, err)
	assert.Equal(t, domain.SubscriptionIdle, s.State())
	assert.Equal(t, domain.HeadingTrue, s.Heading())
	assert.Equal(t, domain.ProviderUnavailable, s.Provider())
	assert.True(t, s.CurrentReading().IsZeroReading())
}

func TestHeadingStream_UniqueIDs(t *testing.T) {
	a := newTestStream(domain.HeadingTrue, domain.Capabilities{}, &fakeFactory{}, &recordingSink{})
	b := newTestStream(domain.HeadingTrue, domain.Capabilities{}, &fakeFactory{}, &recordingSink{})

	assert.NotEqual(t, a.ID(), b.ID())
}

func TestHeadingStream_StartSelectsProvider(t *testing.T) {
	factory := &fakeFactory{}
	sink := &recordingSink{}
	s := newTestStream(domain.HeadingTrue, domain.Capabilities{FusedService: true, RotationVector: true}, factory, sink)

	require.NoError(t, s.Start())

	assert.Equal(t, domain.SubscriptionActive, s.State())
	assert.Equal(t, domain.ProviderFusedService, s.Provider())
	assert.Equal(t, []domain.ProviderKind{domain.ProviderFusedService}, factory.created)
	assert.Equal(t, domain.HeadingTrue, factory.opts[0].Heading)
	assert.Equal(t, 1, factory.providers[domain.ProviderFusedService].started)
	assert.Empty(t, sink.codes)
}

func TestHeadingStream_ForwardsReadings(t *testing.T) {
	factory := &fakeFactory{}
	sink := &recordingSink{}
	s := newTestStream(domain.HeadingTrue, domain.Capabilities{FusedService: true}, factory, sink)
	require.NoError(t, s.Start())
	p := factory.providers[domain.ProviderFusedService]

	p.push(domain.HeadingReading{Heading: 10, Accuracy: 2})
	p.push(domain.HeadingReading{Heading: 10.01, Accuracy: 2})

	// Fused readings are not gated.
	assert.Len(t, sink.Readings(), 2)
	assert.Equal(t, 10.01, s.CurrentReading().Heading)
}

func TestHeadingStream_NoiseGateForSensorProviders(t *testing.T) {
	factory := &fakeFactory{}
	sink := &recordingSink{}
	s := newTestStream(domain.HeadingTrue, domain.Capabilities{RawHeading: true}, factory, sink)
	require.NoError(t, s.Start())
	p := factory.providers[domain.ProviderRawSensor]

	for _, h := range []float64{50, 50.05, 50.5, 50.45, 51} {
		p.push(domain.HeadingReading{Heading: h})
	}

	got := sink.Readings()
	require.Len(t, got, 3)
	assert.Equal(t, 50.0, got[0].Heading)
	assert.Equal(t, 50.5, got[1].Heading)
	assert.Equal(t, 51.0, got[2].Heading)
}

func TestHeadingStream_CalibrationTransitionBypassesGate(t *testing.T) {
	factory := &fakeFactory{}
	sink := &recordingSink{}
	s := newTestStream(domain.HeadingTrue, domain.Capabilities{RotationVector: true}, factory, sink)
	require.NoError(t, s.Start())
	p := factory.providers[domain.ProviderRotationVector]

	p.push(domain.HeadingReading{Heading: 20})
	p.push(domain.HeadingReading{Heading: 20, NeedsCalibration: true})
	p.push(domain.HeadingReading{Heading: 20, NeedsCalibration: true})
	p.push(domain.HeadingReading{Heading: 20})

	got := sink.Readings()
	require.Len(t, got, 3)
	assert.False(t, got[0].NeedsCalibration)
	assert.True(t, got[1].NeedsCalibration)
	assert.False(t, got[2].NeedsCalibration)
}

func TestHeadingStream_NoSource(t *testing.T) {
	tests := []struct {
		name    string
		heading domain.HeadingKind
		caps    domain.Capabilities
		code    string
		message string
	}{
		{"true heading, nothing", domain.HeadingTrue, domain.Capabilities{}, "SENSOR_NOT_FOUND", "No compass sensor found."},
		{"magnetic, nothing", domain.HeadingMagnetic, domain.Capabilities{}, "NO_ROTATION_SENSOR", "No rotation vector sensor found."},
		{"magnetic, raw only", domain.HeadingMagnetic, domain.Capabilities{RawHeading: true}, "NO_ROTATION_SENSOR", "No rotation vector sensor found."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			s := newTestStream(tt.heading, tt.caps, &fakeFactory{}, sink)

			err := s.Start()

			assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
			assert.Equal(t, []string{tt.code}, sink.codes)
			assert.Equal(t, []string{tt.message}, sink.messages)
			assert.Equal(t, 1, sink.ended)
			assert.Empty(t, sink.readings)
			assert.Equal(t, domain.SubscriptionDisposed, s.State())
		})
	}
}

func TestHeadingStream_FailedStartNeverActive(t *testing.T) {
	tests := []struct {
		name     string
		caps     domain.Capabilities
		startErr error
	}{
		{"no source", domain.Capabilities{}, nil},
		{"provider start fails", domain.Capabilities{RawHeading: true}, domain.ErrNoHeadingSensor()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFakeProvider(domain.ProviderRawSensor)
			p.startErr = tt.startErr
			factory := &fakeFactory{providers: map[domain.ProviderKind]*fakeProvider{domain.ProviderRawSensor: p}}
			sink := &recordingSink{}

			var s *HeadingStream
			var seen []domain.SubscriptionState
			s = NewHeadingStream(StreamConfig{
				Heading: domain.HeadingTrue,
				Sink:    sink,
				Probe: func() domain.Capabilities {
					seen = append(seen, s.State())
					return tt.caps
				},
				Factory:  factory,
				Settings: domain.DefaultCompassSettings(),
			})

			require.Error(t, s.Start())

			assert.Equal(t, []domain.SubscriptionState{domain.SubscriptionIdle}, seen)
			assert.NotContains(t, seen, domain.SubscriptionActive)
			assert.Equal(t, domain.SubscriptionDisposed, s.State())
			assert.Len(t, sink.codes, 1)
		})
	}
}

func TestHeadingStream_IdleWhileProviderStarts(t *testing.T) {
	p := newFakeProvider(domain.ProviderFusedService)
	factory := &fakeFactory{providers: map[domain.ProviderKind]*fakeProvider{domain.ProviderFusedService: p}}
	s := newTestStream(domain.HeadingTrue, domain.Capabilities{FusedService: true}, factory, &recordingSink{})

	var during domain.SubscriptionState
	p.onStart = func() { during = s.State() }

	require.NoError(t, s.Start())

	assert.Equal(t, domain.SubscriptionIdle, during)
	assert.Equal(t, domain.SubscriptionActive, s.State())
}

func TestHeadingStream_StartWhileStarting(t *testing.T) {
	p := newFakeProvider(domain.ProviderFusedService)
	factory := &fakeFactory{providers: map[domain.ProviderKind]*fakeProvider{domain.ProviderFusedService: p}}
	s := newTestStream(domain.HeadingTrue, domain.Capabilities{FusedService: true}, factory, &recordingSink{})

	var nested error
	p.onStart = func() { nested = s.Start() }

	require.NoError(t, s.Start())

	assert.ErrorIs(t, nested, domain.ErrSubscriptionStarted)
	assert.Equal(t, 1, p.started)
}

func TestHeadingStream_CancelWhileProviderStarts(t *testing.T) {
	p := newFakeProvider(domain.ProviderFusedService)
	factory := &fakeFactory{providers: map[domain.ProviderKind]*fakeProvider{domain.ProviderFusedService: p}}
	sink := &recordingSink{}
	s := newTestStream(domain.HeadingTrue, domain.Capabilities{FusedService: true}, factory, sink)
	p.onStart = s.Cancel

	err := s.Start()

	assert.ErrorIs(t, err, domain.ErrSubscriptionDisposed)
	assert.Equal(t, domain.SubscriptionDisposed, s.State())
	assert.GreaterOrEqual(t, p.stopped, 1)
	assert.Nil(t, p.handlerSnapshot())
	assert.Zero(t, sink.ended)
}

func TestHeadingStream_ProviderStartFails(t *testing.T) {
	p := newFakeProvider(domain.ProviderRawSensor)
	p.startErr = domain.ErrNoHeadingSensor()
	factory := &fakeFactory{providers: map[domain.ProviderKind]*fakeProvider{domain.ProviderRawSensor: p}}
	sink := &recordingSink{}
	s := newTestStream(domain.HeadingTrue, domain.Capabilities{RawHeading: true}, factory, sink)

	err := s.Start()

	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.Equal(t, []string{"NO_HEADING_SENSOR"}, sink.codes)
	assert.Equal(t, 1, sink.ended)
	assert.Equal(t, domain.SubscriptionDisposed, s.State())
	assert.Equal(t, 1, p.stopped)
	assert.Nil(t, p.handlerSnapshot())
}

func TestHeadingStream_OtherStartErrorStillTerminal(t *testing.T) {
	factory := &fakeFactory{createErr: errors.New("builder exploded")}
	sink := &recordingSink{}
	s := newTestStream(domain.HeadingTrue, domain.Capabilities{RawHeading: true}, factory, sink)

	err := s.Start()

	require.Error(t, err)
	assert.Equal(t, []string{domain.CodeSensorNotFound}, sink.codes)
	assert.Equal(t, []string{"builder exploded"}, sink.messages)
	assert.Equal(t, 1, sink.ended)
}

func TestHeadingStream_StartTwice(t *testing.T) {
	s := newTestStream(domain.HeadingTrue, domain.Capabilities{FusedService: true}, &fakeFactory{}, &recordingSink{})
	require.NoError(t, s.Start())

	assert.ErrorIs(t, s.Start(), domain.ErrSubscriptionStarted)

	s.Cancel()
	assert.ErrorIs(t, s.Start(), domain.ErrSubscriptionDisposed)
}

func TestHeadingStream_CancelBeforeStart(t *testing.T) {
	factory := &fakeFactory{}
	sink := &recordingSink{}
	s := newTestStream(domain.HeadingTrue, domain.Capabilities{FusedService: true}, factory, sink)

	s.Cancel()

	assert.Equal(t, domain.SubscriptionDisposed, s.State())
	assert.ErrorIs(t, s.Start(), domain.ErrSubscriptionDisposed)
	assert.Empty(t, factory.created)
	assert.Zero(t, sink.ended)
}

func TestHeadingStream_CancelStopsProvider(t *testing.T) {
	factory := &fakeFactory{}
	s := newTestStream(domain.HeadingTrue, domain.Capabilities{FusedService: true}, factory, &recordingSink{})
	require.NoError(t, s.Start())
	p := factory.providers[domain.ProviderFusedService]

	s.Cancel()
	s.Cancel()

	assert.Equal(t, domain.SubscriptionDisposed, s.State())
	assert.Equal(t, 1, p.stopped)
	assert.Nil(t, p.handlerSnapshot())
}

func TestHeadingStream_SilentAfterCancel(t *testing.T) {
	factory := &fakeFactory{}
	sink := &recordingSink{}
	s := newTestStream(domain.HeadingTrue, domain.Capabilities{RawHeading: true}, factory, sink)
	require.NoError(t, s.Start())
	p := factory.providers[domain.ProviderRawSensor]
	inFlight := p.handlerSnapshot()

	p.push(domain.HeadingReading{Heading: 1})
	s.Cancel()
	inFlight(domain.HeadingReading{Heading: 90})

	assert.Len(t, sink.Readings(), 1)
	assert.Zero(t, sink.ended)
}

func TestHeadingStream_ReadingDuringStart(t *testing.T) {
	p := newFakeProvider(domain.ProviderFusedService)
	p.emitOnStart = &domain.HeadingReading{Heading: 33}
	factory := &fakeFactory{providers: map[domain.ProviderKind]*fakeProvider{domain.ProviderFusedService: p}}
	sink := &recordingSink{}
	s := newTestStream(domain.HeadingTrue, domain.Capabilities{FusedService: true}, factory, sink)

	require.NoError(t, s.Start())

	require.Len(t, sink.Readings(), 1)
	assert.Equal(t, 33.0, sink.Readings()[0].Heading)
}

func TestHeadingStream_OnDisposeCalledOnce(t *testing.T) {
	calls := 0
	s := NewHeadingStream(StreamConfig{
		Heading:   domain.HeadingTrue,
		Sink:      &recordingSink{},
		Probe:     func() domain.Capabilities { return domain.Capabilities{} },
		Factory:   &fakeFactory{},
		OnDispose: func(*HeadingStream) { calls++ },
	})

	_ = s.Start()
	s.Cancel()

	assert.Equal(t, 1, calls)
}

func TestHeadingStream_ConcurrentCancelAndForward(t *testing.T) {
	factory := &fakeFactory{}
	sink := &recordingSink{}
	s := newTestStream(domain.HeadingTrue, domain.Capabilities{FusedService: true}, factory, sink)
	require.NoError(t, s.Start())
	handler := factory.providers[domain.ProviderFusedService].handlerSnapshot()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			handler(domain.HeadingReading{Heading: float64(i % 360)})
		}
	}()
	go func() {
		defer wg.Done()
		s.Cancel()
	}()
	wg.Wait()

	n := len(sink.Readings())
	handler(domain.HeadingReading{Heading: 1})
	assert.Equal(t, n, len(sink.Readings()))
}
