// Package fused provides the heading provider backed by a vendor fused
// orientation service. The service output is already filtered, so no
// noise gate is applied.
package fused

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/custodia-labs/compassx/internal/core/domain"
	"github.com/custodia-labs/compassx/internal/core/ports/driven"
	"github.com/custodia-labs/compassx/internal/logger"
	"github.com/custodia-labs/compassx/internal/providers"
)

// Ensure Provider implements the interfaces.
var (
	_ driven.HeadingProvider     = (*Provider)(nil)
	_ driven.OrientationListener = (*Provider)(nil)
)

// Provider forwards fused orientation updates.
type Provider struct {
	*providers.Base

	service driven.FusedOrientationService
	request domain.OrientationRequest
	log     *logger.Logger
}

// New creates a fused-service provider requesting updates every period.
func New(service driven.FusedOrientationService, period time.Duration) *Provider {
	return &Provider{
		Base:    providers.NewBase(domain.ProviderFusedService),
		service: service,
		request: domain.OrientationRequest{Period: period},
		log:     logger.Named("fused"),
	}
}

// Start requests orientation updates.
func (p *Provider) Start() error {
	if err := p.BeginStart(); err != nil {
		return err
	}

	if p.service == nil || !p.service.IsAvailable() {
		p.AbortStart()
		return domain.ErrNoFusedService()
	}

	if err := p.service.RequestOrientationUpdates(p.request, p); err != nil {
		p.AbortStart()
		if errors.Is(err, domain.ErrServiceNotAvailable) {
			su := domain.ErrNoFusedService()
			su.Err = err
			return su
		}
		return fmt.Errorf("request orientation updates: %w", err)
	}

	p.log.Debug("started (period=%s)", p.request.Period)
	return nil
}

// Stop removes the orientation listener.
func (p *Provider) Stop() {
	if !p.BeginStop() {
		return
	}
	p.service.RemoveOrientationUpdates(p)
	p.log.Debug("stopped")
}

// OnDeviceOrientationChanged handles a fused update. Errors at or above
// 180 degrees mean the service has no usable signal.
func (p *Provider) OnDeviceOrientationChanged(orientation domain.DeviceOrientation) {
	if p.Stopped() || math.IsNaN(orientation.HeadingDegrees) || math.IsInf(orientation.HeadingDegrees, 0) {
		return
	}

	accuracy := orientation.HeadingError()
	needsCalibration := accuracy >= domain.NoSignalErrorDegrees
	p.SetNeedsCalibration(needsCalibration)

	p.Publish(domain.HeadingReading{
		Heading:          domain.NormalizeDegrees(orientation.HeadingDegrees),
		Accuracy:         accuracy,
		NeedsCalibration: needsCalibration,
	})
}
