package rotation

import (
	"sync/atomic"
	"time"

	"github.com/custodia-labs/compassx/internal/core/domain"
	"github.com/custodia-labs/compassx/internal/core/ports/driven"
	"github.com/custodia-labs/compassx/internal/logger"
)

// DeclinationCorrector turns sparse location fixes into a declination
// offset. Update runs on the location goroutine and Offset on the sensor
// goroutine; the state is a single atomic slot, last write wins.
type DeclinationCorrector struct {
	model driven.GeomagneticModel
	state atomic.Pointer[domain.DeclinationState]
	log   *logger.Logger
}

// NewDeclinationCorrector creates a corrector backed by model.
// A nil model leaves the offset at zero.
func NewDeclinationCorrector(model driven.GeomagneticModel) *DeclinationCorrector {
	return &DeclinationCorrector{
		model: model,
		log:   logger.Named("declination"),
	}
}

// Update evaluates the model at the given position and stores the result.
// On a model error the previous offset is kept and returned.
func (c *DeclinationCorrector) Update(latitude, longitude, altitude float64, timestampMs int64) float64 {
	if c == nil || c.model == nil {
		return c.Offset()
	}

	at := time.UnixMilli(timestampMs).UTC()
	offset, err := c.model.Declination(latitude, longitude, altitude, at)
	if err != nil {
		c.log.Warn("%s at (%.4f, %.4f): %v", c.model.Name(), latitude, longitude, err)
		return c.Offset()
	}

	c.state.Store(&domain.DeclinationState{
		OffsetDegrees: offset,
		LastUpdatedAt: at,
	})
	c.log.Debug("%.3f° from %s at (%.4f, %.4f)", offset, c.model.Name(), latitude, longitude)
	return offset
}

// Offset returns the last computed declination, zero before any update.
func (c *DeclinationCorrector) Offset() float64 {
	return c.State().OffsetDegrees
}

// State returns the current declination state.
func (c *DeclinationCorrector) State() domain.DeclinationState {
	if c == nil {
		return domain.DeclinationState{}
	}
	if s := c.state.Load(); s != nil {
		return *s
	}
	return domain.DeclinationState{}
}
