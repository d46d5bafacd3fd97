// Package geomag implements driven.GeomagneticModel with the World
// Magnetic Model from github.com/westphae/geomag. The library carries the
// WMM2020 coefficients; newer releases are loaded from a WMM.COF file.
package geomag

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/westphae/geomag/pkg/egm96"
	"github.com/westphae/geomag/pkg/wmm"

	"github.com/custodia-labs/compassx/internal/core/domain"
	"github.com/custodia-labs/compassx/internal/core/ports/driven"
	"github.com/custodia-labs/compassx/internal/logger"
)

// Ensure Model implements the interface.
var _ driven.GeomagneticModel = (*Model)(nil)

// validityYears is how long a WMM release is meant to be used.
const validityYears = 5.0

// The wmm package keeps its coefficients and its last evaluated field in
// package variables. Every call into it holds mu, and active names the
// coefficient file currently loaded ("" is the library's own).
var (
	mu     sync.Mutex
	active = ""
)

// unloaded marks wmm's state as unknown after a failed load.
const unloaded = "\x00"

// use makes path the active coefficient set. Caller holds mu.
func use(path string) error {
	if path == active {
		return nil
	}
	if err := wmm.LoadWMMCOF(path); err != nil {
		active = unloaded
		return fmt.Errorf("load coefficients %s: %w", path, err)
	}
	active = path

	// wmm caches the last field by location only. Evaluating two distinct
	// points leaves the cache built from the new coefficients.
	for _, lat := range []float64{1, 2} {
		_, _ = wmm.CalculateWMMMagneticField(egm96.NewLocationGeodetic(lat, 0, 0), wmm.ValidDate)
	}
	return nil
}

// Model evaluates one WMM release. It is safe for concurrent use.
type Model struct {
	path      string
	name      string
	epoch     float64
	validFrom time.Time

	warned atomic.Bool
	log    *logger.Logger
}

// Default returns the model built into the wmm package (WMM2020).
func Default() (*Model, error) {
	return open("")
}

// Open returns the model from a WMM.COF file, or the default model if
// path is empty.
func Open(path string) (*Model, error) {
	if path != "" {
		if err := CheckCOFFile(path); err != nil {
			return nil, err
		}
	}
	return open(path)
}

func open(path string) (*Model, error) {
	mu.Lock()
	defer mu.Unlock()

	if err := use(path); err != nil {
		return nil, err
	}
	return &Model{
		path:      path,
		name:      wmm.COFName,
		epoch:     float64(wmm.Epoch),
		validFrom: wmm.ValidDate,
		log:       logger.Named("geomag"),
	}, nil
}

// Name identifies the model, e.g. "WMM-2020".
func (m *Model) Name() string {
	return m.name
}

// Epoch returns the decimal year the coefficients are referenced to.
func (m *Model) Epoch() float64 {
	return m.epoch
}

// Covers reports whether at falls inside the release's validity window.
func (m *Model) Covers(at time.Time) bool {
	if at.Before(m.validFrom) {
		return false
	}
	return float64(wmm.TimeToDecimalYears(at.UTC())) <= m.epoch+validityYears
}

// Declination returns the declination in degrees, positive east, at a
// geodetic position. Altitude is in meters above the ellipsoid. Dates
// outside the validity window are extrapolated; the first one is logged.
func (m *Model) Declination(latitude, longitude, altitudeMeters float64, at time.Time) (float64, error) {
	if !finite(latitude) || !finite(longitude) || !finite(altitudeMeters) {
		return 0, fmt.Errorf("%w: non-finite position", domain.ErrInvalidInput)
	}
	if latitude < -90 || latitude > 90 {
		return 0, fmt.Errorf("%w: latitude %v", domain.ErrInvalidInput, latitude)
	}

	if !m.Covers(at) && m.warned.CompareAndSwap(false, true) {
		m.log.Warn("%s evaluated at %.2f, outside %.1f-%.1f; set geomag.coefficients_file to a newer WMM.COF",
			m.name, float64(wmm.TimeToDecimalYears(at.UTC())), m.epoch, m.epoch+validityYears)
	}

	// The poles are singular in longitude.
	latitude = math.Max(-90+1e-5, math.Min(90-1e-5, latitude))

	mu.Lock()
	defer mu.Unlock()

	if err := use(m.path); err != nil {
		return 0, err
	}
	field, _ := wmm.CalculateWMMMagneticField(egm96.NewLocationGeodetic(latitude, longitude, altitudeMeters), at.UTC())
	return field.D(), nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
