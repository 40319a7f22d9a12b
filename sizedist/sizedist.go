// Package sizedist provides grain size distributions: the radius grid of a
// dust population and its number density per unit radius, normalized to a
// dust mass column.
//
// Radii are in micron, densities in g cm^-3, mass columns in g cm^-2 and
// number densities in cm^-2 um^-1 (cm^-2 for a single grain size).
package sizedist

import (
	"errors"
	"fmt"
	"math"

	"github.com/wildstyl3r/dustext/internal/constants"
	"github.com/wildstyl3r/dustext/internal/utils"
)

var ErrBounds = errors.New("invalid size distribution bounds")

const (
	AMin  = 0.005 // [um]
	AMax  = 0.3   // [um]
	ACut  = 0.3   // [um]
	P     = 3.5
	NA    = 100
	NFold = 5
	A0    = 1.0 // [um] single grain radius
)

// Distribution produces a radius grid and the number density on it.
type Distribution interface {
	Name() string
	Radii() []float64
	NDens(md, rho float64) []float64
}

// GrainVolume is (4/3) pi a^3 in cm^3 for a in micron.
func GrainVolume(a float64) float64 {
	aCm := a * constants.Micron2Cm
	return 4. / 3. * math.Pi * aCm * aCm * aCm
}

// normalize scales shape so that the integrated grain mass equals md.
func normalize(a, shape []float64, md, rho float64) []float64 {
	dmda := make([]float64, len(a))
	for i := range a {
		dmda[i] = shape[i] * rho * GrainVolume(a[i])
	}
	norm := md / utils.Trapz(a, dmda)
	ndens := make([]float64, len(a))
	for i := range shape {
		ndens[i] = norm * shape[i]
	}
	return ndens
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Grain is a single grain size.
type Grain struct {
	a float64
}

func NewGrain(a float64) (*Grain, error) {
	if !(a > 0) || !finite(a) {
		return nil, fmt.Errorf("%w: grain radius %g must be positive and finite", ErrBounds, a)
	}
	return &Grain{a: a}, nil
}

func (g *Grain) Name() string { return "Grain" }

func (g *Grain) Radii() []float64 { return []float64{g.a} }

func (g *Grain) NDens(md, rho float64) []float64 {
	return []float64{md / (rho * GrainVolume(g.a))}
}

// Powerlaw is dn/da ∝ a^-p over [amin, amax].
type Powerlaw struct {
	AMin, AMax, P float64
	a             []float64
}

func NewPowerlaw(amin, amax, p float64, na int, log bool) (*Powerlaw, error) {
	if !finite(amin, amax, p) {
		return nil, fmt.Errorf("%w: non-finite parameter in amin=%g amax=%g p=%g", ErrBounds, amin, amax, p)
	}
	if !(amin > 0) || amin >= amax {
		return nil, fmt.Errorf("%w: need 0 < amin < amax, got amin=%g amax=%g", ErrBounds, amin, amax)
	}
	if na < 2 {
		return nil, fmt.Errorf("%w: need at least 2 radii, got %d", ErrBounds, na)
	}
	return &Powerlaw{AMin: amin, AMax: amax, P: p, a: utils.Grid(amin, amax, na, log)}, nil
}

func (pl *Powerlaw) Name() string { return "Powerlaw" }

func (pl *Powerlaw) Radii() []float64 { return append([]float64(nil), pl.a...) }

func (pl *Powerlaw) NDens(md, rho float64) []float64 {
	shape := make([]float64, len(pl.a))
	for i, a := range pl.a {
		shape[i] = math.Pow(a, -pl.P)
	}
	return normalize(pl.a, shape, md, rho)
}

// ExpCutoff is dn/da ∝ a^-p exp(-a/acut) over [amin, acut*nfold].
type ExpCutoff struct {
	AMin, ACut, P float64
	NFold         float64
	a             []float64
}

func NewExpCutoff(amin, acut, p float64, na int, log bool, nfold float64) (*ExpCutoff, error) {
	if !finite(amin, acut, p, nfold, acut*nfold) {
		return nil, fmt.Errorf("%w: non-finite parameter in amin=%g acut=%g p=%g nfold=%g", ErrBounds, amin, acut, p, nfold)
	}
	if !(amin > 0) || amin >= acut {
		return nil, fmt.Errorf("%w: need 0 < amin < acut, got amin=%g acut=%g", ErrBounds, amin, acut)
	}
	if !(nfold > 0) || amin >= acut*nfold {
		return nil, fmt.Errorf("%w: grid end acut*nfold=%g must exceed amin=%g", ErrBounds, acut*nfold, amin)
	}
	if na < 2 {
		return nil, fmt.Errorf("%w: need at least 2 radii, got %d", ErrBounds, na)
	}
	return &ExpCutoff{AMin: amin, ACut: acut, P: p, NFold: nfold, a: utils.Grid(amin, acut*nfold, na, log)}, nil
}

func (ec *ExpCutoff) Name() string { return "ExpCutoff" }

func (ec *ExpCutoff) Radii() []float64 { return append([]float64(nil), ec.a...) }

func (ec *ExpCutoff) NDens(md, rho float64) []float64 {
	shape := make([]float64, len(ec.a))
	for i, a := range ec.a {
		shape[i] = math.Pow(a, -ec.P) * math.Exp(-a/ec.ACut)
	}
	return normalize(ec.a, shape, md, rho)
}
