package grainpop

import (
	"fmt"
	"math"

	"github.com/wildstyl3r/dustext/composition"
	"github.com/wildstyl3r/dustext/internal/constants"
	"github.com/wildstyl3r/dustext/internal/utils"
	"github.com/wildstyl3r/dustext/sizedist"
)

const MDDefault = 1e-4 // [g cm^-2]

// GrainDist binds a size distribution to a composition and a dust mass
// column. The number density is fixed at construction.
type GrainDist struct {
	Size sizedist.Distribution
	Comp composition.Composition
	MD   float64 // [g cm^-2]

	a     []float64 // [um]
	ndens []float64 // [cm^-2 um^-1]
	cgeo  []float64 // [cm^2]
}

func NewGrainDist(size sizedist.Distribution, comp composition.Composition, md float64) (*GrainDist, error) {
	if !(md >= 0) {
		return nil, fmt.Errorf("%w: dust mass column %g must not be negative", sizedist.ErrBounds, md)
	}
	if !(comp.Rho() > 0) {
		return nil, fmt.Errorf("%w: %s density %g must be positive", sizedist.ErrBounds, comp.Name(), comp.Rho())
	}
	a := size.Radii()
	if len(a) == 0 || !(a[0] > 0) || !utils.StrictlyIncreasing(a) {
		return nil, fmt.Errorf("%w: %s radii must be positive and strictly increasing", sizedist.ErrBounds, size.Name())
	}
	gd := &GrainDist{Size: size, Comp: comp, MD: md, a: a}
	gd.ndens = size.NDens(md, comp.Rho())
	gd.cgeo = make([]float64, len(gd.a))
	for i, a := range gd.a {
		aCm := a * constants.Micron2Cm
		gd.cgeo[i] = math.Pi * aCm * aCm
	}
	return gd, nil
}

func (gd *GrainDist) Radii() []float64 { return gd.a }

func (gd *GrainDist) NDens() []float64 { return gd.ndens }

func (gd *GrainDist) CGeo() []float64 { return gd.cgeo }

func (gd *GrainDist) Composition() composition.Composition { return gd.Comp }

func (gd *GrainDist) Rho() float64 { return gd.Comp.Rho() }

// MDens is the mass density per unit radius, n(a) ρ (4/3)π a^3 [g cm^-2 um^-1].
func (gd *GrainDist) MDens() []float64 {
	r := make([]float64, len(gd.a))
	for i := range gd.a {
		r[i] = gd.ndens[i] * gd.Rho() * sizedist.GrainVolume(gd.a[i])
	}
	return r
}
