// Package extinction integrates per-grain scattering efficiencies over a
// grain size distribution to obtain optical depths.
//
// For a distribution with radii a (micron), number density n(a)
// (cm^-2 um^-1) and geometric cross-section c(a) (cm^2),
//
//	tau(E) = ∫ n(a) c(a) Q(E, a) da
//
// computed with the trapezoidal rule on the distribution's own radius grid.
// A distribution with a single radius is a discrete grain size and the
// integral reduces to n c Q.
package extinction

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/wildstyl3r/dustext/composition"
	"github.com/wildstyl3r/dustext/internal/utils"
	"github.com/wildstyl3r/dustext/scatmodel"
	"github.com/wildstyl3r/dustext/units"
)

var (
	ErrShapeMismatch = errors.New("distribution and efficiencies disagree in shape")
	ErrNotCalculated = errors.New("extinction properties need to be calculated")
)

// Grains is the radius grid and weighting of a size distribution.
type Grains interface {
	Radii() []float64 // [um]
	NDens() []float64 // [cm^-2 um^-1]
	CGeo() []float64  // [cm^2]
}

// Material is a size distribution bound to a grain composition.
type Material interface {
	Grains
	Composition() composition.Composition
}

// Result holds optical depths on the photon grid of one calculation.
type Result struct {
	TauExt []float64 // NE
	TauSca []float64 // NE
	TauAbs []float64 // NE

	Diff    [][][]float64 // NE x NA x NTH [cm^2 ster^-1]
	IntDiff [][]float64   // NE x NTH [ster^-1]
}

func checkShapes(g Grains, eff *scatmodel.Efficiencies) (ne, na, nth int, err error) {
	a, nd, cg := g.Radii(), g.NDens(), g.CGeo()
	if len(a) == 0 {
		return 0, 0, 0, fmt.Errorf("%w: empty radius grid", ErrShapeMismatch)
	}
	if !(a[0] > 0) || !utils.StrictlyIncreasing(a) {
		return 0, 0, 0, fmt.Errorf("%w: radii must be positive and strictly increasing", ErrShapeMismatch)
	}
	if len(nd) != len(a) || len(cg) != len(a) {
		return 0, 0, 0, fmt.Errorf("%w: %d radii, %d densities, %d cross-sections", ErrShapeMismatch, len(a), len(nd), len(cg))
	}
	ne, na, nth = eff.Shape()
	if na != len(a) {
		return 0, 0, 0, fmt.Errorf("%w: %d radii in distribution, %d in efficiencies", ErrShapeMismatch, len(a), na)
	}
	if err := eff.Validate(ne, na, nth); err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %w", ErrShapeMismatch, err)
	}
	return ne, na, nth, nil
}

// Calculate integrates eff over the distribution g. The efficiencies must be
// computed on g's radius grid; nothing is returned when shapes disagree.
func Calculate(g Grains, eff *scatmodel.Efficiencies) (*Result, error) {
	ne, na, nth, err := checkShapes(g, eff)
	if err != nil {
		return nil, err
	}
	a, ndens, cgeo := g.Radii(), g.NDens(), g.CGeo()

	r := &Result{
		TauExt:  make([]float64, ne),
		TauSca:  make([]float64, ne),
		TauAbs:  make([]float64, ne),
		Diff:    utils.Zeros3D(ne, na, nth),
		IntDiff: utils.Zeros2D(ne, nth),
	}

	if na == 1 {
		for i := range ne {
			r.TauExt[i] = ndens[0] * eff.QExt[i][0] * cgeo[0]
			r.TauSca[i] = ndens[0] * eff.QSca[i][0] * cgeo[0]
			r.TauAbs[i] = ndens[0] * eff.QAbs[i][0] * cgeo[0]
		}
	} else {
		geo := make([]float64, na) // [um^-1]
		for j := range na {
			geo[j] = ndens[j] * cgeo[j]
		}
		f := make([]float64, na)
		weighted := func(q []float64) float64 {
			for j := range na {
				f[j] = geo[j] * q[j]
			}
			return utils.Trapz(a, f)
		}
		for i := range ne {
			r.TauExt[i] = weighted(eff.QExt[i])
			r.TauSca[i] = weighted(eff.QSca[i])
			r.TauAbs[i] = weighted(eff.QAbs[i])
		}
	}

	for i := range ne {
		for j := range na {
			for k := range nth {
				r.Diff[i][j][k] = eff.Diff[i][j][k] * cgeo[j]
			}
		}
	}

	if na == 1 {
		// one-term sum over the radius axis
		for i := range ne {
			for k := range nth {
				r.IntDiff[i][k] = eff.Diff[i][0][k] * cgeo[0] * ndens[0]
			}
		}
	} else {
		f := make([]float64, na)
		for i := range ne {
			for k := range nth {
				for j := range na {
					f[j] = r.Diff[i][j][k] * ndens[j]
				}
				r.IntDiff[i][k] = utils.Trapz(a, f)
			}
		}
	}
	return r, nil
}

// Extinction runs a scattering model and keeps the optical depths of the
// last successful calculation.
type Extinction struct {
	Model   Model
	Scatter scatmodel.Provider
	Lam     []float64
	Unit    units.Unit
	TauExt  []float64
	TauSca  []float64
	TauAbs  []float64
	Diff    [][][]float64
	IntDiff [][]float64
	Logger  logrus.FieldLogger
	lastEff *scatmodel.Efficiencies
}

func NewExtinction(model Model) (*Extinction, error) {
	p, err := model.Provider()
	if err != nil {
		return nil, err
	}
	return &Extinction{Model: model, Scatter: p, Logger: logrus.StandardLogger()}, nil
}

// MakeExtinction selects the scattering model by name ("RG" or "Mie").
func MakeExtinction(name string) (*Extinction, error) {
	model, err := ParseModel(name)
	if err != nil {
		return nil, err
	}
	return NewExtinction(model)
}

// Calculate runs the scattering model on m's radius grid and integrates over
// the size distribution. Stored values are replaced only on success.
func (e *Extinction) Calculate(m Material, lam []float64, unit units.Unit, theta []float64) error {
	if !unit.Valid() {
		return fmt.Errorf("%w: %q", units.ErrInvalidUnit, unit)
	}
	if len(lam) == 0 {
		return fmt.Errorf("%w: empty photon grid", ErrShapeMismatch)
	}
	eff, err := e.Scatter.Calculate(lam, unit, m.Radii(), m.Composition(), theta)
	if err != nil {
		return fmt.Errorf("%s scattering: %w", e.Scatter.Name(), err)
	}
	r, err := Calculate(m, eff)
	if err != nil {
		return err
	}
	ne, na, nth := eff.Shape()
	if ne != len(lam) {
		return fmt.Errorf("%w: %d energies requested, %d computed", ErrShapeMismatch, len(lam), ne)
	}
	e.Logger.WithFields(logrus.Fields{
		"model": e.Scatter.Name(),
		"ne":    ne,
		"na":    na,
		"nth":   nth,
	}).Debug("calculated extinction")

	e.Lam, e.Unit = append([]float64(nil), lam...), unit
	e.TauExt, e.TauSca, e.TauAbs = r.TauExt, r.TauSca, r.TauAbs
	e.Diff, e.IntDiff = r.Diff, r.IntDiff
	e.lastEff = eff
	return nil
}

// Efficiencies returns the scattering model output of the last calculation.
func (e *Extinction) Efficiencies() (*scatmodel.Efficiencies, error) {
	if e.lastEff == nil {
		return nil, ErrNotCalculated
	}
	return e.lastEff, nil
}
