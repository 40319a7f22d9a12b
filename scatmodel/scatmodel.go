// Package scatmodel computes per-grain scattering efficiencies: extinction,
// absorption and scattering efficiency factors on an energy × radius grid and
// the differential scattering efficiency on an energy × radius × angle grid.
//
// Radii are in micron and scattering angles in arcsec.
package scatmodel

import (
	"errors"
	"fmt"

	"github.com/wildstyl3r/dustext/composition"
	"github.com/wildstyl3r/dustext/units"
)

var (
	ErrShapeMismatch = errors.New("efficiency shape mismatch")
	ErrOutOfRange    = errors.New("outside tabulated range")
)

// Efficiencies holds the output of one provider call.
type Efficiencies struct {
	Lam   []float64
	Unit  units.Unit
	A     []float64 // [um]
	Theta []float64 // [arcsec]

	QExt [][]float64   // NE x NA
	QAbs [][]float64   // NE x NA
	QSca [][]float64   // NE x NA
	Diff [][][]float64 // NE x NA x NTH [ster^-1]
}

// Shape returns the energy, radius and angle counts.
func (e *Efficiencies) Shape() (ne, na, nth int) {
	ne = len(e.QExt)
	if ne > 0 {
		na = len(e.QExt[0])
	}
	if len(e.Diff) > 0 && len(e.Diff[0]) > 0 {
		nth = len(e.Diff[0][0])
	}
	return
}

// Validate checks that every array has the ne x na (x nth) shape.
func (e *Efficiencies) Validate(ne, na, nth int) error {
	arrays := []struct {
		name string
		q    [][]float64
	}{{"qext", e.QExt}, {"qabs", e.QAbs}, {"qsca", e.QSca}}
	for _, arr := range arrays {
		name, q := arr.name, arr.q
		if len(q) != ne {
			return fmt.Errorf("%w: %s has %d energies, want %d", ErrShapeMismatch, name, len(q), ne)
		}
		for i := range q {
			if len(q[i]) != na {
				return fmt.Errorf("%w: %s[%d] has %d radii, want %d", ErrShapeMismatch, name, i, len(q[i]), na)
			}
		}
	}
	if len(e.Diff) != ne {
		return fmt.Errorf("%w: diff has %d energies, want %d", ErrShapeMismatch, len(e.Diff), ne)
	}
	for i := range e.Diff {
		if len(e.Diff[i]) != na {
			return fmt.Errorf("%w: diff[%d] has %d radii, want %d", ErrShapeMismatch, i, len(e.Diff[i]), na)
		}
		for j := range e.Diff[i] {
			if len(e.Diff[i][j]) != nth {
				return fmt.Errorf("%w: diff[%d][%d] has %d angles, want %d", ErrShapeMismatch, i, j, len(e.Diff[i][j]), nth)
			}
		}
	}
	return nil
}

// Provider computes efficiencies for grains of composition comp with radii a
// at the photon grid lam.
type Provider interface {
	Name() string
	Calculate(lam []float64, unit units.Unit, a []float64, comp composition.Composition, theta []float64) (*Efficiencies, error)
}

func newEfficiencies(lam []float64, unit units.Unit, a, theta []float64) *Efficiencies {
	ne, na, nth := len(lam), len(a), len(theta)
	e := &Efficiencies{
		Lam:   append([]float64(nil), lam...),
		Unit:  unit,
		A:     append([]float64(nil), a...),
		Theta: append([]float64(nil), theta...),
		QExt:  make([][]float64, ne),
		QAbs:  make([][]float64, ne),
		QSca:  make([][]float64, ne),
		Diff:  make([][][]float64, ne),
	}
	for i := range ne {
		e.QExt[i] = make([]float64, na)
		e.QAbs[i] = make([]float64, na)
		e.QSca[i] = make([]float64, na)
		e.Diff[i] = make([][]float64, na)
		for j := range na {
			e.Diff[i][j] = make([]float64, nth)
		}
	}
	return e
}

// defaultTheta is the forward direction when no angles are requested.
func defaultTheta(theta []float64) []float64 {
	if len(theta) == 0 {
		return []float64{0}
	}
	return theta
}

func checkRadii(a []float64) error {
	if len(a) == 0 {
		return fmt.Errorf("%w: empty radius grid", ErrShapeMismatch)
	}
	for _, r := range a {
		if !(r > 0) {
			return fmt.Errorf("%w: non-positive radius %g", ErrShapeMismatch, r)
		}
	}
	return nil
}
