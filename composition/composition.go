// Package composition describes grain materials: their bulk density and
// complex refractive index as a function of photon energy or wavelength.
package composition

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/wildstyl3r/dustext/internal/constants"
	"github.com/wildstyl3r/dustext/internal/utils"
	"github.com/wildstyl3r/dustext/units"
)

const (
	RhoDrude    = 3.0 // [g cm^-3]
	RhoSilicate = 3.8 // [g cm^-3]
	RhoGraphite = 2.2 // [g cm^-3]
)

var ErrTable = errors.New("invalid optical constants table")

// Composition is a grain material.
type Composition interface {
	Name() string
	Rho() float64
	// Index returns the complex refractive index m = n + ik on the grid.
	Index(lam []float64, unit units.Unit) ([]complex128, error)
}

// Drude treats the grain as a sphere of free electrons, valid at X-ray
// energies well above the absorption edges.
type Drude struct {
	rho float64
}

func NewDrude(rho float64) *Drude {
	return &Drude{rho: rho}
}

func (d *Drude) Name() string { return "Drude" }

func (d *Drude) Rho() float64 { return d.rho }

// Index is 1 - n_e r_e λ^2 / 2π with one free electron per two nucleon masses.
func (d *Drude) Index(lam []float64, unit units.Unit) ([]complex128, error) {
	lamCm, err := units.ToCm(lam, unit)
	if err != nil {
		return nil, err
	}
	ne := d.rho / (2. * constants.ProtonMass) // [cm^-3]
	m := make([]complex128, len(lamCm))
	for i, l := range lamCm {
		m[i] = complex(1.-ne*constants.ElectronRadius*l*l/(2.*math.Pi), 0)
	}
	return m, nil
}

// Table interpolates tabulated optical constants in energy. Outside the
// table the real part is 1 and the imaginary part 0.
type Table struct {
	name string
	rho  float64
	e    []float64 // [keV], increasing
	re   []float64
	im   []float64
}

// NewTable builds a table from optical constants sampled on lam given in unit.
func NewTable(name string, rho float64, lam []float64, unit units.Unit, re, im []float64) (*Table, error) {
	if len(lam) == 0 || len(lam) != len(re) || len(lam) != len(im) {
		return nil, fmt.Errorf("%w: %d grid points, %d real, %d imaginary", ErrTable, len(lam), len(re), len(im))
	}
	e, err := units.ToKeV(lam, unit)
	if err != nil {
		return nil, err
	}
	idx := make([]int, len(e))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return e[idx[i]] < e[idx[j]] })
	t := &Table{name: name, rho: rho}
	for _, i := range idx {
		t.e = append(t.e, e[i])
		t.re = append(t.re, re[i])
		t.im = append(t.im, im[i])
	}
	if !utils.StrictlyIncreasing(t.e) {
		return nil, fmt.Errorf("%w: duplicate grid points", ErrTable)
	}
	return t, nil
}

// LoadTable reads a three column file (lam, Re m, Im m) with lam in unit.
func LoadTable(path, name string, rho float64, unit units.Unit) (*Table, error) {
	rows, err := utils.ReadFloatRows(path, 3)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTable, err)
	}
	lam := make([]float64, len(rows))
	re := make([]float64, len(rows))
	im := make([]float64, len(rows))
	for i := range rows {
		lam[i], re[i], im[i] = rows[i][0], rows[i][1], rows[i][2]
	}
	return NewTable(name, rho, lam, unit, re, im)
}

func (t *Table) Name() string { return t.name }

func (t *Table) Rho() float64 { return t.rho }

func (t *Table) Index(lam []float64, unit units.Unit) ([]complex128, error) {
	e, err := units.ToKeV(lam, unit)
	if err != nil {
		return nil, err
	}
	m := make([]complex128, len(e))
	for i := range e {
		re, ok := utils.Interp(e[i], t.e, t.re)
		if !ok {
			re = 1.
		}
		im, _ := utils.Interp(e[i], t.e, t.im)
		m[i] = complex(re, im)
	}
	return m, nil
}

// Silicate loads astrosilicate optical constants (Draine 2003) from path.
func Silicate(path string, unit units.Unit) (*Table, error) {
	return LoadTable(path, "Silicate", RhoSilicate, unit)
}

// Graphite loads graphite optical constants for one orientation of the
// c-axis ("para" or "perp") from path.
func Graphite(path string, unit units.Unit, orient string) (*Table, error) {
	if orient != "para" && orient != "perp" {
		return nil, fmt.Errorf("%w: graphite orientation %q (want para or perp)", ErrTable, orient)
	}
	return LoadTable(path, "Graphite ("+orient+")", RhoGraphite, unit)
}
