package extinction

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildstyl3r/dustext/composition"
	"github.com/wildstyl3r/dustext/internal/constants"
	"github.com/wildstyl3r/dustext/internal/utils"
	"github.com/wildstyl3r/dustext/scatmodel"
	"github.com/wildstyl3r/dustext/sizedist"
	"github.com/wildstyl3r/dustext/units"
)

const (
	ne  = 2
	nth = 50
	md  = 1e-4
)

var lamVals = utils.Grid(1000, 5000, ne, false) // [angs]

type material struct {
	a, ndens, cgeo []float64
	comp           composition.Composition
}

func (m *material) Radii() []float64                     { return m.a }
func (m *material) NDens() []float64                     { return m.ndens }
func (m *material) CGeo() []float64                      { return m.cgeo }
func (m *material) Composition() composition.Composition { return m.comp }

func newMaterial(d sizedist.Distribution, comp composition.Composition) *material {
	m := &material{a: d.Radii(), comp: comp}
	m.ndens = d.NDens(md, comp.Rho())
	for _, a := range m.a {
		aCm := a * constants.Micron2Cm
		m.cgeo = append(m.cgeo, math.Pi*aCm*aCm)
	}
	return m
}

// percentDiff is |a-b|/|b| element-wise; zero where both are zero.
func percentDiff(a, b []float64) []float64 {
	r := make([]float64, len(a))
	for i := range a {
		if a[i] == b[i] {
			continue
		}
		r[i] = math.Abs(a[i]-b[i]) / math.Abs(b[i])
	}
	return r
}

func silicate(t *testing.T) composition.Composition {
	t.Helper()
	c, err := composition.NewTable("Silicate", composition.RhoSilicate, []float64{500, 10000}, units.Angs,
		[]float64{1.75, 1.68}, []float64{0.05, 0.03})
	require.NoError(t, err)
	return c
}

// unitProvider returns efficiency 1 for every grain, energy and angle.
type unitProvider struct{}

func (unitProvider) Name() string { return "unit" }

func (unitProvider) Calculate(lam []float64, unit units.Unit, a []float64, comp composition.Composition, theta []float64) (*scatmodel.Efficiencies, error) {
	if len(theta) == 0 {
		theta = []float64{0}
	}
	eff := &scatmodel.Efficiencies{Lam: lam, Unit: unit, A: a, Theta: theta}
	for range lam {
		eff.QExt = append(eff.QExt, ones(len(a)))
		eff.QSca = append(eff.QSca, ones(len(a)))
		eff.QAbs = append(eff.QAbs, make([]float64, len(a)))
		d := make([][]float64, len(a))
		for j := range d {
			d[j] = ones(len(theta))
		}
		eff.Diff = append(eff.Diff, d)
	}
	return eff, nil
}

func ones(n int) []float64 {
	r := make([]float64, n)
	for i := range r {
		r[i] = 1
	}
	return r
}

// truncatingProvider drops the last radius.
type truncatingProvider struct{ unitProvider }

func (p truncatingProvider) Calculate(lam []float64, unit units.Unit, a []float64, comp composition.Composition, theta []float64) (*scatmodel.Efficiencies, error) {
	return p.unitProvider.Calculate(lam, unit, a[:len(a)-1], comp, theta)
}

func TestCalculations(t *testing.T) {
	theta := utils.Grid(1e-10, math.Pi, nth, true)
	for k := range theta {
		theta[k] /= constants.Arcsec2Rad
	}
	sil := silicate(t)
	dru := composition.NewDrude(composition.RhoDrude)
	pl, err := sizedist.NewPowerlaw(sizedist.AMin, sizedist.AMax, sizedist.P, sizedist.NA, false)
	require.NoError(t, err)
	ec, err := sizedist.NewExpCutoff(sizedist.AMin, sizedist.ACut, sizedist.P, sizedist.NA, false, sizedist.NFold)
	require.NoError(t, err)
	gr, err := sizedist.NewGrain(sizedist.A0)
	require.NoError(t, err)

	cases := []struct {
		name string
		m    *material
	}{
		{"MRN_SIL", newMaterial(pl, sil)},
		{"MRN_DRU", newMaterial(pl, dru)},
		{"EXP_SIL", newMaterial(ec, sil)},
		{"GRAIN", newMaterial(gr, dru)},
	}
	for _, c := range cases {
		for _, model := range []Model{RG, Mie} {
			t.Run(c.name+"/"+model.String(), func(t *testing.T) {
				ext, err := NewExtinction(model)
				require.NoError(t, err)
				require.NoError(t, ext.Calculate(c.m, lamVals, units.Angs, theta))
				require.Len(t, ext.TauExt, ne)
				require.Len(t, ext.TauSca, ne)
				require.Len(t, ext.TauAbs, ne)
				sum := make([]float64, ne)
				for i := range sum {
					sum[i] = ext.TauSca[i] + ext.TauAbs[i]
				}
				for i, d := range percentDiff(ext.TauExt, sum) {
					assert.LessOrEqual(t, d, 0.01, "energy %d", i)
				}
				assert.Len(t, ext.IntDiff, ne)
				assert.Len(t, ext.IntDiff[0], nth)
				assert.Len(t, ext.Diff[0], len(c.m.a))
			})
		}
	}
}

func TestConcreteScenario(t *testing.T) {
	pl, err := sizedist.NewPowerlaw(0.1, 0.5, 3.5, 20, false)
	require.NoError(t, err)
	m := newMaterial(pl, silicate(t))
	eKeV, err := units.ToKeV([]float64{1000, 5000}, units.Angs)
	require.NoError(t, err)
	for _, model := range []Model{RG, Mie} {
		ext, err := NewExtinction(model)
		require.NoError(t, err)
		require.NoError(t, ext.Calculate(m, eKeV, units.KeV, nil))
		require.Len(t, ext.TauExt, 2)
		for i := range ext.TauExt {
			assert.InEpsilon(t, ext.TauExt[i], ext.TauSca[i]+ext.TauAbs[i], 0.01)
		}
		assert.Equal(t, units.KeV, ext.Unit)
		assert.Equal(t, eKeV, ext.Lam)
	}
}

func TestSingleGrainDegeneracy(t *testing.T) {
	g, err := sizedist.NewGrain(0.1)
	require.NoError(t, err)
	m := newMaterial(g, composition.NewDrude(3.0))

	nd := 1e-4 / (3.0 * 4. / 3. * math.Pi * math.Pow(0.1e-4, 3))
	cg := math.Pi * 0.1e-4 * 0.1e-4
	assert.InEpsilon(t, nd, m.ndens[0], 1e-12)
	assert.InEpsilon(t, cg, m.cgeo[0], 1e-12)

	ext := &Extinction{Scatter: unitProvider{}, Logger: discard()}
	require.NoError(t, ext.Calculate(m, []float64{1, 2, 3}, units.KeV, []float64{0, 10}))
	for i := range ext.TauExt {
		assert.Equal(t, m.ndens[0]*1*m.cgeo[0], ext.TauExt[i])
		assert.Equal(t, m.ndens[0]*1*m.cgeo[0], ext.TauSca[i])
		assert.Zero(t, ext.TauAbs[i])
		assert.Equal(t, []float64{m.cgeo[0] * m.ndens[0], m.cgeo[0] * m.ndens[0]}, ext.IntDiff[i])
		assert.Equal(t, m.cgeo[0], ext.Diff[i][0][1])
	}

	eff, err := ext.Efficiencies()
	require.NoError(t, err)
	r, err := Calculate(m, eff)
	require.NoError(t, err)
	for i := range r.TauExt {
		assert.Equal(t, m.ndens[0]*eff.QExt[i][0]*m.cgeo[0], r.TauExt[i])
	}
}

func TestIntegratedDifferential(t *testing.T) {
	pl, err := sizedist.NewPowerlaw(0.1, 0.5, 3.5, 20, true)
	require.NoError(t, err)
	m := newMaterial(pl, composition.NewDrude(3.0))
	ext := &Extinction{Scatter: unitProvider{}, Logger: discard()}
	require.NoError(t, ext.Calculate(m, []float64{1, 2}, units.KeV, []float64{0, 30, 60}))

	geo := make([]float64, len(m.a))
	for j := range geo {
		geo[j] = m.ndens[j] * m.cgeo[j]
	}
	want := utils.Trapz(m.a, geo)
	for i := range ext.TauExt {
		assert.InEpsilon(t, want, ext.TauExt[i], 1e-12)
		for k := range ext.IntDiff[i] {
			assert.InEpsilon(t, want, ext.IntDiff[i][k], 1e-12)
		}
		for j := range m.a {
			assert.Equal(t, m.cgeo[j], ext.Diff[i][j][0])
		}
	}
}

func TestShapeMismatch(t *testing.T) {
	pl, err := sizedist.NewPowerlaw(0.1, 0.5, 3.5, 10, false)
	require.NoError(t, err)
	m := newMaterial(pl, composition.NewDrude(3.0))

	ext := &Extinction{Scatter: unitProvider{}, Logger: discard()}
	require.NoError(t, ext.Calculate(m, []float64{1, 2}, units.KeV, nil))
	before := append([]float64(nil), ext.TauExt...)

	ext.Scatter = truncatingProvider{}
	err = ext.Calculate(m, []float64{1, 2, 3}, units.KeV, nil)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	assert.Equal(t, before, ext.TauExt)
	assert.Equal(t, []float64{1, 2}, ext.Lam)

	bad := &material{a: m.a, ndens: m.ndens[:3], cgeo: m.cgeo, comp: m.comp}
	eff, err := unitProvider{}.Calculate([]float64{1}, units.KeV, m.a, m.comp, nil)
	require.NoError(t, err)
	_, err = Calculate(bad, eff)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	eff.Diff[0][2] = eff.Diff[0][2][:0]
	_, err = Calculate(m, eff)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	assert.True(t, errors.Is(err, scatmodel.ErrShapeMismatch))
}

func TestUnsortedRadii(t *testing.T) {
	for name, a := range map[string][]float64{
		"unsorted":    {0.3, 0.1, 0.2},
		"repeated":    {0.1, 0.1, 0.2},
		"nonpositive": {0, 0.1, 0.2},
	} {
		t.Run(name, func(t *testing.T) {
			m := &material{a: a, ndens: []float64{1, 1, 1}, cgeo: []float64{1, 1, 1}, comp: composition.NewDrude(3)}
			ext := &Extinction{Scatter: unitProvider{}, Logger: discard()}
			err := ext.Calculate(m, []float64{1, 2}, units.KeV, nil)
			assert.ErrorIs(t, err, ErrShapeMismatch)
			assert.Nil(t, ext.TauExt)
		})
	}
}

func TestInvalidUnit(t *testing.T) {
	g, err := sizedist.NewGrain(0.1)
	require.NoError(t, err)
	ext, err := NewExtinction(RG)
	require.NoError(t, err)
	err = ext.Calculate(newMaterial(g, composition.NewDrude(3)), []float64{1}, units.Unit("ev"), nil)
	assert.ErrorIs(t, err, units.ErrInvalidUnit)
	assert.Nil(t, ext.TauExt)
	_, err = ext.Efficiencies()
	assert.ErrorIs(t, err, ErrNotCalculated)
}

func TestModels(t *testing.T) {
	m, err := ParseModel("Mie")
	require.NoError(t, err)
	assert.Equal(t, Mie, m)
	assert.Equal(t, "RG", RG.String())

	_, err = ParseModel("mie")
	assert.ErrorIs(t, err, ErrUnknownModel)
	_, err = MakeExtinction("Foo")
	assert.ErrorIs(t, err, ErrUnknownModel)
	_, err = Model(7).Provider()
	assert.ErrorIs(t, err, ErrUnknownModel)

	ext, err := MakeExtinction("RG")
	require.NoError(t, err)
	assert.Equal(t, "RG", ext.Scatter.Name())
}
