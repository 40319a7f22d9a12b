package scatmodel

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildstyl3r/dustext/composition"
	"github.com/wildstyl3r/dustext/internal/constants"
	"github.com/wildstyl3r/dustext/internal/utils"
	"github.com/wildstyl3r/dustext/units"
)

func constIndex(t *testing.T, m complex128) composition.Composition {
	t.Helper()
	c, err := composition.NewTable("const", 3.0, []float64{1e-4, 1e4}, units.KeV,
		[]float64{real(m), real(m)}, []float64{imag(m), imag(m)})
	require.NoError(t, err)
	return c
}

// solidAngleIntegral integrates diff over the sphere for theta in arcsec.
func solidAngleIntegral(theta, diff []float64, smallAngle bool) float64 {
	rad := make([]float64, len(theta))
	f := make([]float64, len(theta))
	for k := range theta {
		rad[k] = theta[k] * constants.Arcsec2Rad
		if smallAngle {
			f[k] = 2 * math.Pi * rad[k] * diff[k]
		} else {
			f[k] = 2 * math.Pi * math.Sin(rad[k]) * diff[k]
		}
	}
	return utils.Trapz(rad, f)
}

func TestRG(t *testing.T) {
	// beyond 8 sigma of the 1 keV, 0.1 um halo
	theta := utils.Grid(0, 5000, 5001, false)
	a := []float64{0.1, 0.2}
	eff, err := NewRG().Calculate([]float64{1, 2}, units.KeV, a, composition.NewDrude(composition.RhoDrude), theta)
	require.NoError(t, err)
	require.NoError(t, eff.Validate(2, 2, 5001))

	m, err := composition.NewDrude(composition.RhoDrude).Index([]float64{1}, units.KeV)
	require.NoError(t, err)
	x := 2 * math.Pi * 0.1e-4 / (constants.HcKeVCm / 1)
	mm1 := 1 - real(m[0])
	assert.InEpsilon(t, 2*x*x*mm1*mm1, eff.QSca[0][0], 1e-9)

	for i := range eff.QExt {
		for j := range eff.QExt[i] {
			assert.Equal(t, eff.QSca[i][j], eff.QExt[i][j])
			assert.Zero(t, eff.QAbs[i][j])
		}
	}
	assert.InEpsilon(t, eff.QSca[0][0], solidAngleIntegral(theta, eff.Diff[0][0], true), 1e-3)
	assert.InEpsilon(t, 62.4, CharSig(1, 1), 1e-12)
}

func TestMieRayleighLimit(t *testing.T) {
	const x = 0.01
	a := []float64{0.001}
	lam := []float64{2 * math.Pi * a[0] * 1e4 / x}
	eff, err := NewMie().Calculate(lam, units.Angs, a, constIndex(t, 1.5), nil)
	require.NoError(t, err)
	require.NoError(t, eff.Validate(1, 1, 1))

	k := (1.5*1.5 - 1) / (1.5*1.5 + 2)
	assert.InEpsilon(t, 8./3.*math.Pow(x, 4)*k*k, eff.QSca[0][0], 1e-2)
	assert.InDelta(t, 0, eff.QAbs[0][0], 1e-12)
}

func TestMieLargeSphere(t *testing.T) {
	a := []float64{1}
	lam := []float64{2 * math.Pi * 1e4 / 1000}
	eff, err := NewMie().Calculate(lam, units.Angs, a, constIndex(t, complex(1.5, 0.01)), nil)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, eff.QExt[0][0], 0.05)
	assert.Greater(t, eff.QAbs[0][0], 0.)
	assert.InDelta(t, eff.QExt[0][0], eff.QAbs[0][0]+eff.QSca[0][0], 1e-12)
}

func TestMieAngularNormalization(t *testing.T) {
	theta := utils.Grid(0, 648000, 4001, false)
	a := []float64{0.1}
	lam := []float64{2 * math.Pi * a[0] * 1e4}
	eff, err := NewMie().Calculate(lam, units.Angs, a, constIndex(t, complex(1.5, 0.001)), theta)
	require.NoError(t, err)
	assert.InEpsilon(t, eff.QSca[0][0], solidAngleIntegral(theta, eff.Diff[0][0], false), 1e-3)
}

func TestProviderErrors(t *testing.T) {
	comp := composition.NewDrude(3)
	for _, p := range []Provider{NewRG(), NewMie()} {
		_, err := p.Calculate([]float64{1}, units.Unit("nm"), []float64{0.1}, comp, nil)
		assert.ErrorIs(t, err, units.ErrInvalidUnit, p.Name())
		_, err = p.Calculate([]float64{1}, units.KeV, nil, comp, nil)
		assert.ErrorIs(t, err, ErrShapeMismatch, p.Name())
	}
}

func TestValidate(t *testing.T) {
	eff := newEfficiencies([]float64{1, 2}, units.KeV, []float64{0.1, 0.2, 0.3}, []float64{0})
	ne, na, nth := eff.Shape()
	assert.Equal(t, [3]int{2, 3, 1}, [3]int{ne, na, nth})
	require.NoError(t, eff.Validate(2, 3, 1))
	assert.ErrorIs(t, eff.Validate(2, 4, 1), ErrShapeMismatch)
	assert.ErrorIs(t, eff.Validate(3, 3, 1), ErrShapeMismatch)
	assert.ErrorIs(t, eff.Validate(2, 3, 2), ErrShapeMismatch)
	eff.QAbs[1] = eff.QAbs[1][:2]
	assert.ErrorIs(t, eff.Validate(2, 3, 1), ErrShapeMismatch)

	// the first broken array in qext, qabs, qsca order is reported
	eff.QSca[0] = eff.QSca[0][:1]
	for range 20 {
		err := eff.Validate(2, 3, 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "qabs[1]")
	}
}

func TestTableRoundTrip(t *testing.T) {
	dir := t.TempDir()
	a := utils.Grid(0.1, 0.5, 12, false)
	lam := []float64{1000, 3000, 5000}
	comp := constIndex(t, complex(1.7, 0.03))
	eff, err := NewMie().Calculate(lam, units.Angs, a, comp, nil)
	require.NoError(t, err)
	require.NoError(t, WriteTable(dir, "sil", eff))
	assert.FileExists(t, filepath.Join(dir, "sil_11.csv"))

	tab, err := LoadTable(dir, "sil")
	require.NoError(t, err)
	assert.Equal(t, a, tab.A)
	assert.True(t, utils.StrictlyIncreasing(tab.Lam()))

	got, err := tab.Calculate(lam, units.Angs, a, nil, []float64{10, 20})
	require.NoError(t, err)
	require.NoError(t, got.Validate(3, 12, 2))
	for i := range lam {
		assert.InDeltaSlice(t, eff.QExt[i], got.QExt[i], 1e-12)
		assert.InDeltaSlice(t, eff.QAbs[i], got.QAbs[i], 1e-12)
		assert.InDeltaSlice(t, eff.QSca[i], got.QSca[i], 1e-12)
		assert.Equal(t, []float64{0, 0}, got.Diff[i][0])
	}

	mid, err := tab.Calculate([]float64{2000}, units.Angs, a, nil, nil)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(mid.QExt[0][0]))

	_, err = tab.Calculate(lam, units.Angs, a[:5], nil, nil)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = tab.Calculate([]float64{10000}, units.Angs, a, nil, nil)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestLoadTableErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadTable(dir, "none")
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad_0.csv"), []byte("radius (um),0.1\nenergy (keV),qext,qabs,qsca\n1,2,x,1\n"), 0o600))
	_, err = LoadTable(dir, "bad")
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "grid_0.csv"), []byte("radius (um),0.1\nenergy (keV),qext,qabs,qsca\n1,2,1,1\n2,2,1,1\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "grid_1.csv"), []byte("radius (um),0.2\nenergy (keV),qext,qabs,qsca\n1,2,1,1\n3,2,1,1\n"), 0o600))
	_, err = LoadTable(dir, "grid")
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestLoadTableMaterialPrefix(t *testing.T) {
	dir := t.TempDir()
	row := func(a string) []byte {
		return []byte("radius (um)," + a + "\nenergy (keV),qext,qabs,qsca\n1,2,1,1\n2,2,1,1\n")
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sil_0.csv"), row("0.1"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sil_1.csv"), row("0.2"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sil_x_0.csv"), row("0.05"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sil_.csv"), row("0.3"), 0o600))

	tab, err := LoadTable(dir, "sil")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2}, tab.A)

	_, err = LoadTable(dir, "si")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
