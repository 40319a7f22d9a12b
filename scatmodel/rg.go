package scatmodel

import (
	"math"
	"math/cmplx"

	"github.com/wildstyl3r/dustext/composition"
	"github.com/wildstyl3r/dustext/internal/constants"
	"github.com/wildstyl3r/dustext/units"
)

// RG is the Rayleigh-Gans approximation, valid for |m-1| << 1 and
// x|m-1| << 1. Absorption is neglected, so QExt == QSca. The angular
// dependence uses the Gaussian form of Mauche & Gorenstein (1986).
type RG struct{}

func NewRG() *RG {
	return &RG{}
}

func (rg *RG) Name() string { return "RG" }

// CharSig is the characteristic halo angle in arcsec for energy in keV and
// radius in micron.
func CharSig(eKeV, a float64) float64 {
	return 1.04 * 60. / (eKeV * a)
}

func (rg *RG) Calculate(lam []float64, unit units.Unit, a []float64, comp composition.Composition, theta []float64) (*Efficiencies, error) {
	if err := checkRadii(a); err != nil {
		return nil, err
	}
	lamCm, err := units.ToCm(lam, unit)
	if err != nil {
		return nil, err
	}
	eKeV, err := units.ToKeV(lam, unit)
	if err != nil {
		return nil, err
	}
	m, err := comp.Index(lam, unit)
	if err != nil {
		return nil, err
	}
	theta = defaultTheta(theta)
	eff := newEfficiencies(lam, unit, a, theta)

	for i := range lam {
		mm1 := cmplx.Abs(m[i] - 1)
		for j := range a {
			x := 2. * math.Pi * a[j] * constants.Micron2Cm / lamCm[i]
			qsca := 2. * x * x * mm1 * mm1
			eff.QSca[i][j] = qsca
			eff.QExt[i][j] = qsca

			sig := CharSig(eKeV[i], a[j]) * constants.Arcsec2Rad
			norm := qsca / (2. * math.Pi * sig * sig)
			for k := range theta {
				th := theta[k] * constants.Arcsec2Rad
				eff.Diff[i][j][k] = norm * math.Exp(-0.5*th*th/(sig*sig))
			}
		}
	}
	return eff, nil
}
