package scatmodel

import (
	"math"
	"math/cmplx"

	"github.com/wildstyl3r/dustext/composition"
	"github.com/wildstyl3r/dustext/internal/constants"
	"github.com/wildstyl3r/dustext/units"
)

// Mie solves scattering by homogeneous spheres with the series of
// Bohren & Huffman (1983), appendix A.
type Mie struct{}

func NewMie() *Mie {
	return &Mie{}
}

func (mie *Mie) Name() string { return "Mie" }

func (mie *Mie) Calculate(lam []float64, unit units.Unit, a []float64, comp composition.Composition, theta []float64) (*Efficiencies, error) {
	if err := checkRadii(a); err != nil {
		return nil, err
	}
	lamCm, err := units.ToCm(lam, unit)
	if err != nil {
		return nil, err
	}
	m, err := comp.Index(lam, unit)
	if err != nil {
		return nil, err
	}
	theta = defaultTheta(theta)
	eff := newEfficiencies(lam, unit, a, theta)

	mu := make([]float64, len(theta))
	for k := range theta {
		mu[k] = math.Cos(theta[k] * constants.Arcsec2Rad)
	}

	for i := range lam {
		for j := range a {
			x := 2. * math.Pi * a[j] * constants.Micron2Cm / lamCm[i]
			qext, qsca, s1, s2 := bhmie(x, m[i], mu)
			eff.QExt[i][j] = qext
			eff.QSca[i][j] = qsca
			eff.QAbs[i][j] = qext - qsca
			for k := range mu {
				s := cmplx.Abs(s1[k])*cmplx.Abs(s1[k]) + cmplx.Abs(s2[k])*cmplx.Abs(s2[k])
				eff.Diff[i][j][k] = s / (2. * math.Pi * x * x)
			}
		}
	}
	return eff, nil
}

// bhmie returns the extinction and scattering efficiencies and the amplitude
// scattering matrix elements S1, S2 at the angle cosines mu, for size
// parameter x and relative refractive index m.
func bhmie(x float64, m complex128, mu []float64) (qext, qsca float64, s1, s2 []complex128) {
	y := complex(x, 0) * m
	nstop := int(x + 4.*math.Cbrt(x) + 2.)
	nmx := max(nstop, int(cmplx.Abs(y))) + 15

	// logarithmic derivative by downward recurrence
	d := make([]complex128, nmx+1)
	for n := nmx; n > 0; n-- {
		en := complex(float64(n), 0)
		d[n-1] = en/y - 1./(d[n]+en/y)
	}

	s1 = make([]complex128, len(mu))
	s2 = make([]complex128, len(mu))
	pi0 := make([]float64, len(mu))
	pi1 := make([]float64, len(mu))
	for k := range pi1 {
		pi1[k] = 1.
	}

	psi0, psi1 := math.Cos(x), math.Sin(x)
	chi0, chi1 := -math.Sin(x), math.Cos(x)
	xi1 := complex(psi1, -chi1)

	for n := 1; n <= nstop; n++ {
		en := float64(n)
		fn := (2.*en + 1.) / (en * (en + 1.))
		psi := (2.*en-1.)*psi1/x - psi0
		chi := (2.*en-1.)*chi1/x - chi0
		xi := complex(psi, -chi)

		da := d[n]/m + complex(en/x, 0)
		db := d[n]*m + complex(en/x, 0)
		an := (da*complex(psi, 0) - complex(psi1, 0)) / (da*xi - xi1)
		bn := (db*complex(psi, 0) - complex(psi1, 0)) / (db*xi - xi1)

		qsca += (2.*en + 1.) * (real(an)*real(an) + imag(an)*imag(an) + real(bn)*real(bn) + imag(bn)*imag(bn))
		qext += (2.*en + 1.) * real(an+bn)

		for k := range mu {
			p := pi1[k]
			t := en*mu[k]*p - (en+1.)*pi0[k]
			s1[k] += complex(fn, 0) * (an*complex(p, 0) + bn*complex(t, 0))
			s2[k] += complex(fn, 0) * (an*complex(t, 0) + bn*complex(p, 0))
			pi1[k] = ((2.*en+1.)*mu[k]*p - (en+1.)*pi0[k]) / en
			pi0[k] = p
		}

		psi0, psi1 = psi1, psi
		chi0, chi1 = chi1, chi
		xi1 = complex(psi1, -chi1)
	}

	qsca *= 2. / (x * x)
	qext *= 2. / (x * x)
	return
}
