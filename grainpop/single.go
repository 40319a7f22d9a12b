package grainpop

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/wildstyl3r/dustext/extinction"
	"github.com/wildstyl3r/dustext/scatmodel"
	"github.com/wildstyl3r/dustext/units"
)

// SingleGrainPop is one grain distribution together with the scattering
// model used for it and the optical depths of its last calculation.
type SingleGrainPop struct {
	*GrainDist
	*extinction.Extinction
	Description string
}

func NewSingleGrainPop(gd *GrainDist, model extinction.Model) (*SingleGrainPop, error) {
	ext, err := extinction.NewExtinction(model)
	if err != nil {
		return nil, err
	}
	return &SingleGrainPop{GrainDist: gd, Extinction: ext}, nil
}

// NewCustomGrainPop uses a scattering calculator outside the built-in models.
func NewCustomGrainPop(gd *GrainDist, scatter scatmodel.Provider) *SingleGrainPop {
	return &SingleGrainPop{
		GrainDist:  gd,
		Extinction: &extinction.Extinction{Model: -1, Scatter: scatter, Logger: logrus.StandardLogger()},
	}
}

// NewSingleGrainPopFromTable serves efficiencies from a table written by
// scatmodel.WriteTable and calculates optical depths on the table's energy
// grid right away. model names the calculator the table was made with.
func NewSingleGrainPopFromTable(gd *GrainDist, dir, material string, model extinction.Model) (*SingleGrainPop, error) {
	tab, err := scatmodel.LoadTable(dir, material)
	if err != nil {
		return nil, err
	}
	p := &SingleGrainPop{
		GrainDist:  gd,
		Extinction: &extinction.Extinction{Model: model, Scatter: tab, Logger: logrus.StandardLogger()},
	}
	if err := p.CalculateExt(tab.Lam(), units.KeV, nil); err != nil {
		return nil, err
	}
	return p, nil
}

// CalculateExt runs the scattering model on lam (in unit) and theta (arcsec)
// and integrates over the size distribution.
func (p *SingleGrainPop) CalculateExt(lam []float64, unit units.Unit, theta []float64) error {
	return p.Calculate(p.GrainDist, lam, unit, theta)
}

// Info describes the population.
func (p *SingleGrainPop) Info() string {
	return fmt.Sprintf("Size distribution: %s\nExtinction calculated with: %s\nGrain composition: %s\nrho = %.2f g cm^-3, M_d = %.2e g cm^-2",
		p.Size.Name(), p.Scatter.Name(), p.Comp.Name(), p.Rho(), p.MD)
}
