package grainpop

import (
	"fmt"

	"github.com/wildstyl3r/dustext/composition"
	"github.com/wildstyl3r/dustext/extinction"
	"github.com/wildstyl3r/dustext/sizedist"
)

// MRNOptions parametrize the Mathis, Rumpl & Nordsieck (1977) power law.
type MRNOptions struct {
	AMin, AMax, P float64 // radii in [um]
	NA            int
	Log           bool
	MD            float64 // [g cm^-2]
	FSil          float64 // silicate mass fraction
	Rho           float64 // [g cm^-3] Drude grains only
}

func DefaultMRN() MRNOptions {
	return MRNOptions{
		AMin: sizedist.AMin,
		AMax: sizedist.AMax,
		P:    sizedist.P,
		NA:   sizedist.NA,
		MD:   MDDefault,
		FSil: 0.6,
		Rho:  composition.RhoDrude,
	}
}

func (o MRNOptions) powerlaw() (sizedist.Distribution, error) {
	return sizedist.NewPowerlaw(o.AMin, o.AMax, o.P, o.NA, o.Log)
}

// MakeMRN mixes silicate and graphite grains with Mie scattering. The
// graphite mass is split 1/3 parallel, 2/3 perpendicular.
func MakeMRN(o MRNOptions, sil, graPara, graPerp composition.Composition) (*GrainPop, error) {
	if o.FSil < 0 || o.FSil > 1 {
		return nil, fmt.Errorf("%w: silicate fraction %g not in [0, 1]", sizedist.ErrBounds, o.FSil)
	}
	pl, err := o.powerlaw()
	if err != nil {
		return nil, err
	}
	mdGra := (1. - o.FSil) * o.MD
	parts := []struct {
		comp composition.Composition
		md   float64
	}{
		{sil, o.FSil * o.MD},
		{graPara, mdGra / 3.},
		{graPerp, mdGra * 2. / 3.},
	}
	members := make([]*SingleGrainPop, 0, len(parts))
	for _, part := range parts {
		gd, err := NewGrainDist(pl, part.comp, part.md)
		if err != nil {
			return nil, err
		}
		p, err := NewSingleGrainPop(gd, extinction.Mie)
		if err != nil {
			return nil, err
		}
		members = append(members, p)
	}
	return New(members, []string{"sil", "gra_para", "gra_perp"}, "MRN")
}

// MakeMRNDrude is a single MRN population of Drude grains with
// Rayleigh-Gans scattering.
func MakeMRNDrude(o MRNOptions) (*GrainPop, error) {
	pl, err := o.powerlaw()
	if err != nil {
		return nil, err
	}
	gd, err := NewGrainDist(pl, composition.NewDrude(o.Rho), o.MD)
	if err != nil {
		return nil, err
	}
	p, err := NewSingleGrainPop(gd, extinction.RG)
	if err != nil {
		return nil, err
	}
	return New([]*SingleGrainPop{p}, []string{"RGD"}, "MRN_rgd")
}
