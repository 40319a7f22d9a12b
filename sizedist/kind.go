package sizedist

import (
	"errors"
	"fmt"
)

var ErrUnknownKind = errors.New("unknown size distribution")

type Kind int

const (
	GrainKind Kind = iota
	PowerlawKind
	ExpCutoffKind
)

// ParseKind accepts "Grain", "Powerlaw" or "ExpCutoff".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "Grain":
		return GrainKind, nil
	case "Powerlaw":
		return PowerlawKind, nil
	case "ExpCutoff":
		return ExpCutoffKind, nil
	}
	return -1, fmt.Errorf("%w: %q (want Grain, Powerlaw or ExpCutoff)", ErrUnknownKind, s)
}

func (k Kind) String() string {
	switch k {
	case GrainKind:
		return "Grain"
	case PowerlawKind:
		return "Powerlaw"
	case ExpCutoffKind:
		return "ExpCutoff"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Params collects the parameters of every distribution shape; each shape
// reads only its own.
type Params struct {
	Kind   Kind
	Radius float64 // [um] Grain
	AMin   float64 // [um] Powerlaw, ExpCutoff
	AMax   float64 // [um] Powerlaw
	ACut   float64 // [um] ExpCutoff
	P      float64
	NA     int
	NFold  float64
	Log    bool
}

func DefaultParams(k Kind) Params {
	return Params{
		Kind:   k,
		Radius: A0,
		AMin:   AMin,
		AMax:   AMax,
		ACut:   ACut,
		P:      P,
		NA:     NA,
		NFold:  NFold,
	}
}

func (p Params) Build() (Distribution, error) {
	switch p.Kind {
	case GrainKind:
		return NewGrain(p.Radius)
	case PowerlawKind:
		return NewPowerlaw(p.AMin, p.AMax, p.P, p.NA, p.Log)
	case ExpCutoffKind:
		return NewExpCutoff(p.AMin, p.ACut, p.P, p.NA, p.Log, p.NFold)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownKind, p.Kind)
}
