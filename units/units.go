// Package units handles the two spectral units photon grids are given in:
// photon energy in keV and wavelength in angstrom.
package units

import (
	"errors"
	"fmt"

	"github.com/wildstyl3r/dustext/internal/constants"
)

var ErrInvalidUnit = errors.New("invalid wavelength/energy unit")

type Unit string

const (
	KeV  Unit = "kev"
	Angs Unit = "angs"
)

// ParseUnit accepts exactly "kev" or "angs".
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case KeV, Angs:
		return Unit(s), nil
	}
	return "", fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidUnit, s, KeV, Angs)
}

func (u Unit) Valid() bool {
	return u == KeV || u == Angs
}

func (u Unit) Label() string {
	switch u {
	case KeV:
		return "Energy (keV)"
	case Angs:
		return "Wavelength (Angstroms)"
	}
	return string(u)
}

// ToKeV converts a grid given in unit u to photon energy in keV. The result
// is a new slice.
func ToKeV(lam []float64, u Unit) ([]float64, error) {
	switch u {
	case KeV:
		return append([]float64(nil), lam...), nil
	case Angs:
		return hcOver(lam), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidUnit, u)
}

// ToAngs converts a grid given in unit u to wavelength in angstrom.
func ToAngs(lam []float64, u Unit) ([]float64, error) {
	switch u {
	case Angs:
		return append([]float64(nil), lam...), nil
	case KeV:
		return hcOver(lam), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidUnit, u)
}

// ToCm returns the wavelength in cm.
func ToCm(lam []float64, u Unit) ([]float64, error) {
	a, err := ToAngs(lam, u)
	if err != nil {
		return nil, err
	}
	for i := range a {
		a[i] *= constants.Angs2Cm
	}
	return a, nil
}

func hcOver(v []float64) []float64 {
	r := make([]float64, len(v))
	for i := range v {
		r[i] = constants.HcKeVAngs / v[i]
	}
	return r
}
