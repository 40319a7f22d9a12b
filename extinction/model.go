package extinction

import (
	"errors"
	"fmt"

	"github.com/wildstyl3r/dustext/scatmodel"
)

var ErrUnknownModel = errors.New("unknown scattering model")

// Model selects a scattering calculator.
type Model int

const (
	RG Model = iota
	Mie
)

// ParseModel accepts "RG" or "Mie".
func ParseModel(s string) (Model, error) {
	switch s {
	case "RG":
		return RG, nil
	case "Mie":
		return Mie, nil
	}
	return -1, fmt.Errorf("%w: %q (want RG or Mie)", ErrUnknownModel, s)
}

func (m Model) String() string {
	switch m {
	case RG:
		return "RG"
	case Mie:
		return "Mie"
	}
	return fmt.Sprintf("Model(%d)", int(m))
}

// Provider returns a fresh calculator for m.
func (m Model) Provider() (scatmodel.Provider, error) {
	switch m {
	case RG:
		return scatmodel.NewRG(), nil
	case Mie:
		return scatmodel.NewMie(), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownModel, m)
}
