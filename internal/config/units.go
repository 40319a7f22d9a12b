package config

import (
	"fmt"

	"github.com/ctessum/unit"
)

// factors to the internal units: um, g cm^-2, g cm^-3
var unitToInternal = map[string]float64{
	"um":    1,     // [um]
	"nm":    1e-3,  // [um]
	"mm":    1e3,   // [um]
	"cm":    1e4,   // [um]
	"m":     1e6,   // [um]
	"g/cm2": 1,     // [g cm^-2]
	"kg/m2": 0.1,   // [g cm^-2]
	"g/cm3": 1,     // [g cm^-3]
	"kg/m3": 0.001, // [g cm^-3]
}

var massColumn = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -2}

var unitDimensions = map[string]unit.Dimensions{
	"um":    unit.Meter,
	"nm":    unit.Meter,
	"mm":    unit.Meter,
	"cm":    unit.Meter,
	"m":     unit.Meter,
	"g/cm2": massColumn,
	"kg/m2": massColumn,
	"g/cm3": unit.KilogramPerMeter3,
	"kg/m3": unit.KilogramPerMeter3,
}

// factors from the internal units to SI
var internalToSI = map[UnitClass]float64{
	Length:     1e-6, // [m um^-1]
	MassColumn: 10,   // [kg m^-2 / g cm^-2]
	Density:    1e3,  // [kg m^-3 / g cm^-3]
}

type UnitClass int

const (
	Length UnitClass = iota
	MassColumn
	Density
)

var dimensionsOfClass = map[UnitClass]unit.Dimensions{
	Length:     unit.Meter,
	MassColumn: massColumn,
	Density:    unit.KilogramPerMeter3,
}

var defaultUnits = map[UnitClass]string{
	Length:     "um",
	MassColumn: "g/cm2",
	Density:    "g/cm3",
}

// classOf finds the class whose dimensions match those of unit token u.
func classOf(u string) (UnitClass, bool) {
	dims, known := unitDimensions[u]
	if !known {
		return 0, false
	}
	for class, d := range dimensionsOfClass {
		if d.Matches(dims) {
			return class, true
		}
	}
	return 0, false
}

// checkUnits reports unknown units and units repeating a class, and fills
// the missing classes from defaultUnits.
func checkUnits(units []string) (extended, conflicts []string) {
	classes := map[UnitClass]struct{}{}
	for _, u := range units {
		class, known := classOf(u)
		if !known {
			conflicts = append(conflicts, u)
			continue
		}
		if _, some := classes[class]; some {
			conflicts = append(conflicts, u)
		} else {
			classes[class] = struct{}{}
		}
	}
	extended = append([]string(nil), units...)
	for _, class := range []UnitClass{Length, MassColumn, Density} {
		if _, some := classes[class]; !some {
			extended = append(extended, defaultUnits[class])
		}
	}
	return
}

// unitFor picks the unit of class among units.
func unitFor(class UnitClass, units []string) string {
	for _, u := range units {
		if c, known := classOf(u); known && c == class {
			return u
		}
	}
	return defaultUnits[class]
}

// toInternal converts v given in unit u to the internal unit of class. The
// dimensions of u must be those of class.
func toInternal(v float64, class UnitClass, u string) (float64, error) {
	dims, known := unitDimensions[u]
	if !known {
		return 0, fmt.Errorf("unknown unit %q", u)
	}
	q := unit.New(v*unitToInternal[u]*internalToSI[class], dims)
	if err := q.Check(dimensionsOfClass[class]); err != nil {
		return 0, fmt.Errorf("unit %q: %w", u, err)
	}
	return v * unitToInternal[u], nil
}

// Quantity returns v (in internal units of class) as an SI quantity.
func Quantity(v float64, class UnitClass) (*unit.Unit, error) {
	dims, ok := dimensionsOfClass[class]
	if !ok {
		return nil, fmt.Errorf("unknown unit class %d", class)
	}
	return unit.New(v*internalToSI[class], dims), nil
}
