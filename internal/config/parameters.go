package config

import (
	"errors"
	"fmt"
	"reflect"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/wildstyl3r/dustext/internal/utils"
)

var ErrConfig = errors.New("invalid configuration")

type Config struct {
	Description string
	OutputDir   string
	Unit        string
	LamMin      float64 // [Unit]
	LamMax      float64 // [Unit]
	NLam        int
	LogLam      bool
	ThetaMin    float64 // [arcsec]
	ThetaMax    float64 // [arcsec]
	NTheta      int
	Order       []string
	Populations map[string]PopulationParameters
	PopulationParameters

	InputUnits []string
	FieldUnits map[string]string // unit of one field, overriding InputUnits

	meta *toml.MetaData
}

type PopulationParameters struct {
	Dist        string
	Composition string
	Orient      string
	Model       string

	OpticalConstants     string // file of (lam, Re m, Im m) rows
	OpticalConstantsUnit string
	ScatTable            string // directory of a precomputed efficiency table
	ScatMaterial         string

	MD     float64 // [g cm^-2]
	Rho    float64 // [g cm^-3]
	Radius float64 // [um]
	AMin   float64 // [um]
	AMax   float64 // [um]
	ACut   float64 // [um]
	P      float64
	NA     int
	NFold  float64
	Log    bool
}

var defaultValues = map[string]any{
	"Dist":                 "Powerlaw",
	"Composition":          "Drude",
	"Model":                "RG",
	"OpticalConstantsUnit": "angs",
	"Orient":               "perp",
	"MD":                   1e-4,  //[g cm^-2]
	"Radius":               1.0,   //[um]
	"AMin":                 0.005, //[um]
	"AMax":                 0.3,   //[um]
	"ACut":                 0.3,   //[um]
	"P":                    3.5,
	"NA":                   100,
	"NFold":                5.0,
	"Log":                  false,
}

var globalDefaults = map[string]any{
	"Unit":     "kev",
	"LamMin":   0.3,
	"LamMax":   10.,
	"NLam":     100,
	"LogLam":   true,
	"ThetaMin": 0.,
	"ThetaMax": 0.,
	"NTheta":   1,
}

var valueUnits = map[string]UnitClass{
	"MD":     MassColumn,
	"Rho":    Density,
	"Radius": Length,
	"AMin":   Length,
	"AMax":   Length,
	"ACut":   Length,
}

// fields a population needs depending on its settings
var fieldsAnd = map[string][]string{
	"ScatTable": {"ScatMaterial"},
}

// Load decodes a TOML configuration and fills global defaults.
func Load(path string) (*Config, error) {
	var config Config
	meta, err := toml.DecodeFile(path, &config)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	config.meta = &meta
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown keys %v", ErrConfig, undecoded)
	}

	var unitsConflict []string
	config.InputUnits, unitsConflict = checkUnits(config.InputUnits)
	if len(unitsConflict) > 0 {
		return nil, fmt.Errorf("%w: found input unit conflict: %v", ErrConfig, unitsConflict)
	}
	for name, u := range config.FieldUnits {
		class, some := valueUnits[name]
		if !some {
			return nil, fmt.Errorf("%w: FieldUnits: %s takes no unit", ErrConfig, name)
		}
		if _, err := toInternal(1, class, u); err != nil {
			return nil, fmt.Errorf("%w: FieldUnits: %s: %w", ErrConfig, name, err)
		}
	}
	if len(config.Populations) == 0 {
		return nil, fmt.Errorf("%w: no populations provided", ErrConfig)
	}

	configReflect := reflect.ValueOf(&config).Elem()
	for name, value := range globalDefaults {
		if !meta.IsDefined(name) {
			configReflect.FieldByName(name).Set(reflect.ValueOf(value))
		}
	}
	return &config, nil
}

// Keys returns the population keys in configuration order: Order when given,
// otherwise natural order of the keys.
func (c *Config) Keys() ([]string, error) {
	if len(c.Order) == 0 {
		keys := make([]string, 0, len(c.Populations))
		for k := range c.Populations {
			keys = append(keys, k)
		}
		utils.NaturalSort(keys)
		return keys, nil
	}
	if len(c.Order) != len(c.Populations) {
		return nil, fmt.Errorf("%w: Order lists %d populations, %d defined", ErrConfig, len(c.Order), len(c.Populations))
	}
	for _, k := range c.Order {
		if _, ok := c.Populations[k]; !ok {
			return nil, fmt.Errorf("%w: Order names undefined population %q", ErrConfig, k)
		}
	}
	return slices.Clone(c.Order), nil
}

func (c *Config) isDefined(path ...string) bool {
	return c.meta != nil && c.meta.IsDefined(path...)
}

/*
field value priority:
1. population
2. global
3. default
*/

// Population returns the parameters of population key with globals and
// defaults filled in and values converted to internal units.
func (c *Config) Population(key string) (PopulationParameters, error) {
	p, ok := c.Populations[key]
	if !ok {
		return p, fmt.Errorf("%w: population %q not defined", ErrConfig, key)
	}
	localReflect := reflect.ValueOf(&p).Elem()
	globalReflect := reflect.ValueOf(&c.PopulationParameters).Elem()
	fieldsType := localReflect.Type()

	var discovered []string
	for i := range fieldsType.NumField() {
		name := fieldsType.Field(i).Name
		switch {
		case c.isDefined("Populations", key, name):
		case c.isDefined(name):
			localReflect.Field(i).Set(globalReflect.Field(i))
		case defaultValues[name] != nil:
			localReflect.Field(i).Set(reflect.ValueOf(defaultValues[name]))
			continue
		default:
			continue
		}
		discovered = append(discovered, name)
	}

	for _, name := range discovered {
		if class, some := valueUnits[name]; some {
			u := c.FieldUnits[name]
			if u == "" {
				u = unitFor(class, c.InputUnits)
			}
			field := localReflect.FieldByName(name)
			v, err := toInternal(field.Float(), class, u)
			if err != nil {
				return p, fmt.Errorf("%w: population %q: %s: %w", ErrConfig, key, name, err)
			}
			field.SetFloat(v)
		}
		for _, requirement := range fieldsAnd[name] {
			if !slices.Contains(discovered, requirement) {
				return p, fmt.Errorf("%w: population %q: for parameter %s requirement %s not found", ErrConfig, key, name, requirement)
			}
		}
	}
	if p.MD < 0 {
		return p, fmt.Errorf("%w: population %q: negative MD", ErrConfig, key)
	}
	return p, nil
}
