// Package dustext computes interstellar dust extinction and scattering
// optical depths for composite grain populations described by a TOML file.
package dustext

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ctessum/unit"
	"github.com/sirupsen/logrus"

	"github.com/wildstyl3r/dustext/composition"
	"github.com/wildstyl3r/dustext/extinction"
	"github.com/wildstyl3r/dustext/grainpop"
	"github.com/wildstyl3r/dustext/internal/config"
	"github.com/wildstyl3r/dustext/internal/utils"
	"github.com/wildstyl3r/dustext/sizedist"
	"github.com/wildstyl3r/dustext/units"
)

var (
	ErrComposition   = errors.New("unknown grain composition")
	ErrConfig        = config.ErrConfig
	ErrNotCalculated = grainpop.ErrNotCalculated
	ErrUnknownModel  = extinction.ErrUnknownModel
)

// Run is a composite population together with the photon and angle grids
// it is evaluated on.
type Run struct {
	Name   string
	Pop    *grainpop.GrainPop
	Lam    []float64 // [Unit]
	Unit   units.Unit
	Theta  []float64 // [arcsec]
	Output string
	Logger logrus.FieldLogger
}

// Open loads the configuration at path and builds its run.
func Open(path string) (*Run, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	r, err := Build(cfg)
	if err != nil {
		return nil, err
	}
	r.Name = utils.GetFilename(path)
	if r.Output == "" {
		r.Output = filepath.Dir(path)
	}
	return r, nil
}

// Build constructs every configured population and the grids.
func Build(cfg *config.Config) (*Run, error) {
	u, err := units.ParseUnit(cfg.Unit)
	if err != nil {
		return nil, err
	}
	if cfg.NLam < 1 || cfg.LamMin <= 0 || cfg.LamMax < cfg.LamMin {
		return nil, fmt.Errorf("%w: photon grid [%g, %g] with %d points", ErrConfig, cfg.LamMin, cfg.LamMax, cfg.NLam)
	}
	if cfg.NTheta < 1 || cfg.ThetaMin < 0 || cfg.ThetaMax < cfg.ThetaMin {
		return nil, fmt.Errorf("%w: angle grid [%g, %g] with %d points", ErrConfig, cfg.ThetaMin, cfg.ThetaMax, cfg.NTheta)
	}
	keys, err := cfg.Keys()
	if err != nil {
		return nil, err
	}

	logger := logrus.StandardLogger()
	members := make([]*grainpop.SingleGrainPop, 0, len(keys))
	for _, key := range keys {
		m, err := buildPopulation(cfg, key, logger)
		if err != nil {
			return nil, fmt.Errorf("population %q: %w", key, err)
		}
		members = append(members, m)
	}
	pop, err := grainpop.New(members, keys, cfg.Description)
	if err != nil {
		return nil, err
	}
	return &Run{
		Name:   "dustext",
		Pop:    pop,
		Lam:    utils.Grid(cfg.LamMin, cfg.LamMax, cfg.NLam, cfg.LogLam),
		Unit:   u,
		Theta:  utils.Grid(cfg.ThetaMin, cfg.ThetaMax, cfg.NTheta, false),
		Output: cfg.OutputDir,
		Logger: logger,
	}, nil
}

func buildPopulation(cfg *config.Config, key string, logger logrus.FieldLogger) (*grainpop.SingleGrainPop, error) {
	p, err := cfg.Population(key)
	if err != nil {
		return nil, err
	}
	kind, err := sizedist.ParseKind(p.Dist)
	if err != nil {
		return nil, err
	}
	size, err := sizedist.Params{
		Kind:   kind,
		Radius: p.Radius,
		AMin:   p.AMin,
		AMax:   p.AMax,
		ACut:   p.ACut,
		P:      p.P,
		NA:     p.NA,
		NFold:  p.NFold,
		Log:    p.Log,
	}.Build()
	if err != nil {
		return nil, err
	}
	comp, err := buildComposition(p)
	if err != nil {
		return nil, err
	}
	gd, err := grainpop.NewGrainDist(size, comp, p.MD)
	if err != nil {
		return nil, err
	}
	if err := logColumn(logger, key, gd); err != nil {
		return nil, err
	}
	model, err := extinction.ParseModel(p.Model)
	if err != nil {
		return nil, err
	}
	if p.ScatTable != "" {
		return grainpop.NewSingleGrainPopFromTable(gd, p.ScatTable, p.ScatMaterial, model)
	}
	return grainpop.NewSingleGrainPop(gd, model)
}

func buildComposition(p config.PopulationParameters) (composition.Composition, error) {
	if p.Composition == "Drude" {
		rho := p.Rho
		if rho == 0 {
			rho = composition.RhoDrude
		}
		return composition.NewDrude(rho), nil
	}
	if p.OpticalConstants == "" {
		return nil, fmt.Errorf("%w: %s needs OpticalConstants", ErrConfig, p.Composition)
	}
	u, err := units.ParseUnit(p.OpticalConstantsUnit)
	if err != nil {
		return nil, err
	}
	switch p.Composition {
	case "Silicate":
		return composition.Silicate(p.OpticalConstants, u)
	case "Graphite":
		return composition.Graphite(p.OpticalConstants, u, p.Orient)
	case "Table":
		if p.Rho <= 0 {
			return nil, fmt.Errorf("%w: Table composition needs Rho", ErrConfig)
		}
		return composition.LoadTable(p.OpticalConstants, utils.GetFilename(p.OpticalConstants), p.Rho, u)
	}
	return nil, fmt.Errorf("%w: %q (want Drude, Silicate, Graphite or Table)", ErrComposition, p.Composition)
}

// logColumn reports the mass column of gd and the thickness of the solid
// slab it would make.
func logColumn(logger logrus.FieldLogger, key string, gd *grainpop.GrainDist) error {
	md, err := config.Quantity(gd.MD, config.MassColumn)
	if err != nil {
		return err
	}
	rho, err := config.Quantity(gd.Rho(), config.Density)
	if err != nil {
		return err
	}
	slab := unit.Div(md, rho)
	logger.WithFields(logrus.Fields{
		"population":  key,
		"composition": gd.Comp.Name(),
		"dist":        gd.Size.Name(),
		"md":          fmt.Sprintf("%.3g", md),
		"slab":        fmt.Sprintf("%.3g", slab),
	}).Debug("grain population built")
	return nil
}

// Calculate evaluates every population on the run grids.
func (r *Run) Calculate() error {
	r.Logger.WithFields(logrus.Fields{
		"run":  r.Name,
		"ne":   len(r.Lam),
		"nth":  len(r.Theta),
		"pops": r.Pop.Len(),
	}).Info("calculating extinction")
	return r.Pop.CalculateExt(r.Lam, r.Unit, r.Theta)
}
