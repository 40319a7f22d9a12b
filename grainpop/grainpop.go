// Package grainpop combines grain size distributions, compositions and
// scattering models into dust populations, and mixtures of populations into
// composite dust models such as MRN.
package grainpop

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wildstyl3r/dustext/extinction"
	"github.com/wildstyl3r/dustext/internal/utils"
	"github.com/wildstyl3r/dustext/units"
)

var (
	ErrNotFound = errors.New("grain population not found")
	ErrKeys     = errors.New("invalid grain population keys")
)

// ErrNotCalculated is returned by the optical depth accessors before
// CalculateExt has succeeded.
var ErrNotCalculated = extinction.ErrNotCalculated

// GrainPop is a collection of single populations under string keys. Its
// optical depths are the sums over members.
type GrainPop struct {
	Description string
	Lam         []float64
	Unit        units.Unit
	Logger      logrus.FieldLogger

	keys    []string
	members []*SingleGrainPop
}

// New collects members under keys; nil keys default to "0", "1", ....
func New(members []*SingleGrainPop, keys []string, description string) (*GrainPop, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: no populations", ErrKeys)
	}
	if keys == nil {
		for i := range members {
			keys = append(keys, strconv.Itoa(i))
		}
	}
	if len(keys) != len(members) {
		return nil, fmt.Errorf("%w: %d keys for %d populations", ErrKeys, len(keys), len(members))
	}
	seen := map[string]struct{}{}
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrKeys, k)
		}
		seen[k] = struct{}{}
	}
	if description == "" {
		description = "Custom_GrainPopDict"
	}
	gp := &GrainPop{
		Description: description,
		Logger:      logrus.StandardLogger(),
		keys:        append([]string(nil), keys...),
		members:     append([]*SingleGrainPop(nil), members...),
	}
	for i, m := range gp.members {
		m.Description = gp.keys[i]
	}
	return gp, nil
}

func (gp *GrainPop) Keys() []string { return append([]string(nil), gp.keys...) }

func (gp *GrainPop) Len() int { return len(gp.members) }

// Get returns the member stored under key.
func (gp *GrainPop) Get(key string) (*SingleGrainPop, error) {
	for i := range gp.keys {
		if gp.keys[i] == key {
			return gp.members[i], nil
		}
	}
	return nil, fmt.Errorf("%w: key %q", ErrNotFound, key)
}

// Index returns the i-th member.
func (gp *GrainPop) Index(i int) (*SingleGrainPop, error) {
	if i < 0 || i >= len(gp.members) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrNotFound, i, len(gp.members))
	}
	return gp.members[i], nil
}

// MD is the total dust mass column [g cm^-2].
func (gp *GrainPop) MD() float64 {
	md := make([]float64, len(gp.members))
	for i, m := range gp.members {
		md[i] = m.MD
	}
	return utils.SumSlice(md)
}

// CalculateExt runs every member on the same grid. When any member fails,
// all members keep their previous results.
func (gp *GrainPop) CalculateExt(lam []float64, unit units.Unit, theta []float64) error {
	if _, err := units.ParseUnit(string(unit)); err != nil {
		return err
	}
	saved := make([]extinction.Extinction, len(gp.members))
	for i, m := range gp.members {
		saved[i] = *m.Extinction
		if err := m.CalculateExt(lam, unit, theta); err != nil {
			for j := range i {
				*gp.members[j].Extinction = saved[j]
			}
			return fmt.Errorf("population %q: %w", gp.keys[i], err)
		}
		gp.Logger.WithFields(logrus.Fields{
			"population": gp.keys[i],
			"model":      m.Scatter.Name(),
			"md":         m.MD,
		}).Debug("calculated grain population")
	}
	gp.Lam = append([]float64(nil), lam...)
	gp.Unit = unit
	return nil
}

func (gp *GrainPop) sum(field func(*SingleGrainPop) []float64) ([]float64, error) {
	if gp.Lam == nil {
		return nil, ErrNotCalculated
	}
	var r []float64
	for i, m := range gp.members {
		tau := field(m)
		if len(tau) != len(gp.Lam) {
			return nil, fmt.Errorf("%w: population %q is not on the composite grid", ErrNotCalculated, gp.keys[i])
		}
		r = utils.AddTo(r, tau)
	}
	return r, nil
}

func (gp *GrainPop) TauExt() ([]float64, error) {
	return gp.sum(func(m *SingleGrainPop) []float64 { return m.TauExt })
}

func (gp *GrainPop) TauSca() ([]float64, error) {
	return gp.sum(func(m *SingleGrainPop) []float64 { return m.TauSca })
}

func (gp *GrainPop) TauAbs() ([]float64, error) {
	return gp.sum(func(m *SingleGrainPop) []float64 { return m.TauAbs })
}

// IntDiff sums the size-integrated differential cross-sections of the
// members (NE x NTH) [ster^-1].
func (gp *GrainPop) IntDiff() ([][]float64, error) {
	if gp.Lam == nil {
		return nil, ErrNotCalculated
	}
	var r [][]float64
	for i, m := range gp.members {
		if len(m.IntDiff) != len(gp.Lam) || (len(r) > 0 && len(m.IntDiff[0]) != len(r[0])) {
			return nil, fmt.Errorf("%w: population %q is not on the composite grid", ErrNotCalculated, gp.keys[i])
		}
		if r == nil {
			r = make([][]float64, len(m.IntDiff))
		}
		for e := range m.IntDiff {
			r[e] = utils.AddTo(r[e], m.IntDiff[e])
		}
	}
	return r, nil
}

// Info describes the member under key, or every member when key is empty.
func (gp *GrainPop) Info(key string) (string, error) {
	if key != "" {
		m, err := gp.Get(key)
		if err != nil {
			return "", err
		}
		return m.Info(), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "General information for %s dust grain population", gp.Description)
	for _, m := range gp.members {
		b.WriteString("\n---\n")
		b.WriteString(m.Info())
	}
	return b.String(), nil
}
