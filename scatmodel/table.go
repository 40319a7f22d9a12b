package scatmodel

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wildstyl3r/dustext/composition"
	"github.com/wildstyl3r/dustext/internal/utils"
	"github.com/wildstyl3r/dustext/units"
)

var tableColumns = []string{"energy (keV)", "qext", "qabs", "qsca"}

// Table serves efficiencies precomputed for one material, stored as one CSV
// file per grain radius. It carries no angular data.
type Table struct {
	Material string
	E        []float64 // [keV], increasing
	A        []float64 // [um]
	qext     [][]float64
	qabs     [][]float64
	qsca     [][]float64 // NA x NE
}

func tableFile(material string, index int) string {
	return material + "_" + strconv.Itoa(index) + ".csv"
}

// WriteTable stores eff under dir as <material>_<index>.csv, one file per
// radius in increasing order, rows by increasing energy.
func WriteTable(dir, material string, eff *Efficiencies) error {
	ne, na, _ := eff.Shape()
	e, err := units.ToKeV(eff.Lam, eff.Unit)
	if err != nil {
		return err
	}
	if len(e) != ne || len(eff.A) != na {
		return fmt.Errorf("%w: grid %dx%d, efficiencies %dx%d", ErrShapeMismatch, len(e), len(eff.A), ne, na)
	}
	order := make([]int, ne)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(x, y int) bool { return e[order[x]] < e[order[y]] })
	for j := range na {
		file, err := utils.CreateFile(dir, tableFile(material, j))
		if err != nil {
			return fmt.Errorf("unable to save efficiency table: %w", err)
		}
		data := utils.CSV{tableColumns}
		for _, i := range order {
			data = append(data, []string{
				strconv.FormatFloat(e[i], 'g', -1, 64),
				strconv.FormatFloat(eff.QExt[i][j], 'g', -1, 64),
				strconv.FormatFloat(eff.QAbs[i][j], 'g', -1, 64),
				strconv.FormatFloat(eff.QSca[i][j], 'g', -1, 64),
			})
		}
		radius := []string{"radius (um)", strconv.FormatFloat(eff.A[j], 'g', -1, 64)}
		err = utils.WriteAsCSV(file, data, radius, false)
		if cerr := file.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("unable to save efficiency table: %w", err)
		}
	}
	return nil
}

// LoadTable reads the files written by WriteTable. Files are taken in natural
// index order and must share one energy grid.
func LoadTable(dir, material string) (*Table, error) {
	matches, err := filepath.Glob(filepath.Join(dir, material+"_*.csv"))
	if err != nil {
		return nil, err
	}
	var names []string
	for _, name := range matches {
		if isTableFile(filepath.Base(name), material) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no efficiency table for %q in %s: %w", material, dir, os.ErrNotExist)
	}
	utils.NaturalSort(names)

	t := &Table{Material: material}
	for _, name := range names {
		a, e, q, err := readTableFile(name)
		if err != nil {
			return nil, err
		}
		if t.E == nil {
			t.E = e
		} else if !sameGrid(t.E, e) {
			return nil, fmt.Errorf("%w: %s energy grid differs from %s", ErrShapeMismatch, name, names[0])
		}
		t.A = append(t.A, a)
		t.qext = append(t.qext, q[0])
		t.qabs = append(t.qabs, q[1])
		t.qsca = append(t.qsca, q[2])
	}
	if !utils.StrictlyIncreasing(t.A) {
		return nil, fmt.Errorf("%w: table radii are not increasing", ErrShapeMismatch)
	}
	logrus.WithFields(logrus.Fields{
		"material": material,
		"ne":       len(t.E),
		"na":       len(t.A),
	}).Debug("loaded efficiency table")
	return t, nil
}

// isTableFile reports whether base is <material>_<index>.csv.
func isTableFile(base, material string) bool {
	index := strings.TrimSuffix(strings.TrimPrefix(base, material+"_"), ".csv")
	if index == "" {
		return false
	}
	for _, r := range index {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func readTableFile(name string) (a float64, e []float64, q [3][]float64, err error) {
	file, err := os.Open(name)
	if err != nil {
		return 0, nil, q, fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()
	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return 0, nil, q, fmt.Errorf("error reading %s: %w", name, err)
	}
	if len(rows) < 3 || len(rows[0]) != 2 {
		return 0, nil, q, fmt.Errorf("invalid format in %s: want radius row, header and data", name)
	}
	if a, err = strconv.ParseFloat(rows[0][1], 64); err != nil {
		return 0, nil, q, fmt.Errorf("error parsing radius in %s: %w", name, err)
	}
	for _, row := range rows[2:] {
		if len(row) != len(tableColumns) {
			return 0, nil, q, fmt.Errorf("invalid format in %s: row %v", name, row)
		}
		var v [4]float64
		for c := range row {
			if v[c], err = strconv.ParseFloat(row[c], 64); err != nil {
				return 0, nil, q, fmt.Errorf("error parsing float in %s: %w", name, err)
			}
		}
		e = append(e, v[0])
		for c := range q {
			q[c] = append(q[c], v[c+1])
		}
	}
	if !utils.StrictlyIncreasing(e) {
		return 0, nil, q, fmt.Errorf("%w: %s energies are not increasing", ErrShapeMismatch, name)
	}
	return a, e, q, nil
}

func sameGrid(x, y []float64) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if math.Abs(x[i]-y[i]) > 1e-9*math.Abs(x[i]) {
			return false
		}
	}
	return true
}

func (t *Table) Name() string { return "Table(" + t.Material + ")" }

// Lam returns the tabulated energy grid in keV.
func (t *Table) Lam() []float64 { return append([]float64(nil), t.E...) }

// Calculate interpolates the table in energy. The radius grid must match the
// tabulated radii and comp is not consulted.
func (t *Table) Calculate(lam []float64, unit units.Unit, a []float64, comp composition.Composition, theta []float64) (*Efficiencies, error) {
	if !sameGrid(t.A, a) {
		return nil, fmt.Errorf("%w: table has %d radii, requested %d (or values differ)", ErrShapeMismatch, len(t.A), len(a))
	}
	e, err := units.ToKeV(lam, unit)
	if err != nil {
		return nil, err
	}
	theta = defaultTheta(theta)
	eff := newEfficiencies(lam, unit, a, theta)
	for i := range e {
		for j := range a {
			var ok [3]bool
			eff.QExt[i][j], ok[0] = utils.Interp(e[i], t.E, t.qext[j])
			eff.QAbs[i][j], ok[1] = utils.Interp(e[i], t.E, t.qabs[j])
			eff.QSca[i][j], ok[2] = utils.Interp(e[i], t.E, t.qsca[j])
			if !ok[0] || !ok[1] || !ok[2] {
				return nil, fmt.Errorf("%w: %g keV not in [%g, %g]", ErrOutOfRange, e[i], t.E[0], t.E[len(t.E)-1])
			}
		}
	}
	return eff, nil
}
