package dustext

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/wildstyl3r/dustext/grainpop"
	"github.com/wildstyl3r/dustext/internal/utils"
)

type outputItem struct {
	fileSuffix  string
	columnNames func(r *Run) []string
	values      func(r *Run) (args []float64, values [][]float64, err error)
}

var outputs = map[string]outputItem{
	"Optical depth": {
		fileSuffix: "tau",
		columnNames: func(r *Run) []string {
			return []string{r.Unit.Label(), "tau_ext", "tau_sca", "tau_abs"}
		},
		values: func(r *Run) (args []float64, values [][]float64, err error) {
			values, err = columns(r.Pop.TauExt, r.Pop.TauSca, r.Pop.TauAbs)
			return r.Lam, values, err
		},
	},
	"Integrated differential cross-section": {
		fileSuffix: "int_diff",
		columnNames: func(r *Run) []string {
			names := []string{r.Unit.Label() + " \\ theta (arcsec)"}
			for _, th := range r.Theta {
				names = append(names, strconv.FormatFloat(th, 'g', -1, 64))
			}
			return names
		},
		values: func(r *Run) (args []float64, values [][]float64, err error) {
			values, err = r.Pop.IntDiff()
			return r.Lam, values, err
		},
	},
	"Optical depth by population": {
		fileSuffix: "tau_ext_pops",
		columnNames: func(r *Run) []string {
			return append([]string{r.Unit.Label()}, r.Pop.Keys()...)
		},
		values: func(r *Run) (args []float64, values [][]float64, err error) {
			var getters []func() ([]float64, error)
			for _, key := range r.Pop.Keys() {
				m, err := r.Pop.Get(key)
				if err != nil {
					return nil, nil, err
				}
				getters = append(getters, memberTau(m))
			}
			values, err = columns(getters...)
			return r.Lam, values, err
		},
	},
}

func memberTau(m *grainpop.SingleGrainPop) func() ([]float64, error) {
	return func() ([]float64, error) {
		if m.TauExt == nil {
			return nil, grainpop.ErrNotCalculated
		}
		return m.TauExt, nil
	}
}

// columns turns per-quantity series into rows.
func columns(series ...func() ([]float64, error)) ([][]float64, error) {
	var rows [][]float64
	for j, s := range series {
		col, err := s()
		if err != nil {
			return nil, err
		}
		if rows == nil {
			rows = make([][]float64, len(col))
			for i := range rows {
				rows[i] = make([]float64, len(series))
			}
		}
		for i := range col {
			rows[i][j] = col[i]
		}
	}
	return rows, nil
}

// Save writes every output table of a calculated run into r.Output as
// <name>_<suffix>.csv and returns the written file names.
func (r *Run) Save() ([]string, error) {
	var saved []string
	for name, output := range outputs {
		args, values, err := output.values(r)
		if err != nil {
			return saved, fmt.Errorf("unable to save %s: %w", name, err)
		}
		rows := make(utils.CSV, len(args))
		for x := range args {
			row := []string{strconv.FormatFloat(args[x], 'g', -1, 64)}
			for _, v := range values[x] {
				row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
			}
			rows[x] = row
		}
		fileName := r.Name + "_" + output.fileSuffix + ".csv"
		file, err := utils.CreateFile(r.Output, fileName)
		if err != nil {
			return saved, fmt.Errorf("unable to save %s: %w", name, err)
		}
		err = utils.WriteAsCSV(file, rows, output.columnNames(r), false)
		if cerr := file.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return saved, fmt.Errorf("unable to save %s: %w", name, err)
		}
		r.Logger.WithFields(logrus.Fields{"output": name, "file": fileName}).Debug("saved")
		saved = append(saved, fileName)
	}
	utils.NaturalSort(saved)
	return saved, nil
}
