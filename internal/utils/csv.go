package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/facette/natsort"
)

type CSV [][]string

func (data CSV) Less(i, j int) bool {
	return natsort.Compare(data[i][0], data[j][0])
}

func (data CSV) Len() int {
	return len(data)
}
func (data CSV) Swap(i, j int) {
	data[i], data[j] = data[j], data[i]
}

// NaturalSort orders names so that embedded integers compare numerically
// ("sil_2" before "sil_10").
func NaturalSort(names []string) {
	sort.Slice(names, func(i, j int) bool {
		return natsort.Compare(names[i], names[j])
	})
}

// WriteAsCSV writes the header row followed by data. Rows are ordered
// naturally by their first column when sorted is set.
func WriteAsCSV(w io.Writer, data CSV, columns []string, sorted bool) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("error writing csv header: %w", err)
	}
	if sorted {
		sort.Sort(data)
	}
	if err := cw.WriteAll(data); err != nil {
		return fmt.Errorf("error writing csv: %w", err)
	}
	return nil
}
