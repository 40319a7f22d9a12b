package utils

import (
	"math"
	"slices"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

type Number interface {
	constraints.Float | constraints.Integer
}

func SumSlice[T Number](arr []T) (r T) {
	for i := range arr {
		r += arr[i]
	}
	return
}

// AddTo adds s element-wise into dst, allocating dst when it is nil.
func AddTo[T Number](dst, s []T) []T {
	if dst == nil {
		dst = make([]T, len(s))
	}
	for i := range s {
		dst[i] += s[i]
	}
	return dst
}

// Trapz integrates f sampled on the non-uniform grid x with the composite
// trapezoidal rule.
func Trapz(x, f []float64) float64 {
	return integrate.Trapezoidal(x, f)
}

// Grid returns n points spanning [lo, hi], logarithmically spaced when log
// is set. A single point grid is {lo}.
func Grid(lo, hi float64, n int, log bool) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	dst := make([]float64, n)
	if log {
		return floats.LogSpan(dst, lo, hi)
	}
	return floats.Span(dst, lo, hi)
}

func StrictlyIncreasing(s []float64) bool {
	for i := 1; i < len(s); i++ {
		if !(s[i] > s[i-1]) {
			return false
		}
	}
	return true
}

func Zeros2D(n, m int) [][]float64 {
	r := make([][]float64, n)
	for i := range r {
		r[i] = make([]float64, m)
	}
	return r
}

func Zeros3D(n, m, k int) [][][]float64 {
	r := make([][][]float64, n)
	for i := range r {
		r[i] = Zeros2D(m, k)
	}
	return r
}

// Interp linearly interpolates (xp, fp) at x; xp must be increasing. ok is
// false when x falls outside [xp[0], xp[len-1]].
func Interp(x float64, xp, fp []float64) (y float64, ok bool) {
	n := len(xp)
	if n == 0 || x < xp[0] || x > xp[n-1] {
		return 0, false
	}
	if n == 1 {
		return fp[0], true
	}
	i, found := slices.BinarySearch(xp, x)
	if found {
		return fp[i], true
	}
	t := (x - xp[i-1]) / (xp[i] - xp[i-1])
	return math.FMA(t, fp[i]-fp[i-1], fp[i-1]), true
}
