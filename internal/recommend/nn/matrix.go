// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package nn

import (
	"math"
	"math/rand"
)

// Matrix is a dense row-major matrix backed by one contiguous slice.
type Matrix struct {
	Rows int
	Cols int
	Data []float64
}

// NewMatrix allocates a zeroed rows x cols matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// Row returns row i as a slice aliasing the matrix storage.
func (m *Matrix) Row(i int) []float64 {
	return m.Data[i*m.Cols : (i+1)*m.Cols]
}

// Set assigns element (i, j).
func (m *Matrix) Set(i, j int, v float64) {
	m.Data[i*m.Cols+j] = v
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	c := NewMatrix(m.Rows, m.Cols)
	copy(c.Data, m.Data)
	return c
}

// Zero sets every element to 0.
func (m *Matrix) Zero() {
	clear(m.Data)
}

// AddInPlace adds o element-wise into m. Shapes must match.
func (m *Matrix) AddInPlace(o *Matrix) {
	for i, v := range o.Data {
		m.Data[i] += v
	}
}

// FillNormal draws every element from N(0, std^2).
func (m *Matrix) FillNormal(rng *rand.Rand, std float64) {
	for i := range m.Data {
		m.Data[i] = rng.NormFloat64() * std
	}
}

// FillUniform draws every element from U(-bound, bound).
func (m *Matrix) FillUniform(rng *rand.Rand, bound float64) {
	for i := range m.Data {
		m.Data[i] = (rng.Float64()*2 - 1) * bound
	}
}

// AllFinite reports whether no element is NaN or infinite.
func (m *Matrix) AllFinite() bool {
	for _, v := range m.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Dot returns the inner product of two equal-length vectors.
func Dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// Axpy computes y += alpha * x.
func Axpy(alpha float64, x, y []float64) {
	for i := range x {
		y[i] += alpha * x[i]
	}
}

// MulABt accumulates dst += A * B^T, where A is n x k, B is m x k and dst is n x m.
func MulABt(dst, a, b *Matrix) {
	for i := 0; i < a.Rows; i++ {
		ar := a.Row(i)
		dr := dst.Row(i)
		for j := 0; j < b.Rows; j++ {
			dr[j] += Dot(ar, b.Row(j))
		}
	}
}

// MulAtB accumulates dst += A^T * B, where A is n x m, B is n x k and dst is m x k.
func MulAtB(dst, a, b *Matrix) {
	for r := 0; r < a.Rows; r++ {
		ar := a.Row(r)
		br := b.Row(r)
		for i, av := range ar {
			if av == 0 {
				continue
			}
			Axpy(av, br, dst.Row(i))
		}
	}
}

// MulAB accumulates dst += A * B, where A is n x m, B is m x k and dst is n x k.
func MulAB(dst, a, b *Matrix) {
	for i := 0; i < a.Rows; i++ {
		ar := a.Row(i)
		dr := dst.Row(i)
		for j, av := range ar {
			if av == 0 {
				continue
			}
			Axpy(av, b.Row(j), dr)
		}
	}
}
