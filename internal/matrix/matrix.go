// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

// Package matrix provides the named, labeled dense matrix used by every
// projection, similarity and prediction in forumrec.
//
// A Matrix is a value object. Every derivation (Transpose, Mul, NormalizeByRows,
// ConvertToBinary, CompressByPCA, ...) returns a new Matrix under a caller-chosen
// name and leaves the receiver untouched. The only way to mutate a Matrix in
// place is the Raw escape hatch; callers that use it own the consistency of
// whatever they changed.
//
// Zero cells mean "no observation". Aggregations (AveragesByRow, TotalsByRow
// and their column variants) skip them, and division by a zero total yields 0
// instead of NaN or Inf.
//
// Heavy linear algebra (products, SVD) is delegated to gonum.
package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/forumrec/internal/errdefs"
)

// Matrix is a named 2-D array of float64 with one label per row and column.
type Matrix struct {
	name      string
	data      [][]float64
	rowLabels []string
	colLabels []string
}

// New creates a Matrix holding a copy of data.
// len(rowLabels) must equal len(data) and every row must have len(colLabels)
// cells, otherwise ErrDimensionMismatch is returned.
func New(name string, data [][]float64, rowLabels, colLabels []string) (*Matrix, error) {
	if len(data) != len(rowLabels) {
		return nil, fmt.Errorf("matrix %q: %d rows but %d row labels: %w",
			name, len(data), len(rowLabels), errdefs.ErrDimensionMismatch)
	}
	for i, row := range data {
		if len(row) != len(colLabels) {
			return nil, fmt.Errorf("matrix %q: row %d has %d cells but %d column labels: %w",
				name, i, len(row), len(colLabels), errdefs.ErrDimensionMismatch)
		}
	}

	cp := make([][]float64, len(data))
	for i, row := range data {
		cp[i] = append([]float64(nil), row...)
	}
	return &Matrix{
		name:      name,
		data:      cp,
		rowLabels: append([]string(nil), rowLabels...),
		colLabels: append([]string(nil), colLabels...),
	}, nil
}

// Zeros creates an all-zero Matrix shaped by its labels.
func Zeros(name string, rowLabels, colLabels []string) *Matrix {
	return &Matrix{
		name:      name,
		data:      alloc(len(rowLabels), len(colLabels)),
		rowLabels: append([]string(nil), rowLabels...),
		colLabels: append([]string(nil), colLabels...),
	}
}

// alloc returns a zeroed rows×cols array backed by one contiguous slice.
func alloc(rows, cols int) [][]float64 {
	backing := make([]float64, rows*cols)
	data := make([][]float64, rows)
	for i := range data {
		data[i] = backing[i*cols : (i+1)*cols : (i+1)*cols]
	}
	return data
}

// derive builds a new Matrix that shares no storage with m.
func (m *Matrix) derive(name string, rowLabels, colLabels []string, data [][]float64) *Matrix {
	return &Matrix{
		name:      name,
		data:      data,
		rowLabels: append([]string(nil), rowLabels...),
		colLabels: append([]string(nil), colLabels...),
	}
}

// Name returns the matrix name.
func (m *Matrix) Name() string { return m.name }

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return len(m.rowLabels) }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return len(m.colLabels) }

// At returns the cell at (i, j). It panics if either index is out of range.
func (m *Matrix) At(i, j int) float64 { return m.data[i][j] }

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 { return append([]float64(nil), m.data[i]...) }

// RowLabel returns the label of row i.
func (m *Matrix) RowLabel(i int) string { return m.rowLabels[i] }

// ColLabel returns the label of column j.
func (m *Matrix) ColLabel(j int) string { return m.colLabels[j] }

// RowLabels returns a copy of the row labels.
func (m *Matrix) RowLabels() []string { return append([]string(nil), m.rowLabels...) }

// ColLabels returns a copy of the column labels.
func (m *Matrix) ColLabels() []string { return append([]string(nil), m.colLabels...) }

// Raw exposes the backing array. Writes through it mutate m in place.
func (m *Matrix) Raw() [][]float64 { return m.data }

// Clone returns a deep copy of m under a new name.
func (m *Matrix) Clone(name string) *Matrix {
	out := alloc(m.Rows(), m.Cols())
	for i := range m.data {
		copy(out[i], m.data[i])
	}
	return m.derive(name, m.rowLabels, m.colLabels, out)
}

// Equal reports whether o has the same shape and every cell differs by at most tol.
// Names and labels are not compared.
func (m *Matrix) Equal(o *Matrix, tol float64) bool {
	if o == nil || m.Rows() != o.Rows() || m.Cols() != o.Cols() {
		return false
	}
	for i := range m.data {
		for j := range m.data[i] {
			if math.Abs(m.data[i][j]-o.data[i][j]) > tol {
				return false
			}
		}
	}
	return true
}

// Scale multiplies every cell by s.
func (m *Matrix) Scale(s float64, name string) *Matrix {
	out := alloc(m.Rows(), m.Cols())
	for i, row := range m.data {
		for j, v := range row {
			out[i][j] = v * s
		}
	}
	return m.derive(name, m.rowLabels, m.colLabels, out)
}

// Mul returns the matrix product m × o. The result keeps m's row labels and
// o's column labels. m.Cols() must equal o.Rows().
func (m *Matrix) Mul(o *Matrix, name string) (*Matrix, error) {
	if m.Cols() != o.Rows() {
		return nil, fmt.Errorf("multiply %q (%dx%d) by %q (%dx%d): %w",
			m.name, m.Rows(), m.Cols(), o.name, o.Rows(), o.Cols(), errdefs.ErrDimensionMismatch)
	}
	if m.Rows() == 0 || o.Cols() == 0 || m.Cols() == 0 {
		// gonum refuses zero-sized dense matrices
		return Zeros(name, m.rowLabels, o.colLabels), nil
	}

	var product mat.Dense
	product.Mul(m.dense(), o.dense())
	return m.derive(name, m.rowLabels, o.colLabels, fromDense(&product)), nil
}

// Transpose swaps rows and columns along with their labels.
func (m *Matrix) Transpose(name string) *Matrix {
	out := alloc(m.Cols(), m.Rows())
	for i, row := range m.data {
		for j, v := range row {
			out[j][i] = v
		}
	}
	return m.derive(name, m.colLabels, m.rowLabels, out)
}

// ConvertToBinary maps every cell to 1 when it is >= threshold and 0 otherwise.
func (m *Matrix) ConvertToBinary(threshold float64, name string) *Matrix {
	out := alloc(m.Rows(), m.Cols())
	for i, row := range m.data {
		for j, v := range row {
			if v >= threshold {
				out[i][j] = 1
			}
		}
	}
	return m.derive(name, m.rowLabels, m.colLabels, out)
}

// MaxNumber returns the largest cell value, which may be negative.
// An empty matrix yields -Inf.
func (m *Matrix) MaxNumber() float64 {
	maxValue := math.Inf(-1)
	for _, row := range m.data {
		for _, v := range row {
			if v > maxValue {
				maxValue = v
			}
		}
	}
	return maxValue
}

// dense copies m into a gonum matrix. m must not be empty.
func (m *Matrix) dense() *mat.Dense {
	r, c := m.Rows(), m.Cols()
	flat := make([]float64, 0, r*c)
	for _, row := range m.data {
		flat = append(flat, row...)
	}
	return mat.NewDense(r, c, flat)
}

// fromDense copies a gonum matrix into a fresh array.
func fromDense(d mat.Matrix) [][]float64 {
	r, c := d.Dims()
	out := alloc(r, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out[i][j] = d.At(i, j)
		}
	}
	return out
}
