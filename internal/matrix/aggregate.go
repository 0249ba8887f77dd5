// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/tomtom215/forumrec/internal/errdefs"
)

// Labels used for the single column or row of an aggregate.
const (
	RowAverageLabel    = "Row Average"
	ColumnAverageLabel = "Column Average"
	RowTotalLabel      = "Row Total"
	ColumnTotalLabel   = "Column Total"
)

// AveragesByRow returns a rows×1 matrix with the mean of the non-zero cells of
// each row. An all-zero row averages to 0.
func (m *Matrix) AveragesByRow(name string) *Matrix {
	out := alloc(m.Rows(), 1)
	for i, row := range m.data {
		out[i][0] = nonZeroMean(row)
	}
	return m.derive(name, m.rowLabels, []string{RowAverageLabel}, out)
}

// AveragesByColumn returns a 1×cols matrix with the mean of the non-zero cells
// of each column. An all-zero column averages to 0.
func (m *Matrix) AveragesByColumn(name string) *Matrix {
	out := alloc(1, m.Cols())
	col := make([]float64, m.Rows())
	for j := 0; j < m.Cols(); j++ {
		for i := range m.data {
			col[i] = m.data[i][j]
		}
		out[0][j] = nonZeroMean(col)
	}
	return m.derive(name, []string{ColumnAverageLabel}, m.colLabels, out)
}

// TotalsByRow returns a rows×1 matrix with the sum of each row.
func (m *Matrix) TotalsByRow(name string) *Matrix {
	out := alloc(m.Rows(), 1)
	for i, row := range m.data {
		out[i][0] = floats.Sum(row)
	}
	return m.derive(name, m.rowLabels, []string{RowTotalLabel}, out)
}

// TotalsByColumn returns a 1×cols matrix with the sum of each column.
func (m *Matrix) TotalsByColumn(name string) *Matrix {
	out := alloc(1, m.Cols())
	for _, row := range m.data {
		floats.Add(out[0], row)
	}
	return m.derive(name, []string{ColumnTotalLabel}, m.colLabels, out)
}

// NormalizeByRows divides each cell by its row total. totals must be rows×1,
// typically the result of TotalsByRow. A zero total yields 0 cells.
func (m *Matrix) NormalizeByRows(totals *Matrix, name string) (*Matrix, error) {
	if totals.Rows() != m.Rows() || totals.Cols() != 1 {
		return nil, fmt.Errorf("normalize %q by rows with %dx%d totals: %w",
			m.name, totals.Rows(), totals.Cols(), errdefs.ErrDimensionMismatch)
	}

	out := alloc(m.Rows(), m.Cols())
	for i, row := range m.data {
		total := totals.data[i][0]
		if total == 0 {
			continue
		}
		for j, v := range row {
			out[i][j] = v / total
		}
	}
	return m.derive(name, m.rowLabels, m.colLabels, out), nil
}

// NormalizeByColumns divides each cell by its column total. totals must be
// 1×cols, typically the result of TotalsByColumn. A zero total yields 0 cells.
func (m *Matrix) NormalizeByColumns(totals *Matrix, name string) (*Matrix, error) {
	if totals.Rows() != 1 || totals.Cols() != m.Cols() {
		return nil, fmt.Errorf("normalize %q by columns with %dx%d totals: %w",
			m.name, totals.Rows(), totals.Cols(), errdefs.ErrDimensionMismatch)
	}

	out := alloc(m.Rows(), m.Cols())
	for i, row := range m.data {
		for j, v := range row {
			if total := totals.data[0][j]; total != 0 {
				out[i][j] = v / total
			}
		}
	}
	return m.derive(name, m.rowLabels, m.colLabels, out), nil
}

// NormalizeByNumber divides every cell by n. n == 0 yields an all-zero matrix.
func (m *Matrix) NormalizeByNumber(n float64, name string) *Matrix {
	if n == 0 {
		return Zeros(name, m.rowLabels, m.colLabels)
	}
	out := alloc(m.Rows(), m.Cols())
	for i, row := range m.data {
		for j, v := range row {
			out[i][j] = v / n
		}
	}
	return m.derive(name, m.rowLabels, m.colLabels, out)
}

func nonZeroMean(values []float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if v != 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
