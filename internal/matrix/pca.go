// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

package matrix

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/forumrec/internal/errdefs"
)

// ComponentLabelPrefix names the synthetic columns of a compressed matrix.
const ComponentLabelPrefix = "PrincipalComponent"

// PCAResult is the full principal component decomposition of a matrix.
type PCAResult struct {
	// Means holds the column means subtracted before decomposition.
	Means []float64

	// Eigenvalues of the covariance matrix, descending, one per column.
	// Entries at or beyond Rank are zero.
	Eigenvalues []float64

	// Rank is min(rows-1, cols).
	Rank int

	// Loadings is cols×cols; column k is the k-th principal axis.
	Loadings *mat.Dense

	// Scores is rows×cols, the centered data projected onto every axis.
	// Columns at or beyond Rank are zero.
	Scores *mat.Dense
}

// PCA centers the columns of m, scales the centered data by 1/sqrt(rows-1) and
// takes its singular value decomposition. The covariance eigenvalues are the
// squared singular values. At least two rows and one column are required.
func (m *Matrix) PCA() (*PCAResult, error) {
	rows, cols := m.Rows(), m.Cols()
	if rows < 2 || cols < 1 {
		return nil, fmt.Errorf("pca of %q needs at least 2 rows and 1 column, got %dx%d: %w",
			m.name, rows, cols, errdefs.ErrInvalidArgument)
	}

	x := m.dense()
	means := make([]float64, cols)
	for j := range means {
		means[j] = stat.Mean(mat.Col(nil, j, x), nil)
	}

	centered := mat.NewDense(rows, cols, nil)
	centered.Apply(func(_, j int, v float64) float64 { return v - means[j] }, x)

	var scaled mat.Dense
	scaled.Scale(1/math.Sqrt(float64(rows-1)), centered)

	var svd mat.SVD
	if ok := svd.Factorize(&scaled, mat.SVDFull); !ok {
		return nil, fmt.Errorf("pca of %q: singular value decomposition did not converge: %w",
			m.name, errdefs.ErrInvalidArgument)
	}
	values := svd.Values(nil)

	var loadings mat.Dense
	svd.VTo(&loadings)

	rank := min(rows-1, cols)
	eigen := make([]float64, cols)
	for i := 0; i < rank && i < len(values); i++ {
		eigen[i] = values[i] * values[i]
	}

	scores := mat.NewDense(rows, cols, nil)
	scores.Mul(centered, &loadings)
	for j := rank; j < cols; j++ {
		for i := 0; i < rows; i++ {
			scores.Set(i, j, 0)
		}
	}

	return &PCAResult{
		Means:       means,
		Eigenvalues: eigen,
		Rank:        rank,
		Loadings:    &loadings,
		Scores:      scores,
	}, nil
}

// TotalVariance is the sum of all eigenvalues.
func (p *PCAResult) TotalVariance() float64 {
	return floats.Sum(p.Eigenvalues)
}

// ExplainedVariance returns each component's share of the total variance.
// A zero-variance decomposition returns all zeros.
func (p *PCAResult) ExplainedVariance() []float64 {
	out := make([]float64, len(p.Eigenvalues))
	total := p.TotalVariance()
	if total <= 0 {
		return out
	}
	for i, v := range p.Eigenvalues {
		out[i] = v / total
	}
	return out
}

// ComponentsFor returns the smallest number of leading components whose
// cumulative explained variance reaches target. It never returns less than 1.
func (p *PCAResult) ComponentsFor(target float64) int {
	total := p.TotalVariance()
	if total <= 0 {
		return 1
	}

	n := 0
	cumulative := 0.0
	for cumulative < target && n < len(p.Eigenvalues) {
		cumulative += p.Eigenvalues[n] / total
		n++
	}
	return max(n, 1)
}

// CompressByPCA projects m onto the leading principal components that explain
// at least targetVariance of its variance. targetVariance must lie in (0, 1].
// Row labels are kept; columns are named PrincipalComponent1, PrincipalComponent2, ...
func (m *Matrix) CompressByPCA(targetVariance float64, name string) (*Matrix, error) {
	if !(targetVariance > 0 && targetVariance <= 1) {
		return nil, fmt.Errorf("pca target variance %v outside (0, 1]: %w",
			targetVariance, errdefs.ErrInvalidArgument)
	}

	res, err := m.PCA()
	if err != nil {
		return nil, err
	}

	k := res.ComponentsFor(targetVariance)
	out := alloc(m.Rows(), k)
	labels := make([]string, k)
	for j := 0; j < k; j++ {
		labels[j] = ComponentLabelPrefix + strconv.Itoa(j+1)
		for i := 0; i < m.Rows(); i++ {
			out[i][j] = res.Scores.At(i, j)
		}
	}
	return m.derive(name, m.rowLabels, labels, out), nil
}
