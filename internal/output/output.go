// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

// Package output writes matrices, predictions and reports produced by a run.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/forumrec/internal/matrix"
)

// MatrixDocument is the JSON form of a matrix.
type MatrixDocument struct {
	Name      string      `json:"name"`
	Rows      int         `json:"rows"`
	Cols      int         `json:"cols"`
	RowLabels []string    `json:"row_labels"`
	ColLabels []string    `json:"col_labels"`
	Data      [][]float64 `json:"data"`
}

// NewMatrixDocument converts m to its JSON form. Data is copied.
func NewMatrixDocument(m *matrix.Matrix) MatrixDocument {
	data := make([][]float64, m.Rows())
	for i := range data {
		data[i] = m.Row(i)
	}
	return MatrixDocument{
		Name:      m.Name(),
		Rows:      m.Rows(),
		Cols:      m.Cols(),
		RowLabels: m.RowLabels(),
		ColLabels: m.ColLabels(),
		Data:      data,
	}
}

// PredictionRow is one predicted score in report form.
type PredictionRow struct {
	Actor string  `json:"actor"`
	Group string  `json:"group"`
	Rank  int     `json:"rank"`
	Score float64 `json:"score"`
}

// ExperimentRow summarizes one architecture, normalization, formula and
// neighbor count.
type ExperimentRow struct {
	Architecture  string  `json:"architecture"`
	Normalization string  `json:"normalization,omitempty"`
	Formula       string  `json:"formula"`
	Neighbors     int     `json:"neighbors"`
	Count         int     `json:"count"`
	Recommended   int     `json:"recommended"`
	MAE           float64 `json:"mae"`
	AdjustedCount int     `json:"adjusted_count"`
	AdjustedMAE   float64 `json:"adjusted_mae"`
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteMatrixCSV writes m as comma-separated values. The header holds the
// matrix name followed by the column labels; each row starts with its label.
func WriteMatrixCSV(w io.Writer, m *matrix.Matrix) error {
	cw := csv.NewWriter(w)
	header := append([]string{m.Name()}, m.ColLabels()...)
	if err := cw.Write(header); err != nil {
		return err
	}
	record := make([]string, m.Cols()+1)
	for i := 0; i < m.Rows(); i++ {
		record[0] = m.RowLabel(i)
		for j := 0; j < m.Cols(); j++ {
			record[j+1] = formatFloat(m.At(i, j))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMatrixJSON writes m as an indented MatrixDocument.
func WriteMatrixJSON(w io.Writer, m *matrix.Matrix) error {
	return WriteJSON(w, NewMatrixDocument(m))
}

// WritePredictionsCSV writes one "actor,group,rank,score" line per row.
func WritePredictionsCSV(w io.Writer, rows []PredictionRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"actor", "group", "rank", "score"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Actor, r.Group, strconv.Itoa(r.Rank), formatFloat(r.Score)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteExperimentCSV writes one line per row, in the order given.
func WriteExperimentCSV(w io.Writer, rows []ExperimentRow) error {
	cw := csv.NewWriter(w)
	header := []string{"architecture", "normalization", "formula", "neighbors", "count", "recommended", "mae", "adjusted_count", "adjusted_mae"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Architecture,
			r.Normalization,
			r.Formula,
			strconv.Itoa(r.Neighbors),
			strconv.Itoa(r.Count),
			strconv.Itoa(r.Recommended),
			formatFloat(r.MAE),
			strconv.Itoa(r.AdjustedCount),
			formatFloat(r.AdjustedMAE),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %T: %w", v, err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// Dir writes named files into an output directory.
type Dir struct {
	path string
}

// NewDir creates path if needed and returns a Dir writing into it.
func NewDir(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Dir{path: path}, nil
}

// Path returns the directory path.
func (d *Dir) Path() string { return d.path }

// WriteFile creates name in the directory and passes it to write. The file is
// written to a temporary name first and renamed once write succeeds.
func (d *Dir) WriteFile(name string, write func(io.Writer) error) (err error) {
	target := filepath.Join(d.path, name)
	f, err := os.CreateTemp(d.path, "."+name+".*")
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = write(f); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err = os.Rename(f.Name(), target); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

// WriteMatrix writes m as <name>.csv and <name>.json.
func (d *Dir) WriteMatrix(m *matrix.Matrix) error {
	if err := d.WriteFile(m.Name()+".csv", func(w io.Writer) error { return WriteMatrixCSV(w, m) }); err != nil {
		return err
	}
	return d.WriteFile(m.Name()+".json", func(w io.Writer) error { return WriteMatrixJSON(w, m) })
}
