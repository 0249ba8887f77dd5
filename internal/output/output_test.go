// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

package output

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/forumrec/internal/matrix"
)

func testMatrix(t *testing.T) *matrix.Matrix {
	t.Helper()
	m, err := matrix.New("run_SxF", [][]float64{{1, 0.25}, {0, 3}}, []string{"s1", "s2"}, []string{"f1", "f2"})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestWriteMatrixCSV(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := WriteMatrixCSV(&buf, testMatrix(t)); err != nil {
		t.Fatalf("WriteMatrixCSV() error = %v", err)
	}
	want := "run_SxF,f1,f2\ns1,1,0.25\ns2,0,3\n"
	if buf.String() != want {
		t.Errorf("WriteMatrixCSV() = %q, want %q", buf.String(), want)
	}
}

func TestWriteMatrixJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := WriteMatrixJSON(&buf, testMatrix(t)); err != nil {
		t.Fatalf("WriteMatrixJSON() error = %v", err)
	}

	var doc MatrixDocument
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if doc.Name != "run_SxF" || doc.Rows != 2 || doc.Cols != 2 {
		t.Errorf("doc = %+v", doc)
	}
	if doc.RowLabels[1] != "s2" || doc.ColLabels[0] != "f1" || doc.Data[0][1] != 0.25 {
		t.Errorf("doc labels/data = %v %v %v", doc.RowLabels, doc.ColLabels, doc.Data)
	}
}

func TestWritePredictionsCSV(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	rows := []PredictionRow{
		{Actor: "s1", Group: "f2", Rank: 1, Score: 0.75},
		{Actor: "s1", Group: "f3", Rank: 2, Score: -0.5},
	}
	if err := WritePredictionsCSV(&buf, rows); err != nil {
		t.Fatalf("WritePredictionsCSV() error = %v", err)
	}
	want := "actor,group,rank,score\ns1,f2,1,0.75\ns1,f3,2,-0.5\n"
	if buf.String() != want {
		t.Errorf("WritePredictionsCSV() = %q, want %q", buf.String(), want)
	}
}

func TestWriteExperimentCSV(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	rows := []ExperimentRow{
		{Architecture: "SxF", Normalization: "row", Formula: "typical", Neighbors: 5, Count: 11, Recommended: 11, MAE: 0.5, AdjustedCount: 4, AdjustedMAE: 0.25},
		{Architecture: "SxF", Formula: "bin_iii", Neighbors: 10},
	}
	if err := WriteExperimentCSV(&buf, rows); err != nil {
		t.Fatalf("WriteExperimentCSV() error = %v", err)
	}
	want := "architecture,normalization,formula,neighbors,count,recommended,mae,adjusted_count,adjusted_mae\n" +
		"SxF,row,typical,5,11,11,0.5,4,0.25\n" +
		"SxF,,bin_iii,10,0,0,0,0,0\n"
	if buf.String() != want {
		t.Errorf("WriteExperimentCSV() = %q, want %q", buf.String(), want)
	}
}

func TestDir(t *testing.T) {
	t.Parallel()
	root := filepath.Join(t.TempDir(), "nested", "out")
	d, err := NewDir(root)
	if err != nil {
		t.Fatalf("NewDir() error = %v", err)
	}
	if d.Path() != root {
		t.Errorf("Path() = %q, want %q", d.Path(), root)
	}

	if err := d.WriteMatrix(testMatrix(t)); err != nil {
		t.Fatalf("WriteMatrix() error = %v", err)
	}
	for _, name := range []string{"run_SxF.csv", "run_SxF.json"} {
		if _, err := os.Stat(filepath.Join(root, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}

	boom := errors.New("boom")
	err = d.WriteFile("report.json", func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("WriteFile() error = %v, want boom", err)
	}
	entries, _ := os.ReadDir(root)
	if len(entries) != 2 {
		t.Errorf("directory has %d entries after failed write, want 2", len(entries))
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := WriteJSON(&buf, map[string]int{"a": 1}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "{\n  \"a\": 1\n}\n" {
		t.Errorf("WriteJSON() = %q", buf.String())
	}
	if err := WriteJSON(&buf, make(chan int)); err == nil {
		t.Error("WriteJSON(chan) error = nil")
	}
}
