// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

package metrics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordProjectionBuild tests projection rebuild counting
func TestRecordProjectionBuild(t *testing.T) {
	before := testutil.ToFloat64(ProjectionBuilds.WithLabelValues("SxT"))

	RecordProjectionBuild("SxT", 3*time.Millisecond)
	RecordProjectionBuild("SxT", time.Millisecond)

	after := testutil.ToFloat64(ProjectionBuilds.WithLabelValues("SxT"))
	if after-before != 2 {
		t.Errorf("ProjectionBuilds delta = %v, want 2", after-before)
	}
}

// TestRecordStoreLookup tests hit and miss labels
func TestRecordStoreLookup(t *testing.T) {
	hits := testutil.ToFloat64(StoreLookups.WithLabelValues("hit"))
	misses := testutil.ToFloat64(StoreLookups.WithLabelValues("miss"))

	RecordStoreLookup(true)
	RecordStoreLookup(false)
	RecordStoreLookup(false)

	if got := testutil.ToFloat64(StoreLookups.WithLabelValues("hit")) - hits; got != 1 {
		t.Errorf("hit delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(StoreLookups.WithLabelValues("miss")) - misses; got != 2 {
		t.Errorf("miss delta = %v, want 2", got)
	}
}

// TestRecordSimilarity tests pair counting
func TestRecordSimilarity(t *testing.T) {
	tests := []struct {
		name      string
		actors    int
		wantPairs float64
	}{
		{name: "no actors", actors: 0, wantPairs: 0},
		{name: "single actor has no pairs", actors: 1, wantPairs: 0},
		{name: "four actors", actors: 4, wantPairs: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(SimilarityPairs.WithLabelValues("test"))
			RecordSimilarity("test", tt.actors, time.Millisecond)
			got := testutil.ToFloat64(SimilarityPairs.WithLabelValues("test")) - before
			if got != tt.wantPairs {
				t.Errorf("pairs delta = %v, want %v", got, tt.wantPairs)
			}
		})
	}
}

// TestRecordExperiment tests the MAE gauges
func TestRecordExperiment(t *testing.T) {
	RecordExperiment("SxF", "typical", "row", 0.25, 0.125, time.Second)

	if got := testutil.ToFloat64(ExperimentMAE.WithLabelValues("SxF", "typical", "row", "all")); got != 0.25 {
		t.Errorf("mae = %v, want 0.25", got)
	}
	if got := testutil.ToFloat64(ExperimentMAE.WithLabelValues("SxF", "typical", "row", "adjusted")); got != 0.125 {
		t.Errorf("adjusted mae = %v, want 0.125", got)
	}
}

// TestWriteText tests text exposition output
func TestWriteText(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "forumrec_test_total",
		Help: "Test counter",
	})
	reg.MustRegister(counter)
	counter.Add(3)

	var buf bytes.Buffer
	if err := WriteText(&buf, reg); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "# TYPE forumrec_test_total counter") {
		t.Errorf("output missing TYPE line:\n%s", out)
	}
	if !strings.Contains(out, "forumrec_test_total 3") {
		t.Errorf("output missing sample:\n%s", out)
	}
}

// TestRecordCounters tests the remaining helpers do not panic and count
func TestRecordCounters(t *testing.T) {
	preds := testutil.ToFloat64(PredictionsTotal.WithLabelValues("typical"))
	RecordPredictions("typical", 5)
	if got := testutil.ToFloat64(PredictionsTotal.WithLabelValues("typical")) - preds; got != 5 {
		t.Errorf("predictions delta = %v, want 5", got)
	}

	recs := testutil.ToFloat64(RecommendationsRecorded)
	RecordRecommendations(2)
	if got := testutil.ToFloat64(RecommendationsRecorded) - recs; got != 2 {
		t.Errorf("recommendations delta = %v, want 2", got)
	}

	loaded := testutil.ToFloat64(RecordsLoaded.WithLabelValues("needs.txt"))
	RecordLoaded("needs.txt", 7)
	if got := testutil.ToFloat64(RecordsLoaded.WithLabelValues("needs.txt")) - loaded; got != 7 {
		t.Errorf("loaded delta = %v, want 7", got)
	}
}
