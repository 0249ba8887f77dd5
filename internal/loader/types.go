// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

package loader

import (
	"fmt"
	"time"
)

// Input file names, in load order.
const (
	StakeholdersFile         = "stakeholders.txt"
	ForumsFile               = "forums.txt"
	NeedsFile                = "needs.txt"
	RatingsFile              = "ratings.txt"
	NeedsOfForumsFile        = "needsofforums.txt"
	StakeholdersOfForumsFile = "stakeholdersofforums.txt"
	RecommendationsFile      = "recommendations.txt"
)

// FileStats holds statistics about one loaded file.
type FileStats struct {
	// Name is the file name within the input directory.
	Name string `json:"name"`

	// Rows is the number of records added to the catalog.
	Rows int `json:"rows"`

	// Defaulted is the number of records whose kind column was not
	// recognized and fell back to the default kind.
	Defaulted int `json:"defaulted,omitempty"`

	// Missing is set when an optional file was absent.
	Missing bool `json:"missing,omitempty"`
}

// Summary holds statistics about a load operation.
type Summary struct {
	Dir       string      `json:"dir"`
	Files     []FileStats `json:"files"`
	StartTime time.Time   `json:"start_time"`
	EndTime   time.Time   `json:"end_time"`
}

// Duration returns the duration of the load.
func (s *Summary) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// Rows returns the number of records loaded from name, or 0.
func (s *Summary) Rows(name string) int {
	for _, f := range s.Files {
		if f.Name == name {
			return f.Rows
		}
	}
	return 0
}

// Total returns the number of records loaded from every file.
func (s *Summary) Total() int {
	n := 0
	for _, f := range s.Files {
		n += f.Rows
	}
	return n
}

// ParseError reports a malformed or rejected input row.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
