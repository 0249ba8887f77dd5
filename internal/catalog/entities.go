// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

package catalog

import (
	"fmt"
	"strings"

	"github.com/tomtom215/forumrec/internal/errdefs"
)

// Actor is a participant (a stakeholder) with ratings and group memberships.
type Actor struct {
	ID          string `json:"id"`
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ContentUnit is a textual item (a need) authored by an actor.
type ContentUnit struct {
	ID     string `json:"id"`
	Index  int    `json:"index"`
	Author int    `json:"author"` // actor index
	Text   string `json:"text"`
}

// Term is a normalized word extracted from content text. Its ID is its text.
type Term struct {
	ID    string `json:"id"`
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Group is a forum that content units and actors belong to with a score.
type Group struct {
	ID    string `json:"id"`
	Index int    `json:"index"`
	Title string `json:"title"`
}

// Rating links one actor to one content unit.
type Rating struct {
	ID      string     `json:"id"`
	Index   int        `json:"index"`
	Kind    RatingKind `json:"kind"`
	Value   float64    `json:"value"`
	Actor   int        `json:"actor"`
	Content int        `json:"content"`
}

// Recommendation links one actor to one group.
type Recommendation struct {
	ID     string          `json:"id"`
	Index  int             `json:"index"`
	Kind   RecommenderKind `json:"kind"`
	Reason string          `json:"reason"`
	Value  float64         `json:"value"`
	Actor  int             `json:"actor"`
	Group  int             `json:"group"`
}

// RatingKind is how an actor engaged with a content unit.
type RatingKind int

// Rating kinds.
const (
	RatingCreator RatingKind = iota
	RatingCommenter
	RatingVoter
)

var ratingKindNames = [...]string{"Creator", "Commenter", "Voter"}

// String returns the kind's name.
func (k RatingKind) String() string {
	if k < 0 || int(k) >= len(ratingKindNames) {
		return fmt.Sprintf("RatingKind(%d)", int(k))
	}
	return ratingKindNames[k]
}

// ParseRatingKind parses a kind name case-insensitively.
func ParseRatingKind(s string) (RatingKind, error) {
	for i, name := range ratingKindNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return RatingKind(i), nil
		}
	}
	return RatingCreator, fmt.Errorf("rating kind %q: %w", s, errdefs.ErrInvalidArgument)
}

// MarshalText implements encoding.TextMarshaler.
func (k RatingKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// RecommenderKind identifies what produced a recommendation.
type RecommenderKind int

// Recommender kinds.
const (
	RecommenderContent RecommenderKind = iota
	RecommenderCollaborative
	RecommenderKnowledge
	RecommenderRandom
	RecommenderRandomAndCollaborative
)

var recommenderKindNames = [...]string{"Content", "Collaborative", "Knowledge", "Random", "RandomAndCollaborative"}

// String returns the kind's name.
func (k RecommenderKind) String() string {
	if k < 0 || int(k) >= len(recommenderKindNames) {
		return fmt.Sprintf("RecommenderKind(%d)", int(k))
	}
	return recommenderKindNames[k]
}

// ParseRecommenderKind parses a kind name case-insensitively.
func ParseRecommenderKind(s string) (RecommenderKind, error) {
	for i, name := range recommenderKindNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return RecommenderKind(i), nil
		}
	}
	return RecommenderContent, fmt.Errorf("recommender kind %q: %w", s, errdefs.ErrInvalidArgument)
}

// MarshalText implements encoding.TextMarshaler.
func (k RecommenderKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }
