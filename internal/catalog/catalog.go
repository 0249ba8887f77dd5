// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

// Package catalog holds the relational model that every projection is built from:
// actors, content units, terms, groups, ratings and recommendations.
//
// Entities live in per-type arenas indexed by a dense zero-based index that is
// assigned in creation order and never reused. Relationships are adjacency
// tables keyed by those indices, so there are no pointer cycles between
// entities. Entities are never deleted.
//
// Add operations must follow dependency order (actors before the content units
// they author, and so on). Referencing an unknown entity returns ErrNotFound
// and a repeated string id returns ErrDuplicate; neither leaves partial state.
package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/forumrec/internal/errdefs"
	"github.com/tomtom215/forumrec/internal/terms"
)

// Catalog is the entity arena plus its relationship tables.
// It is safe for concurrent use.
type Catalog struct {
	mu        sync.RWMutex
	extractor terms.Extractor
	vocab     *terms.Vocabulary
	logger    zerolog.Logger

	actors          []Actor
	actorByID       map[string]int
	contents        []ContentUnit
	contentByID     map[string]int
	termList        []Term
	groups          []Group
	groupByID       map[string]int
	ratings         []Rating
	ratingByID      map[string]int
	recommendations []Recommendation
	recByID         map[string]int

	contentByActor   [][]int           // actor -> authored content
	ratingsByActor   [][]int           // actor -> ratings
	ratingsByContent [][]int           // content -> ratings
	termsOfContent   []map[int]float64 // content -> term -> frequency
	contentOfTerm    [][]int           // term -> content
	groupsOfContent  []map[int]float64 // content -> group -> score
	contentOfGroup   []map[int]float64 // group -> content -> score
	groupsOfActor    [][]int           // actor -> groups, insertion order
	actorsOfGroup    []map[int]float64 // group -> actor -> score
	recsByActor      [][]int
	recsByGroup      [][]int
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithExtractor replaces the default term extractor.
func WithExtractor(e terms.Extractor) Option {
	return func(c *Catalog) { c.extractor = e }
}

// WithLogger sets the catalog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(l zerolog.Logger) Option {
	return func(c *Catalog) { c.logger = l }
}

// New creates an empty catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		extractor:   terms.NewExtractor(),
		vocab:       terms.NewVocabulary(),
		logger:      zerolog.Nop(),
		actorByID:   make(map[string]int),
		contentByID: make(map[string]int),
		groupByID:   make(map[string]int),
		ratingByID:  make(map[string]int),
		recByID:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddActor creates an actor.
func (c *Catalog) AddActor(id, name, description string) (Actor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.actorByID[id]; ok {
		return Actor{}, fmt.Errorf("actor %q: %w", id, errdefs.ErrDuplicate)
	}

	a := Actor{ID: id, Index: len(c.actors), Name: name, Description: description}
	c.actors = append(c.actors, a)
	c.actorByID[id] = a.Index
	c.contentByActor = append(c.contentByActor, nil)
	c.ratingsByActor = append(c.ratingsByActor, nil)
	c.groupsOfActor = append(c.groupsOfActor, nil)
	c.recsByActor = append(c.recsByActor, nil)
	return a, nil
}

// AddContentUnit creates a content unit authored by actorID and registers the
// terms extracted from its text.
func (c *Catalog) AddContentUnit(id, actorID, text string) (ContentUnit, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.contentByID[id]; ok {
		return ContentUnit{}, fmt.Errorf("content unit %q: %w", id, errdefs.ErrDuplicate)
	}
	author, ok := c.actorByID[actorID]
	if !ok {
		return ContentUnit{}, fmt.Errorf("content unit %q: author %q: %w", id, actorID, errdefs.ErrNotFound)
	}

	cu := ContentUnit{ID: id, Index: len(c.contents), Author: author, Text: text}
	c.contents = append(c.contents, cu)
	c.contentByID[id] = cu.Index
	c.contentByActor[author] = append(c.contentByActor[author], cu.Index)
	c.ratingsByContent = append(c.ratingsByContent, nil)
	c.groupsOfContent = append(c.groupsOfContent, make(map[int]float64))

	freqs := c.extractor.Extract(text)
	words := make([]string, 0, len(freqs))
	for w := range freqs {
		words = append(words, w)
	}
	sort.Strings(words)

	links := make(map[int]float64, len(words))
	for _, w := range words {
		t, isNew := c.vocab.Insert(w, len(c.termList))
		if t < 0 {
			continue
		}
		if isNew {
			c.termList = append(c.termList, Term{ID: w, Index: t, Text: w})
			c.contentOfTerm = append(c.contentOfTerm, nil)
		}
		if _, seen := links[t]; !seen {
			c.contentOfTerm[t] = append(c.contentOfTerm[t], cu.Index)
		}
		links[t] += float64(freqs[w])
	}
	c.termsOfContent = append(c.termsOfContent, links)

	c.logger.Trace().Str("content", id).Int("terms", len(links)).Msg("content unit added")
	return cu, nil
}

// AddRating creates a rating of contentID by actorID. value must be >= 0.
func (c *Catalog) AddRating(id, actorID, contentID string, kind RatingKind, value float64) (Rating, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.ratingByID[id]; ok {
		return Rating{}, fmt.Errorf("rating %q: %w", id, errdefs.ErrDuplicate)
	}
	if value < 0 {
		return Rating{}, fmt.Errorf("rating %q: negative value %v: %w", id, value, errdefs.ErrInvalidArgument)
	}
	actor, ok := c.actorByID[actorID]
	if !ok {
		return Rating{}, fmt.Errorf("rating %q: actor %q: %w", id, actorID, errdefs.ErrNotFound)
	}
	content, ok := c.contentByID[contentID]
	if !ok {
		return Rating{}, fmt.Errorf("rating %q: content unit %q: %w", id, contentID, errdefs.ErrNotFound)
	}

	r := Rating{ID: id, Index: len(c.ratings), Kind: kind, Value: value, Actor: actor, Content: content}
	c.ratings = append(c.ratings, r)
	c.ratingByID[id] = r.Index
	c.ratingsByActor[actor] = append(c.ratingsByActor[actor], r.Index)
	c.ratingsByContent[content] = append(c.ratingsByContent[content], r.Index)
	return r, nil
}

// AddGroup creates a group.
func (c *Catalog) AddGroup(id, title string) (Group, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.groupByID[id]; ok {
		return Group{}, fmt.Errorf("group %q: %w", id, errdefs.ErrDuplicate)
	}

	g := Group{ID: id, Index: len(c.groups), Title: title}
	c.groups = append(c.groups, g)
	c.groupByID[id] = g.Index
	c.contentOfGroup = append(c.contentOfGroup, make(map[int]float64))
	c.actorsOfGroup = append(c.actorsOfGroup, make(map[int]float64))
	c.recsByGroup = append(c.recsByGroup, nil)
	return g, nil
}

// AddRecommendation records that groupID was recommended to actorID.
func (c *Catalog) AddRecommendation(id, actorID, groupID string, kind RecommenderKind, reason string, value float64) (Recommendation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.recByID[id]; ok {
		return Recommendation{}, fmt.Errorf("recommendation %q: %w", id, errdefs.ErrDuplicate)
	}
	actor, ok := c.actorByID[actorID]
	if !ok {
		return Recommendation{}, fmt.Errorf("recommendation %q: actor %q: %w", id, actorID, errdefs.ErrNotFound)
	}
	group, ok := c.groupByID[groupID]
	if !ok {
		return Recommendation{}, fmt.Errorf("recommendation %q: group %q: %w", id, groupID, errdefs.ErrNotFound)
	}

	r := Recommendation{ID: id, Index: len(c.recommendations), Kind: kind, Reason: reason, Value: value, Actor: actor, Group: group}
	c.recommendations = append(c.recommendations, r)
	c.recByID[id] = r.Index
	c.recsByActor[actor] = append(c.recsByActor[actor], r.Index)
	c.recsByGroup[group] = append(c.recsByGroup[group], r.Index)
	return r, nil
}

// AddContentToGroup links contentID to groupID with score, replacing any
// previous score of the same link.
func (c *Catalog) AddContentToGroup(groupID, contentID string, score float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	group, ok := c.groupByID[groupID]
	if !ok {
		return fmt.Errorf("group %q: %w", groupID, errdefs.ErrNotFound)
	}
	content, ok := c.contentByID[contentID]
	if !ok {
		return fmt.Errorf("content unit %q: %w", contentID, errdefs.ErrNotFound)
	}

	c.contentOfGroup[group][content] = score
	c.groupsOfContent[content][group] = score
	return nil
}

// AddActorToGroup links actorID to groupID with score, replacing any previous
// score of the same link.
func (c *Catalog) AddActorToGroup(groupID, actorID string, score float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	group, ok := c.groupByID[groupID]
	if !ok {
		return fmt.Errorf("group %q: %w", groupID, errdefs.ErrNotFound)
	}
	actor, ok := c.actorByID[actorID]
	if !ok {
		return fmt.Errorf("actor %q: %w", actorID, errdefs.ErrNotFound)
	}

	if _, linked := c.actorsOfGroup[group][actor]; !linked {
		c.groupsOfActor[actor] = append(c.groupsOfActor[actor], group)
	}
	c.actorsOfGroup[group][actor] = score
	return nil
}
