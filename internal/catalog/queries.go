// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

package catalog

import (
	"fmt"
	"sort"

	"github.com/tomtom215/forumrec/internal/errdefs"
	"github.com/tomtom215/forumrec/internal/terms"
)

// Link is one scored relationship to another entity, identified by its dense index.
type Link struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

func checkIndex(kind string, i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%s index %d (have %d): %w", kind, i, n, errdefs.ErrNotFound)
	}
	return nil
}

// sortedLinks flattens a score map into links ordered by index.
func sortedLinks(m map[int]float64) []Link {
	out := make([]Link, 0, len(m))
	for idx, score := range m {
		out = append(out, Link{Index: idx, Score: score})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// ========== Lookups by string id ==========

// Actor returns the actor with the given id.
func (c *Catalog) Actor(id string) (Actor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.actorByID[id]
	if !ok {
		return Actor{}, fmt.Errorf("actor %q: %w", id, errdefs.ErrNotFound)
	}
	return c.actors[i], nil
}

// ContentUnit returns the content unit with the given id.
func (c *Catalog) ContentUnit(id string) (ContentUnit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.contentByID[id]
	if !ok {
		return ContentUnit{}, fmt.Errorf("content unit %q: %w", id, errdefs.ErrNotFound)
	}
	return c.contents[i], nil
}

// Term returns the term with the given id (its text).
func (c *Catalog) Term(id string) (Term, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.vocab.Index(id)
	if !ok {
		return Term{}, fmt.Errorf("term %q: %w", id, errdefs.ErrNotFound)
	}
	return c.termList[i], nil
}

// Group returns the group with the given id.
func (c *Catalog) Group(id string) (Group, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.groupByID[id]
	if !ok {
		return Group{}, fmt.Errorf("group %q: %w", id, errdefs.ErrNotFound)
	}
	return c.groups[i], nil
}

// Rating returns the rating with the given id.
func (c *Catalog) Rating(id string) (Rating, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.ratingByID[id]
	if !ok {
		return Rating{}, fmt.Errorf("rating %q: %w", id, errdefs.ErrNotFound)
	}
	return c.ratings[i], nil
}

// Recommendation returns the recommendation with the given id.
func (c *Catalog) Recommendation(id string) (Recommendation, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.recByID[id]
	if !ok {
		return Recommendation{}, fmt.Errorf("recommendation %q: %w", id, errdefs.ErrNotFound)
	}
	return c.recommendations[i], nil
}

// ========== Lookups by dense index ==========

// ActorAt returns the actor with dense index i.
func (c *Catalog) ActorAt(i int) (Actor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := checkIndex("actor", i, len(c.actors)); err != nil {
		return Actor{}, err
	}
	return c.actors[i], nil
}

// ContentUnitAt returns the content unit with dense index i.
func (c *Catalog) ContentUnitAt(i int) (ContentUnit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := checkIndex("content unit", i, len(c.contents)); err != nil {
		return ContentUnit{}, err
	}
	return c.contents[i], nil
}

// TermAt returns the term with dense index i.
func (c *Catalog) TermAt(i int) (Term, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := checkIndex("term", i, len(c.termList)); err != nil {
		return Term{}, err
	}
	return c.termList[i], nil
}

// GroupAt returns the group with dense index i.
func (c *Catalog) GroupAt(i int) (Group, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := checkIndex("group", i, len(c.groups)); err != nil {
		return Group{}, err
	}
	return c.groups[i], nil
}

// RatingAt returns the rating with dense index i.
func (c *Catalog) RatingAt(i int) (Rating, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := checkIndex("rating", i, len(c.ratings)); err != nil {
		return Rating{}, err
	}
	return c.ratings[i], nil
}

// ========== Collections ==========

// Actors returns every actor in index order.
func (c *Catalog) Actors() []Actor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Actor(nil), c.actors...)
}

// ContentUnits returns every content unit in index order.
func (c *Catalog) ContentUnits() []ContentUnit {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]ContentUnit(nil), c.contents...)
}

// Terms returns every term in index order.
func (c *Catalog) Terms() []Term {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Term(nil), c.termList...)
}

// Groups returns every group in index order.
func (c *Catalog) Groups() []Group {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Group(nil), c.groups...)
}

// Ratings returns every rating in index order.
func (c *Catalog) Ratings() []Rating {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Rating(nil), c.ratings...)
}

// Recommendations returns every recommendation in index order.
func (c *Catalog) Recommendations() []Recommendation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Recommendation(nil), c.recommendations...)
}

// Counts reports the size of each arena.
type Counts struct {
	Actors          int `json:"actors"`
	ContentUnits    int `json:"content_units"`
	Terms           int `json:"terms"`
	Groups          int `json:"groups"`
	Ratings         int `json:"ratings"`
	Recommendations int `json:"recommendations"`
}

// Counts returns the size of each arena.
func (c *Catalog) Counts() Counts {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Counts{
		Actors:          len(c.actors),
		ContentUnits:    len(c.contents),
		Terms:           len(c.termList),
		Groups:          len(c.groups),
		Ratings:         len(c.ratings),
		Recommendations: len(c.recommendations),
	}
}

// ========== Relationship queries ==========

// ContentByActor returns the content units authored by actor a.
func (c *Catalog) ContentByActor(a int) ([]ContentUnit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := checkIndex("actor", a, len(c.actors)); err != nil {
		return nil, err
	}
	out := make([]ContentUnit, 0, len(c.contentByActor[a]))
	for _, i := range c.contentByActor[a] {
		out = append(out, c.contents[i])
	}
	return out, nil
}

// RatingsByActor returns the ratings given by actor a, in creation order.
func (c *Catalog) RatingsByActor(a int) ([]Rating, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := checkIndex("actor", a, len(c.actors)); err != nil {
		return nil, err
	}
	return c.collectRatings(c.ratingsByActor[a]), nil
}

// RatingsByContent returns the ratings of content unit n, in creation order.
func (c *Catalog) RatingsByContent(n int) ([]Rating, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := checkIndex("content unit", n, len(c.contents)); err != nil {
		return nil, err
	}
	return c.collectRatings(c.ratingsByContent[n]), nil
}

func (c *Catalog) collectRatings(idx []int) []Rating {
	out := make([]Rating, 0, len(idx))
	for _, i := range idx {
		out = append(out, c.ratings[i])
	}
	return out
}

// TermsOfContent returns the terms of content unit n with their frequencies.
func (c *Catalog) TermsOfContent(n int) ([]Link, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := checkIndex("content unit", n, len(c.contents)); err != nil {
		return nil, err
	}
	return sortedLinks(c.termsOfContent[n]), nil
}

// ContentOfTerm returns the indices of content units mentioning term t.
func (c *Catalog) ContentOfTerm(t int) ([]int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := checkIndex("term", t, len(c.termList)); err != nil {
		return nil, err
	}
	return append([]int(nil), c.contentOfTerm[t]...), nil
}

// GroupsOfContent returns the groups content unit n belongs to with scores.
func (c *Catalog) GroupsOfContent(n int) ([]Link, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := checkIndex("content unit", n, len(c.contents)); err != nil {
		return nil, err
	}
	return sortedLinks(c.groupsOfContent[n]), nil
}

// ContentOfGroup returns the content units of group g with scores.
func (c *Catalog) ContentOfGroup(g int) ([]Link, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := checkIndex("group", g, len(c.groups)); err != nil {
		return nil, err
	}
	return sortedLinks(c.contentOfGroup[g]), nil
}

// GroupsOfActor returns the groups actor a belongs to with scores, in the
// order the memberships were first added.
func (c *Catalog) GroupsOfActor(a int) ([]Link, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := checkIndex("actor", a, len(c.actors)); err != nil {
		return nil, err
	}
	out := make([]Link, 0, len(c.groupsOfActor[a]))
	for _, g := range c.groupsOfActor[a] {
		out = append(out, Link{Index: g, Score: c.actorsOfGroup[g][a]})
	}
	return out, nil
}

// ActorsOfGroup returns the members of group g with scores.
func (c *Catalog) ActorsOfGroup(g int) ([]Link, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := checkIndex("group", g, len(c.groups)); err != nil {
		return nil, err
	}
	return sortedLinks(c.actorsOfGroup[g]), nil
}

// RecommendationsForActor returns the recommendations made to actor a.
func (c *Catalog) RecommendationsForActor(a int) ([]Recommendation, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := checkIndex("actor", a, len(c.actors)); err != nil {
		return nil, err
	}
	return c.collectRecommendations(c.recsByActor[a]), nil
}

// RecommendationsForGroup returns the recommendations that point at group g.
func (c *Catalog) RecommendationsForGroup(g int) ([]Recommendation, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := checkIndex("group", g, len(c.groups)); err != nil {
		return nil, err
	}
	return c.collectRecommendations(c.recsByGroup[g]), nil
}

func (c *Catalog) collectRecommendations(idx []int) []Recommendation {
	out := make([]Recommendation, 0, len(idx))
	for _, i := range idx {
		out = append(out, c.recommendations[i])
	}
	return out
}

// ScoreOfContentInGroup returns the score of content unit n in group g, or 0
// when they are not linked.
func (c *Catalog) ScoreOfContentInGroup(g, n int) (float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := checkIndex("group", g, len(c.groups)); err != nil {
		return 0, err
	}
	if err := checkIndex("content unit", n, len(c.contents)); err != nil {
		return 0, err
	}
	return c.contentOfGroup[g][n], nil
}

// ScoreOfActorInGroup returns the score of actor a in group g, or 0 when the
// actor is not a member.
func (c *Catalog) ScoreOfActorInGroup(g, a int) (float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := checkIndex("group", g, len(c.groups)); err != nil {
		return 0, err
	}
	if err := checkIndex("actor", a, len(c.actors)); err != nil {
		return 0, err
	}
	return c.actorsOfGroup[g][a], nil
}

// FrequencyOfTermInContent returns how often term t occurs in content unit n.
func (c *Catalog) FrequencyOfTermInContent(n, t int) (float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := checkIndex("content unit", n, len(c.contents)); err != nil {
		return 0, err
	}
	if err := checkIndex("term", t, len(c.termList)); err != nil {
		return 0, err
	}
	return c.termsOfContent[n][t], nil
}

// TermsWithPrefix returns up to limit terms starting with prefix, most widely
// used first. limit <= 0 returns every match.
func (c *Catalog) TermsWithPrefix(prefix string, limit int) []terms.Entry {
	return c.vocab.WithPrefix(prefix, limit)
}
