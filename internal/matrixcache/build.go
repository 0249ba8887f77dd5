// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

package matrixcache

import (
	"github.com/tomtom215/forumrec/internal/matrix"
)

func (c *Cache) actorLabels() []string {
	actors := c.catalog.Actors()
	out := make([]string, len(actors))
	for i, a := range actors {
		out[i] = a.ID
	}
	return out
}

func (c *Cache) contentLabels() []string {
	units := c.catalog.ContentUnits()
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.ID
	}
	return out
}

func (c *Cache) groupLabels() []string {
	groups := c.catalog.Groups()
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.ID
	}
	return out
}

func (c *Cache) termLabels() []string {
	list := c.catalog.Terms()
	out := make([]string, len(list))
	for i, t := range list {
		out[i] = t.ID
	}
	return out
}

// buildActorContent fills cell (a, n) with actor a's rating of content n.
// Several ratings of the same content keep the largest value.
func (c *Cache) buildActorContent() (*matrix.Matrix, error) {
	m := matrix.Zeros(c.Name(ActorContent), c.actorLabels(), c.contentLabels())
	data := m.Raw()

	for a := range data {
		ratings, err := c.catalog.RatingsByActor(a)
		if err != nil {
			return nil, err
		}
		for _, r := range ratings {
			if r.Value > data[a][r.Content] {
				data[a][r.Content] = r.Value
			}
		}
	}
	return m, nil
}

// buildActorGroup fills cell (a, g) with actor a's membership score in group g.
func (c *Cache) buildActorGroup() (*matrix.Matrix, error) {
	m := matrix.Zeros(c.Name(ActorGroup), c.actorLabels(), c.groupLabels())
	data := m.Raw()

	for a := range data {
		groups, err := c.catalog.GroupsOfActor(a)
		if err != nil {
			return nil, err
		}
		for _, l := range groups {
			data[a][l.Index] = l.Score
		}
	}
	return m, nil
}

// buildActorTerm fills cell (a, t) with the total frequency of term t over
// the content actor a authored.
func (c *Cache) buildActorTerm() (*matrix.Matrix, error) {
	m := matrix.Zeros(c.Name(ActorTerm), c.actorLabels(), c.termLabels())
	data := m.Raw()

	for a := range data {
		authored, err := c.catalog.ContentByActor(a)
		if err != nil {
			return nil, err
		}
		for _, unit := range authored {
			links, err := c.catalog.TermsOfContent(unit.Index)
			if err != nil {
				return nil, err
			}
			for _, l := range links {
				data[a][l.Index] += l.Score
			}
		}
	}
	return m, nil
}

// buildContentTerm fills cell (n, t) with the frequency of term t in content n.
func (c *Cache) buildContentTerm() (*matrix.Matrix, error) {
	m := matrix.Zeros(c.Name(ContentTerm), c.contentLabels(), c.termLabels())
	data := m.Raw()

	for n := range data {
		links, err := c.catalog.TermsOfContent(n)
		if err != nil {
			return nil, err
		}
		for _, l := range links {
			data[n][l.Index] = l.Score
		}
	}
	return m, nil
}

// buildContentGroup fills cell (n, g) with the score of content n in group g.
func (c *Cache) buildContentGroup() (*matrix.Matrix, error) {
	m := matrix.Zeros(c.Name(ContentGroup), c.contentLabels(), c.groupLabels())
	data := m.Raw()

	for n := range data {
		links, err := c.catalog.GroupsOfContent(n)
		if err != nil {
			return nil, err
		}
		for _, l := range links {
			data[n][l.Index] = l.Score
		}
	}
	return m, nil
}
