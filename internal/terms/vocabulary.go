// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

package terms

import (
	"sort"
	"strings"
	"sync"
)

// vocabNode is a node of the vocabulary prefix tree.
type vocabNode struct {
	children map[rune]*vocabNode
	isEnd    bool
	term     string
	index    int // dense term index in the catalog
	count    int // content units that mention the term
}

func newVocabNode() *vocabNode {
	return &vocabNode{children: make(map[rune]*vocabNode)}
}

// Vocabulary is a thread-safe, case-insensitive prefix tree that maps term
// text to its dense catalog index. Lookups are O(m) in the term length.
type Vocabulary struct {
	mu   sync.RWMutex
	root *vocabNode
	size int
}

// Entry is one vocabulary term.
type Entry struct {
	Term  string
	Index int
	Count int
}

// NewVocabulary creates an empty vocabulary.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{root: newVocabNode()}
}

// Insert records one more content unit mentioning term. A term seen for the
// first time is assigned next as its index. It returns the term's index and
// whether the term was new.
func (v *Vocabulary) Insert(term string, next int) (int, bool) {
	if term == "" {
		return -1, false
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	node := v.root
	for _, ch := range strings.ToLower(term) {
		if node.children[ch] == nil {
			node.children[ch] = newVocabNode()
		}
		node = node.children[ch]
	}

	isNew := !node.isEnd
	if isNew {
		node.isEnd = true
		node.term = term
		node.index = next
		v.size++
	}
	node.count++
	return node.index, isNew
}

// Index returns the dense index of term.
func (v *Vocabulary) Index(term string) (int, bool) {
	if term == "" {
		return -1, false
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	node := v.find(strings.ToLower(term))
	if node == nil || !node.isEnd {
		return -1, false
	}
	return node.index, true
}

// find walks to the node for key. Must be called with mu held.
func (v *Vocabulary) find(key string) *vocabNode {
	node := v.root
	for _, ch := range key {
		node = node.children[ch]
		if node == nil {
			return nil
		}
	}
	return node
}

// WithPrefix returns up to limit terms starting with prefix, most mentioned
// first and then alphabetically. limit <= 0 returns every match.
func (v *Vocabulary) WithPrefix(prefix string, limit int) []Entry {
	v.mu.RLock()
	defer v.mu.RUnlock()

	node := v.find(strings.ToLower(prefix))
	if node == nil {
		return nil
	}

	var results []Entry
	collect(node, &results)

	sort.Slice(results, func(i, j int) bool {
		if results[i].Count != results[j].Count {
			return results[i].Count > results[j].Count
		}
		return results[i].Term < results[j].Term
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

func collect(node *vocabNode, results *[]Entry) {
	if node.isEnd {
		*results = append(*results, Entry{Term: node.term, Index: node.index, Count: node.count})
	}
	for _, child := range node.children {
		collect(child, results)
	}
}

// Len returns the number of distinct terms.
func (v *Vocabulary) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.size
}
