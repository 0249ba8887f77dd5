// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

// Package terms turns the raw text of a content unit into weighted terms.
//
// The default pipeline splits on punctuation and digits, breaks camel case,
// lowercases, drops short tokens and English stopwords, stems with the
// Snowball (Porter2) English stemmer and counts occurrences. Vocabulary maps
// the resulting terms to dense catalog indices.
package terms

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball/english"
)

// Extractor supplies (term, frequency) pairs for a piece of text.
type Extractor interface {
	Extract(text string) map[string]int
}

// delimiters separate raw tokens. Digits are delimiters too.
const delimiters = " .,:;/?'\"[]{})(-_=+~!@#$%^&*<>\n\t\r1234567890"

// wordPattern splits camel case: "NeedTracker" -> "Need", "Tracker".
var wordPattern = regexp.MustCompile(`[A-Z][a-z]+|[a-z]+|[A-Z]+`)

// Option configures a TextExtractor.
type Option func(*TextExtractor)

// WithMinLength drops tokens shorter than n runes. Default 2.
func WithMinLength(n int) Option {
	return func(e *TextExtractor) { e.minLength = n }
}

// WithoutStemming keeps tokens unstemmed.
func WithoutStemming() Option {
	return func(e *TextExtractor) { e.stem = false }
}

// WithStopwords adds domain stopwords on top of the English list.
func WithStopwords(words ...string) Option {
	return func(e *TextExtractor) {
		for _, w := range words {
			e.extraStopwords[strings.ToLower(w)] = struct{}{}
		}
	}
}

// TextExtractor is the default Extractor.
type TextExtractor struct {
	minLength      int
	stem           bool
	extraStopwords map[string]struct{}
}

// NewExtractor returns a TextExtractor with the given options applied.
func NewExtractor(opts ...Option) *TextExtractor {
	e := &TextExtractor{
		minLength:      2,
		stem:           true,
		extraStopwords: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tokens returns the filtered, stemmed tokens of text in order.
func (e *TextExtractor) Tokens(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(delimiters, r)
	})

	var out []string
	for _, field := range fields {
		for _, word := range wordPattern.FindAllString(field, -1) {
			word = strings.ToLower(word)
			if len([]rune(word)) < e.minLength || e.isStopword(word) {
				continue
			}
			if e.stem {
				word = english.Stem(word, false)
			}
			if word != "" {
				out = append(out, word)
			}
		}
	}
	return out
}

// Extract counts the tokens of text.
func (e *TextExtractor) Extract(text string) map[string]int {
	counts := make(map[string]int)
	for _, tok := range e.Tokens(text) {
		counts[tok]++
	}
	return counts
}

func (e *TextExtractor) isStopword(word string) bool {
	if _, ok := e.extraStopwords[word]; ok {
		return true
	}
	return english.IsStopWord(word)
}
