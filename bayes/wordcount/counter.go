// Package wordcount holds the mergeable word tallies used at document and
// category granularity, and the corpus-wide Vocabulary built from them.
package wordcount

import (
	"errors"
	"fmt"
)

var (
	errInvalidCount = errors.New("count must be greater than zero")
	errEmptyWord    = errors.New("word must not be empty")
)

// Counter maps words to occurrence counts and tracks how many documents it
// has absorbed.
type Counter struct {
	counts map[string]int // Map of words to their count
	tally  int            // Total occurrences of all words
	docs   int            // Documents merged into this counter
}

// NewCounter returns an empty counter that has absorbed no documents.
func NewCounter() *Counter {
	return &Counter{
		counts: make(map[string]int),
	}
}

// FromTokens returns a single-document counter of the given tokens.
func FromTokens(tokens []string) *Counter {
	c := NewCounter()
	c.docs = 1
	for _, token := range tokens {
		if token == "" {
			continue
		}
		c.counts[token]++
		c.tally++
	}
	return c
}

// FromMap returns a single-document counter holding the given counts. Zero
// counts are skipped; negative counts and empty words are rejected.
func FromMap(counts map[string]int) (*Counter, error) {
	c := NewCounter()
	c.docs = 1
	for word, count := range counts {
		if count == 0 {
			continue
		}
		if err := c.Add(word, count); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add increments the count of word.
func (c *Counter) Add(word string, count int) error {
	if word == "" {
		return fmt.Errorf("add word: %w", errEmptyWord)
	}
	if count <= 0 {
		return fmt.Errorf("add %q: %w: %d", word, errInvalidCount, count)
	}

	c.counts[word] += count
	c.tally += count

	return nil
}

// UpdateCounts merges other into c. The document count grows by other's
// document count, or by one when other never recorded any.
func (c *Counter) UpdateCounts(other *Counter) {
	if other == nil {
		return
	}

	for word, count := range other.counts {
		c.counts[word] += count
	}
	c.tally += other.tally

	if other.docs > 0 {
		c.docs += other.docs
	} else {
		c.docs++
	}
}

// GetCount returns the occurrences of word, or 0 if it was never observed.
func (c *Counter) GetCount(word string) int {
	return c.counts[word]
}

// Has reports whether word was observed at least once.
func (c *Counter) Has(word string) bool {
	_, ok := c.counts[word]
	return ok
}

// GetTally returns the total occurrences of all words.
func (c *Counter) GetTally() int {
	return c.tally
}

// GetNumDocs returns the number of documents merged into this counter.
func (c *Counter) GetNumDocs() int {
	return c.docs
}

// Snapshot returns a copy of the word counts.
func (c *Counter) Snapshot() map[string]int {
	out := make(map[string]int, len(c.counts))
	for word, count := range c.counts {
		out[word] = count
	}
	return out
}

// LaplaceProb returns the add-one smoothed probability of word within this
// counter against a vocabulary of vocabSize words:
//
//	(count(word)+1) / (tally+vocabSize+1)
//
// The second result is false when the counter has no observations of word,
// in which case the caller falls back to a corpus-wide estimate.
func (c *Counter) LaplaceProb(word string, vocabSize int) (float64, bool) {
	if !c.Has(word) || c.tally == 0 {
		return 0, false
	}
	return float64(c.counts[word]+1) / float64(c.tally+vocabSize+1), true
}
