package wordcount

import (
	"fmt"
	"sort"
)

// Vocabulary is the set of distinct words seen anywhere in a corpus, each
// with its global occurrence count.
type Vocabulary struct {
	counts map[string]int
	tally  int
}

// NewVocabulary returns an empty vocabulary.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{
		counts: make(map[string]int),
	}
}

// VocabularyFromCounts rebuilds a vocabulary from persisted global counts.
func VocabularyFromCounts(counts map[string]int) (*Vocabulary, error) {
	v := NewVocabulary()
	for word, count := range counts {
		if word == "" {
			return nil, fmt.Errorf("vocabulary: %w", errEmptyWord)
		}
		if count <= 0 {
			return nil, fmt.Errorf("vocabulary word %q: %w: %d", word, errInvalidCount, count)
		}
		v.counts[word] = count
		v.tally += count
	}
	return v, nil
}

// Absorb adds every word count of a document counter to the global counts.
func (v *Vocabulary) Absorb(c *Counter) {
	if c == nil {
		return
	}
	for word, count := range c.counts {
		v.counts[word] += count
	}
	v.tally += c.tally
}

// GetWordList returns the distinct words in sorted order. The returned slice
// is a fresh copy on every call.
func (v *Vocabulary) GetWordList() []string {
	words := make([]string, 0, len(v.counts))
	for word := range v.counts {
		words = append(words, word)
	}
	sort.Strings(words)
	return words
}

// GetWordCount returns the global occurrences of word.
func (v *Vocabulary) GetWordCount(word string) int {
	return v.counts[word]
}

// GetTally returns the total occurrences of all words in the corpus.
func (v *Vocabulary) GetTally() int {
	return v.tally
}

// Size returns the number of distinct words.
func (v *Vocabulary) Size() int {
	return len(v.counts)
}

// LaplaceProb returns the corpus-wide add-one smoothed probability of word:
//
//	(count(word)+1) / (tally+size+1)
func (v *Vocabulary) LaplaceProb(word string) float64 {
	return float64(v.counts[word]+1) / float64(v.tally+len(v.counts)+1)
}
