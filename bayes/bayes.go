// Package bayes trains a multinomial Naive Bayes text model: per-category
// training sets, category priors and smoothed word-given-category
// probabilities.
package bayes

import (
	"errors"
	"fmt"
	"runtime"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/hickeroar/nbtrain/bayes/category"
	"github.com/hickeroar/nbtrain/bayes/wordcount"
	"github.com/hickeroar/nbtrain/corpus"
)

// ErrEmptyCorpus is returned when priors are requested for zero documents.
var ErrEmptyCorpus = errors.New("training corpus is empty")

var errDocCountMismatch = errors.New("category document counts do not sum to total")

var plog = log.WithField("pkg", "bayes")

// Priors maps category label to prior probability.
type Priors map[string]float64

// CondProbTable maps word to category label to P(word | category).
type CondProbTable map[string]map[string]float64

// Trainer turns a corpus into a Model.
type Trainer struct {
	Smoother Smoother
	Workers  int // upper bound on categories scored concurrently
}

// NewTrainer returns a trainer using Laplace smoothing with fallback and one
// worker per CPU.
func NewTrainer() *Trainer {
	return &Trainer{
		Smoother: LaplaceFallback,
		Workers:  runtime.NumCPU(),
	}
}

// BuildTrainingSets groups documents by category, merging their word counts.
// The documents are not modified.
func BuildTrainingSets(docs []corpus.Document) *category.Sets {
	sets := category.NewSets()
	for _, doc := range docs {
		sets.GetCategory(doc.Category).AddDocument(doc.Counts)
	}
	return sets
}

// ComputePriors returns docsPerCategory[c] / totalDocs for every category.
func ComputePriors(docsPerCategory map[string]int, totalDocs int) (Priors, error) {
	if totalDocs <= 0 {
		return nil, ErrEmptyCorpus
	}

	sum := 0
	for _, n := range docsPerCategory {
		sum += n
	}
	if sum != totalDocs {
		return nil, fmt.Errorf("%w: sum=%d total=%d", errDocCountMismatch, sum, totalDocs)
	}

	priors := make(Priors, len(docsPerCategory))
	for name, n := range docsPerCategory {
		priors[name] = float64(n) / float64(totalDocs)
	}
	return priors, nil
}

// ComputeConditionalProbs scores every vocabulary word against every
// training set with the trainer's smoother. Categories are scored in
// parallel; each worker fills its own column and the table is assembled
// afterwards.
func (t *Trainer) ComputeConditionalProbs(vocab *wordcount.Vocabulary, sets *category.Sets) CondProbTable {
	smoother := t.smoother()
	words := vocab.GetWordList()
	names := sets.Names()
	columns := make([][]float64, len(names))

	var g errgroup.Group
	g.SetLimit(t.workers())
	for i, name := range names {
		i := i
		ts, _ := sets.LookupCategory(name)
		g.Go(func() error {
			counts := ts.Counts()
			column := make([]float64, len(words))
			for j, word := range words {
				column[j] = smoother.Prob(word, counts, vocab)
			}
			columns[i] = column
			return nil
		})
	}
	// Workers never fail.
	_ = g.Wait()

	table := make(CondProbTable, len(words))
	for j, word := range words {
		row := make(map[string]float64, len(names))
		for i, name := range names {
			row[name] = columns[i][j]
		}
		table[word] = row
	}
	return table
}

// Train runs the full pipeline over c.
func (t *Trainer) Train(c *corpus.Corpus) (*Model, error) {
	if c == nil || len(c.Documents) == 0 {
		return nil, ErrEmptyCorpus
	}

	sets := BuildTrainingSets(c.Documents)
	priors, err := ComputePriors(sets.DocCounts(), len(c.Documents))
	if err != nil {
		return nil, fmt.Errorf("compute priors: %w", err)
	}

	for _, name := range sets.Names() {
		ts, _ := sets.LookupCategory(name)
		plog.WithFields(log.Fields{
			"category":  name,
			"documents": ts.GetNumDocs(),
			"words":     ts.Counts().GetTally(),
			"prior":     priors[name],
		}).Debug("training set")
	}

	condProb := t.ComputeConditionalProbs(c.Vocabulary, sets)

	plog.WithFields(log.Fields{
		"documents":  len(c.Documents),
		"categories": sets.Len(),
		"words":      c.Vocabulary.Size(),
		"smoothing":  t.smoother().Name(),
	}).Info("model trained")

	return &Model{
		Vocabulary: c.Vocabulary,
		Priors:     priors,
		CondProb:   condProb,
		Smoothing:  t.smoother().Name(),
	}, nil
}

func (t *Trainer) smoother() Smoother {
	if t.Smoother == nil {
		return LaplaceFallback
	}
	return t.Smoother
}

func (t *Trainer) workers() int {
	if t.Workers < 1 {
		return 1
	}
	return t.Workers
}
