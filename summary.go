package main

import (
	log "github.com/sirupsen/logrus"

	"github.com/hickeroar/nbtrain/bayes"
	"github.com/hickeroar/nbtrain/corpus"
)

// CategorySummary describes one category of a finished training run.
type CategorySummary struct {
	Category  string
	Documents int
	Prior     float64
}

// TrainingSummary is what a training run reports once the model is written.
type TrainingSummary struct {
	ModelDir    string
	Documents   int
	Words       int
	Occurrences int
	Smoothing   string
	Categories  []CategorySummary
}

// NewTrainingSummary Gets an assembled instance of TrainingSummary
func NewTrainingSummary(c *corpus.Corpus, m *bayes.Model, dir string) *TrainingSummary {
	docs := make(map[string]int)
	for _, doc := range c.Documents {
		docs[doc.Category]++
	}

	names := m.Categories()
	categories := make([]CategorySummary, 0, len(names))
	for _, name := range names {
		categories = append(categories, CategorySummary{
			Category:  name,
			Documents: docs[name],
			Prior:     m.Priors[name],
		})
	}

	return &TrainingSummary{
		ModelDir:    dir,
		Documents:   len(c.Documents),
		Words:       c.Vocabulary.Size(),
		Occurrences: c.Vocabulary.GetTally(),
		Smoothing:   m.Smoothing,
		Categories:  categories,
	}
}

// Log writes the summary, one line per category plus a totals line.
func (s *TrainingSummary) Log() {
	for _, cat := range s.Categories {
		log.WithFields(log.Fields{
			"category":  cat.Category,
			"documents": cat.Documents,
			"prior":     cat.Prior,
		}).Info("category trained")
	}
	log.WithFields(log.Fields{
		"dir":         s.ModelDir,
		"documents":   s.Documents,
		"categories":  len(s.Categories),
		"words":       s.Words,
		"occurrences": s.Occurrences,
		"smoothing":   s.Smoothing,
	}).Info("training complete")
}
