package category

import "github.com/hickeroar/nbtrain/bayes/wordcount"

// TrainingSet is the merged word counts and document tally of one category.
type TrainingSet struct {
	name   string
	counts *wordcount.Counter
}

// NewTrainingSet returns an empty training set for the named category.
func NewTrainingSet(name string) *TrainingSet {
	return &TrainingSet{
		name:   name,
		counts: wordcount.NewCounter(),
	}
}

// Name returns the category label.
func (ts *TrainingSet) Name() string {
	return ts.name
}

// AddDocument merges counts into this set. The set grows by the documents
// counts has absorbed, or by one for a counter that recorded none.
func (ts *TrainingSet) AddDocument(counts *wordcount.Counter) {
	// A nil document still counts toward the category's prior.
	if counts == nil {
		counts = wordcount.NewCounter()
	}
	ts.counts.UpdateCounts(counts)
}

// Counts returns the merged word counts. Callers must not mutate it.
func (ts *TrainingSet) Counts() *wordcount.Counter {
	return ts.counts
}

// GetNumDocs returns the number of documents in this set. Priors are
// computed from this count.
func (ts *TrainingSet) GetNumDocs() int {
	return ts.counts.GetNumDocs()
}
