package bayes

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hickeroar/nbtrain/bayes/wordcount"
)

// ErrUnknownSmoother is returned for an unregistered smoothing name.
var ErrUnknownSmoother = errors.New("unknown smoothing strategy")

// Smoother estimates P(word | category) from a category's merged counts and
// the corpus vocabulary. Implementations must return a value in (0, 1].
type Smoother interface {
	Name() string
	Prob(word string, counts *wordcount.Counter, vocab *wordcount.Vocabulary) float64
}

type laplaceFallback struct{}

func (laplaceFallback) Name() string { return "laplace" }

// Prob uses the category's own Laplace estimate and falls back to the
// vocabulary-wide estimate when the category never observed word.
func (laplaceFallback) Prob(word string, counts *wordcount.Counter, vocab *wordcount.Vocabulary) float64 {
	if p, ok := counts.LaplaceProb(word, vocab.Size()); ok {
		return p
	}
	return vocab.LaplaceProb(word)
}

type globalCountRatio struct{}

func (globalCountRatio) Name() string { return "global" }

// Prob smooths the category count against the word's corpus-wide count:
// (countInCategory+1) / (globalCount+1).
func (globalCountRatio) Prob(word string, counts *wordcount.Counter, vocab *wordcount.Vocabulary) float64 {
	return float64(counts.GetCount(word)+1) / float64(vocab.GetWordCount(word)+1)
}

var (
	// LaplaceFallback is the default multinomial estimator.
	LaplaceFallback Smoother = laplaceFallback{}
	// GlobalCountRatio smooths against the global word count instead of the
	// category totals.
	GlobalCountRatio Smoother = globalCountRatio{}
)

var smoothers = map[string]Smoother{
	LaplaceFallback.Name():  LaplaceFallback,
	GlobalCountRatio.Name(): GlobalCountRatio,
}

// LookupSmoother returns the registered smoother with the given name.
func LookupSmoother(name string) (Smoother, error) {
	s, ok := smoothers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSmoother, name)
	}
	return s, nil
}

// SmootherNames returns the registered smoother names in sorted order.
func SmootherNames() []string {
	names := make([]string, 0, len(smoothers))
	for name := range smoothers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
