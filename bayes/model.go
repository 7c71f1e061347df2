package bayes

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/hickeroar/nbtrain/bayes/wordcount"
)

const priorSumTolerance = 1e-9

var (
	errNilModel          = errors.New("model is nil")
	errNoPriors          = errors.New("model has no categories")
	errPriorSum          = errors.New("priors do not sum to one")
	errMissingCondRow    = errors.New("vocabulary word has no conditional probabilities")
	errCondRowCategories = errors.New("conditional probability row does not match categories")
	errProbOutOfRange    = errors.New("probability out of range")
)

// Model is the trained artifact: vocabulary, priors and the conditional
// probability table.
type Model struct {
	Vocabulary *wordcount.Vocabulary
	Priors     Priors
	CondProb   CondProbTable
	Smoothing  string // name of the Smoother that produced CondProb
}

// Categories returns the category labels in sorted order.
func (m *Model) Categories() []string {
	return sortedKeys(m.Priors)
}

// Validate checks the invariants every persisted model must hold.
func (m *Model) Validate() error {
	if m == nil || m.Vocabulary == nil {
		return errNilModel
	}
	if len(m.Priors) == 0 {
		return errNoPriors
	}

	cats := m.Categories()
	priors := make([]float64, len(cats))
	for i, cat := range cats {
		p := m.Priors[cat]
		if p <= 0 || p > 1 {
			return fmt.Errorf("%w: prior[%q]=%v", errProbOutOfRange, cat, p)
		}
		priors[i] = p
	}
	if sum := floats.Sum(priors); !scalar.EqualWithinAbs(sum, 1, priorSumTolerance) {
		return fmt.Errorf("%w: %v", errPriorSum, sum)
	}

	for _, word := range m.Vocabulary.GetWordList() {
		row, ok := m.CondProb[word]
		if !ok {
			return fmt.Errorf("%w: %q", errMissingCondRow, word)
		}
		if len(row) != len(cats) {
			return fmt.Errorf("%w: %q has %d of %d", errCondRowCategories, word, len(row), len(cats))
		}
		for _, cat := range cats {
			p, ok := row[cat]
			if !ok {
				return fmt.Errorf("%w: %q lacks %q", errCondRowCategories, word, cat)
			}
			if p <= 0 || p > 1 {
				return fmt.Errorf("%w: condProb[%q][%q]=%v", errProbOutOfRange, word, cat, p)
			}
		}
	}
	if len(m.CondProb) != m.Vocabulary.Size() {
		return fmt.Errorf("%w: table has %d rows for %d words", errMissingCondRow, len(m.CondProb), m.Vocabulary.Size())
	}

	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
