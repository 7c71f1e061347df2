package bayes

import (
	"errors"
	"reflect"
	"testing"

	"github.com/hickeroar/nbtrain/bayes/wordcount"
)

func TestModelCategoriesSorted(t *testing.T) {
	m := &Model{Priors: Priors{"1200": 0.25, "1000": 0.5, "0100": 0.25}}
	if got := m.Categories(); !reflect.DeepEqual(got, []string{"0100", "1000", "1200"}) {
		t.Fatalf("unexpected categories: %v", got)
	}
}

func TestModelValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Model)
		want   error
	}{
		{
			name:   "no priors",
			mutate: func(m *Model) { m.Priors = Priors{} },
			want:   errNoPriors,
		},
		{
			name:   "zero prior",
			mutate: func(m *Model) { m.Priors["1000"] = 0; m.Priors["1200"] = 1 },
			want:   errProbOutOfRange,
		},
		{
			name:   "priors off by more than tolerance",
			mutate: func(m *Model) { m.Priors["1000"] = 0.5 + 1e-6 },
			want:   errPriorSum,
		},
		{
			name:   "missing row",
			mutate: func(m *Model) { delete(m.CondProb, "fox") },
			want:   errMissingCondRow,
		},
		{
			name:   "extra row",
			mutate: func(m *Model) { m.CondProb["wolf"] = map[string]float64{"1000": 0.1, "1200": 0.1} },
			want:   errMissingCondRow,
		},
		{
			name:   "row missing category",
			mutate: func(m *Model) { delete(m.CondProb["fox"], "1000") },
			want:   errCondRowCategories,
		},
		{
			name: "row with foreign category",
			mutate: func(m *Model) {
				delete(m.CondProb["fox"], "1000")
				m.CondProb["fox"]["9999"] = 0.1
			},
			want: errCondRowCategories,
		},
		{
			name:   "zero probability",
			mutate: func(m *Model) { m.CondProb["fox"]["1000"] = 0 },
			want:   errProbOutOfRange,
		},
		{
			name:   "probability above one",
			mutate: func(m *Model) { m.CondProb["fox"]["1200"] = 1.5 },
			want:   errProbOutOfRange,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := trainScenarioModel(t)
			tc.mutate(m)
			if err := m.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestModelValidateNil(t *testing.T) {
	var m *Model
	if err := m.Validate(); !errors.Is(err, errNilModel) {
		t.Fatalf("expected errNilModel, got %v", err)
	}
	if err := (&Model{Priors: Priors{"a": 1}}).Validate(); !errors.Is(err, errNilModel) {
		t.Fatalf("expected errNilModel for missing vocabulary, got %v", err)
	}
}

func TestModelValidateEmptyVocabulary(t *testing.T) {
	m := &Model{
		Vocabulary: wordcount.NewVocabulary(),
		Priors:     Priors{"1000": 1},
		CondProb:   CondProbTable{},
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("expected empty vocabulary model to validate, got %v", err)
	}
}

func TestModelValidateAcceptsPriorsWithinTolerance(t *testing.T) {
	m := trainScenarioModel(t)
	m.Priors["1000"] = 0.5 + 1e-12

	if err := m.Validate(); err != nil {
		t.Fatalf("expected rounding-level prior drift to validate, got %v", err)
	}
}
