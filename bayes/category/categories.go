package category

import "sort"

// Sets holds one TrainingSet per category label.
type Sets struct {
	sets map[string]*TrainingSet
}

// NewSets returns an empty registry.
func NewSets() *Sets {
	return &Sets{
		sets: make(map[string]*TrainingSet),
	}
}

// AddCategory adds a new, empty training set, replacing any existing one.
func (s *Sets) AddCategory(name string) *TrainingSet {
	ts := NewTrainingSet(name)
	s.sets[name] = ts
	return ts
}

// GetCategory returns the named training set, creating it if needed.
func (s *Sets) GetCategory(name string) *TrainingSet {
	if ts, ok := s.sets[name]; ok {
		return ts
	}

	return s.AddCategory(name)
}

// LookupCategory returns the named training set without creating it.
func (s *Sets) LookupCategory(name string) (*TrainingSet, bool) {
	ts, ok := s.sets[name]
	return ts, ok
}

// Names returns the category labels in lexicographic order.
func (s *Sets) Names() []string {
	names := make([]string, 0, len(s.sets))
	for name := range s.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of categories.
func (s *Sets) Len() int {
	return len(s.sets)
}

// DocCounts returns the number of documents per category.
func (s *Sets) DocCounts() map[string]int {
	out := make(map[string]int, len(s.sets))
	for name, ts := range s.sets {
		out[name] = ts.GetNumDocs()
	}
	return out
}
