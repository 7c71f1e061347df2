package bayes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	log "github.com/sirupsen/logrus"

	"github.com/hickeroar/nbtrain/bayes/wordcount"
)

const persistedModelVersion = 1

// File names inside a model directory.
const (
	VocabularyFile = "vocab.bin"
	PriorFile      = "prior.bin"
	CondProbFile   = "condProb.bin"
)

type tempFile interface {
	io.Writer
	Sync() error
	Close() error
	Name() string
}

// ErrUnsupportedVersion is returned when a persisted file was written by an
// incompatible version.
var ErrUnsupportedVersion = errors.New("unsupported model version")

var (
	errInvalidVocabulary = errors.New("invalid vocabulary in persisted model")
	errInvalidPriors     = errors.New("invalid priors in persisted model")
	errInvalidCondProb   = errors.New("invalid conditional probabilities in persisted model")
	createFile           = func(path string) (tempFile, error) {
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	}
	createTemp = func(dir, pattern string) (tempFile, error) { return os.CreateTemp(dir, pattern) }
	mkdirTemp  = os.MkdirTemp
	renameFile = os.Rename
	removeAll  = os.RemoveAll
)

// Maps are flattened to sorted parallel slices so equal models encode to
// identical bytes.
type vocabularyState struct {
	Version int      `json:"version"`
	Words   []string `json:"words"`
	Counts  []int    `json:"counts"`
}

type priorState struct {
	Version    int       `json:"version"`
	Categories []string  `json:"categories"`
	Probs      []float64 `json:"probs"`
}

type condProbState struct {
	Version    int         `json:"version"`
	Smoothing  string      `json:"smoothing"`
	Categories []string    `json:"categories"`
	Words      []string    `json:"words"`
	Probs      [][]float64 `json:"probs"` // Probs[word][category]
}

// ResetModelDir clears any previous model at dir and recreates it empty.
func ResetModelDir(dir string) error {
	if err := removeAll(dir); err != nil {
		return fmt.Errorf("remove model dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	return nil
}

// WriteModelDir validates m and writes its three files to dir. The files are
// written into a staging directory beside dir, read back and checked, and
// only then moved into place.
func WriteModelDir(dir string, m *Model) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("validate model: %w", err)
	}

	dir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve model dir: %w", err)
	}
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("create model parent: %w", err)
	}

	staging, err := mkdirTemp(parent, ".nbtrain-*")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			removeAll(staging)
		}
	}()
	if err := os.Chmod(staging, 0o755); err != nil {
		return fmt.Errorf("chmod staging dir: %w", err)
	}

	files := []struct {
		name  string
		state interface{}
	}{
		{VocabularyFile, newVocabularyState(m.Vocabulary)},
		{PriorFile, newPriorState(m.Priors)},
		{CondProbFile, newCondProbState(m)},
	}
	for _, f := range files {
		if err := writeStateFile(filepath.Join(staging, f.name), f.state); err != nil {
			return err
		}
	}

	if _, err := ReadModelDir(staging); err != nil {
		return fmt.Errorf("verify staged model: %w", err)
	}

	if err := removeAll(dir); err != nil {
		return fmt.Errorf("remove previous model: %w", err)
	}
	if err := renameFile(staging, dir); err != nil {
		return fmt.Errorf("rename staging dir: %w", err)
	}
	committed = true

	plog.WithFields(log.Fields{
		"dir":        dir,
		"categories": len(m.Priors),
		"words":      m.Vocabulary.Size(),
	}).Info("model written")

	return nil
}

// ReadModelDir loads and validates the model stored in dir.
func ReadModelDir(dir string) (*Model, error) {
	var vs vocabularyState
	if err := readStateFile(filepath.Join(dir, VocabularyFile), &vs); err != nil {
		return nil, err
	}
	var ps priorState
	if err := readStateFile(filepath.Join(dir, PriorFile), &ps); err != nil {
		return nil, err
	}
	var cs condProbState
	if err := readStateFile(filepath.Join(dir, CondProbFile), &cs); err != nil {
		return nil, err
	}

	vocab, err := vs.vocabulary()
	if err != nil {
		return nil, err
	}
	priors, err := ps.priors()
	if err != nil {
		return nil, err
	}
	condProb, err := cs.table(vs.Words, ps.Categories)
	if err != nil {
		return nil, err
	}

	m := &Model{
		Vocabulary: vocab,
		Priors:     priors,
		CondProb:   condProb,
		Smoothing:  cs.Smoothing,
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("validate model: %w", err)
	}
	return m, nil
}

func writeStateFile(path string, state interface{}) error {
	name := filepath.Base(path)

	f, err := createFile(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if err := json.NewEncoder(f).Encode(state); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	return nil
}

func readStateFile(path string, state interface{}) error {
	name := filepath.Base(path)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(state); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func newVocabularyState(v *wordcount.Vocabulary) vocabularyState {
	words := v.GetWordList()
	counts := make([]int, len(words))
	for i, word := range words {
		counts[i] = v.GetWordCount(word)
	}
	return vocabularyState{Version: persistedModelVersion, Words: words, Counts: counts}
}

func newPriorState(p Priors) priorState {
	cats := sortedKeys(p)
	probs := make([]float64, len(cats))
	for i, cat := range cats {
		probs[i] = p[cat]
	}
	return priorState{Version: persistedModelVersion, Categories: cats, Probs: probs}
}

func newCondProbState(m *Model) condProbState {
	cats := m.Categories()
	words := m.Vocabulary.GetWordList()
	probs := make([][]float64, len(words))
	for i, word := range words {
		row := make([]float64, len(cats))
		for j, cat := range cats {
			row[j] = m.CondProb[word][cat]
		}
		probs[i] = row
	}
	return condProbState{
		Version:    persistedModelVersion,
		Smoothing:  m.Smoothing,
		Categories: cats,
		Words:      words,
		Probs:      probs,
	}
}

func (s vocabularyState) vocabulary() (*wordcount.Vocabulary, error) {
	if s.Version != persistedModelVersion {
		return nil, fmt.Errorf("%s: %w: %d", VocabularyFile, ErrUnsupportedVersion, s.Version)
	}
	if len(s.Words) != len(s.Counts) {
		return nil, fmt.Errorf("%w: %d words, %d counts", errInvalidVocabulary, len(s.Words), len(s.Counts))
	}
	if !strictlySorted(s.Words) {
		return nil, fmt.Errorf("%w: words not sorted or not unique", errInvalidVocabulary)
	}

	counts := make(map[string]int, len(s.Words))
	for i, word := range s.Words {
		counts[word] = s.Counts[i]
	}
	v, err := wordcount.VocabularyFromCounts(counts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidVocabulary, err)
	}
	return v, nil
}

func (s priorState) priors() (Priors, error) {
	if s.Version != persistedModelVersion {
		return nil, fmt.Errorf("%s: %w: %d", PriorFile, ErrUnsupportedVersion, s.Version)
	}
	if len(s.Categories) != len(s.Probs) {
		return nil, fmt.Errorf("%w: %d categories, %d probabilities", errInvalidPriors, len(s.Categories), len(s.Probs))
	}
	if !strictlySorted(s.Categories) {
		return nil, fmt.Errorf("%w: categories not sorted or not unique", errInvalidPriors)
	}

	p := make(Priors, len(s.Categories))
	for i, cat := range s.Categories {
		p[cat] = s.Probs[i]
	}
	return p, nil
}

func (s condProbState) table(words, cats []string) (CondProbTable, error) {
	if s.Version != persistedModelVersion {
		return nil, fmt.Errorf("%s: %w: %d", CondProbFile, ErrUnsupportedVersion, s.Version)
	}
	if !slices.Equal(s.Words, words) {
		return nil, fmt.Errorf("%w: words differ from vocabulary", errInvalidCondProb)
	}
	if !slices.Equal(s.Categories, cats) {
		return nil, fmt.Errorf("%w: categories differ from priors", errInvalidCondProb)
	}
	if len(s.Probs) != len(s.Words) {
		return nil, fmt.Errorf("%w: %d rows for %d words", errInvalidCondProb, len(s.Probs), len(s.Words))
	}

	t := make(CondProbTable, len(s.Words))
	for i, word := range s.Words {
		if len(s.Probs[i]) != len(s.Categories) {
			return nil, fmt.Errorf("%w: row %q has %d columns", errInvalidCondProb, word, len(s.Probs[i]))
		}
		row := make(map[string]float64, len(s.Categories))
		for j, cat := range s.Categories {
			row[cat] = s.Probs[i][j]
		}
		t[word] = row
	}
	return t, nil
}

func strictlySorted(s []string) bool {
	for i := 1; i < len(s); i++ {
		if s[i-1] >= s[i] {
			return false
		}
	}
	return true
}
