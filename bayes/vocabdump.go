package bayes

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/hickeroar/nbtrain/bayes/wordcount"
)

type vocabularyDump struct {
	Words       int           `yaml:"words"`
	Occurrences int           `yaml:"occurrences"`
	Counts      yaml.MapSlice `yaml:"counts"`
}

// WriteVocabularyFile writes a human-readable YAML listing of the vocabulary
// and its global counts, in word order.
func WriteVocabularyFile(path string, v *wordcount.Vocabulary) error {
	words := v.GetWordList()
	dump := vocabularyDump{
		Words:       len(words),
		Occurrences: v.GetTally(),
		Counts:      make(yaml.MapSlice, 0, len(words)),
	}
	for _, word := range words {
		dump.Counts = append(dump.Counts, yaml.MapItem{Key: word, Value: v.GetWordCount(word)})
	}

	data, err := yaml.Marshal(dump)
	if err != nil {
		return fmt.Errorf("marshal vocabulary: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create vocabulary dir: %w", err)
	}

	tmp, err := createTemp(dir, ".vocab-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer removeAll(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write vocabulary: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := renameFile(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	plog.WithField("path", path).Info("vocabulary written")

	return nil
}
