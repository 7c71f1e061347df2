// Package corpus loads labeled documents from a backing data source and
// reduces each one to a word-count table.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/hickeroar/nbtrain/bayes/wordcount"
)

var (
	errMissingID      = errors.New("document id is empty")
	errDuplicateID    = errors.New("duplicate document id")
	errNonNumericCode = errors.New("category code is not numeric")
	errNilSource      = errors.New("source is nil")
)

var plog = log.WithField("pkg", "corpus")

// Record is one raw row read from a Source.
type Record struct {
	ID       string
	Text     string
	Category string
}

// Source yields the raw records of a training corpus.
type Source interface {
	Records(ctx context.Context) ([]Record, error)
	Close() error
}

// Columns names the id, text and category columns of a tabular source.
type Columns struct {
	ID   string
	Text string
	Code string
}

// Document is a labeled training case reduced to word counts.
type Document struct {
	ID       string
	Category string
	Counts   *wordcount.Counter
}

// Corpus is the full set of documents plus the vocabulary built over them.
type Corpus struct {
	Documents  []Document
	Vocabulary *wordcount.Vocabulary
}

// Options control how records become documents.
type Options struct {
	// MajorCode rolls numeric category codes up to their major code (1200 -> 12).
	MajorCode bool
}

// NewDocument builds a document from an explicit word-count table.
func NewDocument(id, category string, counts map[string]int) (Document, error) {
	if id == "" {
		return Document{}, errMissingID
	}
	c, err := wordcount.FromMap(counts)
	if err != nil {
		return Document{}, fmt.Errorf("document %q: %w", id, err)
	}
	return Document{ID: id, Category: category, Counts: c}, nil
}

// NewCorpus validates documents and builds the vocabulary over them. The
// corpus holds its own copy of docs.
func NewCorpus(in []Document) (*Corpus, error) {
	docs := append([]Document(nil), in...)
	seen := make(map[string]struct{}, len(docs))
	vocab := wordcount.NewVocabulary()

	for i, doc := range docs {
		if doc.ID == "" {
			return nil, fmt.Errorf("document %d: %w", i, errMissingID)
		}
		if _, ok := seen[doc.ID]; ok {
			return nil, fmt.Errorf("%w: %q", errDuplicateID, doc.ID)
		}
		seen[doc.ID] = struct{}{}
		if doc.Counts == nil {
			docs[i].Counts = wordcount.NewCounter()
		}
		vocab.Absorb(docs[i].Counts)
	}

	return &Corpus{Documents: docs, Vocabulary: vocab}, nil
}

// Load reads every record from src, tokenizes it and returns the corpus.
func Load(ctx context.Context, src Source, tok *Tokenizer, opts Options) (*Corpus, error) {
	if src == nil {
		return nil, errNilSource
	}
	if tok == nil {
		tok = NewTokenizer()
	}

	records, err := src.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	docs := make([]Document, 0, len(records))
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		category := rec.Category
		if opts.MajorCode {
			category, err = majorCode(category)
			if err != nil {
				return nil, fmt.Errorf("document %q: %w", rec.ID, err)
			}
		}

		counts, err := tok.Count(rec.Text)
		if err != nil {
			return nil, fmt.Errorf("tokenize document %q: %w", rec.ID, err)
		}
		docs = append(docs, Document{ID: rec.ID, Category: category, Counts: counts})
	}

	c, err := NewCorpus(docs)
	if err != nil {
		return nil, err
	}

	plog.WithFields(log.Fields{
		"documents": len(c.Documents),
		"words":     c.Vocabulary.Size(),
	}).Info("corpus loaded")

	return c, nil
}

func majorCode(code string) (string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil {
		return "", fmt.Errorf("%w: %q", errNonNumericCode, code)
	}
	return strconv.Itoa(n / 100), nil
}

// Open returns a Postgres source for postgres:// URLs and a CSV source for
// anything else.
func Open(ctx context.Context, datasource, table string, cols Columns) (Source, error) {
	if strings.HasPrefix(datasource, "postgres://") || strings.HasPrefix(datasource, "postgresql://") {
		return NewPostgresSource(ctx, datasource, table, cols)
	}
	return NewCSVSource(datasource, cols), nil
}
