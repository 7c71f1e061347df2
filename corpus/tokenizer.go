package corpus

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
	"github.com/kljensen/snowball"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/hickeroar/nbtrain/bayes/wordcount"
)

// Tokenizer turns raw document text into normalized word tokens.
type Tokenizer struct {
	Language  string // snowball stemmer language
	Stem      bool
	StripHTML bool
}

// NewTokenizer returns an English stemming tokenizer that strips markup.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{
		Language:  "english",
		Stem:      true,
		StripHTML: true,
	}
}

// Tokenize returns the normalized tokens of text in document order.
func (t *Tokenizer) Tokenize(text string) ([]string, error) {
	var err error
	if t.StripHTML {
		text, err = extractText(text)
		if err != nil {
			return nil, fmt.Errorf("strip markup: %w", err)
		}
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	text, _, err = transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), text)
	if err != nil {
		return nil, fmt.Errorf("normalize text: %w", err)
	}

	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithSegmentation(false),
		prose.WithExtraction(false))
	if err != nil {
		return nil, fmt.Errorf("tokenize text: %w", err)
	}

	fold := cases.Fold()
	tokens := make([]string, 0, len(doc.Tokens()))
	for _, tok := range doc.Tokens() {
		word := strings.TrimFunc(fold.String(tok.Text), notWordRune)
		if word == "" {
			continue
		}
		if t.Stem {
			stemmed, err := snowball.Stem(word, t.Language, true)
			if err != nil {
				return nil, fmt.Errorf("stem %q: %w", word, err)
			}
			word = stemmed
		}
		tokens = append(tokens, word)
	}

	return tokens, nil
}

// Count tokenizes text into a single-document counter.
func (t *Tokenizer) Count(text string) (*wordcount.Counter, error) {
	tokens, err := t.Tokenize(text)
	if err != nil {
		return nil, err
	}
	return wordcount.FromTokens(tokens), nil
}

func notWordRune(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r)
}

// extractText returns the text content of an HTML fragment, skipping script
// and style elements.
func extractText(s string) (string, error) {
	if !strings.ContainsAny(s, "<&") {
		return s, nil
	}

	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return b.String(), nil
			}
			return "", z.Err()
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skip = true
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skip = false
			}
		case html.TextToken:
			if skip {
				continue
			}
			b.Write(z.Text())
			b.WriteByte(' ')
		}
	}
}
