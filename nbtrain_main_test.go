package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hickeroar/nbtrain/bayes"
	"github.com/hickeroar/nbtrain/config"
	"github.com/hickeroar/nbtrain/corpus"
)

const billsCSV = `id,text,code
HB0001,"The quick brown fox jumps over the lazy dog",1200
HB0002,"A tax credit for the fox and the hound",1200
HB0003,"Budget appropriations for the fiscal year",1000
HB0004,"<p>Revenue &amp; budget <b>balancing</b></p>",1000
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// withArgs swaps in a fresh flag set and argument list for one runMain call.
func withArgs(t *testing.T, args ...string) {
	t.Helper()
	oldFlagCommandLine := flag.CommandLine
	oldArgs := os.Args
	t.Cleanup(func() {
		flag.CommandLine = oldFlagCommandLine
		os.Args = oldArgs
	})

	flag.CommandLine = flag.NewFlagSet("test", flag.ContinueOnError)
	os.Args = append([]string{"nbtrain.test"}, args...)
}

func TestRunMainTrainsFromCSV(t *testing.T) {
	csvPath := writeFile(t, "bills.csv", billsCSV)
	out := t.TempDir()
	modelDir := filepath.Join(out, "Model_Dir")
	vocabPath := filepath.Join(out, "vocab.yaml")

	withArgs(t,
		"--datasource", csvPath,
		"--model", modelDir,
		"--output_vocab", vocabPath,
		"--workers", "2",
		"--log_level", "error",
	)

	if err := runMain(); err != nil {
		t.Fatalf("expected nil runMain error, got %v", err)
	}

	for _, name := range []string{bayes.VocabularyFile, bayes.PriorFile, bayes.CondProbFile} {
		if _, err := os.Stat(filepath.Join(modelDir, name)); err != nil {
			t.Fatalf("expected %s in model dir: %v", name, err)
		}
	}
	if _, err := os.Stat(vocabPath); err != nil {
		t.Fatalf("expected vocabulary dump: %v", err)
	}

	model, err := bayes.ReadModelDir(modelDir)
	if err != nil {
		t.Fatalf("read model: %v", err)
	}
	if want := (bayes.Priors{"1000": 0.5, "1200": 0.5}); !reflect.DeepEqual(model.Priors, want) {
		t.Fatalf("unexpected priors: got %v, want %v", model.Priors, want)
	}
	if model.Vocabulary.GetWordCount("fox") == 0 {
		t.Fatal("expected fox in vocabulary")
	}
	if model.CondProb["fox"]["1200"] <= model.CondProb["fox"]["1000"] {
		t.Fatalf("expected fox to favour 1200: %v", model.CondProb["fox"])
	}
}

func TestRunMainKeepsVocabularyInsideModelDir(t *testing.T) {
	csvPath := writeFile(t, "bills.csv", billsCSV)
	modelDir := filepath.Join(t.TempDir(), "Model_Dir")
	vocabPath := filepath.Join(modelDir, "vocab.yaml")

	withArgs(t, "--datasource", csvPath, "--model", modelDir, "--output_vocab", vocabPath, "--log_level", "error")

	if err := runMain(); err != nil {
		t.Fatalf("expected nil runMain error, got %v", err)
	}
	if _, err := os.Stat(vocabPath); err != nil {
		t.Fatalf("expected vocabulary dump to survive model write: %v", err)
	}
	if _, err := bayes.ReadModelDir(modelDir); err != nil {
		t.Fatalf("read model: %v", err)
	}
}

func TestRunMainMajorCodeRollup(t *testing.T) {
	csvPath := writeFile(t, "bills.csv", billsCSV)
	modelDir := filepath.Join(t.TempDir(), "model")

	withArgs(t, "--datasource", csvPath, "--model", modelDir, "--use_major_code", "--log_level", "error")

	if err := runMain(); err != nil {
		t.Fatalf("expected nil runMain error, got %v", err)
	}
	model, err := bayes.ReadModelDir(modelDir)
	if err != nil {
		t.Fatalf("read model: %v", err)
	}
	if got := model.Categories(); !reflect.DeepEqual(got, []string{"10", "12"}) {
		t.Fatalf("unexpected categories: %v", got)
	}
}

func TestRunMainEmptyCorpus(t *testing.T) {
	csvPath := writeFile(t, "bills.csv", "id,text,code\n")
	modelDir := filepath.Join(t.TempDir(), "model")

	withArgs(t, "--datasource", csvPath, "--model", modelDir, "--log_level", "error")

	err := runMain()
	if !errors.Is(err, bayes.ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(modelDir, bayes.PriorFile)); !os.IsNotExist(statErr) {
		t.Fatalf("expected no model after failed training, got %v", statErr)
	}
}

func TestRunMainRequiresDatasource(t *testing.T) {
	withArgs(t, "--model", filepath.Join(t.TempDir(), "model"))

	if err := runMain(); err == nil {
		t.Fatal("expected error without datasource")
	}
}

func TestRunMainRejectsUnknownFlag(t *testing.T) {
	withArgs(t, "--port", "8000")

	if err := runMain(); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestParseConfigFlagsOverrideFile(t *testing.T) {
	cfgPath := writeFile(t, "nbtrain.yaml", "datasource: bills.csv\nsmoothing: global\nworkers: 2\n")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := parseConfig(fs, []string{"--config", cfgPath, "--workers", "5", "--text_column", "body"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}

	if cfg.Datasource != "bills.csv" || cfg.Smoothing != "global" {
		t.Fatalf("expected file values to survive, got %+v", cfg)
	}
	if cfg.Workers != 5 || cfg.TextColumn != "body" {
		t.Fatalf("expected flag overrides, got workers=%d text_column=%q", cfg.Workers, cfg.TextColumn)
	}
	if cfg.IDColumn != "id" {
		t.Fatalf("expected unset flag to keep default, got %q", cfg.IDColumn)
	}
}

func TestParseConfigErrors(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	if _, err := parseConfig(fs, []string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Fatal("expected error for missing config file")
	}

	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	if _, err := parseConfig(fs, []string{"--datasource", "bills.csv", "--smoothing", "nope"}); !errors.Is(err, bayes.ErrUnknownSmoother) {
		t.Fatalf("expected ErrUnknownSmoother, got %v", err)
	}
}

func testConfig(t *testing.T, datasource string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Datasource = datasource
	cfg.Model = filepath.Join(t.TempDir(), "model")
	cfg.LogLevel = "error"
	return cfg
}

func TestTrainHonoursCancellation(t *testing.T) {
	cfg := testConfig(t, writeFile(t, "bills.csv", billsCSV))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := train(ctx, cfg); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type closingSource struct {
	records []corpus.Record
	closed  bool
}

func (s *closingSource) Records(context.Context) ([]corpus.Record, error) {
	return s.records, nil
}

func (s *closingSource) Close() error {
	s.closed = true
	return nil
}

func TestTrainUsesOpenedSource(t *testing.T) {
	oldOpenSource := openSource
	defer func() { openSource = oldOpenSource }()

	src := &closingSource{records: []corpus.Record{
		{ID: "SB1", Text: "highway bridge repair", Category: "2100"},
		{ID: "SB2", Text: "hospital coverage", Category: "3000"},
		{ID: "SB3", Text: "bridge tolls", Category: "2100"},
	}}
	var gotTable string
	openSource = func(_ context.Context, _, table string, _ corpus.Columns) (corpus.Source, error) {
		gotTable = table
		return src, nil
	}

	cfg := testConfig(t, "postgres://trainer@localhost/bills")
	cfg.TableName = "public.bills"

	summary, err := train(context.Background(), cfg)
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}
	if gotTable != "public.bills" {
		t.Fatalf("unexpected table: got %q", gotTable)
	}
	if !src.closed {
		t.Fatal("expected source to be closed")
	}
	if summary.Documents != 3 || len(summary.Categories) != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestTrainOpenSourceError(t *testing.T) {
	oldOpenSource := openSource
	defer func() { openSource = oldOpenSource }()

	expectedErr := errors.New("connection refused")
	openSource = func(context.Context, string, string, corpus.Columns) (corpus.Source, error) {
		return nil, expectedErr
	}

	if _, err := train(context.Background(), testConfig(t, "postgres://nowhere/bills")); !errors.Is(err, expectedErr) {
		t.Fatalf("expected wrapped open error, got %v", err)
	}
}

func TestMainHandlesRunError(t *testing.T) {
	oldRunMain := runMain
	oldLogFatal := logFatal
	defer func() {
		runMain = oldRunMain
		logFatal = oldLogFatal
	}()

	expectedErr := errors.New("boom")
	runMain = func() error { return expectedErr }

	called := false
	logFatal = func(v ...interface{}) {
		called = true
		if len(v) != 1 {
			t.Fatalf("unexpected fatal args: %v", v)
		}
		if !errors.Is(v[0].(error), expectedErr) {
			t.Fatalf("unexpected fatal error: %v", v[0])
		}
	}

	main()
	if !called {
		t.Fatal("expected main to call logFatal on error")
	}
}
