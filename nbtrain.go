package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/hickeroar/nbtrain/bayes"
	"github.com/hickeroar/nbtrain/config"
	"github.com/hickeroar/nbtrain/corpus"
	"github.com/hickeroar/nbtrain/logging"
)

var (
	notifyContext = signal.NotifyContext
	openSource    = corpus.Open
	logFatal      = func(v ...interface{}) { log.Fatal(v...) }
	runMain       = func() error {
		cfg, err := parseConfig(flag.CommandLine, os.Args[1:])
		if err != nil {
			return err
		}

		ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		_, err = train(ctx, cfg)
		return err
	}
)

// parseConfig layers the optional config file over the defaults and then
// applies every flag that was set explicitly on the command line.
func parseConfig(fs *flag.FlagSet, args []string) (*config.Config, error) {
	defaults := config.Default()

	configPath := fs.String("config", "", "Path to a YAML config file.")
	datasource := fs.String("datasource", "", "CSV file path or postgres:// URL of the training corpus.")
	table := fs.String("table_name", "", "Table holding the corpus when the datasource is Postgres.")
	idColumn := fs.String("id_column", defaults.IDColumn, "Column holding the document id.")
	textColumn := fs.String("text_column", defaults.TextColumn, "Column holding the document text.")
	codeColumn := fs.String("code_column", defaults.CodeColumn, "Column holding the category code.")
	majorCode := fs.Bool("use_major_code", false, "Roll category codes up to their major code.")
	modelDir := fs.String("model", defaults.Model, "Directory the trained model is written to.")
	outputVocab := fs.String("output_vocab", "", "Optional path for a YAML dump of the vocabulary.")
	smoothing := fs.String("smoothing", defaults.Smoothing, "Smoothing strategy: laplace or global.")
	workers := fs.Int("workers", defaults.Workers, "Categories scored concurrently.")
	logLevel := fs.String("log_level", defaults.LogLevel, "Log level: debug, info, warn or error.")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := defaults
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "datasource":
			cfg.Datasource = *datasource
		case "table_name":
			cfg.TableName = *table
		case "id_column":
			cfg.IDColumn = *idColumn
		case "text_column":
			cfg.TextColumn = *textColumn
		case "code_column":
			cfg.CodeColumn = *codeColumn
		case "use_major_code":
			cfg.UseMajorCode = *majorCode
		case "model":
			cfg.Model = *modelDir
		case "output_vocab":
			cfg.OutputVocab = *outputVocab
		case "smoothing":
			cfg.Smoothing = *smoothing
		case "workers":
			cfg.Workers = *workers
		case "log_level":
			cfg.LogLevel = *logLevel
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// train runs one full training pass described by cfg.
func train(ctx context.Context, cfg *config.Config) (*TrainingSummary, error) {
	if err := logging.Setup(cfg.LogLevel, nil); err != nil {
		return nil, err
	}

	smoother, err := bayes.LookupSmoother(cfg.Smoothing)
	if err != nil {
		return nil, err
	}

	src, err := openSource(ctx, cfg.Datasource, cfg.TableName, corpus.Columns{
		ID:   cfg.IDColumn,
		Text: cfg.TextColumn,
		Code: cfg.CodeColumn,
	})
	if err != nil {
		return nil, fmt.Errorf("open datasource: %w", err)
	}
	defer src.Close()

	tok := &corpus.Tokenizer{
		Language:  cfg.Tokenizer.Language,
		Stem:      cfg.Tokenizer.Stem,
		StripHTML: cfg.Tokenizer.StripHTML,
	}
	c, err := corpus.Load(ctx, src, tok, corpus.Options{MajorCode: cfg.UseMajorCode})
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	if err := bayes.ResetModelDir(cfg.Model); err != nil {
		return nil, err
	}

	trainer := &bayes.Trainer{Smoother: smoother, Workers: cfg.Workers}
	model, err := trainer.Train(c)
	if err != nil {
		return nil, fmt.Errorf("train model: %w", err)
	}

	if err := bayes.WriteModelDir(cfg.Model, model); err != nil {
		return nil, fmt.Errorf("write model: %w", err)
	}

	// WriteModelDir replaces cfg.Model wholesale, so the dump follows it.
	if cfg.OutputVocab != "" {
		if err := bayes.WriteVocabularyFile(cfg.OutputVocab, c.Vocabulary); err != nil {
			return nil, fmt.Errorf("write vocabulary: %w", err)
		}
	}

	summary := NewTrainingSummary(c, model, cfg.Model)
	summary.Log()
	return summary, nil
}

func main() {
	if err := runMain(); err != nil {
		logFatal(err)
	}
}
