package corpus

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var errMissingColumn = errors.New("column not found in header")

// CSVSource reads records from a CSV file whose first row names the columns.
type CSVSource struct {
	path string
	cols Columns
}

// NewCSVSource returns a source reading path.
func NewCSVSource(path string, cols Columns) *CSVSource {
	return &CSVSource{path: path, cols: cols}
}

// Records reads every data row of the file.
func (s *CSVSource) Records(ctx context.Context) ([]Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	return readCSV(ctx, f, s.cols)
}

// Close is a no-op; the file is closed after every read.
func (s *CSVSource) Close() error {
	return nil
}

func readCSV(ctx context.Context, r io.Reader, cols Columns) ([]Record, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read csv header: %w", io.ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	idIdx, err := columnIndex(header, cols.ID)
	if err != nil {
		return nil, err
	}
	textIdx, err := columnIndex(header, cols.Text)
	if err != nil {
		return nil, err
	}
	codeIdx, err := columnIndex(header, cols.Code)
	if err != nil {
		return nil, err
	}

	var records []Record
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		records = append(records, Record{
			ID:       row[idIdx],
			Text:     row[textIdx],
			Category: row[codeIdx],
		})
	}

	plog.WithField("records", len(records)).Debug("csv read")

	return records, nil
}

func columnIndex(header []string, name string) (int, error) {
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), name) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", errMissingColumn, name)
}
