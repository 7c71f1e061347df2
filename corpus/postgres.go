package corpus

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var errMissingTable = errors.New("table name is required for a database source")

type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads records from a Postgres table.
type PostgresSource struct {
	db    rowQuerier
	close func()
	table string
	cols  Columns
}

// NewPostgresSource connects a pool to connString. The connection itself is
// established lazily on the first query.
func NewPostgresSource(ctx context.Context, connString, table string, cols Columns) (*PostgresSource, error) {
	if table == "" {
		return nil, errMissingTable
	}

	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	return &PostgresSource{db: pool, close: pool.Close, table: table, cols: cols}, nil
}

// Records selects id, text and category of every row, ordered by id.
func (s *PostgresSource) Records(ctx context.Context) ([]Record, error) {
	rows, err := s.db.Query(ctx, buildQuery(s.table, s.cols))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table, err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var rec Record
		err := row.Scan(&rec.ID, &rec.Text, &rec.Category)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.table, err)
	}

	plog.WithFields(log.Fields{
		"table":   s.table,
		"records": len(records),
	}).Debug("table read")

	return records, nil
}

// Close releases the pool.
func (s *PostgresSource) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}

func buildQuery(table string, cols Columns) string {
	return fmt.Sprintf(
		"SELECT COALESCE(%s::text, ''), COALESCE(%s::text, ''), COALESCE(%s::text, '') FROM %s ORDER BY 1",
		pgx.Identifier{cols.ID}.Sanitize(),
		pgx.Identifier{cols.Text}.Sanitize(),
		pgx.Identifier{cols.Code}.Sanitize(),
		pgx.Identifier(strings.Split(table, ".")).Sanitize(),
	)
}
