package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/HallyG/stmtgrab/internal/domain"
	"github.com/HallyG/stmtgrab/internal/log"
	"github.com/shopspring/decimal"
)

var (
	ErrNoTransactions = errors.New("statement has no transactions")
	ErrNoRows         = errors.New("no valid transactions to write")
)

// Result describes the outcome of TransactionsCSV.
type Result struct {
	Path     string
	Written  int
	Skipped  int
	Totals   map[string]decimal.Decimal
	Strategy string
	Err      error
}

func (r Result) OK() bool {
	return r.Err == nil
}

type Exporter struct {
	labels  domain.DirectionLabels
	writers []Writer
}

type Option func(*Exporter)

// WithDirectionLabels sets the labels used for non-negative and negative amounts.
func WithDirectionLabels(labels domain.DirectionLabels) Option {
	return func(e *Exporter) {
		e.labels = labels
	}
}

// WithWriters replaces the writer strategies, tried in the given order.
func WithWriters(writers ...Writer) Option {
	return func(e *Exporter) {
		e.writers = writers
	}
}

func New(opts ...Option) *Exporter {
	e := &Exporter{
		labels:  domain.DefaultDirectionLabels,
		writers: []Writer{AtomicFileWriter{}, DirectFileWriter{}},
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		opt(e)
	}

	return e
}

// TransactionsCSV projects stmt and writes the rows to path. Nothing is written
// when stmt is empty or no transaction survives the projection.
func (e *Exporter) TransactionsCSV(ctx context.Context, stmt *domain.Statement, path string) Result {
	result := Result{Path: path}

	if stmt == nil || len(stmt.Transactions) == 0 {
		result.Err = ErrNoTransactions
		return result
	}

	projection := Project(stmt, e.labels)
	result.Skipped = projection.Skipped
	result.Totals = projection.Totals

	logger := log.FromContext(ctx)
	if projection.Skipped > 0 {
		logger.DebugContext(ctx, "skipped malformed transactions",
			slog.Int("transaction.skipped", projection.Skipped),
			slog.Int("transaction.total", len(stmt.Transactions)),
		)
	}

	if len(projection.Rows) == 0 {
		result.Err = ErrNoRows
		return result
	}

	written := WriteWithFallback(path, projection.Rows, e.writers...)
	for _, attempt := range written.Attempts {
		if attempt.Err != nil {
			logger.WarnContext(ctx, "CSV writer failed",
				slog.String("writer", attempt.Strategy),
				slog.String("path", path),
				slog.Any("err", attempt.Err),
			)
		}
	}

	if !written.OK() {
		result.Err = fmt.Errorf("write %s: %w", path, written.Err())
		return result
	}

	result.Strategy = written.Strategy
	result.Written = len(projection.Rows)

	return result
}

// CreateTransactionsCSV writes stmt's transactions to path using the default
// strategies and labels, and reports whether a file was produced.
func CreateTransactionsCSV(ctx context.Context, stmt *domain.Statement, path string) bool {
	return New().TransactionsCSV(ctx, stmt, path).OK()
}
