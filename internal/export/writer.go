package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/HallyG/stmtgrab/internal/domain"
	"github.com/HallyG/stmtgrab/internal/format"
)

// Writer persists rows as a CSV file at path.
type Writer interface {
	Name() string
	WriteFile(path string, rows []domain.Row) error
}

var (
	_ Writer = AtomicFileWriter{}
	_ Writer = DirectFileWriter{}
)

// AtomicFileWriter writes to a temporary file next to path and renames it into
// place, so path is either left untouched or fully written.
type AtomicFileWriter struct{}

func (AtomicFileWriter) Name() string {
	return "atomic"
}

func (AtomicFileWriter) WriteFile(path string, rows []domain.Row) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := format.WriteCollection(format.NewStatementFormatter(tmp), rows); err != nil {
		return err
	}

	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

// DirectFileWriter creates (or truncates) path and streams rows into it.
type DirectFileWriter struct{}

func (DirectFileWriter) Name() string {
	return "direct"
}

func (DirectFileWriter) WriteFile(path string, rows []domain.Row) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close: %w", closeErr)
		}
	}()

	return format.WriteCollection(format.NewStatementFormatter(f), rows)
}

type Attempt struct {
	Strategy string
	Err      error
}

// WriteResult records which strategies were tried and which one succeeded.
type WriteResult struct {
	Strategy string // empty when every strategy failed
	Attempts []Attempt
}

func (r WriteResult) OK() bool {
	return r.Strategy != ""
}

// Err joins the errors of every failed attempt.
func (r WriteResult) Err() error {
	if len(r.Attempts) == 0 {
		return errors.New("no writers configured")
	}

	errs := make([]error, 0, len(r.Attempts))
	for _, attempt := range r.Attempts {
		if attempt.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", attempt.Strategy, attempt.Err))
		}
	}

	return errors.Join(errs...)
}

// WriteWithFallback tries each writer in order and stops at the first success.
func WriteWithFallback(path string, rows []domain.Row, writers ...Writer) WriteResult {
	var result WriteResult

	for _, w := range writers {
		if w == nil {
			continue
		}

		err := w.WriteFile(path, rows)
		result.Attempts = append(result.Attempts, Attempt{Strategy: w.Name(), Err: err})

		if err == nil {
			result.Strategy = w.Name()
			return result
		}
	}

	return result
}
