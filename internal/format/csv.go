package format

import (
	"encoding/csv"
	"io"
)

// CSVFormatter wraps csv.Writer for the transaction formatters.
type CSVFormatter struct {
	writer *csv.Writer
}

func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{
		writer: csv.NewWriter(w),
	}
}

func (f *CSVFormatter) Flush() error {
	f.writer.Flush()

	return f.writer.Error()
}
