package format

import (
	"fmt"
	"io"

	"github.com/HallyG/stmtgrab/internal/domain"
)

// Columns is the fixed header of the statement CSV.
var Columns = []string{
	"transaction_id",
	"amount",
	"currency",
	"date",
	"counterparty",
	"transaction_description",
	"transaction_direction",
}

type Formatter interface {
	WriteHeader() error
	WriteRow(row *domain.Row) error
	Flush() error
}

var _ Formatter = (*StatementFormatter)(nil)

// StatementFormatter writes rows in Columns order.
type StatementFormatter struct {
	*CSVFormatter
}

func NewStatementFormatter(w io.Writer) *StatementFormatter {
	return &StatementFormatter{
		CSVFormatter: NewCSVFormatter(w),
	}
}

func (s *StatementFormatter) WriteHeader() error {
	return s.writer.Write(Columns)
}

func (s *StatementFormatter) WriteRow(row *domain.Row) error {
	return s.writer.Write([]string{
		row.TransactionID,
		row.Amount.String(),
		row.Currency,
		row.Date,
		row.Counterparty,
		row.Description,
		string(row.Direction),
	})
}

// WriteCollection writes the header, every row and flushes.
func WriteCollection(formatter Formatter, rows []domain.Row) error {
	if err := formatter.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range rows {
		if err := formatter.WriteRow(&rows[i]); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := formatter.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	return nil
}
