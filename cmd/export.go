package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/HallyG/stmtgrab/internal/domain"
	"github.com/HallyG/stmtgrab/internal/export"
	"github.com/HallyG/stmtgrab/internal/log"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type exportOptions struct {
	statementID string
	output      string
}

func newExportCommand() *cobra.Command {
	opts := &exportOptions{}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export a statement's transactions to CSV",
		Example: `  stmtgrab export --statement-id stmt-123
  stmtgrab export --statement-id stmt-123 --output transactions.csv --sandbox`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return logFailure(cmd, runExport(cmd, opts))
		},
	}

	exportCmd.Flags().StringVarP(&opts.statementID, "statement-id", "s", "", "statement to export (prompted for when omitted)")
	exportCmd.Flags().StringVarP(&opts.output, "output", "o", "", "CSV file to write (overrides OUTPUT_CSV_FILE)")

	return exportCmd
}

func runExport(cmd *cobra.Command, opts *exportOptions) error {
	ctx := cmd.Context()
	logger := log.FromContext(ctx)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if strings.TrimSpace(opts.output) != "" {
		cfg.OutputFile = strings.TrimSpace(opts.output)
	}

	if cfg.OutputFile == "" {
		return errors.New("OUTPUT_CSV_FILE is not specified")
	}

	client, err := newStatementClient(ctx, cfg)
	if err != nil {
		return err
	}

	statementID, err := resolveStatementID(cmd, opts.statementID)
	if err != nil {
		return err
	}

	status, ok := client.CheckStatementStatus(ctx, statementID)
	if !ok {
		status = "unknown"
	}

	logger.InfoContext(ctx, "statement status",
		slog.String("statement.id", statementID),
		slog.String("statement.status", status),
	)

	stmt := client.GetStatement(ctx, statementID)
	if stmt == nil {
		return fmt.Errorf("failed to retrieve statement %s", statementID)
	}

	exporter := export.New(export.WithDirectionLabels(domain.DirectionLabels{
		Credit: domain.Direction(cfg.CreditLabel),
		Debit:  domain.Direction(cfg.DebitLabel),
	}))

	result := exporter.TransactionsCSV(ctx, stmt, cfg.OutputFile)
	if !result.OK() {
		return fmt.Errorf("failed to create CSV for statement %s: %w", statementID, result.Err)
	}

	logger.InfoContext(ctx, "exported transactions",
		slog.String("path", result.Path),
		slog.String("writer", result.Strategy),
		slog.Int("transaction.written", result.Written),
		slog.Int("transaction.skipped", result.Skipped),
		slog.String("transaction.totals", formatTotals(result)),
	)

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d transactions to %s\n", result.Written, result.Path)
	return err
}

func formatTotals(result export.Result) string {
	currencies := lo.Keys(result.Totals)
	slices.Sort(currencies)

	return strings.Join(lo.Map(currencies, func(currency string, _ int) string {
		return domain.FormatAmount(result.Totals[currency], currency)
	}), ", ")
}
