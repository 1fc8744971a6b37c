package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

type requestOptions struct {
	fromDate string
	toDate   string
	format   string
}

func newRequestCommand() *cobra.Command {
	opts := &requestOptions{}

	requestCmd := &cobra.Command{
		Use:     "request",
		Short:   "Ask the bank to prepare a statement for a date range",
		Example: `  stmtgrab request --from 2024-01-01 --to 2024-01-31`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return logFailure(cmd, runRequest(cmd, opts))
		},
	}

	requestCmd.Flags().StringVarP(&opts.fromDate, "from", "", "", "first day of the statement (YYYY-MM-DD)")
	requestCmd.Flags().StringVarP(&opts.toDate, "to", "", "", "last day of the statement (YYYY-MM-DD)")
	requestCmd.Flags().StringVarP(&opts.format, "format", "", "json", "statement format")

	_ = requestCmd.MarkFlagRequired("from")
	_ = requestCmd.MarkFlagRequired("to")

	return requestCmd
}

func runRequest(cmd *cobra.Command, opts *requestOptions) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	client, err := newStatementClient(ctx, cfg)
	if err != nil {
		return err
	}

	result := client.RequestStatement(ctx, opts.fromDate, opts.toDate, opts.format)
	if result == nil {
		return errors.New("failed to request statement")
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
