package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand() *cobra.Command {
	var statementID string

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the processing status of a statement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return logFailure(cmd, runStatus(cmd, statementID))
		},
	}

	statusCmd.Flags().StringVarP(&statementID, "statement-id", "s", "", "statement to check (prompted for when omitted)")

	return statusCmd
}

func runStatus(cmd *cobra.Command, statementID string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	client, err := newStatementClient(ctx, cfg)
	if err != nil {
		return err
	}

	id, err := resolveStatementID(cmd, statementID)
	if err != nil {
		return err
	}

	status, ok := client.CheckStatementStatus(ctx, id)
	if !ok {
		return fmt.Errorf("failed to retrieve status for statement %s", id)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), status)
	return err
}
