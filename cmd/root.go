package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/HallyG/stmtgrab/internal/log"
	"github.com/spf13/cobra"
)

var (
	BuildVersion  = `(missing)`
	BuildShortSHA = `(missing)`
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "stmtgrab",
		Short:   "Open-banking statement exporter",
		Long:    `A CLI for fetching account statements from an open-banking API and exporting their transactions to CSV.`,
		Version: fmt.Sprintf("%s (%s)", BuildVersion, BuildShortSHA),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			noColour, _ := cmd.Flags().GetBool("no-colour")
			jsonFormat, _ := cmd.Flags().GetBool("json")

			handler := log.WithColourTextHandler()
			switch {
			case jsonFormat:
				handler = log.WithJSONHandler()
			case noColour:
				handler = log.WithTextHandler()
			}

			logger := log.New(
				log.WithWriter(cmd.ErrOrStderr()),
				log.WithVerbose(verbose),
				handler,
				log.WithAttrs(
					slog.String("build.version", BuildVersion),
					slog.String("build.sha", BuildShortSHA),
				),
			)

			cmd.SetContext(log.WithContext(cmd.Context(), logger))
			return nil
		},
	}

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "enable verbose output")
	flags.BoolP("no-colour", "", false, "disable coloured output")
	flags.BoolP("json", "", false, "write logs as JSON")
	flags.StringP("env-file", "", defaultEnvFile, "dotenv file to load settings from (process environment takes precedence)")
	flags.BoolP("sandbox", "", false, "use the sandbox API base URL (overrides TOCHKA_USE_SANDBOX)")
	flags.StringP("api-version", "", "", "open-banking API version (overrides API_VERSION, default v2.0)")

	rootCmd.AddCommand(
		newExportCommand(),
		newStatusCommand(),
		newRequestCommand(),
	)

	return rootCmd
}

func Main(ctx context.Context, args []string, input io.Reader, output io.Writer, errOutput io.Writer) error {
	rootCmd := newRootCommand()
	rootCmd.SetIn(input)
	rootCmd.SetOut(output)
	rootCmd.SetErr(errOutput)
	rootCmd.SetArgs(args[1:])

	return rootCmd.ExecuteContext(ctx)
}
