package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/HallyG/stmtgrab/internal/config"
	"github.com/HallyG/stmtgrab/internal/log"
	"github.com/HallyG/stmtgrab/internal/statement"
	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const defaultEnvFile = ".env"

// loadConfig reads the dotenv file and environment, then applies flag overrides.
// The result is validated when the statement client is built.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	ctx := cmd.Context()
	flags := cmd.Flags()

	envFile, _ := flags.GetString("env-file")
	if err := config.LoadEnvFile(envFile, flags.Changed("env-file")); err != nil {
		return nil, err
	}

	cfg := config.FromEnv(os.Getenv)

	if flags.Changed("sandbox") {
		cfg.UseSandbox, _ = flags.GetBool("sandbox")
	}

	if version, _ := flags.GetString("api-version"); strings.TrimSpace(version) != "" {
		cfg.APIVersion = strings.TrimSpace(version)
	}

	log.FromContext(ctx).DebugContext(ctx, "loaded configuration",
		slog.Bool("config.sandbox", cfg.UseSandbox),
		slog.String("config.base_url", cfg.BaseURL()),
		slog.String("config.api_version", cfg.APIVersion),
		slog.String("account.id", cfg.AccountID),
	)

	return cfg, nil
}

func newStatementClient(ctx context.Context, cfg *config.Config) (*statement.Client, error) {
	return statement.New(ctx, cfg, nil)
}

// resolveStatementID returns the flag value, or asks for one interactively.
func resolveStatementID(cmd *cobra.Command, statementID string) (string, error) {
	if id := strings.TrimSpace(statementID); id != "" {
		return id, nil
	}

	return promptStatementID(cmd.InOrStdin(), cmd.ErrOrStderr())
}

func promptStatementID(input io.Reader, output io.Writer) (string, error) {
	var statementID string

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Enter the statement ID").
			Value(&statementID).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("statement ID is required")
				}

				return nil
			}),
	)).WithInput(input).WithOutput(output).WithAccessible(!isTerminal(input))

	if err := form.Run(); err != nil {
		return "", err
	}

	// Accessible mode gives up silently once the input is exhausted.
	if strings.TrimSpace(statementID) == "" {
		return "", errors.New("statement ID is required")
	}

	return strings.TrimSpace(statementID), nil
}

// isTerminal reports whether r is an interactive terminal. Anything else, such as a
// pipe, gets a plain line-based prompt.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// logFailure records err on the command's logger before it is returned for the exit status.
func logFailure(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}

	ctx := cmd.Context()
	log.FromContext(ctx).ErrorContext(ctx, "command failed",
		slog.String("command", cmd.Name()),
		slog.Any("err", err),
	)

	return err
}
