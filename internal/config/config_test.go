package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/HallyG/stmtgrab/internal/config"
	"github.com/stretchr/testify/require"
)

func envFunc(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func validEnv() map[string]string {
	return map[string]string{
		config.EnvAPIBaseURL:        "https://enter.tochka.com/uapi/",
		config.EnvSandboxAPIBaseURL: "https://enter.tochka.com/sandbox/v2/",
		config.EnvAccountID:         "40817810802000000008/044525104",
		config.EnvAccessToken:       "token",
		config.EnvOutputFile:        "statement.csv",
	}
}

func TestFromEnv(t *testing.T) {
	t.Parallel()

	t.Run("applies defaults", func(t *testing.T) {
		t.Parallel()

		cfg := config.FromEnv(envFunc(validEnv()))

		require.Equal(t, config.DefaultAPIVersion, cfg.APIVersion)
		require.Equal(t, config.DefaultCreditLabel, cfg.CreditLabel)
		require.Equal(t, config.DefaultDebitLabel, cfg.DebitLabel)
		require.False(t, cfg.UseSandbox)
		require.Equal(t, "statement.csv", cfg.OutputFile)
		require.Equal(t, "https://enter.tochka.com/uapi/", cfg.BaseURL())
	})

	tests := map[string]struct {
		value    string
		expected bool
	}{
		"true":        {value: "true", expected: true},
		"upper TRUE":  {value: "TRUE", expected: true},
		"padded true": {value: " True ", expected: true},
		"false":       {value: "false"},
		"one":         {value: "1"},
		"empty":       {value: ""},
	}
	for name, test := range tests {
		t.Run("sandbox flag "+name, func(t *testing.T) {
			t.Parallel()

			env := validEnv()
			env[config.EnvUseSandbox] = test.value

			cfg := config.FromEnv(envFunc(env))
			require.Equal(t, test.expected, cfg.UseSandbox)

			if test.expected {
				require.Equal(t, env[config.EnvSandboxAPIBaseURL], cfg.BaseURL())
			} else {
				require.Equal(t, env[config.EnvAPIBaseURL], cfg.BaseURL())
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()

		cfg := config.FromEnv(envFunc(validEnv()))
		require.NoError(t, cfg.Validate(t.Context()))
	})

	t.Run("reports every missing key", func(t *testing.T) {
		t.Parallel()

		cfg := config.FromEnv(envFunc(map[string]string{
			config.EnvAPIBaseURL: "https://example.com",
		}))

		err := cfg.Validate(t.Context())

		var missingErr *config.MissingError
		require.True(t, errors.As(err, &missingErr))
		require.Equal(t, []string{config.EnvSandboxAPIBaseURL, config.EnvAccountID, config.EnvAccessToken}, missingErr.Keys)
		require.EqualError(t, err, "missing required environment variables: TOCHKA_SANDBOX_API_BASE_URL, ACCOUNT_ID, ACCESS_TOKEN")
	})

	t.Run("output file is not required", func(t *testing.T) {
		t.Parallel()

		env := validEnv()
		delete(env, config.EnvOutputFile)

		cfg := config.FromEnv(envFunc(env))
		require.NoError(t, cfg.Validate(t.Context()))
	})

	t.Run("rejects invalid base url", func(t *testing.T) {
		t.Parallel()

		env := validEnv()
		env[config.EnvAPIBaseURL] = "not a url"

		cfg := config.FromEnv(envFunc(env))
		require.ErrorContains(t, cfg.Validate(t.Context()), "APIBaseURL: must be a valid URL")
	})

	t.Run("rejects identical direction labels", func(t *testing.T) {
		t.Parallel()

		env := validEnv()
		env[config.EnvCreditLabel] = "same"
		env[config.EnvDebitLabel] = "same"

		cfg := config.FromEnv(envFunc(env))
		require.ErrorContains(t, cfg.Validate(t.Context()), "DebitLabel: must differ from the credit label")
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("missing optional file is ignored", func(t *testing.T) {
		err := config.LoadEnvFile(filepath.Join(t.TempDir(), ".env"), false)
		require.NoError(t, err)
	})

	t.Run("missing required file is an error", func(t *testing.T) {
		err := config.LoadEnvFile(filepath.Join(t.TempDir(), ".env"), true)
		require.ErrorContains(t, err, "env file")
	})

	t.Run("loads values without overriding the environment", func(t *testing.T) {
		t.Setenv("STMTGRAB_TEST_FROM_FILE", "")
		t.Setenv("STMTGRAB_TEST_PRESET", "from-env")
		require.NoError(t, os.Unsetenv("STMTGRAB_TEST_FROM_FILE"))

		path := filepath.Join(t.TempDir(), ".env")
		content := "STMTGRAB_TEST_FROM_FILE=from-file\nSTMTGRAB_TEST_PRESET=from-file\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		require.NoError(t, config.LoadEnvFile(path, true))
		require.Equal(t, "from-file", os.Getenv("STMTGRAB_TEST_FROM_FILE"))
		require.Equal(t, "from-env", os.Getenv("STMTGRAB_TEST_PRESET"))
	})
}
