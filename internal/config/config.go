package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
)

// Environment keys read by FromEnv.
const (
	EnvAPIBaseURL        = "API_BASE_URL"
	EnvSandboxAPIBaseURL = "TOCHKA_SANDBOX_API_BASE_URL"
	EnvUseSandbox        = "TOCHKA_USE_SANDBOX"
	EnvAccountID         = "ACCOUNT_ID"
	EnvAccessToken       = "ACCESS_TOKEN"
	EnvAPIVersion        = "API_VERSION"
	EnvOutputFile        = "OUTPUT_CSV_FILE"
	EnvCreditLabel       = "CREDIT_LABEL"
	EnvDebitLabel        = "DEBIT_LABEL"
)

const (
	DefaultAPIVersion  = "v2.0"
	DefaultCreditLabel = "credit"
	DefaultDebitLabel  = "debit"
)

// MissingError reports required settings that were absent.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return "missing required environment variables: " + strings.Join(e.Keys, ", ")
}

type Config struct {
	APIBaseURL        string
	SandboxAPIBaseURL string
	UseSandbox        bool
	AccountID         string
	AccessToken       string
	APIVersion        string
	OutputFile        string
	CreditLabel       string
	DebitLabel        string
}

// BaseURL returns the sandbox base URL when the sandbox is enabled, otherwise the production one.
func (c *Config) BaseURL() string {
	if c.UseSandbox {
		return c.SandboxAPIBaseURL
	}

	return c.APIBaseURL
}

func (c *Config) Validate(ctx context.Context) error {
	if err := c.checkRequired(); err != nil {
		return err
	}

	return validation.ValidateStructWithContext(ctx, c,
		validation.Field(&c.APIBaseURL, is.URL.Error("must be a valid URL")),
		validation.Field(&c.SandboxAPIBaseURL, is.URL.Error("must be a valid URL")),
		validation.Field(&c.APIVersion, validation.Required.Error("is required")),
		validation.Field(&c.CreditLabel, validation.Required.Error("is required")),
		validation.Field(&c.DebitLabel,
			validation.Required.Error("is required"),
			validation.NotIn(c.CreditLabel).Error("must differ from the credit label"),
		),
	)
}

func (c *Config) checkRequired() error {
	required := []struct {
		key   string
		value string
	}{
		{EnvAPIBaseURL, c.APIBaseURL},
		{EnvSandboxAPIBaseURL, c.SandboxAPIBaseURL},
		{EnvAccountID, c.AccountID},
		{EnvAccessToken, c.AccessToken},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.key)
		}
	}

	if len(missing) > 0 {
		return &MissingError{Keys: missing}
	}

	return nil
}

// FromEnv builds a Config from environment-style key/value lookups.
// Optional settings fall back to their defaults. The result is not validated.
func FromEnv(getenv func(string) string) *Config {
	if getenv == nil {
		getenv = os.Getenv
	}

	valueOr := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}

		return fallback
	}

	return &Config{
		APIBaseURL:        strings.TrimSpace(getenv(EnvAPIBaseURL)),
		SandboxAPIBaseURL: strings.TrimSpace(getenv(EnvSandboxAPIBaseURL)),
		UseSandbox:        strings.EqualFold(strings.TrimSpace(getenv(EnvUseSandbox)), "true"),
		AccountID:         strings.TrimSpace(getenv(EnvAccountID)),
		AccessToken:       strings.TrimSpace(getenv(EnvAccessToken)),
		APIVersion:        valueOr(EnvAPIVersion, DefaultAPIVersion),
		OutputFile:        strings.TrimSpace(getenv(EnvOutputFile)),
		CreditLabel:       valueOr(EnvCreditLabel, DefaultCreditLabel),
		DebitLabel:        valueOr(EnvDebitLabel, DefaultDebitLabel),
	}
}

// LoadEnvFile loads key/value pairs from a dotenv file into the process environment.
// Variables already set in the environment are left untouched.
// A missing file is ignored unless required is set.
func LoadEnvFile(path string, required bool) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}

		return fmt.Errorf("env file: %w", err)
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("env file %q: %w", path, err)
	}

	return nil
}

// Load reads the optional dotenv file, builds the Config from the environment and validates it.
func Load(ctx context.Context, envFile string, envFileRequired bool) (*Config, error) {
	if err := LoadEnvFile(envFile, envFileRequired); err != nil {
		return nil, err
	}

	cfg := FromEnv(os.Getenv)
	if err := cfg.Validate(ctx); err != nil {
		return nil, err
	}

	return cfg, nil
}
