// Package statement fetches and requests account statements. Every failure is
// logged and reported to the caller as a nil or false result.
package statement

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/HallyG/stmtgrab/internal/api"
	"github.com/HallyG/stmtgrab/internal/api/openbanking"
	"github.com/HallyG/stmtgrab/internal/config"
	"github.com/HallyG/stmtgrab/internal/domain"
	"github.com/HallyG/stmtgrab/internal/log"
)

type Client struct {
	api       openbanking.Client
	accountID string
}

// New validates cfg and builds a Client against the configured base URL.
func New(ctx context.Context, cfg *config.Config, httpClient *http.Client) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	if err := cfg.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	base := api.New(cfg.BaseURL(), httpClient,
		api.WithAuthToken(cfg.AccessToken),
		api.WithTimeout(api.DefaultTimeout),
	)

	return NewWithAPI(openbanking.New(base, cfg.AccountID, cfg.APIVersion), cfg.AccountID), nil
}

func NewWithAPI(apiClient openbanking.Client, accountID string) *Client {
	return &Client{
		api:       apiClient,
		accountID: accountID,
	}
}

// GetStatement returns the statement, or nil if it could not be fetched.
func (c *Client) GetStatement(ctx context.Context, statementID string) *domain.Statement {
	statement, err := c.api.FetchStatement(ctx, statementID)
	if err != nil {
		logFailure(ctx, err, slog.String("statement.id", statementID))
		return nil
	}

	return statement
}

// CheckStatementStatus returns the statement's status and whether one was reported.
func (c *Client) CheckStatementStatus(ctx context.Context, statementID string) (string, bool) {
	statement := c.GetStatement(ctx, statementID)
	if statement == nil || statement.Status == "" {
		return "", false
	}

	return statement.Status, true
}

// RequestStatement asks the API to prepare a statement for [fromDate, toDate].
// An empty format defaults to "json". It returns nil on failure.
func (c *Client) RequestStatement(ctx context.Context, fromDate, toDate, format string) *openbanking.StatementRequestResult {
	log.FromContext(ctx).InfoContext(ctx, "requesting statement",
		slog.String("account.id", c.accountID),
		slog.String("statement.from", fromDate),
		slog.String("statement.to", toDate),
	)

	result, err := c.api.CreateStatement(ctx, openbanking.CreateStatementOptions{
		FromDate: fromDate,
		ToDate:   toDate,
		Format:   format,
	})
	if err != nil {
		logFailure(ctx, err, slog.String("account.id", c.accountID))
		return nil
	}

	return result
}

func logFailure(ctx context.Context, err error, attrs ...any) {
	if body := api.ResponseBody(err); body != "" {
		attrs = append(attrs, slog.String("http.response", body))
	}

	attrs = append(attrs, slog.Any("err", err))
	log.FromContext(ctx).ErrorContext(ctx, "API request failed", attrs...)
}
