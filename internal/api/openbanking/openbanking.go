package openbanking

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/HallyG/stmtgrab/internal/api"
	"github.com/HallyG/stmtgrab/internal/domain"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	getStatementRoute    = "/open-banking/%s/accounts/%s/statements/%s"
	createStatementRoute = "/open-banking/%s/statements"
	dateFormat           = "2006-01-02"
	DefaultFormat        = "json"
)

type Client interface {
	FetchStatement(ctx context.Context, statementID string) (*domain.Statement, error)
	CreateStatement(ctx context.Context, opts CreateStatementOptions) (*StatementRequestResult, error)
}

var _ Client = (*client)(nil)

type client struct {
	api        api.Client
	accountID  string
	apiVersion string
}

type Option func(*client)

// New returns a client for the statement endpoints of accountID. baseAPI must
// already carry the base URL and credentials.
func New(baseAPI api.Client, accountID, apiVersion string, opts ...Option) *client {
	c := &client{
		api:        baseAPI,
		accountID:  accountID,
		apiVersion: apiVersion,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		opt(c)
	}

	return c
}

func (c *client) FetchStatement(ctx context.Context, statementID string) (*domain.Statement, error) {
	if err := validation.Validate(statementID, validation.Required.Error("statement ID is required")); err != nil {
		return nil, err
	}

	route := fmt.Sprintf(getStatementRoute,
		url.PathEscape(c.apiVersion),
		url.PathEscape(c.accountID),
		url.PathEscape(statementID),
	)

	result := &domain.Statement{}
	if _, err := c.api.ExecuteRequest(ctx, http.MethodGet, route, nil, result); err != nil {
		return nil, fmt.Errorf("failed to fetch statement: %w", err)
	}

	return result, nil
}

type CreateStatementOptions struct {
	FromDate string
	ToDate   string
	Format   string
}

func (o *CreateStatementOptions) Validate(ctx context.Context) error {
	return validation.ValidateStructWithContext(ctx, o,
		validation.Field(&o.FromDate,
			validation.Required.Error("from date is required"),
			validation.Date(dateFormat).Error("from date must be YYYY-MM-DD"),
		),
		validation.Field(&o.ToDate,
			validation.Required.Error("to date is required"),
			validation.Date(dateFormat).Error("to date must be YYYY-MM-DD"),
			validation.By(func(value any) error {
				from, errFrom := time.Parse(dateFormat, o.FromDate)
				to, errTo := time.Parse(dateFormat, o.ToDate)
				if errFrom != nil || errTo != nil {
					return nil
				}

				if to.Before(from) {
					return validation.NewError("validation_invalid_date_range", "to date must not be before from date")
				}

				return nil
			}),
		),
	)
}

func (c *client) CreateStatement(ctx context.Context, opts CreateStatementOptions) (*StatementRequestResult, error) {
	if opts.Format == "" {
		opts.Format = DefaultFormat
	}

	if err := opts.Validate(ctx); err != nil {
		return nil, err
	}

	payload := createStatementRequest{
		AccountID: c.accountID,
		FromDate:  opts.FromDate,
		ToDate:    opts.ToDate,
		Format:    opts.Format,
	}

	route := fmt.Sprintf(createStatementRoute, url.PathEscape(c.apiVersion))

	result := StatementRequestResult{}
	if _, err := c.api.ExecuteRequest(ctx, http.MethodPost, route, payload, &result); err != nil {
		return nil, fmt.Errorf("failed to request statement: %w", err)
	}

	return &result, nil
}
