package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/HallyG/stmtgrab/internal/log"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	resty "resty.dev/v3"
)

const (
	DefaultTimeout       = 30 * time.Second
	InteractionIDHeader  = "x-fapi-interaction-id"
	maxErrorBodyLogBytes = 4096
)

type Client interface {
	ExecuteRequest(ctx context.Context, method, path string, body any, result any) (*resty.Response, error)
}

var _ Client = (*BaseClient)(nil)

// Error is returned when the server answers with a non-2xx status.
type Error struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s failed with status %d", e.Method, e.URL, e.StatusCode)
	if e.Body != "" {
		msg += " | Response: " + e.Body
	}

	return msg
}

// ResponseBody returns the upstream body text carried by err, if any.
func ResponseBody(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}

	return ""
}

type BaseClient struct {
	resty       *resty.Client
	baseURL     string
	timeout     time.Duration
	tokenSource oauth2.TokenSource
}

type Option func(*BaseClient)

// New builds a client for baseURL. Requests are never retried.
func New(baseURL string, httpClient *http.Client, opts ...Option) *BaseClient {
	c := &BaseClient{
		baseURL: baseURL,
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		opt(c)
	}

	hc := &http.Client{}
	if httpClient != nil {
		*hc = *httpClient
	}
	hc.Timeout = c.timeout

	if c.tokenSource != nil {
		base := hc.Transport
		if base == nil {
			base = http.DefaultTransport
		}

		hc.Transport = &oauth2.Transport{Source: c.tokenSource, Base: base}
	}

	c.resty = resty.NewWithClient(hc).
		SetTimeout(c.timeout).
		SetHeader("Accept", "application/json").
		AddResponseMiddleware(func(_ *resty.Client, r *resty.Response) error {
			req := r.Request
			ctx := req.Context()

			log.FromContext(ctx).DebugContext(ctx, "performed HTTP request",
				slog.String("http.url", req.URL),
				slog.String("http.method", req.Method),
				slog.String("http.interaction_id", req.Header.Get(InteractionIDHeader)),
				slog.Duration("http.duration", r.ReceivedAt().Sub(req.Time)),
				slog.Int("http.status_code", r.StatusCode()),
			)
			return nil
		})

	return c
}

// WithAuthToken authenticates every request with "Authorization: Bearer <token>".
// A "Bearer " prefix on token is tolerated.
func WithAuthToken(token string) Option {
	return func(c *BaseClient) {
		token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
		c.tokenSource = oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		})
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *BaseClient) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// URL joins the base URL and path, stripping trailing slashes from the base
// and making sure path starts with a single slash.
func (c *BaseClient) URL(path string) string {
	return JoinURL(c.baseURL, path)
}

func JoinURL(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// ExecuteRequest performs the request and decodes a 2xx JSON body into result.
// body, when non-nil, is sent as JSON.
func (c *BaseClient) ExecuteRequest(ctx context.Context, method, path string, body any, result any) (*resty.Response, error) {
	url := c.URL(path)
	interactionID := uuid.NewString()

	req := c.resty.R().
		SetContext(ctx).
		SetHeader(InteractionIDHeader, interactionID).
		SetDoNotParseResponse(true)

	if body != nil {
		req = req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		return resp, fmt.Errorf("%s %s failed (interaction id %s): %w", method, url, interactionID, err)
	}

	data, err := readBody(resp)
	if err != nil {
		return resp, fmt.Errorf("%s %s: read body: %w", method, url, err)
	}

	if status := resp.StatusCode(); status < http.StatusOK || status >= http.StatusMultipleChoices {
		return resp, &Error{
			Method:     method,
			URL:        url,
			StatusCode: status,
			Body:       truncate(strings.TrimSpace(string(data)), maxErrorBodyLogBytes),
		}
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return resp, fmt.Errorf("%s %s: malformed response body: %w", method, url, err)
		}
	}

	return resp, nil
}

func readBody(resp *resty.Response) ([]byte, error) {
	if resp == nil || resp.Body == nil {
		return nil, nil
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
