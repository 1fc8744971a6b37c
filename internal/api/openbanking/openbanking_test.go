package openbanking_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/HallyG/stmtgrab/internal/api"
	"github.com/HallyG/stmtgrab/internal/api/openbanking"
	"github.com/HallyG/stmtgrab/internal/util/testutil"
	"github.com/stretchr/testify/require"
)

const (
	token      = "mock-token"
	accountID  = "ACC-1"
	apiVersion = "v2.0"
)

func newClient(t *testing.T, routes ...testutil.HTTPTestRoute) openbanking.Client {
	t.Helper()

	server := testutil.NewHTTPTestServer(t, routes)
	base := api.New(server.URL+"/", &http.Client{}, api.WithAuthToken(token))

	return openbanking.New(base, accountID, apiVersion)
}

func TestFetchStatement(t *testing.T) {
	t.Parallel()

	t.Run("successful fetch", func(t *testing.T) {
		t.Parallel()

		assertHandler := testutil.ServeJSONTestDataHandler(t, http.StatusOK, "statement.json")
		client := newClient(t, testutil.HTTPTestRoute{
			Method: http.MethodGet,
			URL:    "/open-banking/v2.0/accounts/ACC-1/statements/ST-42",
			Handler: func(w http.ResponseWriter, r *http.Request) {
				testutil.AssertRequest(t, r, http.MethodGet, map[string]string{
					"Authorization": "Bearer " + token,
					"Accept":        "application/json",
				})
				require.NotEmpty(t, r.Header.Get(api.InteractionIDHeader))
				assertHandler(w, r)
			},
		})

		statement, err := client.FetchStatement(t.Context(), "ST-42")
		require.NoError(t, err)
		require.NotNil(t, statement)

		require.Equal(t, "ST-42", statement.ID)
		require.Equal(t, "ready", statement.Status)
		require.Len(t, statement.Transactions, 2)
		require.Equal(t, "TX124", statement.Transactions[1].String("id"))
		require.JSONEq(t, `{"name": "Test LLC", "inn": "7700000000"}`, string(statement.Transactions[1]["counterparty"]))
	})

	t.Run("returns API error with body", func(t *testing.T) {
		t.Parallel()

		client := newClient(t, testutil.HTTPTestRoute{
			Method:  http.MethodGet,
			URL:     "/open-banking/v2.0/accounts/ACC-1/statements/ST-42",
			Handler: testutil.ServeJSONTestDataHandler(t, http.StatusUnauthorized, "error.json"),
		})

		statement, err := client.FetchStatement(t.Context(), "ST-42")
		require.Nil(t, statement)
		require.Error(t, err)

		var apiErr *api.Error
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		require.Contains(t, apiErr.Body, "Token is expired")
	})

	t.Run("returns error on malformed body", func(t *testing.T) {
		t.Parallel()

		client := newClient(t, testutil.HTTPTestRoute{
			Method:  http.MethodGet,
			URL:     "/open-banking/v2.0/accounts/ACC-1/statements/ST-42",
			Handler: testutil.ServeBody(t, http.StatusOK, "application/json", `{"id": "ST-42", "transactions": [`),
		})

		statement, err := client.FetchStatement(t.Context(), "ST-42")
		require.Nil(t, statement)
		require.ErrorContains(t, err, "malformed response body")
	})

	t.Run("requires statement id", func(t *testing.T) {
		t.Parallel()

		client := openbanking.New(api.New("http://localhost", nil), accountID, apiVersion)

		statement, err := client.FetchStatement(t.Context(), "")
		require.Nil(t, statement)
		require.EqualError(t, err, "statement ID is required")
	})
}

func TestCreateStatement(t *testing.T) {
	t.Parallel()

	t.Run("posts the request body", func(t *testing.T) {
		t.Parallel()

		respond := testutil.ServeJSONTestDataHandler(t, http.StatusOK, "statement-request.json")
		client := newClient(t, testutil.HTTPTestRoute{
			Method: http.MethodPost,
			URL:    "/open-banking/v2.0/statements",
			Handler: func(w http.ResponseWriter, r *http.Request) {
				testutil.AssertRequest(t, r, http.MethodPost, map[string]string{
					"Authorization": "Bearer " + token,
					"Content-Type":  "application/json",
				})
				require.Equal(t, map[string]any{
					"account_id": accountID,
					"from_date":  "2023-01-01",
					"to_date":    "2023-01-31",
					"format":     "json",
				}, testutil.DecodeJSONBody(t, r))
				respond(w, r)
			},
		})

		result, err := client.CreateStatement(t.Context(), openbanking.CreateStatementOptions{
			FromDate: "2023-01-01",
			ToDate:   "2023-01-31",
		})
		require.NoError(t, err)
		require.Equal(t, "ST-43", result.StatementID)
		require.Equal(t, "pending", result.Status)
		require.Contains(t, result.Raw, "created_at")
	})

	tests := map[string]struct {
		opts           openbanking.CreateStatementOptions
		expectedErrMsg string
	}{
		"missing from date": {
			opts:           openbanking.CreateStatementOptions{ToDate: "2023-01-31"},
			expectedErrMsg: "FromDate: from date is required",
		},
		"invalid to date": {
			opts:           openbanking.CreateStatementOptions{FromDate: "2023-01-01", ToDate: "31/01/2023"},
			expectedErrMsg: "ToDate: to date must be YYYY-MM-DD",
		},
		"inverted range": {
			opts:           openbanking.CreateStatementOptions{FromDate: "2023-02-01", ToDate: "2023-01-01"},
			expectedErrMsg: "ToDate: to date must not be before from date",
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			client := openbanking.New(api.New("http://localhost", nil), accountID, apiVersion)

			result, err := client.CreateStatement(t.Context(), test.opts)
			require.Nil(t, result)
			require.ErrorContains(t, err, test.expectedErrMsg)
		})
	}
}
