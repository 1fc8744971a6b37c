package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func LoadTestDataFile(t *testing.T, filename string) []byte {
	t.Helper()

	path := filepath.Clean(filepath.Join("testdata", "api", filename))

	_, err := os.Stat(path)
	require.NoError(t, err, "test data file %s must exist", filename)

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	return b
}

func UnmarshalTestDataFile[T any](t *testing.T, filename string) *T {
	t.Helper()

	var result T
	err := json.Unmarshal(LoadTestDataFile(t, filename), &result)
	require.NoError(t, err)

	return &result
}

// AssertRequest validates that an HTTP request matches the expected method and headers.
func AssertRequest(t *testing.T, r *http.Request, method string, expectedHeaders map[string]string) {
	t.Helper()

	require.Equal(t, method, r.Method, "HTTP method should match")

	for header, expected := range expectedHeaders {
		require.Equal(t, expected, r.Header.Get(header), "header %s should match", header)
	}
}

// DecodeJSONBody decodes the request body into a map for assertions.
func DecodeJSONBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()

	data, err := io.ReadAll(r.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body), "request body must be JSON: %s", string(data))

	return body
}
