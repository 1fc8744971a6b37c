package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type HTTPTestRoute struct {
	Method  string
	URL     string // URL pattern (e.g., "/open-banking/v2.0/statements"). Must not be empty.
	Handler http.HandlerFunc
}

func NewHTTPTestServer(t *testing.T, routes []HTTPTestRoute) *httptest.Server {
	t.Helper()

	router := http.NewServeMux()

	for _, route := range routes {
		if route.URL == "" {
			t.Fatalf("HTTPTestRoute.URL must not be empty")
		}

		if route.Method == "" {
			t.Fatalf("HTTPTestRoute.Method must not be empty")
		}

		if route.Handler == nil {
			t.Fatalf("HTTPTestRoute.Handler must not be nil for route %s", route.URL)
		}

		method := strings.ToUpper(strings.TrimSpace(route.Method))
		router.HandleFunc(fmt.Sprintf("%s %s", method, route.URL), route.Handler)
	}

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server
}

func ServeJSONTestDataHandler(t *testing.T, statusCode int, filename string) http.HandlerFunc {
	t.Helper()

	data := LoadTestDataFile(t, filename)

	return ServeBody(t, statusCode, "application/json", string(data))
}

func ServeBody(t *testing.T, statusCode int, contentType string, body string) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(statusCode)

		_, err := w.Write([]byte(body))
		assert.NoError(t, err, "failed to write test response")
	}
}
