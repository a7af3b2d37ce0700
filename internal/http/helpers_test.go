// Package http_test drives the JSON API through the full router, fakes
// standing in for the Search Console client.
package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"searchlens/internal"
	apphttp "searchlens/internal/http"
	"searchlens/internal/monitoring"
	"searchlens/internal/session"
	"searchlens/internal/sitemap"
	"searchlens/internal/testsupport"
)

// newTestDeps builds handler dependencies against the test config, a fresh
// test database and the given fake client. Tests adjust fields before
// building the router when they need to.
func newTestDeps(t *testing.T, fake *testsupport.FakeSearchClient) apphttp.Deps {
	t.Helper()

	cfg := testsupport.SetupTestConfig(t)
	logger := testsupport.GetLogger()

	return apphttp.Deps{
		Config:   cfg,
		Logger:   logger,
		DB:       testsupport.SetupTestDB(t),
		Search:   fake,
		Sessions: session.NewRegistry(cfg.SessionTTL(), logger),
		Sitemaps: sitemap.NewFetcher(cfg, logger),
		Metrics:  monitoring.GetMetrics(),
	}
}

func newTestApp(t *testing.T, deps apphttp.Deps) *fiber.App {
	t.Helper()
	return internal.NewRouter(deps)
}

func jsonRequest(method, target string, payload interface{}) *http.Request {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			panic(err)
		}
		body = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", string(raw))
	return decoded
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}
