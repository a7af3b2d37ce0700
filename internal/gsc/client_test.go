package gsc_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/searchconsole/v1"

	"searchlens/internal/gsc"
	"searchlens/internal/testsupport"
)

type capturedQuery struct {
	StartDate             string   `json:"startDate"`
	EndDate               string   `json:"endDate"`
	Dimensions            []string `json:"dimensions"`
	RowLimit              int64    `json:"rowLimit"`
	DataState             string   `json:"dataState"`
	Type                  string   `json:"type"`
	DimensionFilterGroups []struct {
		Filters []struct {
			Dimension  string `json:"dimension"`
			Operator   string `json:"operator"`
			Expression string `json:"expression"`
		} `json:"filters"`
	} `json:"dimensionFilterGroups"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *gsc.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := searchconsole.NewService(context.Background(),
		option.WithEndpoint(server.URL),
		option.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	return gsc.NewClientWithService(svc, testsupport.GetLogger(), 25000)
}

func TestQuerySendsPageFilterAndDefaults(t *testing.T) {
	var captured capturedQuery
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"rows": [
				{"keys": ["https://example.com/pricing"], "clicks": 42, "impressions": 1200, "ctr": 0.035, "position": 4.7}
			]
		}`))
	})

	rows, err := client.Query(context.Background(), gsc.Query{
		SiteURL:    "https://example.com/",
		StartDate:  "2024-06-15",
		EndDate:    "2024-07-14",
		Dimensions: []string{"page"},
		PageFilter: "https://example.com/pricing",
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-06-15", captured.StartDate)
	assert.Equal(t, "2024-07-14", captured.EndDate)
	assert.Equal(t, []string{"page"}, captured.Dimensions)
	assert.Equal(t, int64(25000), captured.RowLimit, "row limit should fall back to the configured default")
	assert.Equal(t, "all", captured.DataState)
	require.Len(t, captured.DimensionFilterGroups, 1)
	require.Len(t, captured.DimensionFilterGroups[0].Filters, 1)
	filter := captured.DimensionFilterGroups[0].Filters[0]
	assert.Equal(t, "page", filter.Dimension)
	assert.Equal(t, "equals", filter.Operator)
	assert.Equal(t, "https://example.com/pricing", filter.Expression)

	require.Len(t, rows, 1)
	assert.Equal(t, []string{"https://example.com/pricing"}, rows[0].Keys)
	assert.Equal(t, float64(42), rows[0].Clicks)
	assert.Equal(t, float64(1200), rows[0].Impressions)
	assert.InDelta(t, 0.035, rows[0].CTR, 1e-9)
	assert.InDelta(t, 4.7, rows[0].Position, 1e-9)
}

func TestQueryOmitsFilterGroupWhenNoPageFilter(t *testing.T) {
	var captured capturedQuery
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	rows, err := client.Query(context.Background(), gsc.Query{
		SiteURL:    "https://example.com/",
		StartDate:  "2024-06-15",
		EndDate:    "2024-07-14",
		Dimensions: []string{"query"},
		RowLimit:   50,
	})
	require.NoError(t, err)

	assert.Empty(t, captured.DimensionFilterGroups)
	assert.Equal(t, int64(50), captured.RowLimit)
	assert.Empty(t, rows, "an empty response should yield no rows, not an error")
}

func TestQueryWrapsAPIErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"code": 403, "message": "User does not have sufficient permission"}}`))
	})

	_, err := client.Query(context.Background(), gsc.Query{
		SiteURL:   "https://example.com/",
		StartDate: "2024-06-15",
		EndDate:   "2024-07-14",
	})
	require.Error(t, err)
	assert.True(t, gsc.IsPermissionDenied(err))
	assert.Contains(t, err.Error(), "https://example.com/")
}

func TestInspectToleratesMissingSections(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"inspectionResult": {
				"indexStatusResult": {"verdict": "PASS", "coverageState": "Submitted and indexed"}
			}
		}`))
	})

	result, err := client.Inspect(context.Background(), "https://example.com/", "https://example.com/pricing")
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotNil(t, result.IndexStatusResult)
	assert.Equal(t, "PASS", result.IndexStatusResult.Verdict)
	assert.Nil(t, result.MobileUsabilityResult)
	assert.Nil(t, result.RichResultsResult)
}

func TestListPropertiesSortsBySiteURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"siteEntry": [
				{"siteUrl": "https://zeta.example.com/", "permissionLevel": "siteOwner"},
				{"siteUrl": "https://alpha.example.com/", "permissionLevel": "siteFullUser"}
			]
		}`))
	})

	properties, err := client.ListProperties(context.Background())
	require.NoError(t, err)
	require.Len(t, properties, 2)
	assert.Equal(t, "https://alpha.example.com/", properties[0].SiteURL)
	assert.Equal(t, "siteFullUser", properties[0].PermissionLevel)
	assert.Equal(t, "https://zeta.example.com/", properties[1].SiteURL)
}

func TestListSitemapsMapsContents(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"sitemap": [
				{
					"path": "https://example.com/sitemap.xml",
					"lastSubmitted": "2024-07-01T10:00:00.000Z",
					"isPending": false,
					"isSitemapsIndex": true,
					"errors": "2",
					"warnings": "1",
					"contents": [
						{"type": "web", "submitted": "120", "indexed": "95"}
					]
				}
			]
		}`))
	})

	sitemaps, err := client.ListSitemaps(context.Background(), "https://example.com/")
	require.NoError(t, err)
	require.Len(t, sitemaps, 1)

	sm := sitemaps[0]
	assert.Equal(t, "https://example.com/sitemap.xml", sm.Path)
	assert.True(t, sm.IsIndex)
	assert.Equal(t, int64(2), sm.Errors)
	assert.Equal(t, int64(1), sm.Warnings)
	require.Len(t, sm.Contents, 1)
	assert.Equal(t, "web", sm.Contents[0].Type)
	assert.Equal(t, int64(120), sm.Contents[0].Submitted)
	assert.Equal(t, int64(95), sm.Contents[0].Indexed)
}

func TestErrorClassifiers(t *testing.T) {
	notFound := gsc.NewTransportError("https://example.com/", "query", &googleapi.Error{Code: 404})
	assert.True(t, gsc.IsNotFound(notFound))
	assert.False(t, gsc.IsPermissionDenied(notFound))

	quota := &googleapi.Error{Code: 429}
	assert.True(t, gsc.IsQuotaExceeded(quota))

	assert.False(t, gsc.IsNotFound(context.DeadlineExceeded))
}

func TestTransportErrorUnwraps(t *testing.T) {
	cause := &googleapi.Error{Code: 403, Message: "forbidden"}
	err := gsc.NewTransportError("https://example.com/", "inspect", cause)

	assert.Contains(t, err.Error(), "inspect")
	assert.Contains(t, err.Error(), "https://example.com/")
	assert.True(t, gsc.IsPermissionDenied(err))
}
