package testsupport

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/searchconsole/v1"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"searchlens/internal/config"
	"searchlens/internal/gsc"
	"searchlens/internal/urlists"
)

// testDBCache caches test databases by test name to allow multiple calls
// within the same test to share the same database
var testDBCache = make(map[string]*gorm.DB)
var testDBCacheMu sync.Mutex

// SetupTestConfig forces the configuration singleton into the test
// environment for the duration of the test.
func SetupTestConfig(t *testing.T) *config.Config {
	t.Helper()

	t.Setenv("SEARCHLENS_ENV", "test")
	config.Reset()
	t.Cleanup(config.Reset)

	cfg := config.GetConfig()
	if cfg.Environment != config.Test {
		t.Fatalf("CRITICAL: Tests must run in test environment! Current: %s. Set SEARCHLENS_ENV=test", cfg.Environment)
	}
	return cfg
}

// SetupTestDB creates a test database with all models migrated. Uses a named
// in-memory database with cache=shared so multiple connections share the same
// database within a test. Caches by root test name so subtests created from
// closures reuse the outer test's database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testName := t.Name()

	rootName := testName
	if idx := strings.Index(testName, "/"); idx > 0 {
		rootName = testName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	sanitizedName := strings.ReplaceAll(rootName, "/", "_")
	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", sanitizedName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")
	db.Exec("PRAGMA journal_mode = WAL")

	if err := db.AutoMigrate(&urlists.URLList{}); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// GetLogger returns a test logger
func GetLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}

// CreateTestList creates a saved URL list for testing
func CreateTestList(t *testing.T, db *gorm.DB, name string, urls []string) *urlists.URLList {
	t.Helper()

	list, err := urlists.SaveList(db, name, "https://example.com/", urls)
	require.NoError(t, err)
	return list
}

// FakeSearchClient is a scripted stand-in for the Search Console client. The
// zero value answers every call with empty data; set the Fn fields to script
// behavior. All calls are recorded and safe for concurrent use.
type FakeSearchClient struct {
	mu sync.Mutex

	QueryFn      func(ctx context.Context, q gsc.Query) ([]gsc.Row, error)
	InspectFn    func(ctx context.Context, siteURL, pageURL string) (*searchconsole.UrlInspectionResult, error)
	PropertiesFn func(ctx context.Context) ([]gsc.Property, error)
	SitemapsFn   func(ctx context.Context, siteURL string) ([]gsc.Sitemap, error)

	Queries     []gsc.Query
	Inspections []string
}

func (f *FakeSearchClient) Query(ctx context.Context, q gsc.Query) ([]gsc.Row, error) {
	f.mu.Lock()
	f.Queries = append(f.Queries, q)
	f.mu.Unlock()

	if f.QueryFn == nil {
		return nil, nil
	}
	return f.QueryFn(ctx, q)
}

func (f *FakeSearchClient) Inspect(ctx context.Context, siteURL, pageURL string) (*searchconsole.UrlInspectionResult, error) {
	f.mu.Lock()
	f.Inspections = append(f.Inspections, pageURL)
	f.mu.Unlock()

	if f.InspectFn == nil {
		return &searchconsole.UrlInspectionResult{}, nil
	}
	return f.InspectFn(ctx, siteURL, pageURL)
}

func (f *FakeSearchClient) ListProperties(ctx context.Context) ([]gsc.Property, error) {
	if f.PropertiesFn == nil {
		return nil, nil
	}
	return f.PropertiesFn(ctx)
}

func (f *FakeSearchClient) ListSitemaps(ctx context.Context, siteURL string) ([]gsc.Sitemap, error) {
	if f.SitemapsFn == nil {
		return nil, nil
	}
	return f.SitemapsFn(ctx, siteURL)
}

// QueryCount returns how many analytics queries the fake has served.
func (f *FakeSearchClient) QueryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Queries)
}

// ScriptedRows builds a QueryFn that answers from a (pageFilter, startDate)
// keyed table. Pairs not present answer with no rows.
func ScriptedRows(rows map[string][]gsc.Row) func(ctx context.Context, q gsc.Query) ([]gsc.Row, error) {
	return func(_ context.Context, q gsc.Query) ([]gsc.Row, error) {
		return rows[q.PageFilter+"|"+q.StartDate], nil
	}
}
