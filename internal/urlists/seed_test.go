package urlists_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchlens/internal/testsupport"
	"searchlens/internal/urlists"
)

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "url_lists.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestApplySeedCreatesMissingLists(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	path := writeSeedFile(t, `
lists:
  - name: landing-pages
    site_url: https://example.com/
    urls:
      - https://example.com/
      - https://example.com/pricing
  - name: blog-posts
    site_url: https://example.com/
    urls:
      - https://example.com/blog/a
`)

	seed, err := urlists.LoadSeedFile(path)
	require.NoError(t, err)
	require.NoError(t, urlists.ApplySeed(db, logger, seed))

	landing, err := urlists.GetListByName(db, "landing-pages")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/", "https://example.com/pricing"}, landing.Entries())

	blog, err := urlists.GetListByName(db, "blog-posts")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/blog/a"}, blog.Entries())
}

func TestApplySeedNeverOverwritesExistingLists(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()
	testsupport.CreateTestList(t, db, "landing-pages", []string{"https://example.com/edited-by-user"})

	path := writeSeedFile(t, `
lists:
  - name: landing-pages
    site_url: https://example.com/
    urls:
      - https://example.com/from-seed
`)

	seed, err := urlists.LoadSeedFile(path)
	require.NoError(t, err)
	require.NoError(t, urlists.ApplySeed(db, logger, seed))

	list, err := urlists.GetListByName(db, "landing-pages")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/edited-by-user"}, list.Entries())
}

func TestApplySeedSkipsUnusableEntries(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	path := writeSeedFile(t, `
lists:
  - site_url: https://example.com/
    urls:
      - https://example.com/unnamed
  - name: all-invalid
    urls:
      - not-a-url
      - also/not/a/url
  - name: partly-valid
    urls:
      - https://example.com/good
      - bad-entry
`)

	seed, err := urlists.LoadSeedFile(path)
	require.NoError(t, err)
	require.NoError(t, urlists.ApplySeed(db, logger, seed))

	all, err := urlists.GetAllLists(db)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "partly-valid", all[0].Name)

	list, err := urlists.GetListByName(db, "partly-valid")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/good"}, list.Entries())
}

func TestLoadSeedFileErrors(t *testing.T) {
	t.Run("Missing file", func(t *testing.T) {
		_, err := urlists.LoadSeedFile(filepath.Join(t.TempDir(), "missing.yml"))
		assert.Error(t, err)
	})

	t.Run("Malformed yaml", func(t *testing.T) {
		path := writeSeedFile(t, "lists: [unclosed")
		_, err := urlists.LoadSeedFile(path)
		assert.Error(t, err)
	})
}
