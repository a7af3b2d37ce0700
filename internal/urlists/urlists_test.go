package urlists_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchlens/internal/testsupport"
	"searchlens/internal/urlists"
)

func TestSaveListCreatesAndUpdates(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	created, err := urlists.SaveList(db, "landing-pages", "https://example.com/", []string{
		"https://example.com/",
		"https://example.com/pricing",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "landing-pages", created.Name)
	assert.Equal(t, "https://example.com/", created.SiteURL)
	assert.Equal(t, []string{"https://example.com/", "https://example.com/pricing"}, created.Entries())
	assert.False(t, created.CreatedAt.IsZero())

	// Saving under the same name replaces the entries instead of creating a
	// second list.
	updated, err := urlists.SaveList(db, "landing-pages", "https://example.com/", []string{
		"https://example.com/features",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, []string{"https://example.com/features"}, updated.Entries())

	all, err := urlists.GetAllLists(db)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetListByName(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	testsupport.CreateTestList(t, db, "blog-posts", []string{"https://example.com/blog/a"})

	t.Run("Existing list", func(t *testing.T) {
		list, err := urlists.GetListByName(db, "blog-posts")

		require.NoError(t, err)
		assert.Equal(t, "blog-posts", list.Name)
		assert.Equal(t, []string{"https://example.com/blog/a"}, list.Entries())
	})

	t.Run("Missing list", func(t *testing.T) {
		list, err := urlists.GetListByName(db, "does-not-exist")

		assert.Nil(t, list)
		var notFoundErr *urlists.URLListNotFoundError
		require.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, "does-not-exist", notFoundErr.Name)
	})
}

func TestGetAllListsOrdersByName(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	testsupport.CreateTestList(t, db, "zebra", []string{"https://example.com/z"})
	testsupport.CreateTestList(t, db, "alpha", []string{"https://example.com/a"})
	testsupport.CreateTestList(t, db, "middle", []string{"https://example.com/m"})

	all, err := urlists.GetAllLists(db)

	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "alpha", all[0].Name)
	assert.Equal(t, "middle", all[1].Name)
	assert.Equal(t, "zebra", all[2].Name)
}

func TestDeleteList(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	testsupport.CreateTestList(t, db, "temporary", []string{"https://example.com/tmp"})

	require.NoError(t, urlists.DeleteList(db, "temporary"))

	_, err := urlists.GetListByName(db, "temporary")
	var notFoundErr *urlists.URLListNotFoundError
	assert.ErrorAs(t, err, &notFoundErr)

	// Deleting again reports not found instead of silently succeeding.
	err = urlists.DeleteList(db, "temporary")
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestEntriesSkipsBlankLines(t *testing.T) {
	list := &urlists.URLList{URLs: "https://example.com/a\n\n  \nhttps://example.com/b\n"}

	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, list.Entries())
}
