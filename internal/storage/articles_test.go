package storage_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0x0BSoD/articleKeeper/internal/model"
	"github.com/0x0BSoD/articleKeeper/internal/storage"
)

func newTestStorage(t *testing.T) (*storage.ArticleStorage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "articles.json")
	return storage.NewArticleStorage(path), path
}

func TestCreateDefaultsToUnpublished(t *testing.T) {
	s, _ := newTestStorage(t)

	article, err := s.Create(model.Draft{Title: "Hello", URL: "https://example.com/hello"}, "admin")
	require.NoError(t, err)

	assert.NotEmpty(t, article.ID)
	assert.Equal(t, model.StatusUnpublished, article.Status)
	assert.Equal(t, "admin", article.OwnerID)
	assert.Equal(t, article.CreatedAt, article.UpdatedAt)
	assert.Nil(t, article.PublishAt)
	assert.Nil(t, article.UnpublishAt)

	assert.Empty(t, s.ListPublished())
}

func TestCreatePublishedIsVisibleImmediately(t *testing.T) {
	s, _ := newTestStorage(t)

	article, err := s.Create(model.Draft{
		Title:  "Hello",
		URL:    "https://example.com/hello",
		Status: model.StatusPublished,
	}, "admin")
	require.NoError(t, err)

	published := s.ListPublished()
	require.Len(t, published, 1)
	assert.Equal(t, article.ID, published[0].ID)

	// Defaults open an effectively-permanent publish window.
	require.NotNil(t, article.PublishAt)
	require.NotNil(t, article.UnpublishAt)
	assert.True(t, article.UnpublishAt.After(time.Now().Add(24*time.Hour)))
}

func TestCreateRejectsDuplicateURL(t *testing.T) {
	s, _ := newTestStorage(t)

	_, err := s.Create(model.Draft{Title: "First", URL: "https://example.com/a", Status: model.StatusPublished}, "admin")
	require.NoError(t, err)

	_, err = s.Create(model.Draft{Title: "Second", URL: "https://example.com/a", Status: model.StatusPublished}, "admin")
	require.ErrorIs(t, err, storage.ErrDuplicateURL)

	published := s.ListPublished()
	require.Len(t, published, 1)
	assert.Equal(t, "First", published[0].Title)
}

func TestLoadMissingFileYieldsEmptyCollection(t *testing.T) {
	s, _ := newTestStorage(t)

	require.NoError(t, s.Load())
	assert.Empty(t, s.ListPublished())
}

func TestLoadFailsLoudlyOnMalformedSnapshot(t *testing.T) {
	s, path := newTestStorage(t)

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	require.Error(t, s.Load())
}

func TestSnapshotRoundTrip(t *testing.T) {
	s, path := newTestStorage(t)

	_, err := s.Create(model.Draft{Title: "One", URL: "https://example.com/1", Status: model.StatusPublished}, "admin")
	require.NoError(t, err)
	_, err = s.Create(model.Draft{Title: "Two", URL: "https://example.com/2"}, "admin")
	require.NoError(t, err)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	reloaded := storage.NewArticleStorage(path)
	require.NoError(t, reloaded.Load())
	require.NoError(t, reloaded.SaveSnapshot())

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	published := reloaded.ListPublished()
	require.Len(t, published, 1)
	assert.Equal(t, "One", published[0].Title)
}

func TestUpdateAppliesOnlyPatchedFields(t *testing.T) {
	s, _ := newTestStorage(t)

	created, err := s.Create(model.Draft{
		Title:  "Original",
		URL:    "https://example.com/orig",
		Status: model.StatusPublished,
	}, "admin")
	require.NoError(t, err)

	updated, err := s.Update(created.ID, model.Patch{Title: lo.ToPtr("Renamed")}, "admin")
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, created.URL, updated.URL)
	assert.Equal(t, created.Status, updated.Status)
	assert.Equal(t, created.PublishAt, updated.PublishAt)
	assert.Equal(t, created.UnpublishAt, updated.UnpublishAt)
	assert.False(t, updated.UpdatedAt.Before(created.CreatedAt))
}

func TestUpdateLocatesByURL(t *testing.T) {
	s, _ := newTestStorage(t)

	_, err := s.Create(model.Draft{Title: "Original", URL: "https://example.com/orig"}, "admin")
	require.NoError(t, err)

	updated, err := s.Update("https://example.com/orig", model.Patch{Title: lo.ToPtr("Renamed")}, "admin")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestUpdateNotFound(t *testing.T) {
	s, _ := newTestStorage(t)

	_, err := s.Update("nope", model.Patch{Title: lo.ToPtr("X")}, "admin")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateRejectsDuplicateURL(t *testing.T) {
	s, _ := newTestStorage(t)

	_, err := s.Create(model.Draft{Title: "A", URL: "https://example.com/a"}, "admin")
	require.NoError(t, err)
	b, err := s.Create(model.Draft{Title: "B", URL: "https://example.com/b"}, "admin")
	require.NoError(t, err)

	_, err = s.Update(b.ID, model.Patch{URL: lo.ToPtr("https://example.com/a")}, "admin")
	require.ErrorIs(t, err, storage.ErrDuplicateURL)
}

func TestUpdateStatus(t *testing.T) {
	s, _ := newTestStorage(t)

	created, err := s.Create(model.Draft{Title: "A", URL: "https://example.com/a", Status: model.StatusPublished}, "admin")
	require.NoError(t, err)

	updated, err := s.UpdateStatus(created.ID, model.StatusUnpublished, "admin")
	require.NoError(t, err)
	assert.Equal(t, model.StatusUnpublished, updated.Status)
	assert.Empty(t, s.ListPublished())

	_, err = s.UpdateStatus("missing", model.StatusPublished, "admin")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSweepPublishesWhenDue(t *testing.T) {
	s, _ := newTestStorage(t)

	now := time.Now().UTC()
	publishAt := now.Add(time.Hour)
	_, err := s.Create(model.Draft{
		Title:     "Scheduled",
		URL:       "https://example.com/scheduled",
		PublishAt: &publishAt,
	}, "admin")
	require.NoError(t, err)

	// Not due yet.
	flipped, err := s.Sweep(now)
	require.NoError(t, err)
	assert.Zero(t, flipped)
	assert.Empty(t, s.ListPublished())

	// Past the deadline a single tick publishes it.
	later := now.Add(2 * time.Hour)
	flipped, err = s.Sweep(later)
	require.NoError(t, err)
	assert.Equal(t, 1, flipped)
	require.Len(t, s.ListPublished(), 1)

	// Same instant again: nothing left to do.
	flipped, err = s.Sweep(later)
	require.NoError(t, err)
	assert.Zero(t, flipped)
}

func TestSweepUnpublishesWhenDue(t *testing.T) {
	s, _ := newTestStorage(t)

	unpublishAt := time.Now().UTC().Add(-time.Minute)
	_, err := s.Create(model.Draft{
		Title:       "Expiring",
		URL:         "https://example.com/expiring",
		Status:      model.StatusPublished,
		UnpublishAt: &unpublishAt,
	}, "admin")
	require.NoError(t, err)

	now := time.Now().UTC()
	flipped, err := s.Sweep(now)
	require.NoError(t, err)
	assert.Equal(t, 1, flipped)
	assert.Empty(t, s.ListPublished())

	// The closed window must not flap the article back to published.
	flipped, err = s.Sweep(now)
	require.NoError(t, err)
	assert.Zero(t, flipped)
}

func TestPersistFailureRollsBackCreate(t *testing.T) {
	// The snapshot path is an existing directory, so every save fails.
	s := storage.NewArticleStorage(t.TempDir())

	_, err := s.Create(model.Draft{Title: "A", URL: "https://example.com/a", Status: model.StatusPublished}, "admin")
	require.Error(t, err)
	assert.Empty(t, s.ListPublished())
}
