package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/scrapex/scrapex/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(author, text string) models.Post {
	return models.Post{
		Timestamp:  "2025-03-24T10:00:00.000Z",
		AuthorName: author,
		BodyText:   text,
		Stats:      map[string]int{"replies": 1},
	}
}

func readPosts(t *testing.T, path string) []models.Post {
	t.Helper()
	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	var posts []models.Post
	require.NoError(t, json.Unmarshal(blob, &posts))
	return posts
}

func TestTimestampedFilename(t *testing.T) {
	ts := time.Date(2025, 3, 24, 14, 7, 30, 0, time.UTC)
	assert.Equal(t, "post_data_20250324_1407.json", TimestampedFilename("post_data", ts))
	assert.Equal(t, "custom_20250324_1407.json", TimestampedFilename("custom", ts))
}

func TestFlushMergesExistingAndNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	existing := []models.Post{post("alice", "old post")}
	w := NewWriter(path, "post_data", existing)

	got, err := w.Flush([]models.Post{post("bob", "new post")}, models.StopTimeExpired)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	posts := readPosts(t, path)
	require.Len(t, posts, 2)
	assert.Equal(t, "alice", posts[0].AuthorName, "existing records come first")
	assert.Equal(t, "bob", posts[1].AuthorName)

	assert.Len(t, w.Flushed(), 1, "Flushed reports only the new records")
	assert.Equal(t, "bob", w.Flushed()[0].AuthorName)
}

func TestFlushNothingWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	w := NewWriter(path, "post_data", nil)

	got, err := w.Flush(nil, models.StopNoNewContent)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFlushDefaultsToTimestampedName(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	w := NewWriter("", "post_data", nil)
	got, err := w.Flush([]models.Post{post("alice", "hi")}, models.StopUserAbort)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Regexp(t, `^post_data_\d{8}_\d{4}\.json$`, got)

	assert.Len(t, readPosts(t, got), 1)
}

func TestFlushLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	w := NewWriter(path, "post_data", nil)

	_, err := w.Flush([]models.Post{post("alice", "hi")}, models.StopTimeExpired)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.json", entries[0].Name())
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merged.json")
	posts := []models.Post{post("alice", "one"), post("bob", "two")}

	require.NoError(t, WriteJSON(path, posts))
	assert.Len(t, readPosts(t, path), 2)
}
