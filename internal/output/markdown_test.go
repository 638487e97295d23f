package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/scrapex/scrapex/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	posts := []models.Post{
		{
			Timestamp:  "2025-03-24T10:00:00.000Z",
			AuthorName: "alice",
			BodyText:   "plain body",
			Stats:      map[string]int{"likes": 457, "replies": 3},
		},
		{
			Timestamp:   "2025-03-24T11:00:00.000Z",
			AuthorName:  "bob",
			BodyText:    "fallback",
			BodyHTML:    `<p>Hello <a href="https://example.com">world</a></p>`,
			Engagements: []string{"nice one"},
		},
	}

	require.NoError(t, WriteReport(path, posts))
	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	report := string(blob)

	assert.Contains(t, report, "# Collected posts (2)")
	assert.Contains(t, report, "## alice")
	assert.Contains(t, report, "plain body")
	assert.Contains(t, report, "replies: 3")
	assert.Contains(t, report, "[world](https://example.com)", "HTML body converts to Markdown")
	assert.Contains(t, report, "> nice one")
}

func TestStatOrder(t *testing.T) {
	stats := map[string]int{"zeta": 1, "likes": 2, "replies": 3, "alpha": 4}
	assert.Equal(t, []string{"replies", "likes", "alpha", "zeta"}, statOrder(stats))
}
