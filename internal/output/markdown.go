package output

import (
	"fmt"
	"os"
	"sort"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/rs/zerolog/log"
	"github.com/scrapex/scrapex/pkg/models"
)

// WriteReport renders a Markdown digest of the posts. Post bodies captured
// as HTML are converted so links and formatting survive; plain text bodies
// pass through as-is.
func WriteReport(path string, posts []models.Post) error {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	var b strings.Builder
	fmt.Fprintf(&b, "# Collected posts (%d)\n", len(posts))

	for i := range posts {
		p := &posts[i]
		fmt.Fprintf(&b, "\n## %s — %s\n\n", p.AuthorName, p.Timestamp)

		body := p.BodyText
		if p.BodyHTML != "" {
			converted, err := converter.ConvertString(p.BodyHTML)
			if err != nil {
				log.Warn().Err(err).Str("author", p.AuthorName).Msg("Body conversion failed, using plain text")
			} else {
				body = strings.TrimSpace(converted)
			}
		}
		fmt.Fprintf(&b, "%s\n", body)

		if len(p.Stats) > 0 {
			var parts []string
			for _, name := range statOrder(p.Stats) {
				parts = append(parts, fmt.Sprintf("%s: %d", name, p.Stats[name]))
			}
			fmt.Fprintf(&b, "\n*%s*\n", strings.Join(parts, " · "))
		}
		for _, e := range p.Engagements {
			fmt.Fprintf(&b, "\n> %s\n", e)
		}
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// statOrder yields the well-known counters first, then the rest sorted.
func statOrder(stats map[string]int) []string {
	known := []string{"replies", "reposts", "likes", "views"}
	var order []string
	seen := make(map[string]bool)
	for _, k := range known {
		if _, ok := stats[k]; ok {
			order = append(order, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range stats {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}
