package scrape

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/scrapex/scrapex/pkg/models"
)

// ExtractPost parses one rendered post container's outer HTML into a Post.
// Optional fields that are missing stay zero-valued; an error is returned
// only when the fragment carries none of the identifying fields, in which
// case the caller logs and skips it.
func ExtractPost(fragment string) (*models.Post, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("parse post fragment: %w", err)
	}

	post := &models.Post{
		Stats:       make(map[string]int),
		Engagements: []string{},
		ScrapedAt:   time.Now().UTC(),
	}

	if ts, ok := doc.Find(SelectorTimestamp).First().Attr("datetime"); ok {
		post.Timestamp = ts
	}

	post.AuthorName = extractAuthor(doc)

	text := doc.Find(SelectorPostText).First()
	if text.Length() > 0 {
		post.BodyText = cleanText(text.Text())
		if html, err := text.Html(); err == nil {
			post.BodyHTML = html
		}
	}

	post.Stats = extractStats(doc)

	if post.Timestamp == "" && post.AuthorName == "" && post.BodyText == "" {
		return nil, fmt.Errorf("fragment has no post fields")
	}
	return post, nil
}

// extractAuthor finds the display name inside the user-name block. The name
// lives in a nested span; fall back to the block's first text run.
func extractAuthor(doc *goquery.Document) string {
	block := doc.Find(SelectorUserName).First()
	if block.Length() == 0 {
		return ""
	}

	var name string
	block.Find("span").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		// Skip wrapper spans; the display name is a leaf span with text.
		if sel.Children().Length() > 0 {
			return true
		}
		t := cleanText(sel.Text())
		if t == "" || strings.HasPrefix(t, "@") {
			return true
		}
		name = t
		return false
	})
	if name == "" {
		name = cleanText(block.Text())
	}
	return name
}

// extractStats prefers the stats group aria-label, which carries full
// precision, and falls back to the abbreviated per-button counters.
func extractStats(doc *goquery.Document) map[string]int {
	if label, ok := doc.Find(SelectorStatsGroup).First().Attr("aria-label"); ok && label != "" {
		if stats := ParseStatsLabel(label); len(stats) > 0 {
			return stats
		}
	}

	stats := make(map[string]int)
	buttons := map[string]string{
		"replies": SelectorReplyButton,
		"reposts": SelectorRepostButton,
		"likes":   SelectorLikeButton,
	}
	for name, selector := range buttons {
		btn := doc.Find(selector).First()
		if btn.Length() == 0 {
			continue
		}
		if label, ok := btn.Attr("aria-label"); ok {
			if fields := strings.Fields(label); len(fields) > 0 {
				stats[name] = ParseStatCount(fields[0])
				continue
			}
		}
		stats[name] = ParseStatCount(btn.Text())
	}
	return stats
}

// cleanText trims and strips embedded line breaks, matching how prior
// output files store body text.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	return strings.TrimSpace(s)
}
