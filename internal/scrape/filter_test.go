package scrape

import (
	"testing"

	"github.com/scrapex/scrapex/pkg/models"
)

func TestFilterKeep(t *testing.T) {
	filter, err := NewFilter(`function keep(post) {
		return post.stats.likes >= 100 && post.author_name !== "spammer";
	}`)
	if err != nil {
		t.Fatalf("NewFilter failed: %v", err)
	}

	popular := &models.Post{AuthorName: "alice", Stats: map[string]int{"likes": 457}}
	if !filter.Keep(popular) {
		t.Error("popular post should pass")
	}

	quiet := &models.Post{AuthorName: "alice", Stats: map[string]int{"likes": 3}}
	if filter.Keep(quiet) {
		t.Error("quiet post should be rejected")
	}

	spam := &models.Post{AuthorName: "spammer", Stats: map[string]int{"likes": 9999}}
	if filter.Keep(spam) {
		t.Error("spammer should be rejected")
	}
}

func TestFilterKeep_ScriptErrorKeepsPost(t *testing.T) {
	filter, err := NewFilter(`function keep(post) { return post.body_text.no.such.field; }`)
	if err != nil {
		t.Fatalf("NewFilter failed: %v", err)
	}
	post := &models.Post{AuthorName: "alice", BodyText: "x"}
	if !filter.Keep(post) {
		t.Error("a throwing predicate must not drop posts")
	}
}

func TestNewFilter_Invalid(t *testing.T) {
	if _, err := NewFilter(`var x = 1;`); err == nil {
		t.Error("script without keep() should be rejected")
	}
	if _, err := NewFilter(`this is not javascript`); err == nil {
		t.Error("unparseable script should be rejected")
	}
}
