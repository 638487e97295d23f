package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeEngagementTexts(t *testing.T) {
	seen := make(map[string]struct{})
	var out []string

	// First pass: the leading text is the post's own body.
	out = mergeEngagementTexts(out, seen, []string{"own body", "reply one"}, true, 100)
	assert.Equal(t, []string{"reply one"}, out)

	// Later pass re-queries the same elements plus newly loaded replies.
	// The post's body must stay excluded even without the first-pass guard.
	out = mergeEngagementTexts(out, seen, []string{"own body", "reply one", "reply two"}, false, 100)
	assert.Equal(t, []string{"reply one", "reply two"}, out)
}

func TestMergeEngagementTextsSkipsEmptyAndDuplicates(t *testing.T) {
	seen := make(map[string]struct{})
	var out []string

	out = mergeEngagementTexts(out, seen, []string{"own", "", "a", "a"}, true, 100)
	out = mergeEngagementTexts(out, seen, []string{"a", "b", ""}, false, 100)
	assert.Equal(t, []string{"a", "b"}, out)
}

func TestMergeEngagementTextsCap(t *testing.T) {
	seen := make(map[string]struct{})
	var out []string

	out = mergeEngagementTexts(out, seen, []string{"own", "a", "b", "c", "d"}, true, 2)
	assert.Equal(t, []string{"a", "b"}, out)
}

func TestMergeEngagementTextsEmptyFirstPass(t *testing.T) {
	seen := make(map[string]struct{})
	out := mergeEngagementTexts(nil, seen, nil, true, 100)
	assert.Empty(t, out)
}
