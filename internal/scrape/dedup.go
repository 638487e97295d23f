package scrape

import (
	"encoding/json"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/scrapex/scrapex/pkg/models"
)

// Index tracks the fingerprints of every post seen so far, across prior
// runs and the current one. It grows monotonically during a run.
//
// The loaded prior records are retained so the output file can carry both
// the existing and the newly collected posts.
type Index struct {
	seen     map[models.Fingerprint]struct{}
	existing []models.Post
}

// NewIndex creates an empty deduplication index.
func NewIndex() *Index {
	return &Index{seen: make(map[models.Fingerprint]struct{})}
}

// Load ingests zero or more prior output files. A missing or malformed
// file is skipped with a warning, never a fatal error. Loading the same
// file twice yields the same fingerprint set as loading it once.
func (idx *Index) Load(paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Skipping unreadable existing-posts file")
			continue
		}
		var posts []models.Post
		if err := json.Unmarshal(data, &posts); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Skipping malformed existing-posts file")
			continue
		}
		loaded := 0
		for i := range posts {
			fp := posts[i].Fingerprint()
			if _, dup := idx.seen[fp]; dup {
				continue
			}
			idx.seen[fp] = struct{}{}
			idx.existing = append(idx.existing, posts[i])
			loaded++
		}
		log.Info().Str("path", path).Int("posts", loaded).Msg("Loaded existing posts")
	}
}

// Contains reports whether the post's fingerprint has been seen.
func (idx *Index) Contains(post *models.Post) bool {
	_, ok := idx.seen[post.Fingerprint()]
	return ok
}

// Add records the post's fingerprint.
func (idx *Index) Add(post *models.Post) {
	idx.seen[post.Fingerprint()] = struct{}{}
}

// Existing returns the prior records loaded from disk, in load order.
func (idx *Index) Existing() []models.Post {
	return idx.existing
}

// Size returns the number of distinct fingerprints known.
func (idx *Index) Size() int {
	return len(idx.seen)
}
