package models

import "time"

// Post represents one scraped post plus its engagement data.
//
// Timestamp is kept as the raw ISO-8601 string from the element's datetime
// attribute: it is what prior output files contain and what the dedup
// fingerprint is built from, so parsing it into time.Time would only risk
// lossy round-trips.
type Post struct {
	Timestamp   string         `json:"timestamp"`
	AuthorName  string         `json:"author_name"`
	BodyText    string         `json:"body_text"`
	BodyHTML    string         `json:"body_html,omitempty"`
	Stats       map[string]int `json:"stats"`
	Engagements []string       `json:"engagements"`
	ScrapedAt   time.Time      `json:"scraped_at,omitempty"`
}

// Fingerprint is the composite key identifying a post for deduplication.
// Collisions are possible in theory but are treated as true duplicates.
type Fingerprint struct {
	Timestamp  string
	AuthorName string
	BodyText   string
}

// Fingerprint returns the dedup key for the post.
func (p *Post) Fingerprint() Fingerprint {
	return Fingerprint{
		Timestamp:  p.Timestamp,
		AuthorName: p.AuthorName,
		BodyText:   p.BodyText,
	}
}

// StopReason enumerates why the collect loop terminated.
type StopReason string

const (
	StopTimeExpired  StopReason = "time-expired"
	StopNoNewContent StopReason = "no-new-content"
	StopUserAbort    StopReason = "user-abort"
	StopSessionFatal StopReason = "session-fatal"
)

// Summary describes the outcome of a run.
type Summary struct {
	Reason     StopReason    `json:"stop_reason"`
	Collected  int           `json:"collected"`
	Duplicates int           `json:"duplicates"`
	Iterations int           `json:"iterations"`
	Elapsed    time.Duration `json:"elapsed"`
	OutputPath string        `json:"output_path,omitempty"`
}
