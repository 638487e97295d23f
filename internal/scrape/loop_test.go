package scrape

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/scrapex/scrapex/internal/ratelimit"
	"github.com/scrapex/scrapex/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFeed serves canned snapshots. When gen is set it produces one batch
// per call; otherwise batches are served in order and the last repeats.
type fakeFeed struct {
	batches  [][]string
	gen      func(call int) []string
	call     int
	onScroll func()

	eng      []string
	engErr   error
	engCalls int
}

func (f *fakeFeed) Snapshot(ctx context.Context) ([]string, error) {
	i := f.call
	f.call++
	if f.gen != nil {
		return f.gen(i), nil
	}
	if len(f.batches) == 0 {
		return nil, nil
	}
	if i >= len(f.batches) {
		i = len(f.batches) - 1
	}
	return f.batches[i], nil
}

func (f *fakeFeed) ScrollForward(ctx context.Context) error {
	if f.onScroll != nil {
		f.onScroll()
	}
	return nil
}

func (f *fakeFeed) Engagements(ctx context.Context, postIndex int) ([]string, error) {
	f.engCalls++
	if f.engErr != nil {
		return nil, f.engErr
	}
	return f.eng, nil
}

// fakeSink records exactly what was flushed.
type fakeSink struct {
	posts  []models.Post
	reason models.StopReason
	calls  int
}

func (s *fakeSink) Flush(posts []models.Post, reason models.StopReason) (string, error) {
	s.calls++
	s.posts = posts
	s.reason = reason
	return "out.json", nil
}

func testOptions(limit time.Duration) Options {
	return Options{
		TimeLimit:           limit,
		StagnationThreshold: 3,
		SettleWait:          time.Millisecond,
	}
}

func newTestCollector(feed Feed, index *Index, sink Sink, opts Options) *Collector {
	return NewCollector(feed, index, sink, nil, NewAbort(), ratelimit.NewPacer(1000, 1000), opts)
}

func TestRun_NoNewContent(t *testing.T) {
	feed := &fakeFeed{batches: [][]string{{
		postFragment("alice", "2025-03-24T10:00:00.000Z", "one", "1 reply"),
		postFragment("bob", "2025-03-24T10:01:00.000Z", "two", "2 replies"),
	}}}
	sink := &fakeSink{}

	summary, err := newTestCollector(feed, NewIndex(), sink, testOptions(time.Minute)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.StopNoNewContent, summary.Reason)
	assert.Equal(t, 2, summary.Collected)
	assert.GreaterOrEqual(t, summary.Duplicates, 2, "repeat snapshots count as duplicates")
	assert.Equal(t, 1, sink.calls, "flush happens exactly once")
	assert.Len(t, sink.posts, 2)
	assert.Equal(t, models.StopNoNewContent, sink.reason)
}

func TestRun_TimeExpired(t *testing.T) {
	feed := &fakeFeed{gen: func(call int) []string {
		return []string{postFragment("alice", fmt.Sprintf("2025-03-24T10:%02d:00.000Z", call%60),
			fmt.Sprintf("post %d", call), "1 reply")}
	}}
	sink := &fakeSink{}
	limit := 100 * time.Millisecond

	start := time.Now()
	summary, err := newTestCollector(feed, NewIndex(), sink, testOptions(limit)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.StopTimeExpired, summary.Reason)
	assert.Greater(t, summary.Collected, 0)
	// Total run time is bounded by the limit plus one iteration's worst case.
	assert.Less(t, time.Since(start), limit+5*time.Second)
	assert.Equal(t, 1, sink.calls)
	assert.Len(t, sink.posts, summary.Collected, "flush carries exactly what was collected")
}

func TestRun_UserAbort(t *testing.T) {
	feed := &fakeFeed{batches: [][]string{{
		postFragment("alice", "2025-03-24T10:00:00.000Z", "one", "1 reply"),
		postFragment("bob", "2025-03-24T10:01:00.000Z", "two", "1 reply"),
		postFragment("carol", "2025-03-24T10:02:00.000Z", "three", "1 reply"),
	}}}
	sink := &fakeSink{}
	abort := NewAbort()
	feed.onScroll = abort.Trip // after the first full iteration

	collector := NewCollector(feed, NewIndex(), sink, nil, abort, ratelimit.NewPacer(1000, 1000), testOptions(time.Minute))
	summary, err := collector.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.StopUserAbort, summary.Reason)
	assert.Equal(t, 3, summary.Collected)
	assert.Len(t, sink.posts, 3, "abort flushes exactly the records collected so far")
	assert.Equal(t, models.StopUserAbort, sink.reason)
	assert.Equal(t, 1, sink.calls)
}

func TestRun_SessionFatal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	feed := &fakeFeed{
		batches: [][]string{{
			postFragment("alice", "2025-03-24T10:00:00.000Z", "one", "1 reply"),
		}},
		onScroll: cancel,
	}
	sink := &fakeSink{}

	summary, err := newTestCollector(feed, NewIndex(), sink, testOptions(time.Minute)).Run(ctx)
	require.Error(t, err)

	assert.Equal(t, models.StopSessionFatal, summary.Reason)
	assert.Equal(t, 1, sink.calls, "a fatal run still flushes")
	assert.Len(t, sink.posts, 1)
	assert.Equal(t, models.StopSessionFatal, sink.reason)
}

func TestRun_PriorStateFiltersDuplicates(t *testing.T) {
	known := postFragment("alice", "2025-03-24T10:00:00.000Z", "seen before", "1 reply")
	fresh := postFragment("bob", "2025-03-24T10:01:00.000Z", "brand new", "1 reply")

	index := NewIndex()
	index.Add(&models.Post{
		Timestamp: "2025-03-24T10:00:00.000Z", AuthorName: "alice", BodyText: "seen before",
	})

	feed := &fakeFeed{batches: [][]string{{known, fresh}}}
	sink := &fakeSink{}

	summary, err := newTestCollector(feed, index, sink, testOptions(time.Minute)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Collected)
	require.Len(t, sink.posts, 1)
	assert.Equal(t, "bob", sink.posts[0].AuthorName)
}

func TestRun_Engagements(t *testing.T) {
	feed := &fakeFeed{
		batches: [][]string{{postFragment("alice", "2025-03-24T10:00:00.000Z", "one", "1 reply")}},
		eng:     []string{"great point", "totally agree"},
	}
	sink := &fakeSink{}
	opts := testOptions(time.Minute)
	opts.ScrapeEngagements = true

	_, err := newTestCollector(feed, NewIndex(), sink, opts).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, sink.posts, 1)
	assert.Equal(t, []string{"great point", "totally agree"}, sink.posts[0].Engagements)
	assert.Equal(t, 1, feed.engCalls, "engagements fetched once per new post")
}

func TestRun_EngagementFailureIsNonFatal(t *testing.T) {
	feed := &fakeFeed{
		batches: [][]string{{postFragment("alice", "2025-03-24T10:00:00.000Z", "one", "1 reply")}},
		engErr:  fmt.Errorf("detail view did not load"),
	}
	sink := &fakeSink{}
	opts := testOptions(time.Minute)
	opts.ScrapeEngagements = true

	summary, err := newTestCollector(feed, NewIndex(), sink, opts).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Collected)
	require.Len(t, sink.posts, 1)
	assert.Empty(t, sink.posts[0].Engagements)
}

func TestRun_MalformedElementsSkipped(t *testing.T) {
	feed := &fakeFeed{batches: [][]string{{
		`<div class="promo">sponsored</div>`,
		postFragment("alice", "2025-03-24T10:00:00.000Z", "real content", "1 reply"),
	}}}
	sink := &fakeSink{}

	summary, err := newTestCollector(feed, NewIndex(), sink, testOptions(time.Minute)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Collected)
	require.Len(t, sink.posts, 1)
	assert.Equal(t, "alice", sink.posts[0].AuthorName)
}

func TestRun_FilterScript(t *testing.T) {
	filter, err := NewFilter(`function keep(post) { return post.author_name !== "bob"; }`)
	require.NoError(t, err)

	feed := &fakeFeed{batches: [][]string{{
		postFragment("alice", "2025-03-24T10:00:00.000Z", "keep me", "1 reply"),
		postFragment("bob", "2025-03-24T10:01:00.000Z", "drop me", "1 reply"),
	}}}
	sink := &fakeSink{}

	collector := NewCollector(feed, NewIndex(), sink, filter, NewAbort(), ratelimit.NewPacer(1000, 1000), testOptions(time.Minute))
	summary, err := collector.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Collected)
	require.Len(t, sink.posts, 1)
	assert.Equal(t, "alice", sink.posts[0].AuthorName)
}
