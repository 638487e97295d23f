package scrape

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/scrapex/scrapex/internal/ratelimit"
	"github.com/scrapex/scrapex/internal/retry"
	"github.com/scrapex/scrapex/pkg/models"
)

// Feed is the capability surface the loop needs from the browser session.
// All calls are serialized: the underlying browser is a single shared
// resource and the loop is its only driver.
type Feed interface {
	// Snapshot returns the outer HTML of every currently visible post
	// container, with a bounded wait for content to appear.
	Snapshot(ctx context.Context) ([]string, error)

	// ScrollForward advances the viewport by one screen.
	ScrollForward(ctx context.Context) error

	// Engagements collects reply/quote text for the i-th post of the most
	// recent snapshot, restoring the feed's viewport state before returning.
	Engagements(ctx context.Context, postIndex int) ([]string, error)
}

// Sink persists the accumulated records. Flush is called exactly once per
// run, on every exit path.
type Sink interface {
	Flush(posts []models.Post, reason models.StopReason) (string, error)
}

// Options tunes a collect run. All values must be set; config supplies the
// defaults.
type Options struct {
	TimeLimit           time.Duration
	StagnationThreshold int
	SettleWait          time.Duration
	ScrapeEngagements   bool
	ShowProgress        bool
}

// Collector runs the scroll-and-collect loop against a Feed, deduplicating
// through the shared Index and flushing to the Sink on exit.
type Collector struct {
	feed   Feed
	index  *Index
	sink   Sink
	filter *Filter // optional
	abort  *Abort
	pacer  *ratelimit.Pacer
	opts   Options
}

// NewCollector wires a collector. filter may be nil.
func NewCollector(feed Feed, index *Index, sink Sink, filter *Filter, abort *Abort, pacer *ratelimit.Pacer, opts Options) *Collector {
	return &Collector{
		feed:   feed,
		index:  index,
		sink:   sink,
		filter: filter,
		abort:  abort,
		pacer:  pacer,
		opts:   opts,
	}
}

// Run drives the loop until a stopping condition and returns the run
// summary. Whatever was collected is flushed before Run returns, no matter
// which path exits the loop.
//
// Stopping conditions, checked at iteration boundaries:
//   - the abort flag is tripped (user-abort)
//   - elapsed time reaches the limit (time-expired); in-flight iterations
//     complete first
//   - StagnationThreshold consecutive iterations yield zero new records
//     (no-new-content)
//   - the parent context dies for any other reason (session-fatal)
func (c *Collector) Run(ctx context.Context) (summary *models.Summary, err error) {
	start := time.Now()
	runCtx, cancel := context.WithDeadline(ctx, start.Add(c.opts.TimeLimit))
	defer cancel()

	summary = &models.Summary{}
	var collected []models.Post

	defer func() {
		summary.Elapsed = time.Since(start)
		path, flushErr := c.sink.Flush(collected, summary.Reason)
		if flushErr != nil {
			log.Error().Err(flushErr).Msg("Failed to flush collected posts")
			if err == nil {
				err = flushErr
			}
			return
		}
		summary.OutputPath = path
	}()

	var bar *progressbar.ProgressBar
	if c.opts.ShowProgress {
		bar = progressbar.NewOptions64(int64(c.opts.TimeLimit.Seconds()),
			progressbar.OptionSetDescription("collecting"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionShowCount(),
		)
		defer func() { _ = bar.Clear() }()
	}

	log.Info().
		Dur("time_limit", c.opts.TimeLimit).
		Int("known_posts", c.index.Size()).
		Msg("Starting collection")

	stagnation := 0
	for {
		if c.abort.Tripped() {
			summary.Reason = models.StopUserAbort
			return summary, nil
		}
		if time.Since(start) >= c.opts.TimeLimit {
			summary.Reason = models.StopTimeExpired
			return summary, nil
		}

		if waitErr := c.pacer.Wait(runCtx); waitErr != nil {
			if runCtx.Err() == context.DeadlineExceeded {
				summary.Reason = models.StopTimeExpired
				return summary, nil
			}
			summary.Reason = models.StopSessionFatal
			return summary, fmt.Errorf("run context ended: %w", waitErr)
		}

		summary.Iterations++
		added := 0

		fragments, snapErr := c.snapshot(runCtx)
		switch {
		case snapErr != nil && runCtx.Err() == context.DeadlineExceeded:
			summary.Reason = models.StopTimeExpired
			return summary, nil
		case snapErr != nil && runCtx.Err() != nil:
			summary.Reason = models.StopSessionFatal
			return summary, fmt.Errorf("snapshot failed: %w", snapErr)
		case snapErr != nil:
			// Content that will not load counts toward stagnation, it is
			// not a crash.
			log.Warn().Err(snapErr).Msg("Snapshot failed, treating as no new content")
		default:
			added = c.collect(runCtx, fragments, &collected, summary)
		}

		if added > 0 {
			stagnation = 0
		} else {
			stagnation++
		}
		if stagnation >= c.opts.StagnationThreshold {
			log.Info().Int("iterations", stagnation).Msg("No new posts, end of available content")
			summary.Reason = models.StopNoNewContent
			return summary, nil
		}

		if scrollErr := c.feed.ScrollForward(runCtx); scrollErr != nil {
			if runCtx.Err() != nil && runCtx.Err() != context.DeadlineExceeded {
				summary.Reason = models.StopSessionFatal
				return summary, fmt.Errorf("scroll failed: %w", scrollErr)
			}
			log.Warn().Err(scrollErr).Msg("Scroll failed, retrying next iteration")
		}
		c.settle(runCtx)

		if bar != nil {
			_ = bar.Set64(int64(time.Since(start).Seconds()))
		}
		log.Debug().
			Int("iteration", summary.Iterations).
			Int("collected", summary.Collected).
			Int("duplicates", summary.Duplicates).
			Int("stagnation", stagnation).
			Msg("Iteration complete")
	}
}

// collect extracts, deduplicates, filters, and appends one snapshot's
// posts. A malformed element is logged and skipped; it never fails the
// batch. Returns how many records qualified.
func (c *Collector) collect(ctx context.Context, fragments []string, out *[]models.Post, summary *models.Summary) int {
	added := 0
	for i, fragment := range fragments {
		post, err := ExtractPost(fragment)
		if err != nil {
			log.Debug().Err(err).Int("index", i).Msg("Skipping malformed post element")
			continue
		}
		if c.index.Contains(post) {
			summary.Duplicates++
			continue
		}
		if c.filter != nil && !c.filter.Keep(post) {
			log.Debug().Str("author", post.AuthorName).Msg("Post rejected by filter script")
			continue
		}

		if c.opts.ScrapeEngagements {
			engagements, err := c.feed.Engagements(ctx, i)
			if err != nil {
				// A detail view that will not open leaves the list empty.
				log.Warn().Err(err).Str("author", post.AuthorName).Msg("Engagement collection failed")
			} else {
				post.Engagements = engagements
			}
		}

		c.index.Add(post)
		*out = append(*out, *post)
		summary.Collected++
		added++
		log.Info().
			Int("n", summary.Collected).
			Str("timestamp", post.Timestamp).
			Str("author", post.AuthorName).
			Msg("Collected post")
	}
	return added
}

// snapshot fetches visible posts with one quick retry; stale DOM between
// scrolls is common and resolves on re-observation.
func (c *Collector) snapshot(ctx context.Context) ([]string, error) {
	var fragments []string
	err := retry.WithRetry(ctx, retry.Config{
		MaxAttempts:    2,
		InitialBackoff: 500 * time.Millisecond,
		Multiplier:     2.0,
	}, func() error {
		var err error
		fragments, err = c.feed.Snapshot(ctx)
		return err
	})
	return fragments, err
}

// settle gives the page a bounded window to render newly loaded content.
func (c *Collector) settle(ctx context.Context) {
	t := time.NewTimer(c.opts.SettleWait)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
