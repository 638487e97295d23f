// Package browser owns the single chromedp session a run drives. The
// session is not thread-safe; the collect loop is its only caller and all
// DOM interaction is serialized through it.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
	"github.com/scrapex/scrapex/internal/scrape"
)

// Options configures the browser session.
type Options struct {
	Headless          bool
	UserAgent         string
	ChromePath        string
	ElementWait       time.Duration
	EngagementScrolls int
	EngagementWait    time.Duration
	EngagementMax     int
}

// Session wraps one Chrome instance with a primary tab for the feed.
// Engagement detail views open in separate tabs so the feed's scroll
// position survives them.
type Session struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
	opts        Options
}

// NewSession starts Chrome and warms up the primary tab.
func NewSession(opts Options) (*Session, error) {
	if opts.ElementWait <= 0 {
		opts.ElementWait = 10 * time.Second
	}

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("window-size", "1920,1080"),
		chromedp.UserAgent(opts.UserAgent),
	}
	if path := FindChrome(opts.ChromePath); path != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(path)}, allocOpts...)
	}
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false), chromedp.Flag("start-maximized", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(ctx, chromedp.Navigate("about:blank")); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	log.Debug().Bool("headless", opts.Headless).Msg("Browser session ready")
	return &Session{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		ctx:         ctx,
		cancel:      cancel,
		opts:        opts,
	}, nil
}

// Ctx exposes the primary tab context for login actions.
func (s *Session) Ctx() context.Context {
	return s.ctx
}

// Run executes chromedp actions on the primary tab, bounded by d and the
// caller's context. Used by the login flow for its keystroke sequences.
func (s *Session) Run(parent context.Context, d time.Duration, actions ...chromedp.Action) error {
	ctx, cancel := s.bounded(parent, d)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

// Navigate loads url in the primary tab and, when waitSelector is set,
// waits (bounded) for it to become visible.
func (s *Session) Navigate(parent context.Context, url, waitSelector string) error {
	ctx, cancel := s.bounded(parent, s.opts.ElementWait)
	defer cancel()

	actions := []chromedp.Action{chromedp.Navigate(url)}
	if waitSelector != "" {
		actions = append(actions, chromedp.WaitVisible(waitSelector, chromedp.ByQuery))
	}
	if err := chromedp.Run(ctx, actions...); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// Snapshot returns the outer HTML of each visible post container.
func (s *Session) Snapshot(parent context.Context) ([]string, error) {
	ctx, cancel := s.bounded(parent, s.opts.ElementWait)
	defer cancel()

	var fragments []string
	err := chromedp.Run(ctx,
		chromedp.WaitVisible(scrape.SelectorPost, chromedp.ByQuery),
		chromedp.Evaluate(snapshotJS(scrape.SelectorPost), &fragments),
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot posts: %w", err)
	}
	return fragments, nil
}

// ScrollForward advances the feed by one viewport height.
func (s *Session) ScrollForward(parent context.Context) error {
	ctx, cancel := s.bounded(parent, s.opts.ElementWait)
	defer cancel()

	if err := chromedp.Run(ctx, chromedp.Evaluate(`window.scrollBy(0, window.innerHeight);`, nil)); err != nil {
		return fmt.Errorf("scroll: %w", err)
	}
	return nil
}

// Engagements opens the i-th visible post's detail view in a new tab and
// collects reply/quote text, bounded by the configured scroll passes and
// cap. The feed tab is never touched, so its viewport state is preserved.
func (s *Session) Engagements(parent context.Context, postIndex int) ([]string, error) {
	detailURL, err := s.detailURL(parent, postIndex)
	if err != nil {
		return nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(s.ctx)
	defer tabCancel()

	ctx, cancel := boundedCtx(parent, tabCtx, s.opts.ElementWait)
	err = chromedp.Run(ctx,
		chromedp.Navigate(detailURL),
		chromedp.WaitVisible(scrape.SelectorPost, chromedp.ByQuery),
	)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("open detail view: %w", err)
	}

	seen := make(map[string]struct{})
	var engagements []string
	for pass := 0; pass < s.opts.EngagementScrolls; pass++ {
		var texts []string
		passCtx, passCancel := boundedCtx(parent, tabCtx, s.opts.ElementWait)
		err := chromedp.Run(passCtx,
			chromedp.Evaluate(textContentJS(scrape.SelectorPostText), &texts),
		)
		passCancel()
		if err != nil {
			// Keep whatever was gathered in earlier passes.
			log.Debug().Err(err).Int("pass", pass).Msg("Engagement pass failed")
			break
		}

		engagements = mergeEngagementTexts(engagements, seen, texts, pass == 0, s.opts.EngagementMax)
		if len(engagements) >= s.opts.EngagementMax {
			return engagements, nil
		}

		scrollCtx, scrollCancel := boundedCtx(parent, tabCtx, s.opts.ElementWait+s.opts.EngagementWait)
		err = chromedp.Run(scrollCtx,
			chromedp.Evaluate(`window.scrollBy(0, window.innerHeight);`, nil),
			chromedp.Sleep(s.opts.EngagementWait),
		)
		scrollCancel()
		if err != nil {
			break
		}
	}
	return engagements, nil
}

// mergeEngagementTexts folds one scroll pass's texts into the accumulated
// engagement list. The first text of the first pass is the post's own body;
// it is recorded in seen so later passes, which re-query the same elements,
// never append it as an engagement.
func mergeEngagementTexts(engagements []string, seen map[string]struct{}, texts []string, firstPass bool, max int) []string {
	if firstPass && len(texts) > 0 {
		seen[texts[0]] = struct{}{}
		texts = texts[1:]
	}
	for _, t := range texts {
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		engagements = append(engagements, t)
		if len(engagements) >= max {
			break
		}
	}
	return engagements
}

// detailURL resolves the status link of the i-th post from the last
// snapshot, re-queried live so stale indexes fail soft.
func (s *Session) detailURL(parent context.Context, postIndex int) (string, error) {
	ctx, cancel := s.bounded(parent, s.opts.ElementWait)
	defer cancel()

	var href string
	js := fmt.Sprintf(
		`(document.querySelectorAll(%q)[%d]?.querySelector(%q)?.href) || ""`,
		scrape.SelectorPost, postIndex, scrape.SelectorStatusLink,
	)
	if err := chromedp.Run(ctx, chromedp.Evaluate(js, &href)); err != nil {
		return "", fmt.Errorf("resolve detail link: %w", err)
	}
	if href == "" {
		return "", fmt.Errorf("post %d has no status link", postIndex)
	}
	return href, nil
}

// Cookies returns the browser's current cookies.
func (s *Session) Cookies(parent context.Context) ([]*network.Cookie, error) {
	ctx, cancel := s.bounded(parent, s.opts.ElementWait)
	defer cancel()

	var cookies []*network.Cookie
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("get cookies: %w", err)
	}
	return cookies, nil
}

// SetCookies injects cookies into the session before navigation.
func (s *Session) SetCookies(parent context.Context, cookies []*network.CookieParam) error {
	ctx, cancel := s.bounded(parent, s.opts.ElementWait)
	defer cancel()

	return chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range cookies {
			if err := network.SetCookie(c.Name, c.Value).
				WithDomain(c.Domain).
				WithPath(c.Path).
				WithSecure(c.Secure).
				WithHTTPOnly(c.HTTPOnly).
				Do(ctx); err != nil {
				return err
			}
		}
		return nil
	}))
}

// Close tears the browser down. Safe to call more than once.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.allocCancel != nil {
		s.allocCancel()
		s.allocCancel = nil
	}
	log.Debug().Msg("Browser session closed")
}

// bounded derives a timeout context from the primary tab that also dies
// with the caller's context.
func (s *Session) bounded(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return boundedCtx(parent, s.ctx, d)
}

// boundedCtx puts a timeout on the given tab context and additionally
// cancels it when the caller's context ends. chromedp actions must run on a
// descendant of the tab context, so the parent cannot simply be used as the
// base.
func boundedCtx(parent, tab context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(tab, d)
	if parent != nil {
		stop := context.AfterFunc(parent, cancel)
		return ctx, func() { stop(); cancel() }
	}
	return ctx, cancel
}

func snapshotJS(selector string) string {
	return fmt.Sprintf(`Array.from(document.querySelectorAll(%q)).map(n => n.outerHTML)`, selector)
}

func textContentJS(selector string) string {
	return fmt.Sprintf(`Array.from(document.querySelectorAll(%q)).map(n => n.textContent)`, selector)
}
