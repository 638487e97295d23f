package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
	"github.com/scrapex/scrapex/internal/browser"
	"github.com/scrapex/scrapex/internal/retry"
	"github.com/scrapex/scrapex/internal/scrape"
)

// LoginURL is where the credential flow starts.
const LoginURL = "https://x.com/login"

// LoginOptions configures the browser login flow.
type LoginOptions struct {
	Username string
	Password string
	Attempts int
	StepWait time.Duration
}

// Login walks the two-step username/password flow and waits for the home
// link to confirm the session. Each attempt restarts from the login page;
// failing all attempts is a session-fatal error for the run.
func Login(ctx context.Context, session *browser.Session, opts LoginOptions) error {
	if opts.Attempts <= 0 {
		opts.Attempts = 3
	}
	if opts.StepWait <= 0 {
		opts.StepWait = 5 * time.Second
	}

	err := retry.WithRetry(ctx, retry.Config{
		MaxAttempts:    opts.Attempts,
		InitialBackoff: 2 * time.Second,
		Multiplier:     2.0,
	}, func() error {
		return loginOnce(ctx, session, opts)
	})
	if err != nil {
		return fmt.Errorf("login failed after %d attempts: %w", opts.Attempts, err)
	}
	log.Info().Str("username", opts.Username).Msg("Logged in successfully")
	return nil
}

func loginOnce(ctx context.Context, session *browser.Session, opts LoginOptions) error {
	if err := session.Navigate(ctx, LoginURL, scrape.SelectorLoginUser); err != nil {
		return fmt.Errorf("load login page: %w", err)
	}

	if err := session.Run(ctx, opts.StepWait,
		chromedp.SendKeys(scrape.SelectorLoginUser, opts.Username, chromedp.ByQuery),
		clickButtonByText("Next"),
	); err != nil {
		return fmt.Errorf("submit username: %w", err)
	}

	if err := session.Run(ctx, opts.StepWait,
		chromedp.WaitVisible(scrape.SelectorLoginPassword, chromedp.ByQuery),
		chromedp.SendKeys(scrape.SelectorLoginPassword, opts.Password, chromedp.ByQuery),
		clickButtonByText("Log in"),
	); err != nil {
		return fmt.Errorf("submit password: %w", err)
	}

	if err := session.Run(ctx, opts.StepWait,
		chromedp.WaitVisible(scrape.SelectorHomeLink, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("home link not visible after login: %w", err)
	}
	return nil
}

// clickButtonByText clicks the first button whose visible text matches.
// The login buttons carry no stable test ids, so text matching is the only
// handle the page offers.
func clickButtonByText(text string) chromedp.Action {
	js := fmt.Sprintf(`(() => {
		const btn = Array.from(document.querySelectorAll('button'))
			.find(b => b.innerText.trim() === %q);
		if (btn) { btn.click(); return true; }
		return false;
	})()`, text)

	return chromedp.ActionFunc(func(ctx context.Context) error {
		var clicked bool
		if err := chromedp.Evaluate(js, &clicked).Do(ctx); err != nil {
			return err
		}
		if !clicked {
			return fmt.Errorf("button %q not found", text)
		}
		return nil
	})
}
