// Package app owns a run's lifecycle: credential validation, browser
// login, navigation, the collect loop, and teardown.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/scrapex/scrapex/internal/auth"
	"github.com/scrapex/scrapex/internal/browser"
	"github.com/scrapex/scrapex/internal/config"
	"github.com/scrapex/scrapex/internal/output"
	"github.com/scrapex/scrapex/internal/ratelimit"
	"github.com/scrapex/scrapex/internal/scrape"
	"github.com/scrapex/scrapex/pkg/models"
)

// Application holds the dependencies of one run. The run configuration is
// immutable once Run starts.
type Application struct {
	Config    *config.Config
	Index     *scrape.Index
	startTime time.Time
}

// New prepares a run: configures logging and loads prior output files into
// the dedup index. No browser is opened here.
func New(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	configureLogging(cfg)

	index := scrape.NewIndex()
	index.Load(cfg.ExistingPaths...)

	return &Application{
		Config:    cfg,
		Index:     index,
		startTime: time.Now(),
	}, nil
}

// Run executes the full scrape: resolve credentials, start the browser,
// log in, navigate to the target, run the collect loop, and tear down.
// The browser is always closed and the results flushed exactly once (by
// the loop) whichever way the run ends.
func (a *Application) Run(ctx context.Context) (*models.Summary, error) {
	cfg := a.Config

	// Configuration errors are fatal before any browser session opens.
	if err := a.resolveCredentials(); err != nil {
		return nil, err
	}
	var filter *scrape.Filter
	if cfg.FilterScript != "" {
		var err error
		filter, err = scrape.NewFilterFromFile(cfg.FilterScript)
		if err != nil {
			return nil, err
		}
	}

	session, err := browser.NewSession(browser.Options{
		Headless:          cfg.Headless,
		UserAgent:         cfg.UserAgent,
		ChromePath:        cfg.ChromePath,
		ElementWait:       cfg.ElementWait,
		EngagementScrolls: cfg.EngagementScrolls,
		EngagementWait:    cfg.EngagementWait,
		EngagementMax:     cfg.EngagementMax,
	})
	if err != nil {
		return nil, err
	}
	defer session.Close()

	if err := a.establishSession(ctx, session); err != nil {
		return nil, err
	}

	log.Info().Str("url", cfg.TargetURL).Msg("Loading target")
	if err := session.Navigate(ctx, cfg.TargetURL, scrape.SelectorPost); err != nil {
		return nil, fmt.Errorf("load target: %w", err)
	}

	abort := scrape.NewAbort()
	abort.ListenSignals()
	abort.ListenKeyboard(os.Stdin)
	fmt.Fprintln(os.Stderr, "Collecting. Press 'q' then Enter to abort and save what was collected.")

	writer := output.NewWriter(cfg.OutputPath, config.DefaultOutputPrefix, a.Index.Existing())
	pacer := ratelimit.NewPacer(cfg.ScrollsPerSecond, cfg.ScrollBurst)
	collector := scrape.NewCollector(session, a.Index, writer, filter, abort, pacer, scrape.Options{
		TimeLimit:           cfg.TimeLimit,
		StagnationThreshold: cfg.StagnationThreshold,
		SettleWait:          cfg.SettleWait,
		ScrapeEngagements:   cfg.ScrapeEngagements,
		ShowProgress:        showProgress(cfg),
	})

	summary, runErr := collector.Run(ctx)

	if cfg.ReportPath != "" && len(writer.Flushed()) > 0 {
		if err := output.WriteReport(cfg.ReportPath, writer.Flushed()); err != nil {
			log.Error().Err(err).Str("path", cfg.ReportPath).Msg("Failed to write report")
		} else {
			log.Info().Str("path", cfg.ReportPath).Msg("Report written")
		}
	}
	return summary, runErr
}

// resolveCredentials fills the config from the keyring when neither flags
// nor environment provided credentials. Missing credentials from all
// sources is a startup-time fatal error.
func (a *Application) resolveCredentials() error {
	cfg := a.Config
	if cfg.HasCredentials() {
		return nil
	}
	username, password, err := auth.LoadCredentials()
	if err == nil {
		if cfg.Username == "" {
			cfg.Username = username
		}
		if cfg.Password == "" && cfg.Username == username {
			cfg.Password = password
		}
	}
	if !cfg.HasCredentials() {
		return fmt.Errorf("credentials missing: pass --username/--password, set %s/%s, or run `scrapex login`",
			config.EnvUsername, config.EnvPassword)
	}
	return nil
}

// establishSession reuses a saved cookie session when still valid, falling
// back to the full login flow, and refreshes the saved cookies afterwards.
func (a *Application) establishSession(ctx context.Context, session *browser.Session) error {
	cfg := a.Config

	if saved, err := auth.LoadSession(cfg.Username); err == nil && saved.Valid() {
		log.Debug().Str("username", cfg.Username).Msg("Trying saved session cookies")
		if err := session.SetCookies(ctx, saved.CookieParams()); err == nil {
			if err := session.Navigate(ctx, "https://x.com/home", scrape.SelectorHomeLink); err == nil {
				log.Info().Msg("Reused saved session, skipping login")
				return nil
			}
		}
		log.Debug().Msg("Saved session rejected, falling back to login")
		auth.DeleteSession(cfg.Username)
	}

	if err := auth.Login(ctx, session, auth.LoginOptions{
		Username: cfg.Username,
		Password: cfg.Password,
		Attempts: cfg.LoginAttempts,
		StepWait: cfg.LoginStepWait,
	}); err != nil {
		return err
	}

	if cookies, err := session.Cookies(ctx); err == nil {
		if err := auth.SaveSession(cfg.Username, cookies); err != nil {
			log.Debug().Err(err).Msg("Could not save session cookies")
		}
	}
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}

// showProgress reports whether the collect loop should draw the progress
// bar. JSON output and quiet mode keep stderr machine-readable and silent.
func showProgress(cfg *config.Config) bool {
	return !cfg.JSONLog && cfg.LogLevel != "error"
}

func configureLogging(cfg *config.Config) {
	level := zerolog.InfoLevel
	switch cfg.LogLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer
	if cfg.JSONLog {
		w = os.Stderr
	} else {
		w = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}
