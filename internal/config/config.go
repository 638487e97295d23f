package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Config holds everything a run needs. It is assembled once at startup and
// treated as immutable for the lifetime of the run.
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// Credentials and target
	Username  string
	Password  string
	TargetURL string

	// Run shape
	TimeLimit         time.Duration
	ExistingPaths     []string
	ScrapeEngagements bool
	Headless          bool
	OutputPath        string
	ReportPath        string
	FilterScript      string

	// Browser
	UserAgent  string
	ChromePath string

	// Loop tuning (no documented derivation, see defaults.go)
	StagnationThreshold int
	SettleWait          time.Duration
	ElementWait         time.Duration
	ScrollsPerSecond    float64
	ScrollBurst         int

	// Login
	LoginAttempts int
	LoginStepWait time.Duration

	// Engagement sub-scrape
	EngagementScrolls int
	EngagementWait    time.Duration
	EngagementMax     int
}

// Load builds a Config from defaults, a best-effort .env file, environment
// variables, and the command's flags, in that order of precedence.
func Load(cmd *cobra.Command) (*Config, error) {
	// Best effort: a missing .env is the normal case.
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:            DefaultLogLevel,
		JSONLog:             DefaultJSONLog,
		TimeLimit:           DefaultTimeLimit,
		Headless:            DefaultHeadless,
		UserAgent:           DefaultUserAgent,
		StagnationThreshold: DefaultStagnationThreshold,
		SettleWait:          DefaultSettleWait,
		ElementWait:         DefaultElementWait,
		ScrollsPerSecond:    DefaultScrollsPerSecond,
		ScrollBurst:         DefaultScrollBurst,
		LoginAttempts:       DefaultLoginAttempts,
		LoginStepWait:       DefaultLoginStepWait,
		EngagementScrolls:   DefaultEngagementScrolls,
		EngagementWait:      DefaultEngagementWait,
		EngagementMax:       DefaultEngagementMax,
	}

	cfg.Username = os.Getenv(EnvUsername)
	cfg.Password = os.Getenv(EnvPassword)
	if v := os.Getenv(EnvUserAgent); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv(EnvChromePath); v != "" {
		cfg.ChromePath = v
	}

	if cmd != nil {
		if err := applyFlags(cfg, cmd); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyFlags overrides config fields from any flags the command defines.
// Lookup-based so commands only register the flags they care about. A flag
// value that does not parse is a fatal configuration error.
func applyFlags(cfg *Config, cmd *cobra.Command) error {
	flags := cmd.Flags()

	if f := flags.Lookup("username"); f != nil && f.Changed {
		cfg.Username = f.Value.String()
	}
	if f := flags.Lookup("password"); f != nil && f.Changed {
		cfg.Password = f.Value.String()
	}
	if f := flags.Lookup("time-limit"); f != nil && f.Changed {
		d, err := ParseTimeLimit(f.Value.String())
		if err != nil {
			return err
		}
		cfg.TimeLimit = d
	}
	if f := flags.Lookup("existing"); f != nil && f.Changed {
		paths, err := flags.GetStringArray("existing")
		if err != nil {
			return err
		}
		cfg.ExistingPaths = paths
	}
	if f := flags.Lookup("engagements"); f != nil {
		cfg.ScrapeEngagements = f.Value.String() == "true"
	}
	if f := flags.Lookup("no-headless"); f != nil && f.Value.String() == "true" {
		cfg.Headless = false
	}
	if f := flags.Lookup("output"); f != nil {
		cfg.OutputPath = f.Value.String()
	}
	if f := flags.Lookup("report"); f != nil {
		cfg.ReportPath = f.Value.String()
	}
	if f := flags.Lookup("filter-script"); f != nil {
		cfg.FilterScript = f.Value.String()
	}
	if f := flags.Lookup("user-agent"); f != nil && f.Changed {
		cfg.UserAgent = f.Value.String()
	}
	if f := flags.Lookup("stagnation"); f != nil && f.Changed {
		n, err := strconv.Atoi(f.Value.String())
		if err != nil {
			return fmt.Errorf("stagnation must be a number, got %q", f.Value.String())
		}
		cfg.StagnationThreshold = n
	}
	if f := flags.Lookup("settle-wait"); f != nil && f.Changed {
		d, err := time.ParseDuration(f.Value.String())
		if err != nil {
			return fmt.Errorf("settle wait must be a duration, got %q", f.Value.String())
		}
		cfg.SettleWait = d
	}
	if f := cmd.Root().PersistentFlags().Lookup("json"); f != nil && f.Value.String() == "true" {
		cfg.JSONLog = true
	}
	if f := cmd.Root().PersistentFlags().Lookup("verbose"); f != nil && f.Value.String() == "true" {
		cfg.LogLevel = "debug"
	}
	if f := cmd.Root().PersistentFlags().Lookup("quiet"); f != nil && f.Value.String() == "true" {
		cfg.LogLevel = "error"
	}
	return nil
}

// ParseTimeLimit converts an HH:MM:SS string to a duration. Plain Go
// duration syntax ("20m", "1h30m") is accepted as well.
func ParseTimeLimit(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty time limit")
	}

	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		if d, err := time.ParseDuration(s); err == nil {
			return d, nil
		}
		return 0, fmt.Errorf("time limit must be HH:MM:SS, got %q", s)
	}

	var units [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("time limit must be HH:MM:SS, got %q", s)
		}
		units[i] = n
	}
	if units[1] > 59 || units[2] > 59 {
		return 0, fmt.Errorf("minutes and seconds must be 0-59 in %q", s)
	}

	return time.Duration(units[0])*time.Hour +
		time.Duration(units[1])*time.Minute +
		time.Duration(units[2])*time.Second, nil
}

// HasCredentials reports whether both username and password are set.
func (c *Config) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}
