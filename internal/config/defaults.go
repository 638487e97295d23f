package config

import "time"

// Default constants for application configuration.
//
// StagnationThreshold and the wait durations are empirically tuned against
// the live site and carry no derivation; they are configuration, not
// contract.
const (
	DefaultLogLevel  = "info"
	DefaultJSONLog   = false
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	DefaultTimeLimit           = 20 * time.Minute
	DefaultHeadless            = true
	DefaultStagnationThreshold = 20
	DefaultSettleWait          = 1500 * time.Millisecond
	DefaultElementWait         = 10 * time.Second
	DefaultScrollsPerSecond    = 0.5
	DefaultScrollBurst         = 2

	DefaultLoginAttempts     = 3
	DefaultLoginStepWait     = 5 * time.Second
	DefaultEngagementScrolls = 5
	DefaultEngagementWait    = 2 * time.Second
	DefaultEngagementMax     = 100

	DefaultOutputPrefix = "post_data"
)

// Environment variable names for credential and browser overrides.
const (
	EnvUsername   = "SCRAPEX_USERNAME"
	EnvPassword   = "SCRAPEX_PASSWORD"
	EnvUserAgent  = "SCRAPEX_USER_AGENT"
	EnvChromePath = "SCRAPEX_CHROME_PATH"
)
