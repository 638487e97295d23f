package scrape

// DOM selectors for X.com. Isolated here because the site changes its DOM
// frequently; update these when scraping breaks.
const (
	SelectorPost       = `article[data-testid="tweet"]`
	SelectorUserName   = `[data-testid="User-Name"]`
	SelectorPostText   = `[data-testid="tweetText"]`
	SelectorStatsGroup = `[role="group"]`
	SelectorTimestamp  = `time`
	SelectorStatusLink = `a[href*="/status/"]`

	// Per-button stat fallbacks when the group aria-label is absent.
	SelectorReplyButton  = `[data-testid="reply"]`
	SelectorRepostButton = `[data-testid="retweet"]`
	SelectorLikeButton   = `[data-testid="like"]`

	// Login flow
	SelectorLoginUser     = `input[autocomplete="username"]`
	SelectorLoginPassword = `input[name="password"][type="password"]`
	SelectorHomeLink      = `[data-testid="AppTabBar_Home_Link"]`
)
