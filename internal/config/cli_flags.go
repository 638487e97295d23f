package config

import "github.com/spf13/cobra"

// RegisterGlobalFlags registers persistent flags shared by all commands.
func RegisterGlobalFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Emit logs as JSON")
}

// RegisterScrapeFlags registers the flags consumed by the scrape command.
func RegisterScrapeFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}
	cmd.Flags().StringP("username", "u", "", "Account username (falls back to "+EnvUsername+" or the keyring)")
	cmd.Flags().StringP("password", "p", "", "Account password (falls back to "+EnvPassword+" or the keyring)")
	cmd.Flags().StringP("time-limit", "l", "00:20:00", "Scraping time limit in HH:MM:SS")
	cmd.Flags().StringArrayP("existing", "e", nil, "Path to an existing output file used for duplicate filtering (repeatable)")
	cmd.Flags().BoolP("engagements", "s", false, "Also collect quote/reply text for each post")
	cmd.Flags().BoolP("no-headless", "n", false, "Run the browser with a visible window")
	cmd.Flags().StringP("output", "o", "", "Output file path (default: timestamped "+DefaultOutputPrefix+"_*.json)")
	cmd.Flags().String("report", "", "Also write a Markdown digest of collected posts to this path")
	cmd.Flags().String("filter-script", "", "Path to a JavaScript predicate; posts it rejects are skipped")
	cmd.Flags().String("user-agent", "", "Custom browser user agent")
	cmd.Flags().Int("stagnation", DefaultStagnationThreshold, "Consecutive empty iterations before giving up")
	cmd.Flags().String("settle-wait", DefaultSettleWait.String(), "Wait after each scroll for content to stabilize")
}
