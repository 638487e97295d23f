package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/scrapex/scrapex/internal/app"
	"github.com/scrapex/scrapex/internal/config"
	"github.com/scrapex/scrapex/internal/ui"
	"github.com/scrapex/scrapex/pkg/models"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "Scrape posts from a feed URL until a time limit or exhaustion",
	Long: `Logs in, navigates to the target URL (typically a search query), and
scrolls the feed collecting posts. The run stops when the time limit
expires, when no new posts appear for a configurable number of attempts,
or when the operator aborts with 'q'. Whatever was collected is always
written out.`,
	Example: `  # Scrape a search feed for 20 minutes (default)
  scrapex scrape "https://x.com/search?q=(solar%20OR%20wind)%20lang%3Aen&src=typed_query"

  # One hour, filtering duplicates against two prior runs
  scrapex scrape <url> -l 01:00:00 -e post_data_20250324_1043.json -e post_data_20250325_0910.json

  # Also collect quote/reply text per post, with a visible browser window
  scrapex scrape <url> -s -n`,
	Args: cobra.ExactArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	config.RegisterScrapeFlags(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	url := args[0]
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("invalid URL: must start with http:// or https://")
	}

	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}
	cfg.TargetURL = url

	application, err := app.New(cfg)
	if err != nil {
		return err
	}

	summary, runErr := application.Run(context.Background())
	if summary != nil {
		printSummary(summary)
	}
	if runErr != nil {
		return fmt.Errorf("run failed: %w", runErr)
	}
	return nil
}

// printSummary emits the terminal summary line: stop reason and counts.
func printSummary(s *models.Summary) {
	reason := ui.Success(string(s.Reason))
	if s.Reason == models.StopSessionFatal {
		reason = ui.Error(string(s.Reason))
	}
	fmt.Fprintf(os.Stdout, "\n%s %s | %s new, %d duplicates, %d iterations in %s\n",
		ui.Bold("Stopped:"), reason,
		ui.Bold(fmt.Sprintf("%d", s.Collected)),
		s.Duplicates, s.Iterations, s.Elapsed.Round(time.Second))
	if s.OutputPath != "" {
		fmt.Fprintf(os.Stdout, "Saved to %s\n", s.OutputPath)
	}
}
