package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scrapex/scrapex/internal/output"
	"github.com/scrapex/scrapex/internal/scrape"
	"github.com/scrapex/scrapex/internal/ui"
)

var mergeOutput string

var mergeCmd = &cobra.Command{
	Use:   "merge <file>...",
	Short: "Merge output files into one, dropping duplicate posts",
	Long: `Loads the given output files in order and writes a single file with
duplicates removed. A post from a later file is dropped when an earlier
file already contains its fingerprint (timestamp, author, body text).
Unreadable or malformed inputs are skipped with a warning.`,
	Example: `  scrapex merge -o merged.json post_data_20250324_1043.json post_data_20250325_0910.json`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "merged.json", "Path for the merged file")
}

func runMerge(cmd *cobra.Command, args []string) error {
	index := scrape.NewIndex()
	index.Load(args...)

	posts := index.Existing()
	if len(posts) == 0 {
		return fmt.Errorf("no posts loaded from %d file(s)", len(args))
	}
	if err := output.WriteJSON(mergeOutput, posts); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s %d unique posts from %d file(s) to %s\n",
		ui.Success("Merged"), len(posts), len(args), mergeOutput)
	return nil
}
