package cli

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/scrapex/scrapex/internal/auth"
	"github.com/scrapex/scrapex/internal/ui"
)

var (
	loginUsername string
	loginClear    bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store account credentials in the OS keyring",
	Long: `Stores the username and password in the operating system keyring so
scrape runs can pick them up without flags or environment variables. The
password is prompted for and never echoed.`,
	Example: `  scrapex login -u myhandle
  scrapex login --clear`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Account username")
	loginCmd.Flags().BoolVar(&loginClear, "clear", false, "Remove stored credentials instead")
}

func runLogin(cmd *cobra.Command, args []string) error {
	if loginClear {
		auth.DeleteCredentials()
		fmt.Println(ui.Success("Stored credentials removed."))
		return nil
	}

	username := strings.TrimSpace(loginUsername)
	if username == "" {
		fmt.Print("Username: ")
		if _, err := fmt.Scanln(&username); err != nil {
			return fmt.Errorf("read username: %w", err)
		}
		username = strings.TrimSpace(username)
	}
	if username == "" {
		return fmt.Errorf("username is required")
	}

	password, err := promptPassword()
	if err != nil {
		return err
	}
	if err := auth.SaveCredentials(username, password); err != nil {
		return fmt.Errorf("keyring unavailable: %w", err)
	}
	fmt.Printf("%s Credentials for %s stored in the keyring.\n", ui.Success("✓"), username)
	return nil
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	if term.IsTerminal(int(syscall.Stdin)) {
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}
	// Piped input (tests, scripts): read a line without raw mode.
	var password string
	if _, err := fmt.Fscanln(os.Stdin, &password); err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return password, nil
}
