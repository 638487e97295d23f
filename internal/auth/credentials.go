// Package auth handles account credentials and the browser login flow.
package auth

import (
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for keyring storage.
	KeyringService = "scrapex"

	usernameKey = "default-username"
)

// SaveCredentials stores the account credentials in the OS keyring.
func SaveCredentials(username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("username and password are required")
	}
	if err := keyring.Set(KeyringService, usernameKey, username); err != nil {
		return fmt.Errorf("store username: %w", err)
	}
	if err := keyring.Set(KeyringService, username, password); err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	return nil
}

// LoadCredentials retrieves stored credentials from the OS keyring.
func LoadCredentials() (username, password string, err error) {
	username, err = keyring.Get(KeyringService, usernameKey)
	if err != nil {
		return "", "", fmt.Errorf("no stored username: %w", err)
	}
	password, err = keyring.Get(KeyringService, username)
	if err != nil {
		return "", "", fmt.Errorf("no stored password for %s: %w", username, err)
	}
	return username, password, nil
}

// DeleteCredentials removes stored credentials, ignoring missing entries.
func DeleteCredentials() {
	if username, err := keyring.Get(KeyringService, usernameKey); err == nil {
		_ = keyring.Delete(KeyringService, username)
	}
	_ = keyring.Delete(KeyringService, usernameKey)
}
